package state

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/access"
	"github.com/RiemaLabs/dividend-ledger/ledger/cash"
	"github.com/RiemaLabs/dividend-ledger/ledger/dividend"
	"github.com/RiemaLabs/dividend-ledger/ledger/history"
	"github.com/RiemaLabs/dividend-ledger/ledger/token"
)

type Config struct {
	Owner      ledger.Address
	Metadata   token.Metadata
	LockPeriod time.Duration
	// Genesis is where the replay clock starts.
	Genesis time.Time
}

// State is the whole instrument: balance history, roles, fungible ledger,
// payout currency and dividends. Callers hold the lock around Exec and reads.
type State struct {
	Height uint

	Ledger    *history.Ledger
	Control   *access.Control
	Token     *token.Token
	Cash      *cash.Ledger
	Dividends *dividend.Engine

	// Actions carry their own time; the replay clock follows them.
	clock clockwork.FakeClock

	sync.RWMutex
}

func New(config Config) (*State, error) {
	control, err := access.NewControl(config.Owner)
	if err != nil {
		return nil, err
	}
	l := history.NewLedger()
	return assemble(config, l, control, token.New(l, control, config.Metadata), cash.New(), 0), nil
}

func assemble(config Config, l *history.Ledger, control *access.Control, tk *token.Token, c *cash.Ledger, height uint) *State {
	lock := config.LockPeriod
	if lock == 0 {
		lock = dividend.RecycleLockPeriod
	}
	genesis := config.Genesis
	if genesis.IsZero() {
		// Durations cap at ~292 years, so the clock cannot start at year one.
		genesis = time.Unix(0, 0).UTC()
	}
	clock := clockwork.NewFakeClockAt(genesis)
	return &State{
		Height:  height,
		Ledger:  l,
		Control: control,
		Token:   tk,
		Cash:    c,
		Dividends: dividend.New(l, c, control,
			dividend.WithClock(clock),
			dividend.WithLockPeriod(lock),
		),
		clock: clock,
	}
}

// Now is the time of the last applied action.
func (s *State) Now() time.Time {
	return s.clock.Now()
}

// syncClock moves the replay clock forward to at. An action without a time
// keeps the clock where it is, and the clock never moves backwards.
func (s *State) syncClock(at time.Time) {
	if at.IsZero() {
		return
	}
	if d := at.Sub(s.clock.Now()); d > 0 {
		s.clock.Advance(d)
	}
}
