// Package dividend distributes payouts pro rata to the balances recorded at
// the version each payout was declared.
package dividend

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

// RecycleLockPeriod is how long a payout stays claimable before the
// remainder may be recycled.
const RecycleLockPeriod = 365 * 24 * time.Hour

// DefaultCustody holds declared payout funds until they are claimed or recycled.
const DefaultCustody ledger.Address = "custody:dividends"

// Balances is the read side of the checkpoint ledger.
type Balances interface {
	Version() ledger.Version
	TotalSupply() *uint256.Int
	BalanceAt(account ledger.Address, version ledger.Version) *uint256.Int
}

// Funds moves the payout currency.
type Funds interface {
	Transfer(from, to ledger.Address, value *uint256.Int) error
}

// Policy gates declaring and recycling.
type Policy interface {
	CanDeclare(caller ledger.Address) error
	CanRecycle(caller ledger.Address) error
	RecycleRecipient() ledger.Address
}

type Engine struct {
	balances Balances
	funds    Funds
	policy   Policy

	clock      clockwork.Clock
	lockPeriod time.Duration
	custody    ledger.Address

	payouts []*Payout
	claimed map[ledger.Address]map[int]bool
	// First index not yet settled (claimed or recycled) for each account.
	cursor map[ledger.Address]int
}

type Option func(*Engine)

func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithLockPeriod(d time.Duration) Option {
	return func(e *Engine) { e.lockPeriod = d }
}

func WithCustody(custody ledger.Address) Option {
	return func(e *Engine) { e.custody = custody }
}

func New(balances Balances, funds Funds, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		balances:   balances,
		funds:      funds,
		policy:     policy,
		clock:      clockwork.NewRealClock(),
		lockPeriod: RecycleLockPeriod,
		custody:    DefaultCustody,
		claimed:    make(map[ledger.Address]map[int]bool),
		cursor:     make(map[ledger.Address]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Custody() ledger.Address   { return e.custody }
func (e *Engine) LockPeriod() time.Duration { return e.lockPeriod }
func (e *Engine) Count() int                { return len(e.payouts) }

// DeclarePayout moves amount from caller into custody and records a payout
// against the current version and total supply. value is what the caller
// attached and must equal amount.
func (e *Engine) DeclarePayout(caller ledger.Address, amount, value *uint256.Int) (int, error) {
	if err := e.policy.CanDeclare(caller); err != nil {
		return 0, errors.Wrap(err, "declare")
	}
	if amount.IsZero() {
		return 0, errors.Wrap(ledger.ErrZeroAmount, "declare")
	}
	if !value.Eq(amount) {
		return 0, errors.Wrapf(ledger.ErrDepositMismatch, "declare %s with %s attached", amount.Dec(), value.Dec())
	}
	supply := e.balances.TotalSupply()
	if supply.IsZero() {
		return 0, errors.Wrap(ledger.ErrZeroSupply, "declare")
	}
	if err := e.funds.Transfer(caller, e.custody, amount); err != nil {
		return 0, errors.Wrap(err, "declare deposit")
	}

	p := &Payout{
		Amount:       ledger.Copy(amount),
		Version:      e.balances.Version(),
		TotalSupply:  supply,
		CreatedAt:    e.clock.Now(),
		TotalClaimed: ledger.Zero(),
	}
	e.payouts = append(e.payouts, p)
	index := len(e.payouts) - 1

	log.WithFields(log.Fields{
		"index":   index,
		"amount":  amount.Dec(),
		"version": p.Version,
		"supply":  supply.Dec(),
	}).Info("Payout declared")
	return index, nil
}

func (e *Engine) payout(index int) (*Payout, error) {
	if index < 0 || index >= len(e.payouts) {
		return nil, errors.Wrapf(ledger.ErrPayoutIndex, "index %d, count %d", index, len(e.payouts))
	}
	return e.payouts[index], nil
}

func (e *Engine) IsClaimed(account ledger.Address, index int) bool {
	return e.claimed[account][index]
}

// ShareOf is the entitlement of account in a payout, whether or not it has
// been claimed.
func (e *Engine) ShareOf(account ledger.Address, index int) (*uint256.Int, error) {
	p, err := e.payout(index)
	if err != nil {
		return nil, err
	}
	return p.shareOf(e.balances.BalanceAt(account, p.Version))
}

// Pending sums the shares account can still claim.
func (e *Engine) Pending(account ledger.Address) (*uint256.Int, error) {
	total := ledger.Zero()
	for i := e.cursor[account]; i < len(e.payouts); i++ {
		p := e.payouts[i]
		if p.Recycled || e.IsClaimed(account, i) {
			continue
		}
		share, err := p.shareOf(e.balances.BalanceAt(account, p.Version))
		if err != nil {
			return nil, err
		}
		if total, err = ledger.Add(total, share); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// settlement is a claim whose internal state is applied but whose funds have
// not moved yet.
type settlement struct {
	index int
	share *uint256.Int
}

func (e *Engine) settle(account ledger.Address, index int) (*settlement, error) {
	p := e.payouts[index]
	share, err := p.shareOf(e.balances.BalanceAt(account, p.Version))
	if err != nil {
		return nil, errors.Wrapf(err, "payout %d", index)
	}
	claimed, err := ledger.Add(p.TotalClaimed, share)
	if err != nil {
		return nil, errors.Wrapf(err, "payout %d", index)
	}
	if claimed.Gt(p.Amount) {
		return nil, errors.Wrapf(ledger.ErrOverflow, "payout %d claims %s of %s", index, claimed.Dec(), p.Amount.Dec())
	}
	s := &settlement{index: index, share: share}

	m, ok := e.claimed[account]
	if !ok {
		m = make(map[int]bool)
		e.claimed[account] = m
	}
	m[index] = true
	p.TotalClaimed = claimed
	e.advanceCursor(account)
	return s, nil
}

// revert undoes settlements relative to the current state, so claims that
// succeeded while the funds were moving keep their bookkeeping.
func (e *Engine) revert(account ledger.Address, ss []*settlement) {
	for _, s := range ss {
		delete(e.claimed[account], s.index)
		p := e.payouts[s.index]
		p.TotalClaimed, _ = ledger.Sub(p.TotalClaimed, s.share)
		// Everything below the cursor stays settled.
		if e.cursor[account] > s.index {
			e.cursor[account] = s.index
		}
	}
}

func (e *Engine) advanceCursor(account ledger.Address) {
	c := e.cursor[account]
	for c < len(e.payouts) && (e.payouts[c].Recycled || e.IsClaimed(account, c)) {
		c++
	}
	e.cursor[account] = c
}

// Claim pays account its share of one payout. A zero share is a valid claim.
func (e *Engine) Claim(account ledger.Address, index int) (*uint256.Int, error) {
	p, err := e.payout(index)
	if err != nil {
		return nil, errors.Wrap(err, "claim")
	}
	if p.Recycled {
		return nil, errors.Wrapf(ledger.ErrRecycled, "claim payout %d", index)
	}
	if e.IsClaimed(account, index) {
		return nil, errors.Wrapf(ledger.ErrAlreadyClaimed, "claim payout %d by %s", index, account)
	}
	s, err := e.settle(account, index)
	if err != nil {
		return nil, errors.Wrap(err, "claim")
	}
	if err := e.pay(account, s.share); err != nil {
		e.revert(account, []*settlement{s})
		return nil, errors.Wrapf(err, "claim payout %d", index)
	}
	log.WithFields(log.Fields{"account": account, "index": index, "share": s.share.Dec()}).Debug("Payout claimed")
	return s.share, nil
}

// ClaimAll settles every open payout of account from its first unsettled one.
func (e *Engine) ClaimAll(account ledger.Address) (*uint256.Int, error) {
	return e.claimRange(account, e.cursor[account], len(e.payouts))
}

// ClaimInBatches settles the payouts in [from, till). Claimed and recycled
// indices are skipped, so re-running a settled range pays nothing.
func (e *Engine) ClaimInBatches(account ledger.Address, from, till int) (*uint256.Int, error) {
	if from < 0 || from > till || till > len(e.payouts) {
		return nil, errors.Wrapf(ledger.ErrInvalidRange, "[%d, %d) of %d payouts", from, till, len(e.payouts))
	}
	return e.claimRange(account, from, till)
}

func (e *Engine) claimRange(account ledger.Address, from, till int) (*uint256.Int, error) {
	total := ledger.Zero()
	var ss []*settlement
	for i := from; i < till; i++ {
		if e.payouts[i].Recycled || e.IsClaimed(account, i) {
			continue
		}
		s, err := e.settle(account, i)
		if err == nil {
			total, err = ledger.Add(total, s.share)
			ss = append(ss, s)
		}
		if err != nil {
			e.revert(account, ss)
			return nil, errors.Wrap(err, "claim batch")
		}
	}
	if err := e.pay(account, total); err != nil {
		e.revert(account, ss)
		return nil, errors.Wrapf(err, "claim batch [%d, %d)", from, till)
	}
	if len(ss) > 0 {
		log.WithFields(log.Fields{
			"account": account,
			"from":    from,
			"till":    till,
			"settled": len(ss),
			"total":   total.Dec(),
		}).Debug("Payouts claimed")
	}
	return total, nil
}

func (e *Engine) pay(to ledger.Address, value *uint256.Int) error {
	if value.IsZero() {
		return nil
	}
	return e.funds.Transfer(e.custody, to, value)
}

// Recycle sends the unclaimed remainder of a payout to the policy's recipient
// once the lock period has passed. No claim succeeds afterwards.
func (e *Engine) Recycle(caller ledger.Address, index int) (*uint256.Int, error) {
	if err := e.policy.CanRecycle(caller); err != nil {
		return nil, errors.Wrap(err, "recycle")
	}
	p, err := e.payout(index)
	if err != nil {
		return nil, errors.Wrap(err, "recycle")
	}
	if p.Recycled {
		return nil, errors.Wrapf(ledger.ErrAlreadyRecycled, "payout %d", index)
	}
	unlock := p.CreatedAt.Add(e.lockPeriod)
	if now := e.clock.Now(); now.Before(unlock) {
		return nil, errors.Wrapf(ledger.ErrLocked, "payout %d unlocks at %s", index, unlock.Format(time.RFC3339))
	}
	remainder, err := ledger.Sub(p.Amount, p.TotalClaimed)
	if err != nil {
		return nil, errors.Wrapf(err, "payout %d", index)
	}

	p.Recycled = true
	if err := e.pay(e.policy.RecycleRecipient(), remainder); err != nil {
		p.Recycled = false
		return nil, errors.Wrapf(err, "recycle payout %d", index)
	}
	log.WithFields(log.Fields{"index": index, "remainder": remainder.Dec()}).Info("Payout recycled")
	return remainder, nil
}
