package history

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

// Ledger keeps per-account and aggregate balance histories and owns the
// version counter they are indexed by.
type Ledger struct {
	version   ledger.Version
	accounts  map[ledger.Address]*History
	aggregate History
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[ledger.Address]*History)}
}

// Version returns the current value of the counter.
func (l *Ledger) Version() ledger.Version {
	return l.version
}

// Advance ticks the counter and returns the new version.
func (l *Ledger) Advance() ledger.Version {
	l.version++
	return l.version
}

// Record writes the balance of account at version.
func (l *Ledger) Record(account ledger.Address, version ledger.Version, value *uint256.Int) error {
	if version > l.version {
		return errors.Wrapf(ledger.ErrVersion, "record %s at %d, current %d", account, version, l.version)
	}
	h, ok := l.accounts[account]
	if !ok {
		h = &History{}
	}
	if err := h.Record(version, value); err != nil {
		return errors.Wrapf(err, "account %s", account)
	}
	l.accounts[account] = h
	return nil
}

// RecordAggregate writes the total supply at version.
func (l *Ledger) RecordAggregate(version ledger.Version, value *uint256.Int) error {
	if version > l.version {
		return errors.Wrapf(ledger.ErrVersion, "record aggregate at %d, current %d", version, l.version)
	}
	return errors.Wrap(l.aggregate.Record(version, value), "aggregate")
}

func (l *Ledger) BalanceAt(account ledger.Address, version ledger.Version) *uint256.Int {
	h, ok := l.accounts[account]
	if !ok {
		return ledger.Zero()
	}
	return h.ValueAt(version)
}

func (l *Ledger) BalanceOf(account ledger.Address) *uint256.Int {
	h, ok := l.accounts[account]
	if !ok {
		return ledger.Zero()
	}
	return h.Latest()
}

func (l *Ledger) TotalSupplyAt(version ledger.Version) *uint256.Int {
	return l.aggregate.ValueAt(version)
}

func (l *Ledger) TotalSupply() *uint256.Int {
	return l.aggregate.Latest()
}

// Checkpoints returns the history of account, nil if it never held a balance.
func (l *Ledger) Checkpoints(account ledger.Address) []Checkpoint {
	h, ok := l.accounts[account]
	if !ok {
		return nil
	}
	return h.Checkpoints()
}

func (l *Ledger) AggregateCheckpoints() []Checkpoint {
	return l.aggregate.Checkpoints()
}

// Accounts lists every account with a history, sorted.
func (l *Ledger) Accounts() []ledger.Address {
	res := make([]ledger.Address, 0, len(l.accounts))
	for a := range l.accounts {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
