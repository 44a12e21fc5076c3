// Package cash tracks the currency payouts are made in.
package cash

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

type Ledger struct {
	balances map[ledger.Address]*uint256.Int
}

func New() *Ledger {
	return &Ledger{balances: make(map[ledger.Address]*uint256.Int)}
}

func (c *Ledger) BalanceOf(account ledger.Address) *uint256.Int {
	return ledger.Copy(c.balances[account])
}

// Deposit credits account with value brought in from outside the ledger.
func (c *Ledger) Deposit(account ledger.Address, value *uint256.Int) error {
	if account.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "deposit")
	}
	v, err := ledger.Add(c.BalanceOf(account), value)
	if err != nil {
		return errors.Wrap(err, "deposit")
	}
	c.balances[account] = v
	return nil
}

// Withdraw debits account for value leaving the ledger.
func (c *Ledger) Withdraw(account ledger.Address, value *uint256.Int) error {
	balance := c.BalanceOf(account)
	if balance.Lt(value) {
		return errors.Wrapf(ledger.ErrInsufficientFunds, "%s holds %s, needs %s", account, balance.Dec(), value.Dec())
	}
	c.balances[account], _ = ledger.Sub(balance, value)
	return nil
}

func (c *Ledger) Transfer(from, to ledger.Address, value *uint256.Int) error {
	if to.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "cash transfer")
	}
	balance := c.BalanceOf(from)
	if balance.Lt(value) {
		return errors.Wrapf(ledger.ErrInsufficientFunds, "%s holds %s, needs %s", from, balance.Dec(), value.Dec())
	}
	if from == to {
		return nil
	}
	credited, err := ledger.Add(c.BalanceOf(to), value)
	if err != nil {
		return errors.Wrap(err, "cash transfer")
	}
	c.balances[from], _ = ledger.Sub(balance, value)
	c.balances[to] = credited
	return nil
}

func (c *Ledger) Export() map[ledger.Address]string {
	res := make(map[ledger.Address]string, len(c.balances))
	for a, v := range c.balances {
		res[a] = v.Dec()
	}
	return res
}

func Import(balances map[ledger.Address]string) (*Ledger, error) {
	c := New()
	for a, raw := range balances {
		v, err := ledger.ParseAmount(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "cash %s", a)
		}
		c.balances[a] = v
	}
	return c, nil
}

// Accounts lists holders with a non-zero balance, sorted.
func (c *Ledger) Accounts() []ledger.Address {
	res := make([]ledger.Address, 0, len(c.balances))
	for a, v := range c.balances {
		if !v.IsZero() {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
