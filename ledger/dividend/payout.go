package dividend

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

// Payout is immutable apart from TotalClaimed, which only grows, and
// Recycled, which is set once.
type Payout struct {
	Amount       *uint256.Int
	Version      ledger.Version
	TotalSupply  *uint256.Int
	CreatedAt    time.Time
	TotalClaimed *uint256.Int
	Recycled     bool
}

func (p *Payout) shareOf(balance *uint256.Int) (*uint256.Int, error) {
	return ledger.ShareOf(p.Amount, balance, p.TotalSupply)
}

func (p *Payout) copy() Payout {
	return Payout{
		Amount:       ledger.Copy(p.Amount),
		Version:      p.Version,
		TotalSupply:  ledger.Copy(p.TotalSupply),
		CreatedAt:    p.CreatedAt,
		TotalClaimed: ledger.Copy(p.TotalClaimed),
		Recycled:     p.Recycled,
	}
}

// Unclaimed is what a recycle would return right now.
func (p *Payout) Unclaimed() *uint256.Int {
	v, err := ledger.Sub(p.Amount, p.TotalClaimed)
	if err != nil {
		return ledger.Zero()
	}
	return v
}

func (e *Engine) Payout(index int) (Payout, error) {
	p, err := e.payout(index)
	if err != nil {
		return Payout{}, err
	}
	return p.copy(), nil
}

func (e *Engine) Payouts() []Payout {
	res := make([]Payout, len(e.payouts))
	for i, p := range e.payouts {
		res[i] = p.copy()
	}
	return res
}

type PayoutJSON struct {
	Amount       string         `json:"amount"`
	Version      ledger.Version `json:"version"`
	TotalSupply  string         `json:"totalSupply"`
	CreatedAt    time.Time      `json:"createdAt"`
	TotalClaimed string         `json:"totalClaimed"`
	Recycled     bool           `json:"recycled"`
}

func (p Payout) JSON() PayoutJSON {
	return PayoutJSON{
		Amount:       p.Amount.Dec(),
		Version:      p.Version,
		TotalSupply:  p.TotalSupply.Dec(),
		CreatedAt:    p.CreatedAt.UTC(),
		TotalClaimed: p.TotalClaimed.Dec(),
		Recycled:     p.Recycled,
	}
}

func (j PayoutJSON) payout() (*Payout, error) {
	amount, err := ledger.ParseAmount(j.Amount)
	if err != nil {
		return nil, err
	}
	supply, err := ledger.ParseAmount(j.TotalSupply)
	if err != nil {
		return nil, err
	}
	claimed, err := ledger.ParseAmount(j.TotalClaimed)
	if err != nil {
		return nil, err
	}
	if claimed.Gt(amount) {
		return nil, errors.Wrapf(ledger.ErrOverflow, "claimed %s of %s", claimed.Dec(), amount.Dec())
	}
	return &Payout{
		Amount:       amount,
		Version:      j.Version,
		TotalSupply:  supply,
		CreatedAt:    j.CreatedAt,
		TotalClaimed: claimed,
		Recycled:     j.Recycled,
	}, nil
}

type State struct {
	Payouts []PayoutJSON             `json:"payouts"`
	Claimed map[ledger.Address][]int `json:"claimed"`
	Cursor  map[ledger.Address]int   `json:"cursor"`
}

func (e *Engine) Export() State {
	s := State{
		Payouts: make([]PayoutJSON, len(e.payouts)),
		Claimed: make(map[ledger.Address][]int, len(e.claimed)),
		Cursor:  make(map[ledger.Address]int, len(e.cursor)),
	}
	for i, p := range e.payouts {
		s.Payouts[i] = p.JSON()
	}
	for a, m := range e.claimed {
		indices := make([]int, 0, len(m))
		for i := 0; i < len(e.payouts); i++ {
			if m[i] {
				indices = append(indices, i)
			}
		}
		s.Claimed[a] = indices
	}
	for a, c := range e.cursor {
		s.Cursor[a] = c
	}
	return s
}

// Import replaces the payout log and claim state of e.
func (e *Engine) Import(s State) error {
	payouts := make([]*Payout, len(s.Payouts))
	for i, j := range s.Payouts {
		p, err := j.payout()
		if err != nil {
			return errors.Wrapf(err, "payout %d", i)
		}
		payouts[i] = p
	}
	claimed := make(map[ledger.Address]map[int]bool, len(s.Claimed))
	for a, indices := range s.Claimed {
		m := make(map[int]bool, len(indices))
		for _, i := range indices {
			if i < 0 || i >= len(payouts) {
				return errors.Wrapf(ledger.ErrPayoutIndex, "claim %d of %s", i, a)
			}
			m[i] = true
		}
		claimed[a] = m
	}
	e.payouts = payouts
	e.claimed = claimed
	e.cursor = make(map[ledger.Address]int, len(s.Cursor))
	for a, c := range s.Cursor {
		e.cursor[a] = c
	}
	return nil
}
