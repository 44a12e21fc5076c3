package token

import (
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/access"
	"github.com/RiemaLabs/dividend-ledger/ledger/history"
)

type State struct {
	Metadata         Metadata                                     `json:"metadata"`
	Allowances       map[ledger.Address]map[ledger.Address]string `json:"allowances"`
	TransfersEnabled bool                                         `json:"transfersEnabled"`
	TransfersPaused  bool                                         `json:"transfersPaused"`
	CapitalPaused    bool                                         `json:"capitalPaused"`
}

func (t *Token) Export() State {
	s := State{
		Metadata:         t.meta,
		Allowances:       make(map[ledger.Address]map[ledger.Address]string, len(t.allowances)),
		TransfersEnabled: t.transfersEnabled,
		TransfersPaused:  t.transfersPaused,
		CapitalPaused:    t.capitalPaused,
	}
	for owner, m := range t.allowances {
		out := make(map[ledger.Address]string, len(m))
		for spender, v := range m {
			out[spender] = v.Dec()
		}
		s.Allowances[owner] = out
	}
	return s
}

func Import(l *history.Ledger, control *access.Control, s State) (*Token, error) {
	t := New(l, control, s.Metadata)
	t.transfersEnabled = s.TransfersEnabled
	t.transfersPaused = s.TransfersPaused
	t.capitalPaused = s.CapitalPaused
	for owner, m := range s.Allowances {
		for spender, raw := range m {
			v, err := ledger.ParseAmount(raw)
			if err != nil {
				return nil, errors.Wrapf(err, "allowance %s -> %s", owner, spender)
			}
			t.setAllowance(owner, spender, v)
		}
	}
	return t, nil
}
