package state

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/internal/metrics"
	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/getter"
)

// Receipt is the outcome of an applied action.
type Receipt struct {
	Op      getter.Op      `json:"op"`
	Version ledger.Version `json:"version"`
	// Index of a declared payout.
	Index *int `json:"index,omitempty"`
	// Value paid out by claims and recycles.
	Value string `json:"value,omitempty"`
}

// Exec applies one action. A rejected action leaves the ledger unchanged,
// though the replay clock still moves to the action time.
func Exec(s *State, a getter.Action) (Receipt, error) {
	s.syncClock(a.Time)
	r, err := exec(s, a)
	metrics.ObserveAction(string(a.Op), err)
	if err != nil {
		return Receipt{}, err
	}
	r.Op = a.Op
	r.Version = s.Ledger.Version()
	metrics.LedgerVersion.Set(float64(r.Version))
	metrics.Payouts.Set(float64(s.Dividends.Count()))
	return r, nil
}

func exec(s *State, a getter.Action) (Receipt, error) {
	var r Receipt
	switch a.Op {
	case getter.OpMint:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		_, err = s.Token.Mint(a.Caller, a.To, amount)
		return r, err
	case getter.OpBurn:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		_, err = s.Token.Burn(a.Caller, a.From, amount)
		return r, err
	case getter.OpTransfer:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		_, err = s.Token.Transfer(a.Caller, a.To, amount)
		return r, err
	case getter.OpTransferFrom:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		_, err = s.Token.TransferFrom(a.Caller, a.From, a.To, amount)
		return r, err
	case getter.OpApprove, getter.OpIncreaseApproval, getter.OpDecreaseApproval:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		switch a.Op {
		case getter.OpApprove:
			return r, s.Token.Approve(a.Caller, a.Spender, amount)
		case getter.OpIncreaseApproval:
			return r, s.Token.IncreaseApproval(a.Caller, a.Spender, amount)
		default:
			return r, s.Token.DecreaseApproval(a.Caller, a.Spender, amount)
		}
	case getter.OpDeposit:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		return r, s.Cash.Deposit(a.To, amount)
	case getter.OpWithdraw:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		return r, s.Cash.Withdraw(a.Caller, amount)
	case getter.OpDeclare:
		amount, err := ledger.ParseAmount(a.Amount)
		if err != nil {
			return r, err
		}
		value, err := ledger.ParseAmount(a.Value)
		if err != nil {
			return r, err
		}
		index, err := s.Dividends.DeclarePayout(a.Caller, amount, value)
		if err != nil {
			return r, err
		}
		r.Index = &index
		return r, nil
	case getter.OpClaim:
		return paid(s.Dividends.Claim(a.Caller, a.Index))
	case getter.OpClaimAll:
		return paid(s.Dividends.ClaimAll(a.Caller))
	case getter.OpClaimBatch:
		return paid(s.Dividends.ClaimInBatches(a.Caller, a.FromIndex, a.TillIndex))
	case getter.OpRecycle:
		return paid(s.Dividends.Recycle(a.Caller, a.Index))
	case getter.OpSetAlive:
		return r, s.Control.SetTokenAlive(a.Caller)
	case getter.OpFinishMinting:
		return r, s.Control.FinishMinting(a.Caller)
	case getter.OpSetMintControl:
		return r, s.Control.SetMintControl(a.Caller, a.To)
	case getter.OpSetRoles:
		// Pause control in To, rescue control in Spender.
		return r, s.Control.SetRoles(a.Caller, a.To, a.Spender)
	case getter.OpEnableTransfers:
		return r, s.Token.EnableTransfers(a.Caller, a.Flag)
	case getter.OpPauseTransfer:
		return r, s.Token.PauseTransfer(a.Caller, a.Flag)
	case getter.OpPauseCapital:
		return r, s.Token.PauseCapitalIncreaseOrDecrease(a.Caller, a.Flag)
	case getter.OpSetName:
		return r, s.Token.SetName(a.Caller, a.Name)
	case getter.OpSetSymbol:
		return r, s.Token.SetSymbol(a.Caller, a.Name)
	case getter.OpSetBaseCurrency:
		return r, s.Token.SetBaseCurrency(a.Caller, ledger.NewAddress(a.Name))
	}
	return r, errors.Wrapf(ledger.ErrUnknownOp, "%q", a.Op)
}

func paid(value *uint256.Int, err error) (Receipt, error) {
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Value: value.Dec()}, nil
}

// Apply executes the actions of one source height in order. Rejected actions
// are logged and skipped, as the source may carry actions that were never
// valid.
func (s *State) Apply(height uint, actions []getter.Action) (applied int) {
	s.Lock()
	defer s.Unlock()
	for _, a := range actions {
		if _, err := Exec(s, a); err != nil {
			log.WithFields(log.Fields{
				"height": height,
				"id":     a.ID,
				"op":     a.Op,
				"caller": a.Caller,
			}).Debugf("Action rejected: %v", err)
			continue
		}
		applied++
	}
	s.Height = height
	metrics.CurrentHeight.Set(float64(height))
	return applied
}

// Update applies every height after s.Height up to latestHeight.
func (s *State) Update(g getter.ActionGetter, latestHeight uint) error {
	for i := s.Height + 1; i <= latestHeight; i++ {
		actions, err := g.GetActions(i)
		if err != nil {
			return errors.Wrapf(err, "actions at height %d", i)
		}
		s.Apply(i, actions)
	}
	return nil
}
