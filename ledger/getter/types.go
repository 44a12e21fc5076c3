package getter

import (
	"time"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

type Op string

const (
	OpMint             Op = "mint"
	OpBurn             Op = "burn"
	OpTransfer         Op = "transfer"
	OpTransferFrom     Op = "transferFrom"
	OpApprove          Op = "approve"
	OpIncreaseApproval Op = "increaseApproval"
	OpDecreaseApproval Op = "decreaseApproval"
	OpDeposit          Op = "deposit"
	OpWithdraw         Op = "withdraw"
	OpDeclare          Op = "declare"
	OpClaim            Op = "claim"
	OpClaimAll         Op = "claimAll"
	OpClaimBatch       Op = "claimBatch"
	OpRecycle          Op = "recycle"
	OpSetAlive         Op = "setAlive"
	OpFinishMinting    Op = "finishMinting"
	OpEnableTransfers  Op = "enableTransfers"
	OpPauseTransfer    Op = "pauseTransfer"
	OpPauseCapital     Op = "pauseCapital"
	OpSetMintControl   Op = "setMintControl"
	OpSetRoles         Op = "setRoles"
	OpSetName          Op = "setName"
	OpSetSymbol        Op = "setSymbol"
	OpSetBaseCurrency  Op = "setBaseCurrency"
)

// Action is one operation submitted against the instrument. Amounts are
// decimal strings in base units. Which fields matter depends on Op.
type Action struct {
	ID     uint           `json:"id"`
	Height uint           `json:"height"`
	Op     Op             `json:"op"`
	Caller ledger.Address `json:"caller"`

	From    ledger.Address `json:"from,omitempty"`
	To      ledger.Address `json:"to,omitempty"`
	Spender ledger.Address `json:"spender,omitempty"`

	Amount string `json:"amount,omitempty"`
	// Value attached to the action, checked against Amount on declare.
	Value string `json:"value,omitempty"`

	Index     int `json:"index,omitempty"`
	FromIndex int `json:"fromIndex,omitempty"`
	TillIndex int `json:"tillIndex,omitempty"`

	Flag bool   `json:"flag,omitempty"`
	Name string `json:"name,omitempty"`

	// Time the action was accepted by the source. Zero keeps the time of the
	// previous action.
	Time time.Time `json:"time,omitempty"`
}

// Normalize rewrites the addresses of a into their canonical form.
func (a *Action) Normalize() {
	a.Caller = ledger.NewAddress(string(a.Caller))
	a.From = ledger.NewAddress(string(a.From))
	a.To = ledger.NewAddress(string(a.To))
	a.Spender = ledger.NewAddress(string(a.Spender))
}

// ActionGetter reads actions grouped by source height.
type ActionGetter interface {
	GetLatestHeight() (uint, error)
	GetActions(height uint) ([]Action, error)
}
