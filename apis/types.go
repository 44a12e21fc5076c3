package apis

import (
	"time"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/history"
)

type Response struct {
	Error  *string     `json:"error"`
	Result interface{} `json:"result"`
}

type VersionResult struct {
	Height      uint           `json:"height"`
	Version     ledger.Version `json:"version"`
	TotalSupply string         `json:"totalSupply"`
	Time        time.Time      `json:"time"`

	// Custody holds declared payouts not yet claimed or recycled.
	Custody        ledger.Address `json:"custody"`
	CustodyBalance string         `json:"custodyBalance"`
}

type BalanceResult struct {
	Account ledger.Address `json:"account"`
	Version ledger.Version `json:"version"`
	Balance string         `json:"balance"`
}

type SupplyResult struct {
	Version     ledger.Version `json:"version"`
	TotalSupply string         `json:"totalSupply"`
}

type CheckpointsResult struct {
	// Empty for the aggregate history.
	Account     ledger.Address           `json:"account,omitempty"`
	Checkpoints []history.CheckpointJSON `json:"checkpoints"`
}

type PayoutResult struct {
	Index     int       `json:"index"`
	Unclaimed string    `json:"unclaimed"`
	Unlocks   time.Time `json:"unlocks"`
	Amount       string         `json:"amount"`
	Version      ledger.Version `json:"version"`
	TotalSupply  string         `json:"totalSupply"`
	CreatedAt    time.Time      `json:"createdAt"`
	TotalClaimed string         `json:"totalClaimed"`
	Recycled     bool           `json:"recycled"`
}

type ClaimResult struct {
	Account ledger.Address `json:"account"`
	Index   int            `json:"index"`
	Claimed bool           `json:"claimed"`
	Share   string         `json:"share"`
}

type DigestResult struct {
	Height uint   `json:"height"`
	Digest string `json:"digest"`
}
