package checkpoint

import (
	"fmt"
	"strconv"

	"github.com/RiemaLabs/dividend-ledger/ledger/state"
)

type IndexerIdentification struct {
	URL     string
	Name    string
	Version string
}

// Checkpoint is the public summary of the ledger at one source height.
type Checkpoint struct {
	// Hex of the Keccak-256 digest of the state snapshot
	Commitment string `json:"commitment"`
	// Source height the ledger was replayed to
	Height string `json:"height"`
	// Value of the ledger version counter
	LedgerVersion string `json:"ledgerVersion"`
	// Decimal total supply at LedgerVersion
	TotalSupply string `json:"totalSupply"`
	// Number of declared payouts
	Payouts int `json:"payouts"`
	// Name of the node
	Name string `json:"name"`
	// URL of the node service
	URL string `json:"url"`
	// Version of the node software
	Version string `json:"version"`
}

type UploadHistory = map[uint]map[string]bool

// NewCheckpoint summarises st. The caller holds at least a read lock on st.
func NewCheckpoint(indexID IndexerIdentification, st *state.State) (Checkpoint, error) {
	digest, err := st.DigestHex()
	if err != nil {
		return Checkpoint{}, err
	}
	return Checkpoint{
		URL:           indexID.URL,
		Name:          indexID.Name,
		Version:       indexID.Version,
		Height:        strconv.FormatUint(uint64(st.Height), 10),
		LedgerVersion: strconv.FormatUint(st.Ledger.Version(), 10),
		TotalSupply:   st.Token.TotalSupply().Dec(),
		Payouts:       st.Dividends.Count(),
		Commitment:    digest,
	}, nil
}

// ObjectKey names the uploaded object after the node, height and digest prefix.
func (c Checkpoint) ObjectKey() string {
	prefix := c.Commitment
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	return fmt.Sprintf("checkpoint-%s-%s-%s.json", c.Name, c.Height, prefix)
}

// Record marks the outcome of publishing c under key.
func Record(history UploadHistory, c Checkpoint, key string, ok bool) {
	height, err := strconv.ParseUint(c.Height, 10, 64)
	if err != nil {
		return
	}
	if _, found := history[uint(height)]; !found {
		history[uint(height)] = make(map[string]bool)
	}
	history[uint(height)][key] = ok
}
