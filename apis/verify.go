package apis

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/checkpoint"
	"github.com/RiemaLabs/dividend-ledger/ledger/state"
)

var ErrCommitmentMismatch = errors.New("snapshot does not match the checkpoint commitment")

// VerifySnapshot restores a snapshot served by a node and checks it against a
// published checkpoint.
func VerifySnapshot(config state.Config, raw []byte, c checkpoint.Checkpoint) (*state.State, error) {
	st, err := state.Deserialize(config, raw)
	if err != nil {
		return nil, err
	}
	digest, err := st.DigestHex()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(digest, c.Commitment) {
		return nil, errors.Wrapf(ErrCommitmentMismatch, "got %s, want %s", digest, c.Commitment)
	}
	expected, err := checkpoint.NewCheckpoint(checkpoint.IndexerIdentification{}, st)
	if err != nil {
		return nil, err
	}
	if expected.Height != c.Height || expected.LedgerVersion != c.LedgerVersion || expected.TotalSupply != c.TotalSupply {
		return nil, errors.Wrapf(ErrCommitmentMismatch, "summary differs at height %s", c.Height)
	}
	return st, nil
}
