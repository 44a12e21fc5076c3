package history

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

// Checkpoint is the value of an entity from Version onwards.
type Checkpoint struct {
	Version ledger.Version
	Value   *uint256.Int
}

// History is the ordered checkpoint sequence of one entity. Versions are
// strictly increasing.
type History struct {
	checkpoints []Checkpoint
}

// Record appends a checkpoint. Recording at the version of the last
// checkpoint overwrites it.
func (h *History) Record(version ledger.Version, value *uint256.Int) error {
	n := len(h.checkpoints)
	if n > 0 {
		last := &h.checkpoints[n-1]
		if version < last.Version {
			return errors.Wrapf(ledger.ErrStaleVersion, "record at %d after %d", version, last.Version)
		}
		if version == last.Version {
			last.Value = ledger.Copy(value)
			return nil
		}
	}
	h.checkpoints = append(h.checkpoints, Checkpoint{Version: version, Value: ledger.Copy(value)})
	return nil
}

// ValueAt returns the value of the latest checkpoint at or before version,
// zero if there is none.
func (h *History) ValueAt(version ledger.Version) *uint256.Int {
	// First checkpoint strictly after version.
	i := sort.Search(len(h.checkpoints), func(i int) bool {
		return h.checkpoints[i].Version > version
	})
	if i == 0 {
		return ledger.Zero()
	}
	return ledger.Copy(h.checkpoints[i-1].Value)
}

// Latest returns the value of the last checkpoint, zero if there is none.
func (h *History) Latest() *uint256.Int {
	if len(h.checkpoints) == 0 {
		return ledger.Zero()
	}
	return ledger.Copy(h.checkpoints[len(h.checkpoints)-1].Value)
}

// Len is the number of checkpoints.
func (h *History) Len() int {
	return len(h.checkpoints)
}

// Checkpoints returns a copy of the sequence.
func (h *History) Checkpoints() []Checkpoint {
	res := make([]Checkpoint, len(h.checkpoints))
	for i, c := range h.checkpoints {
		res[i] = Checkpoint{Version: c.Version, Value: ledger.Copy(c.Value)}
	}
	return res
}
