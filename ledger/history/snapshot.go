package history

import (
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

type CheckpointJSON struct {
	Version ledger.Version `json:"version"`
	Value   string         `json:"value"`
}

type Snapshot struct {
	Version   ledger.Version                      `json:"version"`
	Accounts  map[ledger.Address][]CheckpointJSON `json:"accounts"`
	Aggregate []CheckpointJSON                    `json:"aggregate"`
}

func EncodeCheckpoints(cs []Checkpoint) []CheckpointJSON {
	res := make([]CheckpointJSON, len(cs))
	for i, c := range cs {
		res[i] = CheckpointJSON{Version: c.Version, Value: c.Value.Dec()}
	}
	return res
}

func (l *Ledger) Export() Snapshot {
	s := Snapshot{
		Version:   l.version,
		Accounts:  make(map[ledger.Address][]CheckpointJSON, len(l.accounts)),
		Aggregate: EncodeCheckpoints(l.aggregate.checkpoints),
	}
	for a, h := range l.accounts {
		s.Accounts[a] = EncodeCheckpoints(h.checkpoints)
	}
	return s
}

// Import rebuilds a ledger from a snapshot, validating ordering on the way.
func Import(s Snapshot) (*Ledger, error) {
	l := NewLedger()
	l.version = s.Version
	for a, cs := range s.Accounts {
		for _, c := range cs {
			v, err := ledger.ParseAmount(c.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "account %s", a)
			}
			if err := l.Record(a, c.Version, v); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range s.Aggregate {
		v, err := ledger.ParseAmount(c.Value)
		if err != nil {
			return nil, errors.Wrap(err, "aggregate")
		}
		if err := l.RecordAggregate(c.Version, v); err != nil {
			return nil, err
		}
	}
	return l, nil
}
