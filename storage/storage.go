package storage

import (
	"encoding/binary"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/internal/kvstore"
	"github.com/RiemaLabs/dividend-ledger/ledger/state"
)

const CachePath = ".cache"

var snapshotPrefix = []byte("snapshot/")

func snapshotKey(height uint) []byte {
	key := make([]byte, len(snapshotPrefix)+8)
	copy(key, snapshotPrefix)
	binary.BigEndian.PutUint64(key[len(snapshotPrefix):], uint64(height))
	return key
}

func heightOf(key []byte) uint {
	return uint(binary.BigEndian.Uint64(key[len(snapshotPrefix):]))
}

// Store keeps serialized states in LevelDB keyed by source height.
type Store struct {
	kv *kvstore.ByteMap
}

func Open(path string) (*Store, error) {
	kv, err := kvstore.NewByteMap(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open store at %s", path)
	}
	return &Store{kv: kv}, nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// StoreState writes st at its height and drops snapshots below evictHeight.
// The caller holds at least a read lock on st.
func (s *Store) StoreState(st *state.State, evictHeight uint) error {
	raw, err := st.Serialize()
	if err != nil {
		return err
	}
	if err := s.kv.Insert(snapshotKey(st.Height), raw); err != nil {
		return err
	}
	log.Printf("Stored state at height %d", st.Height)
	return s.Evict(evictHeight)
}

// Evict removes every snapshot below height.
func (s *Store) Evict(height uint) error {
	keys, err := s.kv.Keys(snapshotPrefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if h := heightOf(k); h < height {
			if err := s.kv.Delete(k); err != nil {
				log.Printf("Failed to remove snapshot at height %d, err: %v", h, err)
			} else {
				log.Debugf("Removed snapshot at height %d", h)
			}
		}
	}
	return nil
}

func (s *Store) Heights() ([]uint, error) {
	keys, err := s.kv.Keys(snapshotPrefix)
	if err != nil {
		return nil, err
	}
	heights := make([]uint, len(keys))
	for i, k := range keys {
		heights[i] = heightOf(k)
	}
	return heights, nil
}

// LoadLatest restores the highest stored snapshot, or returns
// kvstore.ErrNotFound when there is none.
func (s *Store) LoadLatest(config state.Config) (*state.State, error) {
	k, raw, err := s.kv.Last(snapshotPrefix)
	if err != nil {
		return nil, err
	}
	st, err := state.Deserialize(config, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot at height %d", heightOf(k))
	}
	return st, nil
}

// LoadState returns the latest cached state when the cache is enabled and
// usable, otherwise a fresh state at height zero.
func LoadState(store *Store, config state.Config) (*state.State, error) {
	if store != nil {
		st, err := store.LoadLatest(config)
		if err == nil {
			log.Printf("Recovered from cache at height %d", st.Height)
			return st, nil
		}
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("Ignoring unusable cache: %v", err)
		}
	}
	return state.New(config)
}
