package kvstore

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrNotFound = errors.New("key not found")

type ByteMap struct {
	db *leveldb.DB
}

func NewByteMap(dbPath string) (*ByteMap, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, err
	}
	return &ByteMap{
		db: db,
	}, nil
}

func (bm *ByteMap) Get(key []byte) ([]byte, error) {
	value, err := bm.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "key: %x", key)
		}
		return nil, err
	}
	return value, nil
}

// Insert adds or updates a key-value pair in the map.
func (bm *ByteMap) Insert(key []byte, value []byte) error {
	return bm.db.Put(key, value, nil)
}

func (bm *ByteMap) Delete(key []byte) error {
	return bm.db.Delete(key, nil)
}

// Keys returns every key with the given prefix in ascending order.
func (bm *ByteMap) Keys(prefix []byte) ([][]byte, error) {
	iter := bm.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	var keys [][]byte
	for iter.Next() {
		k := make([]byte, len(iter.Key()))
		copy(k, iter.Key())
		keys = append(keys, k)
	}
	return keys, iter.Error()
}

// Last returns the greatest key with the given prefix and its value.
func (bm *ByteMap) Last(prefix []byte) ([]byte, []byte, error) {
	iter := bm.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrNotFound
	}
	k := append([]byte(nil), iter.Key()...)
	v := append([]byte(nil), iter.Value()...)
	return k, v, nil
}

// Length returns the number of keys with the given prefix.
func (bm *ByteMap) Length(prefix []byte) (int, error) {
	keys, err := bm.Keys(prefix)
	return len(keys), err
}

func (bm *ByteMap) Close() error {
	return bm.db.Close()
}
