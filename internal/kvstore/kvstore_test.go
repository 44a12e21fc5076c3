package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore(t *testing.T) {
	bm, err := NewByteMap(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer bm.Close()

	key := []byte("key1")
	value := []byte("value1")
	require.NoError(t, bm.Insert(key, value))

	retrievedValue, err := bm.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, retrievedValue)

	n, err := bm.Length(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, bm.Delete(key))
	_, err = bm.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
	n, _ = bm.Length(nil)
	assert.Equal(t, 0, n)
}

func TestKVStorePrefixScan(t *testing.T) {
	bm, err := NewByteMap(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer bm.Close()

	for _, k := range []string{"a/1", "a/3", "a/2", "b/9"} {
		require.NoError(t, bm.Insert([]byte(k), []byte("v"+k)))
	}
	keys, err := bm.Keys([]byte("a/"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a/1"), []byte("a/2"), []byte("a/3")}, keys)

	k, v, err := bm.Last([]byte("a/"))
	require.NoError(t, err)
	assert.Equal(t, "a/3", string(k))
	assert.Equal(t, "va/3", string(v))

	_, _, err = bm.Last([]byte("c/"))
	assert.ErrorIs(t, err, ErrNotFound)
}
