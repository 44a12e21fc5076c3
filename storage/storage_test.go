package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/getter"
	"github.com/RiemaLabs/dividend-ledger/ledger/state"
)

const owner = ledger.Address("0xowner")

var config = state.Config{Owner: owner, Genesis: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func stateAt(t *testing.T, height uint) *state.State {
	t.Helper()
	st, err := state.New(config)
	require.NoError(t, err)
	st.Apply(height, []getter.Action{
		{Op: getter.OpSetAlive, Caller: owner, Time: config.Genesis},
		{Op: getter.OpMint, Caller: owner, To: "0xalice", Amount: "42", Time: config.Genesis},
	})
	return st
}

func TestStoreAndLoadLatest(t *testing.T) {
	s := openStore(t)
	for _, h := range []uint{5, 10, 15} {
		require.NoError(t, s.StoreState(stateAt(t, h), 0))
	}
	heights, err := s.Heights()
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 10, 15}, heights)

	st, err := s.LoadLatest(config)
	require.NoError(t, err)
	assert.Equal(t, uint(15), st.Height)
	assert.Equal(t, uint64(42), st.Token.BalanceOf("0xalice").Uint64())
}

func TestStoreEvictsOldSnapshots(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.StoreState(stateAt(t, 256), 0))
	require.NoError(t, s.StoreState(stateAt(t, 300), 0))
	require.NoError(t, s.StoreState(stateAt(t, 1000), 300))
	heights, err := s.Heights()
	require.NoError(t, err)
	// Big endian keys keep 256 ordered before 300.
	assert.Equal(t, []uint{300, 1000}, heights)
}

func TestLoadStateFallsBackToFresh(t *testing.T) {
	s := openStore(t)
	st, err := LoadState(s, config)
	require.NoError(t, err)
	assert.Equal(t, uint(0), st.Height)

	st, err = LoadState(nil, config)
	require.NoError(t, err)
	assert.True(t, st.Token.TotalSupply().IsZero())

	require.NoError(t, s.StoreState(stateAt(t, 7), 0))
	st, err = LoadState(s, config)
	require.NoError(t, err)
	assert.Equal(t, uint(7), st.Height)
}
