package history

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestHistoryValueAt(t *testing.T) {
	var h History
	assert.True(t, h.ValueAt(0).IsZero())
	assert.True(t, h.Latest().IsZero())

	require.NoError(t, h.Record(2, u(100)))
	require.NoError(t, h.Record(5, u(50)))
	require.NoError(t, h.Record(9, u(10)))

	expected := map[ledger.Version]uint64{0: 0, 1: 0, 2: 100, 3: 100, 4: 100, 5: 50, 8: 50, 9: 10, 1000: 10}
	for v, want := range expected {
		assert.Equal(t, want, h.ValueAt(v).Uint64(), "version %d", v)
	}
	assert.Equal(t, uint64(10), h.Latest().Uint64())
}

func TestHistorySameVersionOverwrites(t *testing.T) {
	var h History
	require.NoError(t, h.Record(3, u(1)))
	require.NoError(t, h.Record(3, u(7)))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, uint64(7), h.ValueAt(3).Uint64())
}

func TestHistoryRejectsStaleVersion(t *testing.T) {
	var h History
	require.NoError(t, h.Record(4, u(1)))
	err := h.Record(3, u(2))
	require.ErrorIs(t, err, ledger.ErrStaleVersion)
	assert.Equal(t, uint64(1), h.Latest().Uint64())
}

func TestHistoryCopiesValues(t *testing.T) {
	var h History
	v := u(5)
	require.NoError(t, h.Record(1, v))
	v.SetUint64(99)
	got := h.ValueAt(1)
	assert.Equal(t, uint64(5), got.Uint64())
	got.SetUint64(42)
	assert.Equal(t, uint64(5), h.Latest().Uint64())
}

func TestLedgerVersioning(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, ledger.Version(0), l.Version())

	err := l.Record("0xa", 1, u(1))
	assert.True(t, ledger.IsNotFound(err))

	v := l.Advance()
	require.NoError(t, l.Record("0xa", v, u(100)))
	require.NoError(t, l.RecordAggregate(v, u(100)))

	assert.Equal(t, uint64(100), l.BalanceOf("0xa").Uint64())
	assert.True(t, l.BalanceAt("0xa", 0).IsZero())
	assert.True(t, l.BalanceAt("0xb", v).IsZero())
	assert.Equal(t, uint64(100), l.TotalSupplyAt(v).Uint64())
	assert.True(t, l.TotalSupplyAt(0).IsZero())
	assert.Nil(t, l.Checkpoints("0xb"))
}

// A holder moves balance around many times; every historical read stays put.
func TestLedgerHistoryStableUnderLaterTransfers(t *testing.T) {
	l := NewLedger()
	a, b := ledger.Address("0xa"), ledger.Address("0xb")

	v := l.Advance()
	require.NoError(t, l.Record(a, v, u(100)))
	require.NoError(t, l.RecordAggregate(v, u(100)))

	balances := map[ledger.Version][2]uint64{v: {100, 0}}
	ba, bb := uint64(100), uint64(0)
	for _, amt := range []uint64{50, 20, 10, 10} {
		ba -= amt
		bb += amt
		v = l.Advance()
		require.NoError(t, l.Record(a, v, u(ba)))
		require.NoError(t, l.Record(b, v, u(bb)))
		balances[v] = [2]uint64{ba, bb}
	}

	for version, want := range balances {
		assert.Equal(t, want[0], l.BalanceAt(a, version).Uint64(), "a at %d", version)
		assert.Equal(t, want[1], l.BalanceAt(b, version).Uint64(), "b at %d", version)
		sum := new(uint256.Int).Add(l.BalanceAt(a, version), l.BalanceAt(b, version))
		assert.True(t, sum.Eq(l.TotalSupplyAt(version)))
	}
	assert.Equal(t, []ledger.Address{a, b}, l.Accounts())
}

func TestLedgerSnapshotRoundTrip(t *testing.T) {
	l := NewLedger()
	v := l.Advance()
	require.NoError(t, l.Record("0xa", v, u(3)))
	require.NoError(t, l.RecordAggregate(v, u(3)))
	v = l.Advance()
	require.NoError(t, l.Record("0xa", v, u(1)))
	require.NoError(t, l.Record("0xb", v, u(2)))

	raw, err := json.Marshal(l.Export())
	require.NoError(t, err)
	var s Snapshot
	require.NoError(t, json.Unmarshal(raw, &s))

	restored, err := Import(s)
	require.NoError(t, err)
	assert.Equal(t, l.Version(), restored.Version())
	assert.Equal(t, l.Checkpoints("0xa"), restored.Checkpoints("0xa"))
	assert.Equal(t, l.AggregateCheckpoints(), restored.AggregateCheckpoints())
	assert.Equal(t, uint64(3), restored.BalanceAt("0xa", 1).Uint64())
}

func TestImportRejectsFutureVersion(t *testing.T) {
	s := Snapshot{
		Version:  1,
		Accounts: map[ledger.Address][]CheckpointJSON{"0xa": {{Version: 2, Value: "1"}}},
	}
	_, err := Import(s)
	assert.Error(t, err)
}
