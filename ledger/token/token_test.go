package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/access"
	"github.com/RiemaLabs/dividend-ledger/ledger/history"
)

const (
	owner  = ledger.Address("0xowner")
	minter = ledger.Address("0xminter")
	pauser = ledger.Address("0xpauser")
	alice  = ledger.Address("0xalice")
	bob    = ledger.Address("0xbob")
	carol  = ledger.Address("0xcarol")
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func newToken(t *testing.T) *Token {
	t.Helper()
	c, err := access.NewControl(owner)
	require.NoError(t, err)
	require.NoError(t, c.SetMintControl(owner, minter))
	require.NoError(t, c.SetRoles(owner, pauser, owner))
	require.NoError(t, c.SetTokenAlive(owner))
	return New(history.NewLedger(), c, Metadata{Name: "Equity", Symbol: "EQT"})
}

func newTradingToken(t *testing.T) *Token {
	t.Helper()
	tk := newToken(t)
	require.NoError(t, tk.EnableTransfers(owner, true))
	return tk
}

func TestMintGating(t *testing.T) {
	c, _ := access.NewControl(owner)
	require.NoError(t, c.SetMintControl(owner, minter))
	tk := New(history.NewLedger(), c, Metadata{})

	_, err := tk.Mint(minter, alice, u(10))
	assert.ErrorIs(t, err, ledger.ErrNotAlive)

	require.NoError(t, c.SetTokenAlive(owner))
	_, err = tk.Mint(owner, alice, u(10))
	assert.True(t, ledger.IsPermission(err))
	_, err = tk.Mint(minter, ledger.ZeroAddress, u(10))
	assert.ErrorIs(t, err, ledger.ErrZeroAddress)
	_, err = tk.Mint(minter, alice, u(0))
	assert.ErrorIs(t, err, ledger.ErrZeroAmount)

	v, err := tk.Mint(minter, alice, u(10))
	require.NoError(t, err)
	assert.Equal(t, ledger.Version(1), v)
	assert.Equal(t, uint64(10), tk.BalanceOf(alice).Uint64())
	assert.Equal(t, uint64(10), tk.TotalSupply().Uint64())

	require.NoError(t, c.FinishMinting(owner))
	_, err = tk.Mint(minter, alice, u(10))
	assert.ErrorIs(t, err, ledger.ErrMintingFinished)
	assert.Equal(t, ledger.Version(1), tk.Ledger().Version())
}

func TestTotalSupplyAt(t *testing.T) {
	tk := newToken(t)
	assert.True(t, tk.TotalSupplyAt(0).IsZero())
	for i := 0; i < 5; i++ {
		_, err := tk.Mint(minter, alice, u(10))
		require.NoError(t, err)
	}
	for v := ledger.Version(0); v <= 5; v++ {
		assert.Equal(t, 10*v, tk.TotalSupplyAt(v).Uint64())
	}
}

func TestBalanceOfAtAcrossTransfers(t *testing.T) {
	tk := newTradingToken(t)
	_, err := tk.Mint(minter, alice, u(100))
	require.NoError(t, err)

	versions := []ledger.Version{tk.Ledger().Version()}
	for _, amt := range []uint64{50, 20, 10, 10} {
		v, err := tk.Transfer(alice, bob, u(amt))
		require.NoError(t, err)
		versions = append(versions, v)
	}

	expected := []uint64{100, 50, 30, 20, 10}
	for i, v := range versions {
		assert.Equal(t, expected[i], tk.BalanceOfAt(alice, v).Uint64(), "alice at %d", v)
		assert.Equal(t, 100-expected[i], tk.BalanceOfAt(bob, v).Uint64(), "bob at %d", v)
	}
	assert.Equal(t, uint64(100), tk.TotalSupplyAt(versions[len(versions)-1]).Uint64())
}

func TestTransferGating(t *testing.T) {
	tk := newToken(t)
	_, err := tk.Mint(minter, alice, u(100))
	require.NoError(t, err)

	_, err = tk.Transfer(alice, bob, u(1))
	assert.ErrorIs(t, err, ledger.ErrTransfersDisabled)

	assert.True(t, ledger.IsPermission(tk.EnableTransfers(alice, true)))
	require.NoError(t, tk.EnableTransfers(owner, true))

	_, err = tk.Transfer(alice, bob, u(101))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	_, err = tk.Transfer(alice, ledger.ZeroAddress, u(1))
	assert.ErrorIs(t, err, ledger.ErrZeroAddress)

	assert.True(t, ledger.IsPermission(tk.PauseTransfer(owner, true)))
	require.NoError(t, tk.PauseTransfer(pauser, true))
	_, err = tk.Transfer(alice, bob, u(1))
	assert.ErrorIs(t, err, ledger.ErrTransfersPaused)
	require.NoError(t, tk.PauseTransfer(pauser, false))

	_, err = tk.Transfer(alice, bob, u(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(99), tk.BalanceOf(alice).Uint64())
}

func TestSelfTransferKeepsBalance(t *testing.T) {
	tk := newTradingToken(t)
	_, err := tk.Mint(minter, alice, u(10))
	require.NoError(t, err)
	v, err := tk.Transfer(alice, alice, u(7))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), tk.BalanceOfAt(alice, v).Uint64())
}

func TestApprovalAndTransferFrom(t *testing.T) {
	tk := newTradingToken(t)
	_, err := tk.Mint(minter, alice, u(100))
	require.NoError(t, err)

	require.NoError(t, tk.Approve(alice, bob, u(30)))
	assert.Equal(t, uint64(30), tk.Allowance(alice, bob).Uint64())
	assert.ErrorIs(t, tk.Approve(alice, ledger.ZeroAddress, u(1)), ledger.ErrZeroAddress)

	_, err = tk.TransferFrom(bob, alice, carol, u(31))
	assert.ErrorIs(t, err, ledger.ErrInsufficientAllowance)

	_, err = tk.TransferFrom(bob, alice, carol, u(20))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), tk.Allowance(alice, bob).Uint64())
	assert.Equal(t, uint64(20), tk.BalanceOf(carol).Uint64())
	assert.Equal(t, uint64(80), tk.BalanceOf(alice).Uint64())

	require.NoError(t, tk.IncreaseApproval(alice, bob, u(5)))
	assert.Equal(t, uint64(15), tk.Allowance(alice, bob).Uint64())
	require.NoError(t, tk.DecreaseApproval(alice, bob, u(4)))
	assert.Equal(t, uint64(11), tk.Allowance(alice, bob).Uint64())
	require.NoError(t, tk.DecreaseApproval(alice, bob, u(100)))
	assert.True(t, tk.Allowance(alice, bob).IsZero())
}

func TestTransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	tk := newTradingToken(t)
	_, err := tk.Mint(minter, alice, u(5))
	require.NoError(t, err)
	require.NoError(t, tk.Approve(alice, bob, u(50)))
	_, err = tk.TransferFrom(bob, alice, carol, u(10))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, uint64(50), tk.Allowance(alice, bob).Uint64())
}

func TestBurnAndCapitalPause(t *testing.T) {
	tk := newToken(t)
	_, err := tk.Mint(minter, alice, u(100))
	require.NoError(t, err)

	require.NoError(t, tk.PauseCapitalIncreaseOrDecrease(pauser, true))
	_, err = tk.Mint(minter, alice, u(1))
	assert.ErrorIs(t, err, ledger.ErrCapitalPaused)
	_, err = tk.Burn(minter, alice, u(1))
	assert.ErrorIs(t, err, ledger.ErrCapitalPaused)
	require.NoError(t, tk.PauseCapitalIncreaseOrDecrease(pauser, false))

	_, err = tk.Burn(minter, alice, u(101))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	v, err := tk.Burn(minter, alice, u(40))
	require.NoError(t, err)
	assert.Equal(t, uint64(60), tk.BalanceOfAt(alice, v).Uint64())
	assert.Equal(t, uint64(60), tk.TotalSupplyAt(v).Uint64())
	assert.Equal(t, uint64(100), tk.TotalSupplyAt(v-1).Uint64())
}

func TestMetadata(t *testing.T) {
	tk := newToken(t)
	assert.True(t, ledger.IsPermission(tk.SetName(alice, "x")))
	require.NoError(t, tk.SetName(owner, "Shares"))
	require.NoError(t, tk.SetSymbol(owner, "SHR"))
	require.NoError(t, tk.SetBaseCurrency(owner, "0xusd"))
	assert.ErrorIs(t, tk.SetBaseCurrency(owner, ledger.ZeroAddress), ledger.ErrZeroAddress)
	assert.Equal(t, Metadata{Name: "Shares", Symbol: "SHR", BaseCurrency: "0xusd"}, tk.Metadata())
}

func TestMetadataFrozenAfterMintingFinished(t *testing.T) {
	c, _ := access.NewControl(owner)
	require.NoError(t, c.SetTokenAlive(owner))
	tk := New(history.NewLedger(), c, Metadata{})
	require.NoError(t, c.FinishMinting(owner))
	assert.ErrorIs(t, tk.SetSymbol(owner, "X"), ledger.ErrMintingFinished)
}

func TestSnapshotRoundTrip(t *testing.T) {
	tk := newTradingToken(t)
	require.NoError(t, tk.Approve(alice, bob, u(9)))
	require.NoError(t, tk.PauseCapitalIncreaseOrDecrease(pauser, true))

	restored, err := Import(tk.Ledger(), nil, tk.Export())
	require.NoError(t, err)
	assert.Equal(t, tk.Export(), restored.Export())
	assert.Equal(t, uint64(9), restored.Allowance(alice, bob).Uint64())
	assert.True(t, restored.CapitalPaused())
}
