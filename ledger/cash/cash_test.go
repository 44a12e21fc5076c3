package cash

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

func TestDepositTransferWithdraw(t *testing.T) {
	c := New()
	require.NoError(t, c.Deposit("0xa", uint256.NewInt(10)))
	assert.ErrorIs(t, c.Deposit(ledger.ZeroAddress, uint256.NewInt(1)), ledger.ErrZeroAddress)

	err := c.Transfer("0xa", "0xb", uint256.NewInt(11))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, uint64(10), c.BalanceOf("0xa").Uint64())

	require.NoError(t, c.Transfer("0xa", "0xb", uint256.NewInt(4)))
	require.NoError(t, c.Transfer("0xa", "0xa", uint256.NewInt(6)))
	assert.Equal(t, uint64(6), c.BalanceOf("0xa").Uint64())
	assert.Equal(t, uint64(4), c.BalanceOf("0xb").Uint64())

	assert.ErrorIs(t, c.Withdraw("0xb", uint256.NewInt(5)), ledger.ErrInsufficientFunds)
	require.NoError(t, c.Withdraw("0xb", uint256.NewInt(4)))
	assert.Equal(t, []ledger.Address{"0xa"}, c.Accounts())
}

func TestDepositOverflow(t *testing.T) {
	c := New()
	require.NoError(t, c.Deposit("0xa", new(uint256.Int).SetAllOne()))
	err := c.Deposit("0xa", uint256.NewInt(1))
	assert.True(t, ledger.IsArithmetic(err))
}

func TestExportImport(t *testing.T) {
	c := New()
	require.NoError(t, c.Deposit("0xa", uint256.NewInt(7)))
	restored, err := Import(c.Export())
	require.NoError(t, err)
	assert.Equal(t, c.Export(), restored.Export())

	_, err = Import(map[ledger.Address]string{"0xa": "x"})
	assert.Error(t, err)
}
