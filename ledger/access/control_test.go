package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

const (
	owner    = ledger.Address("0xowner")
	stranger = ledger.Address("0xstranger")
	minter   = ledger.Address("0xminter")
	pauser   = ledger.Address("0xpauser")
	rescuer  = ledger.Address("0xrescuer")
)

func TestNewControlRejectsZeroOwner(t *testing.T) {
	_, err := NewControl(ledger.ZeroAddress)
	assert.ErrorIs(t, err, ledger.ErrZeroAddress)
}

func TestOwnerHoldsEveryRoleInitially(t *testing.T) {
	c, err := NewControl(owner)
	require.NoError(t, err)
	r := c.Roles()
	assert.Equal(t, Roles{owner, owner, owner, owner}, r)
	assert.False(t, c.Alive())
}

func TestSetTokenAliveOnlyOwner(t *testing.T) {
	c, _ := NewControl(owner)
	assert.True(t, ledger.IsPermission(c.SetTokenAlive(stranger)))
	assert.False(t, c.Alive())
	require.NoError(t, c.SetTokenAlive(owner))
	assert.True(t, c.Alive())
}

func TestSetMintControl(t *testing.T) {
	c, _ := NewControl(owner)
	assert.True(t, ledger.IsPermission(c.SetMintControl(stranger, minter)))
	assert.ErrorIs(t, c.SetMintControl(owner, ledger.ZeroAddress), ledger.ErrZeroAddress)
	require.NoError(t, c.SetMintControl(owner, minter))
	assert.True(t, c.IsMintControl(minter))
	assert.False(t, c.IsMintControl(owner))
}

func TestSetRolesOnlyBeforeAlive(t *testing.T) {
	c, _ := NewControl(owner)
	assert.True(t, ledger.IsPermission(c.SetRoles(stranger, pauser, rescuer)))
	require.NoError(t, c.SetRoles(owner, pauser, rescuer))
	assert.Equal(t, pauser, c.Roles().PauseControl)
	assert.Equal(t, rescuer, c.Roles().RescueControl)

	require.NoError(t, c.SetTokenAlive(owner))
	assert.ErrorIs(t, c.SetRoles(owner, stranger, stranger), ledger.ErrAlreadyAlive)
	assert.Equal(t, pauser, c.Roles().PauseControl)
}

func TestFinishMinting(t *testing.T) {
	c, _ := NewControl(owner)
	require.NoError(t, c.SetMintControl(owner, minter))
	assert.ErrorIs(t, c.FinishMinting(owner), ledger.ErrNotAlive)
	assert.ErrorIs(t, c.CanMint(minter), ledger.ErrNotAlive)

	require.NoError(t, c.SetTokenAlive(owner))
	require.NoError(t, c.CanMint(minter))
	assert.True(t, ledger.IsPermission(c.CanMint(owner)))

	assert.True(t, ledger.IsPermission(c.FinishMinting(minter)))
	require.NoError(t, c.FinishMinting(owner))
	assert.ErrorIs(t, c.CanMint(minter), ledger.ErrMintingFinished)
}

func TestDividendPolicy(t *testing.T) {
	c, _ := NewControl(owner)
	assert.ErrorIs(t, c.CanDeclare(owner), ledger.ErrNotAlive)
	require.NoError(t, c.SetTokenAlive(owner))
	require.NoError(t, c.CanDeclare(owner))
	assert.True(t, ledger.IsPermission(c.CanDeclare(stranger)))
	require.NoError(t, c.CanRecycle(owner))
	assert.True(t, ledger.IsPermission(c.CanRecycle(stranger)))
	assert.Equal(t, owner, c.RecycleRecipient())
}

func TestExportImport(t *testing.T) {
	c, _ := NewControl(owner)
	require.NoError(t, c.SetMintControl(owner, minter))
	require.NoError(t, c.SetTokenAlive(owner))

	restored, err := Import(c.Export())
	require.NoError(t, err)
	assert.Equal(t, c.Export(), restored.Export())

	_, err = Import(State{})
	assert.Error(t, err)
}
