// Package access holds the roles and lifecycle flags of an instrument.
package access

import (
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

type Roles struct {
	Owner         ledger.Address
	MintControl   ledger.Address
	PauseControl  ledger.Address
	RescueControl ledger.Address
}

// Control gates privileged operations. The owner starts out holding every role.
type Control struct {
	roles           Roles
	alive           bool
	mintingFinished bool
}

func NewControl(owner ledger.Address) (*Control, error) {
	if owner.IsZero() {
		return nil, errors.Wrap(ledger.ErrZeroAddress, "owner")
	}
	return &Control{roles: Roles{
		Owner:         owner,
		MintControl:   owner,
		PauseControl:  owner,
		RescueControl: owner,
	}}, nil
}

func (c *Control) Roles() Roles          { return c.roles }
func (c *Control) Owner() ledger.Address { return c.roles.Owner }
func (c *Control) Alive() bool           { return c.alive }
func (c *Control) MintingFinished() bool { return c.mintingFinished }

func (c *Control) IsOwner(a ledger.Address) bool        { return a == c.roles.Owner }
func (c *Control) IsMintControl(a ledger.Address) bool  { return a == c.roles.MintControl }
func (c *Control) IsPauseControl(a ledger.Address) bool { return a == c.roles.PauseControl }

func (c *Control) onlyOwner(caller ledger.Address) error {
	if !c.IsOwner(caller) {
		return errors.Wrapf(ledger.ErrUnauthorized, "%s is not the owner", caller)
	}
	return nil
}

// SetMintControl hands the mint role to a new, non-zero address.
func (c *Control) SetMintControl(caller, mintControl ledger.Address) error {
	if err := c.onlyOwner(caller); err != nil {
		return err
	}
	if mintControl.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "mint control")
	}
	c.roles.MintControl = mintControl
	return nil
}

// SetRoles assigns pause and rescue control. Only possible before the token
// goes alive.
func (c *Control) SetRoles(caller, pauseControl, rescueControl ledger.Address) error {
	if err := c.onlyOwner(caller); err != nil {
		return err
	}
	if c.alive {
		return ledger.ErrAlreadyAlive
	}
	if pauseControl.IsZero() || rescueControl.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "roles")
	}
	c.roles.PauseControl = pauseControl
	c.roles.RescueControl = rescueControl
	return nil
}

func (c *Control) SetTokenAlive(caller ledger.Address) error {
	if err := c.onlyOwner(caller); err != nil {
		return err
	}
	c.alive = true
	return nil
}

func (c *Control) FinishMinting(caller ledger.Address) error {
	if err := c.onlyOwner(caller); err != nil {
		return err
	}
	if !c.alive {
		return ledger.ErrNotAlive
	}
	c.mintingFinished = true
	return nil
}

// CanMint reports whether caller may change the supply right now.
func (c *Control) CanMint(caller ledger.Address) error {
	if !c.IsMintControl(caller) {
		return errors.Wrapf(ledger.ErrUnauthorized, "%s is not the mint control", caller)
	}
	if !c.alive {
		return ledger.ErrNotAlive
	}
	if c.mintingFinished {
		return ledger.ErrMintingFinished
	}
	return nil
}

// CanDeclare lets the owner of a live token declare payouts.
func (c *Control) CanDeclare(caller ledger.Address) error {
	if err := c.onlyOwner(caller); err != nil {
		return err
	}
	if !c.alive {
		return ledger.ErrNotAlive
	}
	return nil
}

func (c *Control) CanRecycle(caller ledger.Address) error {
	return c.onlyOwner(caller)
}

// RecycleRecipient receives unclaimed payout funds.
func (c *Control) RecycleRecipient() ledger.Address {
	return c.roles.Owner
}

type State struct {
	Roles           Roles `json:"roles"`
	Alive           bool  `json:"alive"`
	MintingFinished bool  `json:"mintingFinished"`
}

func (c *Control) Export() State {
	return State{Roles: c.roles, Alive: c.alive, MintingFinished: c.mintingFinished}
}

func Import(s State) (*Control, error) {
	if s.Roles.Owner.IsZero() {
		return nil, errors.Wrap(ledger.ErrZeroAddress, "owner")
	}
	return &Control{roles: s.Roles, alive: s.Alive, mintingFinished: s.MintingFinished}, nil
}
