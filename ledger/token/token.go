// Package token is the fungible ledger of the instrument. Every balance change
// advances the version counter once and checkpoints the affected histories.
package token

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/access"
	"github.com/RiemaLabs/dividend-ledger/ledger/history"
)

type Metadata struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	BaseCurrency string `json:"baseCurrency"`
}

type Token struct {
	ledger  *history.Ledger
	control *access.Control

	meta       Metadata
	allowances map[ledger.Address]map[ledger.Address]*uint256.Int

	transfersEnabled bool
	transfersPaused  bool
	capitalPaused    bool
}

func New(l *history.Ledger, control *access.Control, meta Metadata) *Token {
	return &Token{
		ledger:     l,
		control:    control,
		meta:       meta,
		allowances: make(map[ledger.Address]map[ledger.Address]*uint256.Int),
	}
}

func (t *Token) Ledger() *history.Ledger { return t.ledger }
func (t *Token) Metadata() Metadata      { return t.meta }

func (t *Token) BalanceOf(account ledger.Address) *uint256.Int {
	return t.ledger.BalanceOf(account)
}

func (t *Token) BalanceOfAt(account ledger.Address, version ledger.Version) *uint256.Int {
	return t.ledger.BalanceAt(account, version)
}

func (t *Token) TotalSupply() *uint256.Int {
	return t.ledger.TotalSupply()
}

func (t *Token) TotalSupplyAt(version ledger.Version) *uint256.Int {
	return t.ledger.TotalSupplyAt(version)
}

func (t *Token) TransfersEnabled() bool { return t.transfersEnabled }
func (t *Token) TransfersPaused() bool  { return t.transfersPaused }
func (t *Token) CapitalPaused() bool    { return t.capitalPaused }

func (t *Token) canChangeCapital(caller, account ledger.Address, amount *uint256.Int) error {
	if err := t.control.CanMint(caller); err != nil {
		return err
	}
	if t.capitalPaused {
		return ledger.ErrCapitalPaused
	}
	if account.IsZero() {
		return ledger.ErrZeroAddress
	}
	if amount.IsZero() {
		return ledger.ErrZeroAmount
	}
	return nil
}

// Mint creates amount units for to and returns the version it was committed at.
func (t *Token) Mint(caller, to ledger.Address, amount *uint256.Int) (ledger.Version, error) {
	if err := t.canChangeCapital(caller, to, amount); err != nil {
		return 0, errors.Wrap(err, "mint")
	}
	supply, err := ledger.Add(t.ledger.TotalSupply(), amount)
	if err != nil {
		return 0, errors.Wrap(err, "mint supply")
	}
	balance, err := ledger.Add(t.ledger.BalanceOf(to), amount)
	if err != nil {
		return 0, errors.Wrap(err, "mint balance")
	}
	v := t.ledger.Advance()
	if err := t.ledger.Record(to, v, balance); err != nil {
		return 0, err
	}
	return v, t.ledger.RecordAggregate(v, supply)
}

// Burn destroys amount units held by from.
func (t *Token) Burn(caller, from ledger.Address, amount *uint256.Int) (ledger.Version, error) {
	if err := t.canChangeCapital(caller, from, amount); err != nil {
		return 0, errors.Wrap(err, "burn")
	}
	balance := t.ledger.BalanceOf(from)
	if balance.Lt(amount) {
		return 0, errors.Wrapf(ledger.ErrInsufficientBalance, "burn %s from %s holding %s", amount.Dec(), from, balance.Dec())
	}
	balance, _ = ledger.Sub(balance, amount)
	supply, err := ledger.Sub(t.ledger.TotalSupply(), amount)
	if err != nil {
		return 0, errors.Wrap(err, "burn supply")
	}
	v := t.ledger.Advance()
	if err := t.ledger.Record(from, v, balance); err != nil {
		return 0, err
	}
	return v, t.ledger.RecordAggregate(v, supply)
}

func (t *Token) canTransfer(to ledger.Address) error {
	if !t.control.Alive() {
		return ledger.ErrNotAlive
	}
	if !t.transfersEnabled {
		return ledger.ErrTransfersDisabled
	}
	if t.transfersPaused {
		return ledger.ErrTransfersPaused
	}
	if to.IsZero() {
		return ledger.ErrZeroAddress
	}
	return nil
}

func (t *Token) move(from, to ledger.Address, amount *uint256.Int) (ledger.Version, error) {
	fromBalance := t.ledger.BalanceOf(from)
	if fromBalance.Lt(amount) {
		return 0, errors.Wrapf(ledger.ErrInsufficientBalance, "%s holds %s, needs %s", from, fromBalance.Dec(), amount.Dec())
	}
	if from == to {
		v := t.ledger.Advance()
		return v, t.ledger.Record(from, v, fromBalance)
	}
	toBalance, err := ledger.Add(t.ledger.BalanceOf(to), amount)
	if err != nil {
		return 0, err
	}
	fromBalance, _ = ledger.Sub(fromBalance, amount)
	v := t.ledger.Advance()
	if err := t.ledger.Record(from, v, fromBalance); err != nil {
		return 0, err
	}
	return v, t.ledger.Record(to, v, toBalance)
}

func (t *Token) Transfer(from, to ledger.Address, amount *uint256.Int) (ledger.Version, error) {
	if err := t.canTransfer(to); err != nil {
		return 0, errors.Wrap(err, "transfer")
	}
	v, err := t.move(from, to, amount)
	return v, errors.Wrap(err, "transfer")
}

// TransferFrom moves amount out of from on behalf of spender, consuming allowance.
func (t *Token) TransferFrom(spender, from, to ledger.Address, amount *uint256.Int) (ledger.Version, error) {
	if err := t.canTransfer(to); err != nil {
		return 0, errors.Wrap(err, "transferFrom")
	}
	allowance := t.Allowance(from, spender)
	if allowance.Lt(amount) {
		return 0, errors.Wrapf(ledger.ErrInsufficientAllowance, "%s may spend %s of %s", spender, allowance.Dec(), from)
	}
	v, err := t.move(from, to, amount)
	if err != nil {
		return 0, errors.Wrap(err, "transferFrom")
	}
	left, _ := ledger.Sub(allowance, amount)
	t.setAllowance(from, spender, left)
	return v, nil
}

func (t *Token) Allowance(owner, spender ledger.Address) *uint256.Int {
	return ledger.Copy(t.allowances[owner][spender])
}

func (t *Token) setAllowance(owner, spender ledger.Address, amount *uint256.Int) {
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[ledger.Address]*uint256.Int)
		t.allowances[owner] = m
	}
	m[spender] = ledger.Copy(amount)
}

func (t *Token) Approve(owner, spender ledger.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "approve")
	}
	t.setAllowance(owner, spender, amount)
	return nil
}

func (t *Token) IncreaseApproval(owner, spender ledger.Address, added *uint256.Int) error {
	if spender.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "increaseApproval")
	}
	v, err := ledger.Add(t.Allowance(owner, spender), added)
	if err != nil {
		return errors.Wrap(err, "increaseApproval")
	}
	t.setAllowance(owner, spender, v)
	return nil
}

// DecreaseApproval lowers an allowance, clamping at zero.
func (t *Token) DecreaseApproval(owner, spender ledger.Address, subtracted *uint256.Int) error {
	if spender.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "decreaseApproval")
	}
	v, err := ledger.Sub(t.Allowance(owner, spender), subtracted)
	if err != nil {
		v = ledger.Zero()
	}
	t.setAllowance(owner, spender, v)
	return nil
}

func (t *Token) EnableTransfers(caller ledger.Address, enabled bool) error {
	if !t.control.IsOwner(caller) {
		return errors.Wrap(ledger.ErrUnauthorized, "enableTransfers")
	}
	t.transfersEnabled = enabled
	return nil
}

func (t *Token) PauseTransfer(caller ledger.Address, paused bool) error {
	if !t.control.IsPauseControl(caller) {
		return errors.Wrap(ledger.ErrUnauthorized, "pauseTransfer")
	}
	t.transfersPaused = paused
	return nil
}

func (t *Token) PauseCapitalIncreaseOrDecrease(caller ledger.Address, paused bool) error {
	if !t.control.IsPauseControl(caller) {
		return errors.Wrap(ledger.ErrUnauthorized, "pauseCapitalIncreaseOrDecrease")
	}
	t.capitalPaused = paused
	return nil
}

func (t *Token) canEditMetadata(caller ledger.Address) error {
	if !t.control.IsOwner(caller) {
		return ledger.ErrUnauthorized
	}
	if t.control.MintingFinished() {
		return ledger.ErrMintingFinished
	}
	return nil
}

func (t *Token) SetName(caller ledger.Address, name string) error {
	if err := t.canEditMetadata(caller); err != nil {
		return errors.Wrap(err, "setName")
	}
	t.meta.Name = name
	return nil
}

func (t *Token) SetSymbol(caller ledger.Address, symbol string) error {
	if err := t.canEditMetadata(caller); err != nil {
		return errors.Wrap(err, "setSymbol")
	}
	t.meta.Symbol = symbol
	return nil
}

func (t *Token) SetBaseCurrency(caller ledger.Address, currency ledger.Address) error {
	if err := t.canEditMetadata(caller); err != nil {
		return errors.Wrap(err, "setBaseCurrency")
	}
	if currency.IsZero() {
		return errors.Wrap(ledger.ErrZeroAddress, "setBaseCurrency")
	}
	t.meta.BaseCurrency = currency.String()
	return nil
}
