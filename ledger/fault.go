package ledger

import "github.com/pkg/errors"

// Classes of errors. Every class except ArithmeticError is a precondition
// failure: the action is rejected before any state changes.
type (
	InvalidError    string
	PermissionError string
	NotFoundError   string
	StateError      string
	ArithmeticError string
)

// keep in alphabetic order within a class
var (
	ErrDepositMismatch = InvalidError("attached value does not match the payout amount")
	ErrInvalidAmount   = InvalidError("invalid amount")
	ErrInvalidRange    = InvalidError("invalid payout range")
	ErrStaleVersion    = InvalidError("checkpoint version is older than the last recorded one")
	ErrUnknownOp       = InvalidError("unknown operation")
	ErrZeroAddress     = InvalidError("zero address")
	ErrZeroAmount      = InvalidError("amount must be greater than zero")
	ErrZeroSupply      = InvalidError("total supply is zero")

	ErrUnauthorized = PermissionError("caller is not authorized")

	ErrPayoutIndex = NotFoundError("payout index out of range")
	ErrVersion     = NotFoundError("version is beyond the current version")

	ErrAlreadyClaimed        = StateError("payout already claimed")
	ErrAlreadyRecycled       = StateError("payout already recycled")
	ErrCapitalPaused         = StateError("capital increase or decrease is paused")
	ErrInsufficientAllowance = StateError("insufficient allowance")
	ErrInsufficientBalance   = StateError("insufficient balance")
	ErrInsufficientFunds     = StateError("insufficient funds")
	ErrLocked                = StateError("payout is still locked")
	ErrMintingFinished       = StateError("minting finished")
	ErrNotAlive              = StateError("token is not alive")
	ErrAlreadyAlive          = StateError("token is already alive")
	ErrRecycled              = StateError("payout has been recycled")
	ErrTransfersDisabled     = StateError("transfers are disabled")
	ErrTransfersPaused       = StateError("transfers are paused")

	ErrDivisionByZero = ArithmeticError("division by zero")
	ErrOverflow       = ArithmeticError("arithmetic overflow")
	ErrUnderflow      = ArithmeticError("arithmetic underflow")
)

func (e InvalidError) Error() string    { return string(e) }
func (e PermissionError) Error() string { return string(e) }
func (e NotFoundError) Error() string   { return string(e) }
func (e StateError) Error() string      { return string(e) }
func (e ArithmeticError) Error() string { return string(e) }

// determine the class of an error, looking through wrapping
func IsInvalid(err error) bool    { var e InvalidError; return errors.As(err, &e) }
func IsPermission(err error) bool { var e PermissionError; return errors.As(err, &e) }
func IsNotFound(err error) bool   { var e NotFoundError; return errors.As(err, &e) }
func IsState(err error) bool      { var e StateError; return errors.As(err, &e) }
func IsArithmetic(err error) bool { var e ArithmeticError; return errors.As(err, &e) }

// IsPrecondition reports whether err rejects an action on its inputs or on the
// current state rather than on arithmetic.
func IsPrecondition(err error) bool {
	return IsInvalid(err) || IsPermission(err) || IsNotFound(err) || IsState(err)
}
