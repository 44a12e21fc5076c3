package ledger

import "strings"

// Address identifies a holder, a role or the custody of a component.
type Address string

// ZeroAddress is never a valid recipient.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// Version is the ledger counter, advanced once per balance-affecting event.
type Version = uint64

// NewAddress normalises the textual form of an address.
func NewAddress(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}
