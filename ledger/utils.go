package ledger

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Decimals of the payout currency and of the instrument.
const Decimals = 18

var (
	zero = uint256.NewInt(0)
	ten  = uint256.NewInt(10)
)

// Zero returns a fresh zero value.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

func Copy(v *uint256.Int) *uint256.Int {
	if v == nil {
		return Zero()
	}
	return new(uint256.Int).Set(v)
}

// Add returns a+b or ErrOverflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Sub returns a-b or ErrUnderflow.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrUnderflow
	}
	return z, nil
}

// MulDiv returns floor(x*y/d). The product is kept at 512 bits so only a
// quotient that does not fit 256 bits overflows.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// ShareOf is the floor of amount*balance/supply.
func ShareOf(amount, balance, supply *uint256.Int) (*uint256.Int, error) {
	if supply.IsZero() {
		return nil, ErrDivisionByZero
	}
	if balance.IsZero() || amount.IsZero() {
		return Zero(), nil
	}
	return MulDiv(amount, balance, supply)
}

// ParseAmount parses a non-negative decimal integer in base units.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero(), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q: %v", s, err)
	}
	return v, nil
}

// ParseUnits parses a decimal string such as "0.25" and scales it by
// 10^decimals. More fractional digits than decimals is an error.
func ParseUnits(s string, decimals uint64) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if !isPositiveNumberWithDot(s) {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if uint64(len(frac)) > decimals {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimals", s, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))
	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return Zero(), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, errors.Wrapf(ErrOverflow, "%q", s)
	}
	return v, nil
}

// FormatUnits renders v scaled down by 10^decimals, trimming trailing zeros.
func FormatUnits(v *uint256.Int, decimals uint64) string {
	scale := new(uint256.Int).Exp(ten, uint256.NewInt(decimals))
	q, r := new(uint256.Int).DivMod(v, scale, new(uint256.Int))
	if r.Eq(zero) {
		return q.Dec()
	}
	frac := r.Dec()
	frac = strings.Repeat("0", int(decimals)-len(frac)) + frac
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}

func isPositiveNumberWithDot(s string) bool {
	if len(s) == 0 || s[0] == '.' || s[len(s)-1] == '.' {
		return false
	}
	dotFound := false
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			if ch != '.' || dotFound {
				return false
			}
			dotFound = true
		}
	}
	return true
}
