package sign

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantumScale is the venue's fixed-point scale: all signed prices and
// sizes are integers in units of 1e-8.
const QuantumScale = 8

// ToQuantums converts a decimal amount to its fixed-point integer
// form. Values with more than QuantumScale fractional digits are
// rejected rather than rounded, so the conversion round-trips exactly.
func ToQuantums(d decimal.Decimal) (int64, error) {
	if !d.Equal(d.Truncate(QuantumScale)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidOrder, d, QuantumScale)
	}
	scaled := d.Shift(QuantumScale)
	q := scaled.BigInt()
	if !q.IsInt64() {
		return 0, fmt.Errorf("%w: %s overflows the quantum range", ErrInvalidOrder, d)
	}
	return q.Int64(), nil
}

// FromQuantums is the inverse of ToQuantums.
func FromQuantums(q int64) decimal.Decimal {
	return decimal.New(q, -QuantumScale)
}
