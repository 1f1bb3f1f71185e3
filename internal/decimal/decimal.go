// Package decimal implements the fixed-point numbers used by decimal
// attributes: a (mantissa, scale) pair, compared and equated after aligning
// scales, never arithmetically combined.
package decimal

import (
	"fmt"
	"math"
)

// Decimal is a fixed-point number: value == Mantissa * 10^-Scale.
type Decimal struct {
	Mantissa int64
	Scale    uint32
}

// New builds a Decimal, normalising away trailing zeros of the mantissa
// into the scale so that two decimals with the same value always compare
// equal regardless of how they were constructed.
func New(mantissa int64, scale uint32) Decimal {
	for scale > 0 && mantissa != 0 && mantissa%10 == 0 {
		mantissa /= 10
		scale--
	}
	if mantissa == 0 {
		scale = 0
	}
	return Decimal{Mantissa: mantissa, Scale: scale}
}

// FromInt lifts a plain integer into a decimal with scale 0.
func FromInt(i int64) Decimal {
	return New(i, 0)
}

func pow10(n uint32) int64 {
	r := int64(1)
	for i := uint32(0); i < n; i++ {
		r *= 10
	}
	return r
}

// align returns mantissas for a and b expressed at their common (larger)
// scale, plus an overflow flag set when the shift would exceed int64 range.
func align(a, b Decimal) (am, bm int64, overflowed bool) {
	switch {
	case a.Scale == b.Scale:
		return a.Mantissa, b.Mantissa, false
	case a.Scale < b.Scale:
		delta := b.Scale - a.Scale
		shifted := a.Mantissa * pow10(delta)
		if delta > 18 || (a.Mantissa != 0 && shifted/pow10(delta) != a.Mantissa) {
			return 0, 0, true
		}
		return shifted, b.Mantissa, false
	default:
		delta := a.Scale - b.Scale
		shifted := b.Mantissa * pow10(delta)
		if delta > 18 || (b.Mantissa != 0 && shifted/pow10(delta) != b.Mantissa) {
			return 0, 0, true
		}
		return a.Mantissa, shifted, false
	}
}

// Compare returns -1, 0, or 1 per the usual convention. On mantissa
// overflow during scale alignment, the comparison falls back to sign
// comparison, per the spec's documented degraded behaviour.
func Compare(a, b Decimal) int {
	am, bm, overflowed := align(a, b)
	if overflowed {
		return signCompare(a, b)
	}
	switch {
	case am < bm:
		return -1
	case am > bm:
		return 1
	default:
		return 0
	}
}

func signOf(d Decimal) int {
	switch {
	case d.Mantissa < 0:
		return -1
	case d.Mantissa > 0:
		return 1
	default:
		return 0
	}
}

func signCompare(a, b Decimal) int {
	sa, sb := signOf(a), signOf(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b denote the same value.
func Equal(a, b Decimal) bool {
	return Compare(a, b) == 0
}

// Float64 renders the decimal as a float64, for display only.
func (d Decimal) Float64() float64 {
	return float64(d.Mantissa) / math.Pow10(int(d.Scale))
}

// String renders the decimal in its fixed-point form, e.g. "75.50".
func (d Decimal) String() string {
	if d.Scale == 0 {
		return fmt.Sprintf("%d", d.Mantissa)
	}
	neg := d.Mantissa < 0
	m := d.Mantissa
	if neg {
		m = -m
	}
	div := pow10(d.Scale)
	intPart := m / div
	fracPart := m % div
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%0*d", sign, intPart, d.Scale, fracPart)
}

// WithScale re-expresses d at the given scale, preserving its value exactly
// when scale >= d.Scale. The result is not normalised, so it can carry
// trailing zeros that New would strip.
func WithScale(d Decimal, scale uint32) Decimal {
	if scale <= d.Scale {
		return d
	}
	delta := scale - d.Scale
	return Decimal{Mantissa: d.Mantissa * pow10(delta), Scale: scale}
}
