package decimal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NormalisesTrailingZeros(t *testing.T) {
	tests := []struct {
		mantissa, scale int64
		wantMantissa    int64
		wantScale       uint32
	}{
		{1500, 2, 15, 0},
		{100, 2, 1, 0},
		{0, 3, 0, 0},
		{125, 2, 125, 2},
	}
	for _, tt := range tests {
		got := New(tt.mantissa, uint32(tt.scale))
		assert.Equal(t, tt.wantMantissa, got.Mantissa)
		assert.Equal(t, tt.wantScale, got.Scale)
	}
}

func TestCompare_AlignsDifferingScales(t *testing.T) {
	a := New(755, 1) // 75.5
	b := New(7550, 2) // 75.50
	assert.Equal(t, 0, Compare(a, b))
	assert.True(t, Equal(a, b))

	c := New(7551, 2) // 75.51
	assert.Equal(t, -1, Compare(a, c))
	assert.Equal(t, 1, Compare(c, a))
}

func TestCompare_OverflowFallsBackToSign(t *testing.T) {
	// A 19-order-of-magnitude scale gap can't be aligned within int64, so
	// Compare must fall back to comparing signs instead of magnitudes:
	// two positive mantissas compare as equal.
	big := Decimal{Mantissa: 1, Scale: 0}
	tiny := Decimal{Mantissa: 1, Scale: 19}

	assert.Equal(t, 0, Compare(big, tiny))
	assert.Equal(t, 0, Compare(tiny, big))

	negBig := Decimal{Mantissa: -1, Scale: 0}
	assert.Equal(t, -1, Compare(negBig, tiny))
}

func TestWithScale_PreservesValue(t *testing.T) {
	d := New(5, 0)
	widened := WithScale(d, 2)
	require.Equal(t, uint32(2), widened.Scale)
	assert.True(t, Equal(d, widened))
}

func TestWithScale_NoopWhenAlreadyWideEnough(t *testing.T) {
	d := New(12345, 3)
	assert.Equal(t, d, WithScale(d, 1))
}

func TestString(t *testing.T) {
	tests := []struct {
		d    Decimal
		want string
	}{
		{New(7550, 2), "75.5"},
		{New(-125, 1), "-12.5"},
		{FromInt(42), "42"},
		{New(5, 2), "0.05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.String())
	}
}

func TestFloat64(t *testing.T) {
	assert.InDelta(t, 75.5, New(755, 1).Float64(), 1e-9)
}
