package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewQuantityFromFloat64(t *testing.T) {
	assert.Equal(t, Quantity(1005000), NewQuantityFromFloat64(100.5))
	assert.Equal(t, Quantity(1), NewQuantityFromFloat64(0.0001))
	assert.Equal(t, Quantity(-1005000), NewQuantityFromFloat64(-100.5))
	assert.Equal(t, Quantity(0), NewQuantityFromFloat64(0))
}

func TestNewQuantityFromFloat64RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, Quantity(1), NewQuantityFromFloat64(0.00005))
	assert.Equal(t, Quantity(-1), NewQuantityFromFloat64(-0.00005))
	assert.Equal(t, Quantity(0), NewQuantityFromFloat64(0.00004))
}

func TestNewQuantityFromDecimal(t *testing.T) {
	d := decimal.RequireFromString("12.3456")
	assert.Equal(t, Quantity(123456), NewQuantityFromDecimal(d))

	// Digits past the fourth decimal are rounded, not truncated.
	d = decimal.RequireFromString("0.12349")
	assert.Equal(t, Quantity(1235), NewQuantityFromDecimal(d))
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(100.5)
	assert.True(t, q.Decimal().Equal(decimal.RequireFromString("100.5")))
	assert.InDelta(t, 100.5, q.Float64(), 1e-9)
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "100.5", NewQuantityFromFloat64(100.5).String())
	assert.Equal(t, "30", NewQuantityFromFloat64(30).String())
	assert.Equal(t, "0.0001", NewQuantityFromInt64Scaled(1).String())
}

func TestQuantityInt64ScaledRoundTrip(t *testing.T) {
	q := NewQuantityFromInt64Scaled(123456)
	assert.Equal(t, int64(123456), q.Int64Scaled())
	assert.Equal(t, q, NewQuantityFromInt64Scaled(q.Int64Scaled()))
}

func TestQuantityPredicates(t *testing.T) {
	assert.True(t, Quantity(0).IsZero())
	assert.True(t, Quantity(1).IsPositive())
	assert.True(t, Quantity(-1).IsNegative())
	assert.False(t, Quantity(1).IsZero())

	sum := NewQuantityFromFloat64(1.5).Add(NewQuantityFromFloat64(2.25))
	assert.Equal(t, "3.75", sum.String())
}

func TestSumQuantitiesAvoidsFloatDrift(t *testing.T) {
	// Plain float addition gives 0.30000000000000004 here.
	assert.Equal(t, 0.3, SumQuantities([]float64{0.1, 0.2}))
	assert.Equal(t, 601.25, SumQuantities([]float64{100.5, 200.25, 300.5}))
	assert.Equal(t, 0.0, SumQuantities(nil))
}
