// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity is a fixed-point production quantity with 4 decimal places.
//
// Rationale:
// - Matches Postgres NUMERIC(15,4) semantics without floating point errors
// - Stored as BIGINT in DB (scaled integer)
// - JSON remains a plain number with up to 4 decimals
type Quantity int64

const QuantityScale int64 = 10_000

// NewQuantityFromFloat64 converts a float to fixed-point through decimal
// arithmetic, rounding half away from zero at the fourth decimal.
func NewQuantityFromFloat64(v float64) Quantity {
	return NewQuantityFromDecimal(decimal.NewFromFloat(v))
}

// NewQuantityFromDecimal converts an exact decimal value to fixed-point.
func NewQuantityFromDecimal(d decimal.Decimal) Quantity {
	return Quantity(d.Mul(decimal.NewFromInt(QuantityScale)).Round(0).IntPart())
}

func NewQuantityFromInt64Scaled(v int64) Quantity { return Quantity(v) }

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal returns the exact decimal representation.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(q)).Div(decimal.NewFromInt(QuantityScale))
}

// String renders the quantity without trailing zeros, e.g. "100.5".
func (q Quantity) String() string {
	return q.Decimal().String()
}

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Add(other Quantity) Quantity { return q + other }

// SumQuantities adds float quantities through decimal arithmetic so display
// totals do not accumulate binary floating point noise.
func SumQuantities(values []float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	f, _ := sum.Float64()
	return f
}
