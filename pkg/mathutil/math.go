package mathutil

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// Precision is the number of decimal places of a whole unit of any asset.
	Precision = 8
	// BasisPointsDenominator is 100%, expressed in basis points.
	BasisPointsDenominator = 10000
)

var (
	//BigOne represents a single unit of an asset with precision 8
	BigOne = uint64(math.Pow10(Precision))
	//BigOneDecimal represents a single unit of an asset with precision 8 as decimal.Decimal
	BigOneDecimal = decimal.NewFromInt(int64(BigOne))

	// ErrOverflow is returned when the result of an operation does not fit
	// into an uint64.
	ErrOverflow = errors.New("amount overflows uint64")
	// ErrInvalidAmount is returned when a decimal amount cannot be expressed
	// in units.
	ErrInvalidAmount = errors.New("amount must be a positive number with at most 8 decimals")
)

// MulDiv returns floor(x * y / z) computed without intermediate overflow.
// It panics if z is zero.
func MulDiv(x, y, z uint64) uint64 {
	X := new(big.Int).SetUint64(x)
	Y := new(big.Int).SetUint64(y)
	Z := new(big.Int).SetUint64(z)
	return new(big.Int).Div(new(big.Int).Mul(X, Y), Z).Uint64()
}

// BasisPoints returns floor(amount * bps / 10000).
func BasisPoints(amount, bps uint64) uint64 {
	return MulDiv(amount, bps, BasisPointsDenominator)
}

// SafeAdd returns x + y or ErrOverflow.
func SafeAdd(x, y uint64) (uint64, error) {
	z := x + y
	if z < x {
		return 0, ErrOverflow
	}
	return z, nil
}

// SaturatingAdd returns x + y, capped at math.MaxUint64.
func SaturatingAdd(x, y uint64) uint64 {
	z, err := SafeAdd(x, y)
	if err != nil {
		return math.MaxUint64
	}
	return z
}

// ToUnits converts a decimal amount of whole units (ie. "1.5") into the
// corresponding integer amount of units with precision 8.
func ToUnits(amount string) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	units := d.Mul(BigOneDecimal)
	if !units.Equal(units.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	if units.GreaterThan(decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)) {
		return 0, ErrOverflow
	}
	return units.BigInt().Uint64(), nil
}

// FromUnits formats an integer amount of units as a decimal amount of whole
// units.
func FromUnits(units uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -Precision).String()
}

// BasisPointsToPercentage returns the percentage represented by the given
// basis points, ie. 30 -> "0.3".
func BasisPointsToPercentage(bps uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(bps), -2).String()
}
