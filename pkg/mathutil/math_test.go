package mathutil_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

func TestLessFee(t *testing.T) {
	tests := []struct {
		amount, bps             uint64
		expectedNet, expectedFee uint64
	}{
		{50, 30, 50, 0},
		{100, 30, 100, 0},
		{10000, 30, 9970, 30},
		{3333, 25, 3325, 8},
		{100000000, 500, 95000000, 5000000},
		{math.MaxUint64, 500, math.MaxUint64 - 922337203685477580, 922337203685477580},
		{12345, 0, 12345, 0},
	}

	for _, tt := range tests {
		net, fee := mathutil.LessFee(tt.amount, tt.bps)
		require.Equal(t, tt.expectedNet, net)
		require.Equal(t, tt.expectedFee, fee)
		require.Equal(t, tt.amount, net+fee)
	}
}

func TestSafeAdd(t *testing.T) {
	sum, err := mathutil.SafeAdd(1, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(3), sum)

	_, err = mathutil.SafeAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, mathutil.ErrOverflow)

	require.Equal(t, uint64(math.MaxUint64), mathutil.SaturatingAdd(math.MaxUint64-1, 10))
}

func TestUnitsConversion(t *testing.T) {
	units, err := mathutil.ToUnits("1.5")
	require.NoError(t, err)
	require.Equal(t, uint64(150000000), units)

	units, err = mathutil.ToUnits("0.00000001")
	require.NoError(t, err)
	require.Equal(t, uint64(1), units)

	_, err = mathutil.ToUnits("0.000000001")
	require.ErrorIs(t, err, mathutil.ErrInvalidAmount)

	_, err = mathutil.ToUnits("-1")
	require.ErrorIs(t, err, mathutil.ErrInvalidAmount)

	_, err = mathutil.ToUnits("abc")
	require.ErrorIs(t, err, mathutil.ErrInvalidAmount)

	require.Equal(t, "1.5", mathutil.FromUnits(150000000))
	require.Equal(t, "0.3", mathutil.BasisPointsToPercentage(30))
}
