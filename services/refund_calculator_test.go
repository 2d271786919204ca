package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestComputeRefund(t *testing.T) {
	tests := []struct {
		name          string
		leaveDays     int
		fee           string
		nutritionMeal bool
		want          string
	}{
		{"whole number fee", 5, "15.00", false, "75.00"},
		{"fraction rounds half up", 3, "10.335", false, "31.01"},
		{"rounds down", 3, "10.334", false, "31.00"},
		{"zero fee yields zero refund", 10, "0", false, "0.00"},
		{"single day", 1, "12.50", false, "12.50"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fee := decimal.RequireFromString(tc.fee)
			got := ComputeRefund(tc.leaveDays, fee, tc.nutritionMeal)
			require.NotNil(t, got)
			require.Equal(t, tc.want, got.StringFixed(2))
		})
	}

	t.Run("exempt student gets no refund", func(t *testing.T) {
		require.Nil(t, ComputeRefund(5, decimal.RequireFromString("15.00"), true))
	})

	t.Run("deterministic across repeated calls", func(t *testing.T) {
		fee := decimal.RequireFromString("13.37")
		first := ComputeRefund(7, fee, false)
		for i := 0; i < 10; i++ {
			again := ComputeRefund(7, fee, false)
			require.True(t, first.Equal(*again))
		}
	})
}
