package services

import (
	"github.com/shopspring/decimal"
)

// ComputeRefund derives the refund for a leave request. Nutrition-meal-exempt
// students never receive a refund, so the result is nil for them regardless of
// day count or fee standard. Otherwise the refund is leaveDays × feeStandard
// rounded to the currency's two minor-unit places. Callers resolve a missing
// fee configuration to decimal.Zero before calling, which yields a zero refund
// rather than an error.
func ComputeRefund(leaveDays int, feeStandard decimal.Decimal, nutritionMeal bool) *decimal.Decimal {
	if nutritionMeal {
		return nil
	}
	amount := feeStandard.Mul(decimal.NewFromInt(int64(leaveDays))).Round(2)
	return &amount
}
