package services

import (
	"context"
	"errors"
	"fmt"

	"schoolleave_go/database"
	"schoolleave_go/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RefundRecalculator re-derives refund_amount for every refundable leave
// record from the current fee configuration. It is the bulk entry point
// invoked after fee changes, and is idempotent: a second run with unchanged
// configuration writes nothing.
type RefundRecalculator struct {
	db *gorm.DB
}

func NewRefundRecalculator() *RefundRecalculator {
	return &RefundRecalculator{db: database.DB}
}

type feeKey struct {
	classID    uint
	semesterID uint
}

const recalcBatchSize = 200

// RecalculateAll walks is_refund records in batches and persists only values
// that actually changed. Records for nutrition-meal-exempt students carry
// is_refund = false and are never touched. The context is honored between
// records; each record's update commits on its own.
func (r *RefundRecalculator) RecalculateAll(ctx context.Context) (int, error) {
	fees := make(map[feeKey]decimal.Decimal)
	updated := 0

	result := r.db.WithContext(ctx).
		Model(&models.LeaveRecord{}).
		Preload("Student").
		Where("is_refund = ?", true).
		FindInBatches(&[]models.LeaveRecord{}, recalcBatchSize, func(tx *gorm.DB, _ int) error {
			batch, ok := tx.Statement.Dest.(*[]models.LeaveRecord)
			if !ok {
				return fmt.Errorf("unexpected batch destination type")
			}
			for i := range *batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				record := &(*batch)[i]
				changed, err := r.recalculateOne(record, fees)
				if err != nil {
					return err
				}
				if changed {
					updated++
				}
			}
			return nil
		})
	if result.Error != nil {
		return updated, result.Error
	}

	logrus.WithField("updated", updated).Info("refund recalculation completed")
	return updated, nil
}

func (r *RefundRecalculator) recalculateOne(record *models.LeaveRecord, fees map[feeKey]decimal.Decimal) (bool, error) {
	key := feeKey{classID: record.Student.ClassID, semesterID: record.SemesterID}
	fee, ok := fees[key]
	if !ok {
		var err error
		fee, err = r.lookupFee(key)
		if err != nil {
			return false, err
		}
		fees[key] = fee
	}

	refund := ComputeRefund(record.LeaveDays, fee, record.Student.NutritionMeal)
	if refund == nil {
		// Exemption flag changed since the record was written; the record
		// itself stays refundable until edited through the lifecycle.
		return false, nil
	}
	if record.RefundAmount != nil && record.RefundAmount.Equal(*refund) {
		return false, nil
	}

	err := r.db.Model(&models.LeaveRecord{}).
		Where("id = ?", record.ID).
		Update("refund_amount", refund).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RefundRecalculator) lookupFee(key feeKey) (decimal.Decimal, error) {
	var fee models.FeeConfig
	err := r.db.Where("class_id = ? AND semester_id = ?", key.classID, key.semesterID).First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return fee.MealFeeStandard, nil
}
