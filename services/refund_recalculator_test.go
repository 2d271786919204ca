package services

import (
	"context"
	"testing"

	"schoolleave_go/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecalculateAllAppliesFeeChange(t *testing.T) {
	tdb := setupTestDB(t)
	semester, class, student, exempt := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	record, err := svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 5),
		LeaveDays:  5,
	}, 1)
	require.NoError(t, err)
	require.Equal(t, "75.00", record.RefundAmount.StringFixed(2))

	exemptRecord, err := svc.Create(LeaveInput{
		StudentID:  exempt.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 5),
		LeaveDays:  5,
	}, 1)
	require.NoError(t, err)

	// Raise the fee after the records were written
	err = tdb.Model(&models.FeeConfig{}).
		Where("class_id = ? AND semester_id = ?", class.ID, semester.ID).
		Update("meal_fee_standard", decimal.NewFromFloat(20.00)).Error
	require.NoError(t, err)

	recalc := &RefundRecalculator{db: tdb}
	updated, err := recalc.RecalculateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	reloaded, err := svc.Get(record.ID)
	require.NoError(t, err)
	require.Equal(t, "100.00", reloaded.RefundAmount.StringFixed(2))

	t.Run("exempt record untouched", func(t *testing.T) {
		reloaded, err := svc.Get(exemptRecord.ID)
		require.NoError(t, err)
		require.False(t, reloaded.IsRefund)
		require.Nil(t, reloaded.RefundAmount)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		updated, err := recalc.RecalculateAll(context.Background())
		require.NoError(t, err)
		require.Zero(t, updated)
	})
}

func TestRecalculateAllMissingFeeResolvesToZero(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	record, err := svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 3),
		LeaveDays:  3,
	}, 1)
	require.NoError(t, err)

	require.NoError(t, tdb.Where("1 = 1").Delete(&models.FeeConfig{}).Error)

	recalc := &RefundRecalculator{db: tdb}
	updated, err := recalc.RecalculateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	reloaded, err := svc.Get(record.ID)
	require.NoError(t, err)
	require.Equal(t, "0.00", reloaded.RefundAmount.StringFixed(2))
}

func TestRecalculateAllHonorsContext(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	_, err := svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 3),
		LeaveDays:  3,
	}, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = (&RefundRecalculator{db: tdb}).RecalculateAll(ctx)
	require.Error(t, err)
}
