package services

import (
	"testing"

	"schoolleave_go/models"

	"github.com/stretchr/testify/require"
)

func TestCreateLeaveComputesRefund(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, exempt := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	input := LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 5),
		LeaveDays:  5,
		Reason:     "flu",
	}

	record, err := svc.Create(input, 1)
	require.NoError(t, err)
	require.Equal(t, models.LeaveStatusPending, record.Status)
	require.True(t, record.IsRefund)
	require.NotNil(t, record.RefundAmount)
	require.Equal(t, "75.00", record.RefundAmount.StringFixed(2))
	require.Nil(t, record.ReviewerID)
	require.Nil(t, record.ReviewedAt)

	t.Run("exempt student carries no refund", func(t *testing.T) {
		in := input
		in.StudentID = exempt.ID
		record, err := svc.Create(in, 1)
		require.NoError(t, err)
		require.False(t, record.IsRefund)
		require.Nil(t, record.RefundAmount)
	})
}

func TestCreateLeaveNoFeeConfigured(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	require.NoError(t, tdb.Where("1 = 1").Delete(&models.FeeConfig{}).Error)
	svc := newTestLeaveService(tdb)

	record, err := svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 3),
		LeaveDays:  3,
	}, 1)
	require.NoError(t, err)
	require.NotNil(t, record.RefundAmount)
	require.Equal(t, "0.00", record.RefundAmount.StringFixed(2))
}

func TestCreateLeaveAutoApproval(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)
	require.NoError(t, svc.cfg.Set(SettingApprovalRequired, "false"))

	record, err := svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 2),
		LeaveDays:  2,
	}, 7)
	require.NoError(t, err)
	require.Equal(t, models.LeaveStatusApproved, record.Status)
	require.NotNil(t, record.ReviewerID)
	require.Equal(t, uint(7), *record.ReviewerID)
	require.NotNil(t, record.ReviewedAt)
}

func TestCreateLeaveUnknownReferences(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	_, err := svc.Create(LeaveInput{StudentID: 9999, SemesterID: semester.ID, StartDate: date(2026, 10, 1), EndDate: date(2026, 10, 1), LeaveDays: 1}, 1)
	require.ErrorIs(t, err, ErrStudentNotFound)

	_, err = svc.Create(LeaveInput{StudentID: student.ID, SemesterID: 9999, StartDate: date(2026, 10, 1), EndDate: date(2026, 10, 1), LeaveDays: 1}, 1)
	require.ErrorIs(t, err, ErrSemesterNotFound)
}

func TestCreateLeaveRejectsOverlap(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	_, err := svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 10),
		EndDate:    date(2026, 10, 14),
		LeaveDays:  5,
	}, 1)
	require.NoError(t, err)

	_, err = svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 14),
		EndDate:    date(2026, 10, 16),
		LeaveDays:  3,
	}, 1)
	ve, ok := IsValidationError(err)
	require.True(t, ok)
	require.Equal(t, CodeDateOverlap, ve.Code)
}

func TestReviewLifecycle(t *testing.T) {
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

	t.Run("invalid decision", func(t *testing.T) {
		_, err := svc.Review(record.ID, ReviewDecision("maybe"), 2, "")
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	approved, err := svc.Review(record.ID, DecisionApprove, 2, "looks fine")
	require.NoError(t, err)
	require.Equal(t, models.LeaveStatusApproved, approved.Status)
	require.Equal(t, uint(2), *approved.ReviewerID)
	require.NotNil(t, approved.ReviewedAt)
	require.Equal(t, "looks fine", *approved.ReviewRemark)

	t.Run("second review conflicts", func(t *testing.T) {
		_, err := svc.Review(record.ID, DecisionReject, 3, "")
		require.ErrorIs(t, err, ErrAlreadyReviewed)
	})

	t.Run("revoke clears reviewer metadata", func(t *testing.T) {
		revoked, err := svc.Revoke(record.ID, 3)
		require.NoError(t, err)
		require.Equal(t, models.LeaveStatusPending, revoked.Status)
		require.Nil(t, revoked.ReviewerID)
		require.Nil(t, revoked.ReviewedAt)
		require.Nil(t, revoked.ReviewRemark)
	})

	t.Run("revoking a pending record conflicts", func(t *testing.T) {
		_, err := svc.Revoke(record.ID, 3)
		require.ErrorIs(t, err, ErrAlreadyPending)
	})

	t.Run("rejected records can be revoked too", func(t *testing.T) {
		_, err := svc.Review(record.ID, DecisionReject, 2, "dates wrong")
		require.NoError(t, err)
		revoked, err := svc.Revoke(record.ID, 3)
		require.NoError(t, err)
		require.Equal(t, models.LeaveStatusPending, revoked.Status)
	})
}

func TestUpdateLeave(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	record, err := svc.Create(LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 5),
		LeaveDays:  5,
	}, 1)
	require.NoError(t, err)

	t.Run("edit recomputes refund", func(t *testing.T) {
		updated, err := svc.Update(record.ID, LeaveInput{
			StudentID:  student.ID,
			SemesterID: semester.ID,
			StartDate:  date(2026, 10, 1),
			EndDate:    date(2026, 10, 3),
			LeaveDays:  3,
		}, nil)
		require.NoError(t, err)
		require.Equal(t, 3, updated.LeaveDays)
		require.Equal(t, "45.00", updated.RefundAmount.StringFixed(2))
	})

	t.Run("edit does not collide with itself", func(t *testing.T) {
		_, err := svc.Update(record.ID, LeaveInput{
			StudentID:  student.ID,
			SemesterID: semester.ID,
			StartDate:  date(2026, 10, 2),
			EndDate:    date(2026, 10, 4),
			LeaveDays:  3,
		}, nil)
		require.NoError(t, err)
	})

	_, err = svc.Review(record.ID, DecisionApprove, 2, "")
	require.NoError(t, err)

	t.Run("approved record rejects plain edits", func(t *testing.T) {
		_, err := svc.Update(record.ID, LeaveInput{
			StudentID:  student.ID,
			SemesterID: semester.ID,
			StartDate:  date(2026, 10, 2),
			EndDate:    date(2026, 10, 4),
			LeaveDays:  3,
		}, nil)
		require.ErrorIs(t, err, ErrApprovedImmutable)
	})

	t.Run("status override edits and re-opens review", func(t *testing.T) {
		pending := models.LeaveStatusPending
		updated, err := svc.Update(record.ID, LeaveInput{
			StudentID:  student.ID,
			SemesterID: semester.ID,
			StartDate:  date(2026, 10, 2),
			EndDate:    date(2026, 10, 5),
			LeaveDays:  4,
		}, &pending)
		require.NoError(t, err)
		require.Equal(t, models.LeaveStatusPending, updated.Status)
		require.Nil(t, updated.ReviewerID)
		require.Nil(t, updated.ReviewRemark)
		require.Equal(t, "60.00", updated.RefundAmount.StringFixed(2))
	})

	t.Run("unknown status override", func(t *testing.T) {
		bogus := "archived"
		_, err := svc.Update(record.ID, LeaveInput{
			StudentID:  student.ID,
			SemesterID: semester.ID,
			StartDate:  date(2026, 10, 2),
			EndDate:    date(2026, 10, 5),
			LeaveDays:  4,
		}, &bogus)
		require.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestDeleteLeave(t *testing.T) {
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

	_, err = svc.Review(record.ID, DecisionApprove, 2, "")
	require.NoError(t, err)

	t.Run("approved records are protected", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(record.ID), ErrApprovedProtected)
	})

	t.Run("revoked record deletes", func(t *testing.T) {
		_, err := svc.Revoke(record.ID, 2)
		require.NoError(t, err)
		require.NoError(t, svc.Delete(record.ID))
		_, err = svc.Get(record.ID)
		require.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestListLeaves(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, exempt := seedSchool(t, tdb)
	svc := newTestLeaveService(tdb)

	for i, st := range []uint{student.ID, exempt.ID, student.ID} {
		_, err := svc.Create(LeaveInput{
			StudentID:  st,
			SemesterID: semester.ID,
			StartDate:  date(2026, 11, 1+i*10),
			EndDate:    date(2026, 11, 3+i*10),
			LeaveDays:  3,
		}, 1)
		require.NoError(t, err)
	}

	records, total, err := svc.List(LeaveFilter{StudentID: student.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, records, 2)

	records, total, err = svc.List(LeaveFilter{Status: models.LeaveStatusPending, PageSize: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, records, 2)
}
