package services

import (
	"time"

	"schoolleave_go/database"
	"schoolleave_go/models"

	"gorm.io/gorm"
)

// LeaveInput is the validated shape shared by create, update and batch import.
type LeaveInput struct {
	StudentID  uint      `json:"student_id"`
	SemesterID uint      `json:"semester_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	LeaveDays  int       `json:"leave_days"`
	Reason     string    `json:"reason"`
}

// NaturalSpanDays is the inclusive calendar-day count between start and end.
func NaturalSpanDays(start, end time.Time) int {
	start = truncateToDate(start)
	end = truncateToDate(end)
	return int(end.Sub(start).Hours()/24) + 1
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OverlapValidator answers whether a proposed date range conflicts with a
// student's existing leave records in a semester.
type OverlapValidator struct {
	db *gorm.DB
}

func NewOverlapValidator() *OverlapValidator {
	return &OverlapValidator{db: database.DB}
}

// HasOverlap reports whether any other record for the student in the semester
// shares at least one calendar day with [start, end]. excludeID skips the
// record being edited; pass 0 for create.
func (v *OverlapValidator) HasOverlap(studentID, semesterID uint, start, end time.Time, excludeID uint) (bool, error) {
	query := v.db.Model(&models.LeaveRecord{}).
		Where("student_id = ? AND semester_id = ?", studentID, semesterID).
		Where("start_date <= ? AND end_date >= ?", truncateToDate(end), truncateToDate(start))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LeaveRuleEngine is the single-record admissibility checker. Both the
// single-record lifecycle and the batch importer run every request through it
// so the two paths cannot drift apart.
type LeaveRuleEngine struct {
	overlap *OverlapValidator
}

func NewLeaveRuleEngine() *LeaveRuleEngine {
	return &LeaveRuleEngine{overlap: NewOverlapValidator()}
}

// Validate runs the admissibility checks in order, first failure wins:
// range consistency, configured minimum (strict), semester school-day cap,
// natural-span bound (inclusive), then the overlap scan. leave_days is
// operator-declared rather than derived from the range, so the natural span
// only bounds it from above. excludeID supports edit-in-place revalidation.
func (e *LeaveRuleEngine) Validate(input LeaveInput, semester *models.Semester, minDays int, excludeID uint) error {
	start := truncateToDate(input.StartDate)
	end := truncateToDate(input.EndDate)

	if end.Before(start) {
		return &ValidationError{Code: CodeInvalidRange}
	}
	if input.LeaveDays <= minDays {
		return &ValidationError{Code: CodeBelowMinimum, Limit: minDays}
	}
	if input.LeaveDays > semester.SchoolDays {
		return &ValidationError{Code: CodeExceedsSemesterCap, Limit: semester.SchoolDays}
	}
	span := NaturalSpanDays(start, end)
	if input.LeaveDays > span {
		return &ValidationError{Code: CodeExceedsNaturalSpan, Limit: span}
	}

	overlaps, err := e.overlap.HasOverlap(input.StudentID, input.SemesterID, start, end, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		return &ValidationError{Code: CodeDateOverlap}
	}
	return nil
}
