package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"schoolleave_go/models"

	"gorm.io/gorm"
)

// LeaveImportRow is one parsed spreadsheet row. Row keeps the 1-indexed
// position in the source file for error reporting.
type LeaveImportRow struct {
	Row          int
	StudentNo    string
	StudentName  string
	SemesterName string
	GradeName    string
	ClassName    string
	StartDate    string
	EndDate      string
	LeaveDays    int
	Reason       string
}

// ImportRowError records why a single row was rejected.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult accumulates per-row outcomes for a batch.
type ImportResult struct {
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

// LeaveImportService applies the single-record rules to a sequence of rows.
// Rows are logically independent leave requests: a failed row never aborts
// the batch, and accepted rows stay committed.
type LeaveImportService struct {
	leaves *LeaveService
}

func NewLeaveImportService() *LeaveImportService {
	return &LeaveImportService{leaves: NewLeaveService()}
}

// ImportRows resolves and imports each row through LeaveService.Create,
// which guarantees identical semantics between the single-record and bulk
// paths. With validateOnly the same resolution and rule checks run but
// nothing is persisted, so operators can preview errors before committing.
// The context is checked between rows; each row's commit is atomic on its own.
func (s *LeaveImportService) ImportRows(ctx context.Context, rows []LeaveImportRow, applicantID uint, validateOnly bool) (*ImportResult, error) {
	result := &ImportResult{}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		input, err := s.resolveRow(row)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: row.Row, Message: err.Error()})
			continue
		}

		if validateOnly {
			err = s.validateOnly(*input)
		} else {
			_, err = s.leaves.Create(*input, applicantID)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: row.Row, Message: err.Error()})
			continue
		}
		result.Created++
	}
	return result, nil
}

// resolveRow maps a row's natural keys onto stored ids. Every part of the
// student tuple (number, name, grade, class) must match one record, so a
// typo in any column fails the row rather than importing against the wrong
// student.
func (s *LeaveImportService) resolveRow(row LeaveImportRow) (*LeaveInput, error) {
	studentNo := strings.TrimSpace(row.StudentNo)
	studentName := strings.TrimSpace(row.StudentName)
	if studentNo == "" || studentName == "" {
		return nil, fmt.Errorf("student number and name are required")
	}

	var student models.Student
	err := s.leaves.db.
		Joins("JOIN classes ON classes.id = students.class_id").
		Joins("JOIN grades ON grades.id = classes.grade_id").
		Where("students.student_no = ? AND students.name = ?", studentNo, studentName).
		Where("grades.name = ? AND classes.name = ?", strings.TrimSpace(row.GradeName), strings.TrimSpace(row.ClassName)).
		First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no student matches number %s, name %s, grade %s, class %s",
			studentNo, studentName, strings.TrimSpace(row.GradeName), strings.TrimSpace(row.ClassName))
	}
	if err != nil {
		return nil, err
	}

	var semester models.Semester
	err = s.leaves.db.Where("name = ?", strings.TrimSpace(row.SemesterName)).First(&semester).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no semester named %s", strings.TrimSpace(row.SemesterName))
	}
	if err != nil {
		return nil, err
	}

	start, err := ParseDateOnly(row.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q", row.StartDate)
	}
	end, err := ParseDateOnly(row.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q", row.EndDate)
	}

	return &LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  start,
		EndDate:    end,
		LeaveDays:  row.LeaveDays,
		Reason:     strings.TrimSpace(row.Reason),
	}, nil
}

// validateOnly runs the create-path checks without persisting.
func (s *LeaveImportService) validateOnly(input LeaveInput) error {
	if _, err := s.leaves.loadStudent(input.StudentID); err != nil {
		return err
	}
	semester, err := s.leaves.loadSemester(input.SemesterID)
	if err != nil {
		return err
	}
	minDays := s.leaves.cfg.GetInt(SettingMinLeaveDays, 0)
	return s.leaves.rules.Validate(input, semester, minDays, 0)
}

// ParseDateOnly accepts the date layouts spreadsheets commonly carry.
func ParseDateOnly(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layouts := []string{"2006-01-02", "2006/01/02", "01/02/2006", "2006-1-2"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return truncateToDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", value)
}
