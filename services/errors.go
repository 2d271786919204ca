package services

import (
	"errors"
	"fmt"
)

// Reference errors — stale or invalid identifiers, surfaced as 404s.
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrSemesterNotFound = errors.New("semester not found")
	ErrRecordNotFound   = errors.New("leave record not found")
)

// State errors — a transition attempted from an incompatible state,
// surfaced as conflicts.
var (
	ErrAlreadyReviewed   = errors.New("leave record has already been reviewed")
	ErrAlreadyPending    = errors.New("leave record is already pending review")
	ErrApprovedImmutable = errors.New("approved leave records cannot be edited without a status override")
	ErrApprovedProtected = errors.New("approved leave records cannot be deleted")
	ErrInvalidStatus     = errors.New("invalid leave status")
)

// Validation error codes
const (
	CodeInvalidRange       = "INVALID_RANGE"
	CodeBelowMinimum       = "BELOW_MINIMUM"
	CodeExceedsSemesterCap = "EXCEEDS_SEMESTER_CAP"
	CodeExceedsNaturalSpan = "EXCEEDS_NATURAL_SPAN"
	CodeDateOverlap        = "DATE_OVERLAP"
)

// ValidationError is a caller-correctable rule failure. Limit carries the
// offending threshold so controllers can render a precise message.
type ValidationError struct {
	Code  string
	Limit int
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeInvalidRange:
		return "end date must not be before start date"
	case CodeBelowMinimum:
		return fmt.Sprintf("leave days must be greater than the configured minimum of %d", e.Limit)
	case CodeExceedsSemesterCap:
		return fmt.Sprintf("leave days exceed the semester's %d school days", e.Limit)
	case CodeExceedsNaturalSpan:
		return fmt.Sprintf("leave days exceed the %d calendar days in the requested range", e.Limit)
	case CodeDateOverlap:
		return "the requested dates overlap an existing leave record for this student"
	}
	return "leave request validation failed"
}

// IsValidationError reports whether err is a rule failure and returns it typed.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
