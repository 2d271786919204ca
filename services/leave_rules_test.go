package services

import (
	"testing"
	"time"

	"schoolleave_go/models"

	"github.com/stretchr/testify/require"
)

func TestNaturalSpanDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", date(2026, 10, 5), date(2026, 10, 5), 1},
		{"five days", date(2026, 10, 1), date(2026, 10, 5), 5},
		{"month boundary", date(2026, 9, 29), date(2026, 10, 2), 4},
		{"time of day ignored", time.Date(2026, 10, 1, 23, 59, 0, 0, time.UTC), date(2026, 10, 3), 3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NaturalSpanDays(tc.start, tc.end))
		})
	}
}

func TestValidateOrdering(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, _ := seedSchool(t, tdb)
	engine := &LeaveRuleEngine{overlap: &OverlapValidator{db: tdb}}

	base := LeaveInput{
		StudentID:  student.ID,
		SemesterID: semester.ID,
		StartDate:  date(2026, 10, 1),
		EndDate:    date(2026, 10, 5),
		LeaveDays:  5,
	}

	tests := []struct {
		name     string
		mutate   func(in *LeaveInput)
		minDays  int
		wantCode string
	}{
		{
			name:     "inverted range wins over everything",
			mutate:   func(in *LeaveInput) { in.StartDate, in.EndDate = in.EndDate, in.StartDate; in.LeaveDays = 0 },
			wantCode: CodeInvalidRange,
		},
		{
			name:     "at the minimum fails",
			mutate:   func(in *LeaveInput) { in.LeaveDays = 3 },
			minDays:  3,
			wantCode: CodeBelowMinimum,
		},
		{
			name:     "zero days fails the default minimum",
			mutate:   func(in *LeaveInput) { in.LeaveDays = 0 },
			wantCode: CodeBelowMinimum,
		},
		{
			name:     "semester cap checked before natural span",
			mutate:   func(in *LeaveInput) { in.LeaveDays = 91 },
			wantCode: CodeExceedsSemesterCap,
		},
		{
			name:     "days beyond the calendar span",
			mutate:   func(in *LeaveInput) { in.LeaveDays = 6 },
			wantCode: CodeExceedsNaturalSpan,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			err := engine.Validate(in, &semester, tc.minDays, 0)
			ve, ok := IsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			require.Equal(t, tc.wantCode, ve.Code)
		})
	}

	t.Run("one above the minimum passes", func(t *testing.T) {
		in := base
		in.LeaveDays = 4
		require.NoError(t, engine.Validate(in, &semester, 3, 0))
	})

	t.Run("days equal to the span passes", func(t *testing.T) {
		require.NoError(t, engine.Validate(base, &semester, 0, 0))
	})
}

func TestHasOverlap(t *testing.T) {
	tdb := setupTestDB(t)
	semester, _, student, other := seedSchool(t, tdb)
	validator := &OverlapValidator{db: tdb}

	existing := models.LeaveRecord{
		StudentID:   student.ID,
		SemesterID:  semester.ID,
		ApplicantID: 1,
		StartDate:   date(2026, 10, 10),
		EndDate:     date(2026, 10, 14),
		LeaveDays:   5,
		Status:      models.LeaveStatusPending,
	}
	require.NoError(t, tdb.Create(&existing).Error)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical range", date(2026, 10, 10), date(2026, 10, 14), true},
		{"new range ends inside existing", date(2026, 10, 8), date(2026, 10, 10), true},
		{"new range starts inside existing", date(2026, 10, 14), date(2026, 10, 20), true},
		{"existing contained in new", date(2026, 10, 1), date(2026, 10, 31), true},
		{"adjacent before", date(2026, 10, 7), date(2026, 10, 9), false},
		{"adjacent after", date(2026, 10, 15), date(2026, 10, 17), false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := validator.HasOverlap(student.ID, semester.ID, tc.start, tc.end, 0)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	t.Run("another student is unaffected", func(t *testing.T) {
		got, err := validator.HasOverlap(other.ID, semester.ID, date(2026, 10, 10), date(2026, 10, 14), 0)
		require.NoError(t, err)
		require.False(t, got)
	})

	t.Run("excluding the record itself", func(t *testing.T) {
		got, err := validator.HasOverlap(student.ID, semester.ID, date(2026, 10, 10), date(2026, 10, 14), existing.ID)
		require.NoError(t, err)
		require.False(t, got)
	})
}
