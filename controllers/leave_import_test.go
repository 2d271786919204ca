package controllers

import (
	"strings"
	"testing"
)

func TestBuildColumnIndex(t *testing.T) {
	header := []string{"StudentNo", " StudentName ", "Semester", "Grade", "Class", "StartDate", "EndDate", "LeaveDays", "Reason"}
	col := buildColumnIndex(header)

	for _, want := range importColumns {
		if _, ok := col[want]; !ok {
			t.Fatalf("missing column %s in index %v", want, col)
		}
	}
	if col["StudentName"] != 1 {
		t.Fatalf("expected trimmed header to index at 1, got %d", col["StudentName"])
	}
}

func TestReadCSV(t *testing.T) {
	input := "StudentNo,StudentName,LeaveDays\nS001, Alice Chen,3\nS002,Ben Okafor,2\n"
	rows, err := readCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][1] != "Alice Chen" {
		t.Fatalf("expected leading space trimmed, got %q", rows[1][1])
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"leave.xlsx", "leave.xlsx"},
		{"a\\b/c", "a_b_c"},
		{"report..xlsx", "report_xlsx"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.input); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
