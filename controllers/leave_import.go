package controllers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"schoolleave_go/middleware"
	"schoolleave_go/services"
	"schoolleave_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// LeaveImportController handles importing leave records from CSV/XLSX
type LeaveImportController struct{}

var importColumns = []string{
	"StudentNo", "StudentName", "Semester", "Grade", "Class",
	"StartDate", "EndDate", "LeaveDays",
}

// POST /api/leaves/import
// Multipart form with file field: file. Pass validate_only=true to dry-run
// the file without persisting anything.
func (ic *LeaveImportController) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
	}
	defer file.Close()

	filename := strings.ToLower(fileHeader.Filename)
	var rawRows [][]string
	var parseErr error

	if strings.HasSuffix(filename, ".csv") {
		rawRows, parseErr = readCSV(file)
	} else if strings.HasSuffix(filename, ".xlsx") || strings.HasSuffix(filename, ".xls") {
		// Save to OS temp folder for excelize to open
		tmpDir, _ := os.MkdirTemp("", "slxls-")
		tmp := filepath.Join(tmpDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeFilename(fileHeader.Filename)))
		if err := c.SaveFile(fileHeader, tmp); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to buffer upload"})
		}
		rawRows, parseErr = readXLSX(tmp)
		_ = os.Remove(tmp)
	} else {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type (csv, xlsx)"})
	}
	if parseErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": parseErr.Error()})
	}

	if len(rawRows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is empty"})
	}

	header := rawRows[0]
	col := buildColumnIndex(header)
	for _, r := range importColumns {
		if _, ok := col[r]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("missing column: %s", r)})
		}
	}

	rows := make([]services.LeaveImportRow, 0, len(rawRows)-1)
	for i := 1; i < len(rawRows); i++ {
		r := rawRows[i]
		get := func(key string) string {
			if idx, ok := col[key]; ok && idx < len(r) {
				return strings.TrimSpace(r[idx])
			}
			return ""
		}
		days, _ := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(get("LeaveDays"), ",", "")))
		rows = append(rows, services.LeaveImportRow{
			Row:          i, // 1-indexed data row; header is row 0
			StudentNo:    get("StudentNo"),
			StudentName:  get("StudentName"),
			SemesterName: get("Semester"),
			GradeName:    get("Grade"),
			ClassName:    get("Class"),
			StartDate:    get("StartDate"),
			EndDate:      get("EndDate"),
			LeaveDays:    days,
			Reason:       get("Reason"),
		})
	}

	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	validateOnly := c.QueryBool("validate_only", false)

	result, err := services.NewLeaveImportService().ImportRows(c.Context(), rows, claims.UserID, validateOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	// Archive the uploaded file for audit; failures only log.
	if !validateOnly {
		if svc, serr := storage.NewStorageService(); serr == nil {
			if key, aerr := svc.ArchiveImportFile(fileHeader, claims.UserID); aerr != nil {
				logrus.WithError(aerr).Warn("failed to archive import file")
			} else {
				logrus.WithField("key", key).Info("import file archived")
			}
		}
		middleware.LogActivity(c, "IMPORT", "leaves", 0, fiber.Map{
			"file":    fileHeader.Filename,
			"created": result.Created,
			"failed":  result.Failed,
		})
	}

	return c.JSON(fiber.Map{
		"created":       result.Created,
		"failed":        result.Failed,
		"errors":        result.Errors,
		"validate_only": validateOnly,
	})
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// Use first sheet
	sht := f.GetSheetName(0)
	if sht == "" {
		sht = "Sheet1"
	}
	data, err := f.GetRows(sht)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func buildColumnIndex(header []string) map[string]int {
	m := map[string]int{}
	for i, h := range header {
		m[strings.TrimSpace(h)] = i
	}
	return m
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	return name
}
