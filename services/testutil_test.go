package services

import (
	"testing"
	"time"

	"schoolleave_go/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Semester{}, &models.Grade{}, &models.Class{},
		&models.Student{}, &models.FeeConfig{}, &models.LeaveRecord{},
		&models.SystemSetting{}, &models.ActivityLog{},
	))
	return db
}

func newTestLeaveService(tdb *gorm.DB) *LeaveService {
	return &LeaveService{
		db:    tdb,
		cfg:   &ConfigProvider{db: tdb, ttl: time.Minute},
		rules: &LeaveRuleEngine{overlap: &OverlapValidator{db: tdb}},
	}
}

// seedSchool inserts a semester, grade, class and two students (the second
// nutrition-meal exempt) plus a 15.00 meal fee, returning the created rows.
func seedSchool(t *testing.T, tdb *gorm.DB) (models.Semester, models.Class, models.Student, models.Student) {
	t.Helper()

	semester := models.Semester{
		Name:       "Fall 2026",
		SchoolYear: "2026-2027",
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		SchoolDays: 90,
		Active:     true,
	}
	require.NoError(t, tdb.Create(&semester).Error)

	grade := models.Grade{Name: "Grade 1"}
	require.NoError(t, tdb.Create(&grade).Error)

	class := models.Class{GradeID: grade.ID, Name: "Class 1"}
	require.NoError(t, tdb.Create(&class).Error)

	student := models.Student{StudentNo: "S001", Name: "Alice Chen", ClassID: class.ID}
	require.NoError(t, tdb.Create(&student).Error)

	exempt := models.Student{StudentNo: "S002", Name: "Chloe Park", ClassID: class.ID, NutritionMeal: true}
	require.NoError(t, tdb.Create(&exempt).Error)

	fee := models.FeeConfig{
		ClassID:         class.ID,
		SemesterID:      semester.ID,
		MealFeeStandard: decimal.NewFromFloat(15.00),
	}
	require.NoError(t, tdb.Create(&fee).Error)

	return semester, class, student, exempt
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
