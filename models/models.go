package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Leave record status values
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// User model — applicants and reviewers of leave records
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Name     string `json:"name" gorm:"size:100"`
	Email    string `json:"email" gorm:"size:255"`
	Phone    string `json:"phone" gorm:"size:20"`
	Role     string `json:"role" gorm:"size:50;not null;default:'teacher'"` // owner, admin, teacher, student
	Status   string `json:"status" gorm:"size:50;not null;default:'active'"` // active, inactive, suspended
}

// Semester model — school_days bounds how many leave days a single record may claim
type Semester struct {
	BaseModel
	Name       string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_semester_year_name"`
	SchoolYear string    `json:"school_year" gorm:"size:20;not null;uniqueIndex:idx_semester_year_name"`
	StartDate  time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate    time.Time `json:"end_date" gorm:"type:date;not null"`
	SchoolDays int       `json:"school_days" gorm:"not null"`
	Active     bool      `json:"active" gorm:"default:true"`
}

// Grade model
type Grade struct {
	BaseModel
	Name      string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	SortOrder int    `json:"sort_order" gorm:"default:1"`
}

// Class model
type Class struct {
	BaseModel
	GradeID uint   `json:"grade_id" gorm:"not null;uniqueIndex:idx_class_grade_name"`
	Name    string `json:"name" gorm:"size:100;not null;uniqueIndex:idx_class_grade_name"`

	// Relationships
	Grade Grade `json:"grade,omitempty" gorm:"foreignKey:GradeID"`
}

// Student model
type Student struct {
	BaseModel
	StudentNo     string `json:"student_no" gorm:"size:50;not null;uniqueIndex"`
	Name          string `json:"name" gorm:"size:100;not null"`
	ClassID       uint   `json:"class_id" gorm:"not null;index"`
	Gender        string `json:"gender" gorm:"size:20"`
	NutritionMeal bool   `json:"nutrition_meal" gorm:"not null;default:false"` // exempt from meal-fee refunds
	GuardianName  string `json:"guardian_name" gorm:"size:100"`
	GuardianPhone string `json:"guardian_phone" gorm:"size:20"`

	// Relationships
	Class Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

// FeeConfig model — per (class, semester) meal fee configuration.
// Absence of a row for a pair is a valid "not configured" state.
type FeeConfig struct {
	BaseModel
	ClassID         uint            `json:"class_id" gorm:"not null;uniqueIndex:idx_fee_class_semester"`
	SemesterID      uint            `json:"semester_id" gorm:"not null;uniqueIndex:idx_fee_class_semester"`
	MealFeeStandard decimal.Decimal `json:"meal_fee_standard" gorm:"type:decimal(10,2);not null;default:0"`
	PrepaidDays     int             `json:"prepaid_days" gorm:"default:0"`
	ActualDays      int             `json:"actual_days" gorm:"default:0"`
	SuspensionDays  int             `json:"suspension_days" gorm:"default:0"`

	// Relationships
	Class    Class    `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Semester Semester `json:"semester,omitempty" gorm:"foreignKey:SemesterID"`
}

// LeaveRecord model — one student absence request with dates, review state
// and refund outcome. Reviewer metadata stays NULL while status is pending.
type LeaveRecord struct {
	BaseModel
	StudentID   uint      `json:"student_id" gorm:"not null;index:idx_leave_student_semester"`
	SemesterID  uint      `json:"semester_id" gorm:"not null;index:idx_leave_student_semester"`
	ApplicantID uint      `json:"applicant_id" gorm:"not null"`
	StartDate   time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate     time.Time `json:"end_date" gorm:"type:date;not null"`
	LeaveDays   int       `json:"leave_days" gorm:"not null"`
	Reason      string    `json:"reason" gorm:"size:500"`
	Status      string    `json:"status" gorm:"size:20;not null;default:'pending'"` // pending, approved, rejected

	ReviewerID   *uint      `json:"reviewer_id"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	ReviewRemark *string    `json:"review_remark" gorm:"size:500"`

	IsRefund     bool             `json:"is_refund" gorm:"not null;default:true"`
	RefundAmount *decimal.Decimal `json:"refund_amount" gorm:"type:decimal(10,2)"`

	// Relationships
	Student   Student  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Semester  Semester `json:"semester,omitempty" gorm:"foreignKey:SemesterID"`
	Applicant User     `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID"`
	Reviewer  *User    `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}

// SystemSetting model — generic key/value configuration store
type SystemSetting struct {
	BaseModel
	Key         string `json:"key" gorm:"size:100;not null;uniqueIndex"`
	Value       string `json:"value" gorm:"size:500;not null"`
	Description string `json:"description" gorm:"size:255"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
