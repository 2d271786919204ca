package services

import (
	"errors"
	"time"

	"schoolleave_go/database"
	"schoolleave_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LeaveService owns the leave record lifecycle: create, review, revoke,
// update and delete. Every mutation revalidates against the rule engine and
// recomputes the refund from the current fee configuration, operating on a
// load → validate → mutate → save cycle per call.
type LeaveService struct {
	db    *gorm.DB
	cfg   *ConfigProvider
	rules *LeaveRuleEngine
}

func NewLeaveService() *LeaveService {
	return &LeaveService{
		db:    database.DB,
		cfg:   NewConfigProvider(),
		rules: NewLeaveRuleEngine(),
	}
}

// ReviewDecision is the outcome of a review: approved or rejected.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = models.LeaveStatusApproved
	DecisionReject  ReviewDecision = models.LeaveStatusRejected
)

func (s *LeaveService) loadStudent(id uint) (*models.Student, error) {
	var student models.Student
	if err := s.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &student, nil
}

func (s *LeaveService) loadSemester(id uint) (*models.Semester, error) {
	var semester models.Semester
	if err := s.db.First(&semester, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}
	return &semester, nil
}

func (s *LeaveService) loadRecord(id uint) (*models.LeaveRecord, error) {
	var record models.LeaveRecord
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// feeStandardFor resolves the meal fee for a (class, semester) pair. A missing
// fee configuration is a legitimate unconfigured state and resolves to zero.
func (s *LeaveService) feeStandardFor(classID, semesterID uint) (decimal.Decimal, error) {
	var fee models.FeeConfig
	err := s.db.Where("class_id = ? AND semester_id = ?", classID, semesterID).First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return fee.MealFeeStandard, nil
}

// Create validates a new leave request, derives its refund and persists it.
// When review is not required by configuration the record is approved
// immediately with the applicant stamped as reviewer.
func (s *LeaveService) Create(input LeaveInput, applicantID uint) (*models.LeaveRecord, error) {
	student, err := s.loadStudent(input.StudentID)
	if err != nil {
		return nil, err
	}
	semester, err := s.loadSemester(input.SemesterID)
	if err != nil {
		return nil, err
	}

	minDays := s.cfg.GetInt(SettingMinLeaveDays, 0)
	if err := s.rules.Validate(input, semester, minDays, 0); err != nil {
		return nil, err
	}

	feeStandard, err := s.feeStandardFor(student.ClassID, semester.ID)
	if err != nil {
		return nil, err
	}
	refund := ComputeRefund(input.LeaveDays, feeStandard, student.NutritionMeal)

	record := models.LeaveRecord{
		StudentID:    student.ID,
		SemesterID:   semester.ID,
		ApplicantID:  applicantID,
		StartDate:    truncateToDate(input.StartDate),
		EndDate:      truncateToDate(input.EndDate),
		LeaveDays:    input.LeaveDays,
		Reason:       input.Reason,
		Status:       models.LeaveStatusPending,
		IsRefund:     !student.NutritionMeal,
		RefundAmount: refund,
	}

	if !s.cfg.GetBool(SettingApprovalRequired, true) {
		now := time.Now()
		record.Status = models.LeaveStatusApproved
		record.ReviewerID = &applicantID
		record.ReviewedAt = &now
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Review settles a pending record with an approve or reject decision.
func (s *LeaveService) Review(id uint, decision ReviewDecision, reviewerID uint, remark string) (*models.LeaveRecord, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, ErrInvalidStatus
	}

	record, err := s.loadRecord(id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.LeaveStatusPending {
		return nil, ErrAlreadyReviewed
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      string(decision),
		"reviewer_id": reviewerID,
		"reviewed_at": now,
	}
	if remark != "" {
		updates["review_remark"] = remark
	}
	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.loadRecord(id)
}

// Revoke resets a reviewed record back to pending. The prior review is
// discarded entirely, not resumed: reviewer id, timestamp and remark are
// cleared so the next review starts from scratch.
func (s *LeaveService) Revoke(id uint, actorID uint) (*models.LeaveRecord, error) {
	record, err := s.loadRecord(id)
	if err != nil {
		return nil, err
	}
	if record.Status == models.LeaveStatusPending {
		return nil, ErrAlreadyPending
	}

	updates := map[string]interface{}{
		"status":        models.LeaveStatusPending,
		"reviewer_id":   nil,
		"reviewed_at":   nil,
		"review_remark": nil,
	}
	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.loadRecord(id)
}

// Update re-runs full validation against the new input and recomputes the
// refund from the current fee configuration. Approved records reject plain
// edits; supplying newStatus is the administrative override, and any
// re-statusing edit clears reviewer metadata so the record is re-reviewed.
func (s *LeaveService) Update(id uint, input LeaveInput, newStatus *string) (*models.LeaveRecord, error) {
	record, err := s.loadRecord(id)
	if err != nil {
		return nil, err
	}
	if record.Status == models.LeaveStatusApproved && newStatus == nil {
		return nil, ErrApprovedImmutable
	}
	if newStatus != nil && !isValidLeaveStatus(*newStatus) {
		return nil, ErrInvalidStatus
	}

	student, err := s.loadStudent(input.StudentID)
	if err != nil {
		return nil, err
	}
	semester, err := s.loadSemester(input.SemesterID)
	if err != nil {
		return nil, err
	}

	minDays := s.cfg.GetInt(SettingMinLeaveDays, 0)
	if err := s.rules.Validate(input, semester, minDays, record.ID); err != nil {
		return nil, err
	}

	feeStandard, err := s.feeStandardFor(student.ClassID, semester.ID)
	if err != nil {
		return nil, err
	}
	refund := ComputeRefund(input.LeaveDays, feeStandard, student.NutritionMeal)

	updates := map[string]interface{}{
		"student_id":    student.ID,
		"semester_id":   semester.ID,
		"start_date":    truncateToDate(input.StartDate),
		"end_date":      truncateToDate(input.EndDate),
		"leave_days":    input.LeaveDays,
		"reason":        input.Reason,
		"is_refund":     !student.NutritionMeal,
		"refund_amount": refund,
	}
	if newStatus != nil {
		updates["status"] = *newStatus
		updates["reviewer_id"] = nil
		updates["reviewed_at"] = nil
		updates["review_remark"] = nil
	}
	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.loadRecord(id)
}

// Delete removes a pending or rejected record. Approved records are
// financially settled and protected from deletion; revoke them first.
func (s *LeaveService) Delete(id uint) error {
	record, err := s.loadRecord(id)
	if err != nil {
		return err
	}
	if record.Status == models.LeaveStatusApproved {
		return ErrApprovedProtected
	}
	return s.db.Delete(record).Error
}

// Get loads a record with its references for display.
func (s *LeaveService) Get(id uint) (*models.LeaveRecord, error) {
	var record models.LeaveRecord
	err := s.db.Preload("Student").Preload("Student.Class").Preload("Semester").
		Preload("Applicant").Preload("Reviewer").
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// LeaveFilter narrows List results.
type LeaveFilter struct {
	StudentID  uint
	SemesterID uint
	Status     string
	Page       int
	PageSize   int
}

// List returns a page of records plus the unpaged total.
func (s *LeaveService) List(filter LeaveFilter) ([]models.LeaveRecord, int64, error) {
	query := s.db.Model(&models.LeaveRecord{})
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.SemesterID != 0 {
		query = query.Where("semester_id = ?", filter.SemesterID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var records []models.LeaveRecord
	err := query.Preload("Student").Preload("Semester").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func isValidLeaveStatus(status string) bool {
	switch status {
	case models.LeaveStatusPending, models.LeaveStatusApproved, models.LeaveStatusRejected:
		return true
	}
	return false
}
