package controllers

import (
	"strconv"

	"schoolleave_go/database"
	"schoolleave_go/middleware"
	"schoolleave_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SchoolController covers the reference data the leave engine depends on:
// semesters, grades, classes, students and per-class fee configuration.
type SchoolController struct{}

func paginate(c *fiber.Ctx) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

// Semesters

// GetSemesters returns all semesters ordered by start date
func (sc *SchoolController) GetSemesters(c *fiber.Ctx) error {
	var semesters []models.Semester
	if err := database.DB.Order("start_date DESC").Find(&semesters).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch semesters"})
	}
	return c.JSON(fiber.Map{"semesters": semesters})
}

// CreateSemester creates a new semester
func (sc *SchoolController) CreateSemester(c *fiber.Ctx) error {
	var semester models.Semester
	if err := c.BodyParser(&semester); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if semester.Name == "" || semester.SchoolDays <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and a positive school_days are required"})
	}
	if semester.EndDate.Before(semester.StartDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must not precede start_date"})
	}

	if err := database.DB.Create(&semester).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create semester"})
	}

	middleware.LogActivity(c, "CREATE", "semesters", semester.ID, nil)
	return c.Status(fiber.StatusCreated).JSON(semester)
}

// UpdateSemester updates semester fields
func (sc *SchoolController) UpdateSemester(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid semester ID"})
	}

	var semester models.Semester
	if err := database.DB.First(&semester, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Semester not found"})
	}

	var updates models.Semester
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := database.DB.Model(&semester).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update semester"})
	}

	middleware.LogActivity(c, "UPDATE", "semesters", semester.ID, nil)
	return c.JSON(semester)
}

// Grades

// GetGrades returns all grades in display order
func (sc *SchoolController) GetGrades(c *fiber.Ctx) error {
	var grades []models.Grade
	if err := database.DB.Order("sort_order").Find(&grades).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch grades"})
	}
	return c.JSON(fiber.Map{"grades": grades})
}

// CreateGrade creates a new grade
func (sc *SchoolController) CreateGrade(c *fiber.Ctx) error {
	var grade models.Grade
	if err := c.BodyParser(&grade); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if grade.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	if err := database.DB.Create(&grade).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create grade"})
	}

	middleware.LogActivity(c, "CREATE", "grades", grade.ID, nil)
	return c.Status(fiber.StatusCreated).JSON(grade)
}

// Classes

// GetClasses returns classes, optionally filtered by grade
func (sc *SchoolController) GetClasses(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Class{}).Preload("Grade")
	if gradeID := c.Query("grade_id"); gradeID != "" {
		query = query.Where("grade_id = ?", gradeID)
	}

	var classes []models.Class
	if err := query.Find(&classes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch classes"})
	}
	return c.JSON(fiber.Map{"classes": classes})
}

// CreateClass creates a new class under a grade
func (sc *SchoolController) CreateClass(c *fiber.Ctx) error {
	var class models.Class
	if err := c.BodyParser(&class); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if class.Name == "" || class.GradeID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and grade_id are required"})
	}

	var grade models.Grade
	if err := database.DB.First(&grade, class.GradeID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Grade not found"})
	}

	if err := database.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class"})
	}

	middleware.LogActivity(c, "CREATE", "classes", class.ID, nil)
	return c.Status(fiber.StatusCreated).JSON(class)
}

// Students

// GetStudents returns students with pagination and optional class filter
func (sc *SchoolController) GetStudents(c *fiber.Ctx) error {
	page, limit, offset := paginate(c)

	query := database.DB.Model(&models.Student{})
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ? OR student_no LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var students []models.Student
	if err := query.Preload("Class").Preload("Class.Grade").
		Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// CreateStudent creates a new student
func (sc *SchoolController) CreateStudent(c *fiber.Ctx) error {
	var student models.Student
	if err := c.BodyParser(&student); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if student.StudentNo == "" || student.Name == "" || student.ClassID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_no, name and class_id are required"})
	}

	var class models.Class
	if err := database.DB.First(&class, student.ClassID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}

	if err := database.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID, nil)
	return c.Status(fiber.StatusCreated).JSON(student)
}

// GetStudent returns a single student with class and grade
func (sc *SchoolController) GetStudent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.Preload("Class").Preload("Class.Grade").First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}
	return c.JSON(student)
}

// DeleteStudent removes a student without leave history
func (sc *SchoolController) DeleteStudent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var leaves int64
	database.DB.Model(&models.LeaveRecord{}).Where("student_id = ?", student.ID).Count(&leaves)
	if leaves > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Student has leave records and cannot be deleted"})
	}

	if err := database.DB.Delete(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete student"})
	}

	middleware.LogActivity(c, "DELETE", "students", student.ID, nil)
	return c.JSON(fiber.Map{"message": "Student deleted"})
}

// UpdateStudent updates student fields
func (sc *SchoolController) UpdateStudent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var updates struct {
		Name          *string `json:"name"`
		ClassID       *uint   `json:"class_id"`
		Gender        *string `json:"gender"`
		NutritionMeal *bool   `json:"nutrition_meal"`
		GuardianName  *string `json:"guardian_name"`
		GuardianPhone *string `json:"guardian_phone"`
	}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	fields := map[string]interface{}{}
	if updates.Name != nil {
		fields["name"] = *updates.Name
	}
	if updates.ClassID != nil {
		fields["class_id"] = *updates.ClassID
	}
	if updates.Gender != nil {
		fields["gender"] = *updates.Gender
	}
	if updates.NutritionMeal != nil {
		fields["nutrition_meal"] = *updates.NutritionMeal
	}
	if updates.GuardianName != nil {
		fields["guardian_name"] = *updates.GuardianName
	}
	if updates.GuardianPhone != nil {
		fields["guardian_phone"] = *updates.GuardianPhone
	}

	if len(fields) > 0 {
		if err := database.DB.Model(&student).Updates(fields).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
		}
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, nil)
	return c.JSON(student)
}

// Fee configuration

// GetFeeConfigs returns fee configurations, optionally filtered by semester
func (sc *SchoolController) GetFeeConfigs(c *fiber.Ctx) error {
	query := database.DB.Model(&models.FeeConfig{}).Preload("Class").Preload("Semester")
	if semesterID := c.Query("semester_id"); semesterID != "" {
		query = query.Where("semester_id = ?", semesterID)
	}

	var configs []models.FeeConfig
	if err := query.Find(&configs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch fee configurations"})
	}
	return c.JSON(fiber.Map{"fee_configs": configs})
}

// UpsertFeeConfig creates or updates the fee configuration for a
// (class, semester) pair. Changing the fee does not touch existing refunds;
// run the recalculation job to apply the new standard retroactively.
func (sc *SchoolController) UpsertFeeConfig(c *fiber.Ctx) error {
	var req struct {
		ClassID         uint            `json:"class_id"`
		SemesterID      uint            `json:"semester_id"`
		MealFeeStandard decimal.Decimal `json:"meal_fee_standard"`
		PrepaidDays     int             `json:"prepaid_days"`
		ActualDays      int             `json:"actual_days"`
		SuspensionDays  int             `json:"suspension_days"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ClassID == 0 || req.SemesterID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "class_id and semester_id are required"})
	}
	if req.MealFeeStandard.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "meal_fee_standard must not be negative"})
	}

	var fc models.FeeConfig
	err := database.DB.Where("class_id = ? AND semester_id = ?", req.ClassID, req.SemesterID).First(&fc).Error
	if err != nil {
		fc = models.FeeConfig{
			ClassID:         req.ClassID,
			SemesterID:      req.SemesterID,
			MealFeeStandard: req.MealFeeStandard,
			PrepaidDays:     req.PrepaidDays,
			ActualDays:      req.ActualDays,
			SuspensionDays:  req.SuspensionDays,
		}
		if err := database.DB.Create(&fc).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create fee configuration"})
		}
		middleware.LogActivity(c, "CREATE", "fee_configs", fc.ID, nil)
		return c.Status(fiber.StatusCreated).JSON(fc)
	}

	updates := map[string]interface{}{
		"meal_fee_standard": req.MealFeeStandard,
		"prepaid_days":      req.PrepaidDays,
		"actual_days":       req.ActualDays,
		"suspension_days":   req.SuspensionDays,
	}
	if err := database.DB.Model(&fc).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update fee configuration"})
	}

	middleware.LogActivity(c, "UPDATE", "fee_configs", fc.ID, nil)
	return c.JSON(fc)
}
