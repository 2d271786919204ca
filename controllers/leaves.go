package controllers

import (
	"errors"
	"schoolleave_go/middleware"
	"schoolleave_go/services"

	"github.com/gofiber/fiber/v2"
)

// LeaveController exposes the leave record lifecycle over HTTP. All rule
// semantics live in services; handlers only parse, delegate and map errors.
type LeaveController struct{}

// LeaveRequest is the JSON body for create and update.
type LeaveRequest struct {
	StudentID  uint   `json:"student_id"`
	SemesterID uint   `json:"semester_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	LeaveDays  int    `json:"leave_days"`
	Reason     string `json:"reason"`
	// Status is only honored on update; supplying it is the administrative
	// override that re-statuses an approved record.
	Status *string `json:"status,omitempty"`
}

func (req *LeaveRequest) toInput() (services.LeaveInput, error) {
	start, err := services.ParseDateOnly(req.StartDate)
	if err != nil {
		return services.LeaveInput{}, err
	}
	end, err := services.ParseDateOnly(req.EndDate)
	if err != nil {
		return services.LeaveInput{}, err
	}
	return services.LeaveInput{
		StudentID:  req.StudentID,
		SemesterID: req.SemesterID,
		StartDate:  start,
		EndDate:    end,
		LeaveDays:  req.LeaveDays,
		Reason:     req.Reason,
	}, nil
}

// respondLeaveError maps service errors onto HTTP statuses: validation
// failures are 422 with the offending threshold, reference errors 404,
// state conflicts 409.
func respondLeaveError(c *fiber.Ctx, err error) error {
	if ve, ok := services.IsValidationError(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": ve.Error(),
			"code":  ve.Code,
			"limit": ve.Limit,
		})
	}

	switch {
	case errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrSemesterNotFound),
		errors.Is(err, services.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrAlreadyPending),
		errors.Is(err, services.ErrApprovedImmutable),
		errors.Is(err, services.ErrApprovedProtected):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// CreateLeave handles POST /api/leaves
func (lc *LeaveController) CreateLeave(c *fiber.Ctx) error {
	var req LeaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	record, err := services.NewLeaveService().Create(input, claims.UserID)
	if err != nil {
		return respondLeaveError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "leaves", record.ID, fiber.Map{"student_id": record.StudentID})
	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetLeaves handles GET /api/leaves
func (lc *LeaveController) GetLeaves(c *fiber.Ctx) error {
	filter := services.LeaveFilter{
		StudentID:  uint(c.QueryInt("student_id")),
		SemesterID: uint(c.QueryInt("semester_id")),
		Status:     c.Query("status"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 20),
	}

	records, total, err := services.NewLeaveService().List(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cannot fetch leave records"})
	}

	return c.JSON(fiber.Map{
		"leaves":    records,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// GetLeave handles GET /api/leaves/:id
func (lc *LeaveController) GetLeave(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid leave record ID"})
	}

	record, err := services.NewLeaveService().Get(uint(id))
	if err != nil {
		return respondLeaveError(c, err)
	}
	return c.JSON(record)
}

// ReviewLeave handles POST /api/leaves/:id/review
func (lc *LeaveController) ReviewLeave(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid leave record ID"})
	}
	var req struct {
		Decision string `json:"decision"` // approved | rejected
		Remark   string `json:"remark"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := services.NewLeaveService().Review(uint(id), services.ReviewDecision(req.Decision), claims.UserID, req.Remark)
	if err != nil {
		return respondLeaveError(c, err)
	}

	middleware.LogActivity(c, "REVIEW", "leaves", record.ID, fiber.Map{"decision": req.Decision})
	return c.JSON(record)
}

// RevokeLeave handles POST /api/leaves/:id/revoke
func (lc *LeaveController) RevokeLeave(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid leave record ID"})
	}
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := services.NewLeaveService().Revoke(uint(id), claims.UserID)
	if err != nil {
		return respondLeaveError(c, err)
	}

	middleware.LogActivity(c, "REVOKE", "leaves", record.ID, nil)
	return c.JSON(record)
}

// UpdateLeave handles PUT /api/leaves/:id
func (lc *LeaveController) UpdateLeave(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid leave record ID"})
	}
	var req LeaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	record, err := services.NewLeaveService().Update(uint(id), input, req.Status)
	if err != nil {
		return respondLeaveError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "leaves", record.ID, nil)
	return c.JSON(record)
}

// DeleteLeave handles DELETE /api/leaves/:id
func (lc *LeaveController) DeleteLeave(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid leave record ID"})
	}

	if err := services.NewLeaveService().Delete(uint(id)); err != nil {
		return respondLeaveError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "leaves", uint(id), nil)
	return c.JSON(fiber.Map{"message": "Leave record deleted"})
}
