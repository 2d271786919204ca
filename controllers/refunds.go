package controllers

import (
	"context"
	"time"

	"schoolleave_go/middleware"
	"schoolleave_go/services"

	"github.com/gofiber/fiber/v2"
)

// RefundController triggers bulk refund maintenance.
type RefundController struct{}

// RecalculateRefunds handles POST /api/refunds/recalculate. It re-derives
// every refund-flagged record's amount from the current fee configuration
// synchronously; clients with very large datasets should prefer the
// scheduled nightly run.
func (rc *RefundController) RecalculateRefunds(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Minute)
	defer cancel()

	updated, err := services.NewRefundRecalculator().RecalculateAll(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "recalculation did not complete",
			"updated": updated,
		})
	}

	middleware.LogActivity(c, "RECALCULATE", "refunds", 0, fiber.Map{"updated": updated})
	return c.JSON(fiber.Map{
		"message": "Refund recalculation complete",
		"updated": updated,
	})
}
