package controllers

import (
	"schoolleave_go/database"
	"schoolleave_go/middleware"
	"schoolleave_go/models"
	"schoolleave_go/services"

	"github.com/gofiber/fiber/v2"
)

// SettingsController manages the runtime system settings that tune the
// leave rule engine.
type SettingsController struct{}

// GetSettings handles GET /api/settings
func (sc *SettingsController) GetSettings(c *fiber.Ctx) error {
	var settings []models.SystemSetting
	if err := database.DB.Order("`key`").Find(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cannot fetch settings"})
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// UpdateSetting handles PUT /api/settings/:key
func (sc *SettingsController) UpdateSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "setting key is required"})
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := services.NewConfigProvider().Set(key, req.Value); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cannot update setting"})
	}

	middleware.LogActivity(c, "UPDATE", "settings", 0, fiber.Map{"key": key, "value": req.Value})
	return c.JSON(fiber.Map{"message": "Setting updated", "key": key, "value": req.Value})
}
