package routes

import (
	"schoolleave_go/controllers"
	"schoolleave_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	leaveController := &controllers.LeaveController{}
	importController := &controllers.LeaveImportController{}
	refundController := &controllers.RefundController{}
	settingsController := &controllers.SettingsController{}
	schoolController := &controllers.SchoolController{}
	healthController := controllers.NewHealthController(nil)

	// Health endpoint (no authentication)
	app.Get("/health", healthController.GetHealthStatus)

	// API group
	api := app.Group("/api")

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware(), middleware.LogActivityMiddleware())

	protected.Post("/auth/logout", authController.Logout)
	protected.Post("/auth/register", middleware.RequireOwnerOrAdmin(), authController.Register)

	// Leave record lifecycle
	leaves := protected.Group("/leaves")
	leaves.Post("/", middleware.RequireTeacherOrAbove(), leaveController.CreateLeave)
	leaves.Get("/", middleware.RequireTeacherOrAbove(), leaveController.GetLeaves)
	leaves.Post("/import", middleware.RequireTeacherOrAbove(), importController.Import)
	leaves.Get("/:id", middleware.RequireTeacherOrAbove(), leaveController.GetLeave)
	leaves.Put("/:id", middleware.RequireTeacherOrAbove(), leaveController.UpdateLeave)
	leaves.Delete("/:id", middleware.RequireOwnerOrAdmin(), leaveController.DeleteLeave)
	leaves.Post("/:id/review", middleware.RequireOwnerOrAdmin(), leaveController.ReviewLeave)
	leaves.Post("/:id/revoke", middleware.RequireOwnerOrAdmin(), leaveController.RevokeLeave)

	// Refund maintenance
	refunds := protected.Group("/refunds", middleware.RequireOwnerOrAdmin())
	refunds.Post("/recalculate", refundController.RecalculateRefunds)

	// System settings
	settings := protected.Group("/settings", middleware.RequireOwnerOrAdmin())
	settings.Get("/", settingsController.GetSettings)
	settings.Put("/:key", settingsController.UpdateSetting)

	// Reference data
	semesters := protected.Group("/semesters")
	semesters.Get("/", schoolController.GetSemesters)
	semesters.Post("/", middleware.RequireOwnerOrAdmin(), schoolController.CreateSemester)
	semesters.Put("/:id", middleware.RequireOwnerOrAdmin(), schoolController.UpdateSemester)

	grades := protected.Group("/grades")
	grades.Get("/", schoolController.GetGrades)
	grades.Post("/", middleware.RequireOwnerOrAdmin(), schoolController.CreateGrade)

	classes := protected.Group("/classes")
	classes.Get("/", schoolController.GetClasses)
	classes.Post("/", middleware.RequireOwnerOrAdmin(), schoolController.CreateClass)

	students := protected.Group("/students")
	students.Get("/", middleware.RequireTeacherOrAbove(), schoolController.GetStudents)
	students.Get("/:id", middleware.RequireTeacherOrAbove(), schoolController.GetStudent)
	students.Post("/", middleware.RequireOwnerOrAdmin(), schoolController.CreateStudent)
	students.Put("/:id", middleware.RequireOwnerOrAdmin(), schoolController.UpdateStudent)
	students.Delete("/:id", middleware.RequireOwnerOrAdmin(), schoolController.DeleteStudent)

	feeConfigs := protected.Group("/fee-configs")
	feeConfigs.Get("/", middleware.RequireTeacherOrAbove(), schoolController.GetFeeConfigs)
	feeConfigs.Put("/", middleware.RequireOwnerOrAdmin(), schoolController.UpsertFeeConfig)
}
