package routes

import (
	"staffclock/src/controllers"
	"staffclock/src/middleware"
	"staffclock/src/models"

	"github.com/gofiber/fiber/v2"
)

// adminRoutes เฉพาะ role admin
func adminRoutes(app *fiber.App, ac *controllers.AdminController, requireAuth fiber.Handler) {
	admin := app.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin))

	admin.Get("/attendance", ac.ListAttendance)
	admin.Get("/attendance/export", ac.ExportAttendance)
}
