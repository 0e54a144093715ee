package routes

import (
	"staffclock/src/controllers"

	"github.com/gofiber/fiber/v2"
)

func attendanceRoutes(app *fiber.App, ac *controllers.AttendanceController, requireAuth fiber.Handler) {
	attendance := app.Group("/attendance", requireAuth)

	attendance.Post("/clock-in", ac.ClockIn)
	attendance.Post("/clock-out", ac.ClockOut)
	attendance.Get("/today", ac.Today)
	attendance.Get("/history", ac.History)
}
