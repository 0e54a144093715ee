package routes

import (
	"staffclock/src/controllers"
	"staffclock/src/middleware"
	"staffclock/src/utils"

	"github.com/gofiber/fiber/v2"
)

// Handlers controller ทั้งหมดที่ main ประกอบไว้
type Handlers struct {
	Attendance *controllers.AttendanceController
	Admin      *controllers.AdminController
	Auth       *controllers.AuthController
	JWTSecret  string
	Tokens     *utils.TokenStore
}

func InitRoutes(app *fiber.App, h Handlers) {
	requireAuth := middleware.AuthJWT(h.JWTSecret, h.Tokens)

	authRoutes(app, h.Auth, requireAuth)
	attendanceRoutes(app, h.Attendance, requireAuth)
	adminRoutes(app, h.Admin, requireAuth)

	// Route เช็คว่า API ทำงานอยู่
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})
}
