package routes

import (
	"staffclock/src/controllers"

	"github.com/gofiber/fiber/v2"
)

// authRoutes กำหนด route สำหรับ auth (Google login/logout)
func authRoutes(app *fiber.App, ac *controllers.AuthController, requireAuth fiber.Handler) {
	auth := app.Group("/auth")

	auth.Get("/google", ac.GoogleLogin)             // 🔐 ขอ URL ไปหน้า Google
	auth.Get("/google/callback", ac.GoogleCallback) // ↩️ Google redirect กลับมา
	auth.Get("/me", requireAuth, ac.Me)
	auth.Post("/logout", requireAuth, ac.Logout)
}
