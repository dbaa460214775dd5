package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authService "tutorflow_backend/internals/features/users/auth/service"
	"tutorflow_backend/internals/middlewares"
)

// AuthRoutes registra os endpoints públicos de autenticação.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	auth := app.Group("/api/auth")

	auth.Post("/register", middlewares.RegisterRateLimiter(), func(c *fiber.Ctx) error {
		return authService.Register(db, c)
	})
	auth.Post("/login", middlewares.LoginRateLimiter(), func(c *fiber.Ctx) error {
		return authService.Login(db, c)
	})
	auth.Post("/logout", func(c *fiber.Ctx) error {
		return authService.Logout(db, c)
	})
}
