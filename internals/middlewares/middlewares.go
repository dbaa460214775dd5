package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"tutorflow_backend/internals/middlewares/logger"
)

// SetupMiddlewares registra os middlewares globais na ordem certa:
// recovery primeiro (captura panic de tudo que vem depois), depois
// logging, CORS e rate limit global.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
