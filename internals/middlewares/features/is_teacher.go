package features

import (
	"github.com/gofiber/fiber/v2"

	"tutorflow_backend/internals/constants"
)

// IsTeacher bloqueia o grupo para quem não tem papel teacher no token.
// Depende do AuthMiddleware já ter populado c.Locals("role").
func IsTeacher() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != constants.RoleTeacher {
			return fiber.NewError(fiber.StatusForbidden, "Apenas professores podem acessar este recurso")
		}
		return c.Next()
	}
}
