package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tutorflow_backend/internals/constants"
)

// GetUserIDFromToken lê o user_id gravado nos Locals pelo AuthMiddleware.
// 401 se não logado, 400 se o formato for inválido.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("user_id")
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Usuário não autenticado")
	}

	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Usuário não autenticado")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Usuário não autenticado")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "user_id inválido no token")
		}
		return id, nil
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "user_id inválido no token")
	}
}

// GetRoleFromToken lê o papel (teacher|student) gravado nos Locals.
func GetRoleFromToken(c *fiber.Ctx) (string, error) {
	v, _ := c.Locals("role").(string)
	if v == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Usuário não autenticado")
	}
	return v, nil
}

// GetTeacherIDFromToken exige papel teacher e devolve o user_id.
func GetTeacherIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	role, err := GetRoleFromToken(c)
	if err != nil {
		return uuid.Nil, err
	}
	if role != constants.RoleTeacher {
		return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "Apenas professores podem executar esta ação")
	}
	return GetUserIDFromToken(c)
}
