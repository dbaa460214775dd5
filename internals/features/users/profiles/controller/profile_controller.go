package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutorflow_backend/internals/features/users/profiles/dto"
	"tutorflow_backend/internals/features/users/profiles/model"
	helper "tutorflow_backend/internals/helpers"
)

type ProfileController struct {
	DB *gorm.DB
}

func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{DB: db}
}

var validate = validator.New()

// GET /api/u/me
func (ctrl *ProfileController) GetMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var profile model.ProfileModel
	if err := ctrl.DB.Where("profile_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Perfil não encontrado")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar perfil")
	}

	return helper.JsonOK(c, "OK", profile)
}

// PUT /api/u/me
func (ctrl *ProfileController) UpdateMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var input dto.UpdateProfileRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	updates := map[string]interface{}{}
	if input.FullName != nil {
		updates["profile_full_name"] = *input.FullName
	}
	if input.Phone != nil {
		updates["profile_phone"] = *input.Phone
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nada para atualizar")
	}

	if err := ctrl.DB.Model(&model.ProfileModel{}).
		Where("profile_id = ?", userID).
		Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao atualizar perfil")
	}

	var profile model.ProfileModel
	if err := ctrl.DB.Where("profile_id = ?", userID).First(&profile).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao recarregar perfil")
	}

	return helper.JsonUpdated(c, "Perfil atualizado com sucesso", profile)
}
