package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutorflow_backend/internals/features/schedule/policies/dto"
	"tutorflow_backend/internals/features/schedule/policies/model"
	"tutorflow_backend/internals/features/schedule/policies/service"
	helper "tutorflow_backend/internals/helpers"
)

type CancellationPolicyController struct {
	DB *gorm.DB
}

func NewCancellationPolicyController(db *gorm.DB) *CancellationPolicyController {
	return &CancellationPolicyController{DB: db}
}

var validate = validator.New()

// GET /api/t/cancellation-policy
// Devolve a política ativa do professor (ou a default quando nenhuma foi
// configurada).
func (ctrl *CancellationPolicyController) GetActivePolicy(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	policy, err := service.GetActivePolicy(ctrl.DB, teacherID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar política")
	}
	return helper.JsonOK(c, "OK", policy)
}

// POST /api/t/cancellation-policy
// Grava uma nova política ativa. A anterior é desativada na mesma
// transação, mantendo no máximo uma ativa por professor.
func (ctrl *CancellationPolicyController) UpsertPolicy(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	var input dto.UpsertPolicyRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	policy := model.CancellationPolicyModel{
		CancellationPolicyTeacherID:        teacherID,
		CancellationPolicyHoursBeforeClass: input.HoursBeforeClass,
		CancellationPolicyChargePercentage: input.ChargePercentage,
		CancellationPolicyAllowAmnesty:     input.AllowAmnesty,
		CancellationPolicyIsActive:         true,
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.CancellationPolicyModel{}).
			Where("cancellation_policy_teacher_id = ? AND cancellation_policy_is_active = ?", teacherID, true).
			Update("cancellation_policy_is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&policy).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao salvar política")
	}

	return helper.JsonCreated(c, "Política salva com sucesso", policy)
}
