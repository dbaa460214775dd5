package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutorflow_backend/internals/features/schedule/exceptions/dto"
	"tutorflow_backend/internals/features/schedule/exceptions/service"
	helper "tutorflow_backend/internals/helpers"
)

type ClassExceptionController struct {
	DB *gorm.DB
}

func NewClassExceptionController(db *gorm.DB) *ClassExceptionController {
	return &ClassExceptionController{DB: db}
}

var validate = validator.New()

// ========================== SINGLE ==========================
// POST /api/t/class-exceptions
func (ctrl *ClassExceptionController) RecordException(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	var input dto.RecordExceptionRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	payload, err := buildPayload(input.Action, input.NewStartAt, input.NewEndAt, input.NewTitle, input.NewDescription, input.NewDurationMinutes)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	exc, err := service.RecordSingleException(ctrl.DB, teacherID, input.OriginalClassID, input.ExceptionDate, input.Action, payload)
	if err != nil {
		return jsonFromServiceError(c, err, "Falha ao gravar exceção")
	}

	return helper.JsonCreated(c, "Exceção registrada com sucesso", exc)
}

// ========================== RECURRING ==========================
// POST /api/t/class-exceptions/recurring
func (ctrl *ClassExceptionController) RecordRecurringExceptions(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	var input dto.RecordRecurringExceptionsRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	payload, err := buildPayload(input.Action, input.NewStartAt, input.NewEndAt, input.NewTitle, input.NewDescription, input.NewDurationMinutes)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	count, err := service.RecordRecurringExceptions(ctrl.DB, teacherID, input.OriginalClassID, input.FromDate, input.Action, payload, input.EndDate)
	if err != nil {
		return jsonFromServiceError(c, err, "Falha ao gravar exceções recorrentes")
	}

	return helper.JsonCreated(c, "Exceções registradas com sucesso", fiber.Map{"affected": count})
}

func buildPayload(action string, newStartAt, newEndAt *time.Time, newTitle, newDescription *string, newDurationMinutes *int) (*service.ReschedulePayload, error) {
	if action != service.ActionReschedule {
		return nil, nil
	}
	if newStartAt == nil || newEndAt == nil {
		return nil, errors.New("remarcação exige new_start_at e new_end_at")
	}
	return &service.ReschedulePayload{
		NewStartAt:         *newStartAt,
		NewEndAt:           *newEndAt,
		NewTitle:           newTitle,
		NewDescription:     newDescription,
		NewDurationMinutes: newDurationMinutes,
	}, nil
}

func jsonFromServiceError(c *fiber.Ctx, err error, fallback string) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, fallback)
}
