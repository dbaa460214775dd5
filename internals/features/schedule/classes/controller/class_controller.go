package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorflow_backend/internals/constants"
	notifService "tutorflow_backend/internals/features/home/notifications/service"
	"tutorflow_backend/internals/features/schedule/classes/dto"
	"tutorflow_backend/internals/features/schedule/classes/model"
	"tutorflow_backend/internals/features/schedule/classes/service"
	exceptionModel "tutorflow_backend/internals/features/schedule/exceptions/model"
	policyService "tutorflow_backend/internals/features/schedule/policies/service"
	helper "tutorflow_backend/internals/helpers"
)

type ClassController struct {
	DB     *gorm.DB
	Mailer notifService.Mailer
}

func NewClassController(db *gorm.DB, mailer notifService.Mailer) *ClassController {
	return &ClassController{DB: db, Mailer: mailer}
}

var validate = validator.New()

// ========================== CREATE ==========================
// POST /api/t/classes
func (ctrl *ClassController) CreateClass(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	var input dto.CreateClassRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !input.IsGroup && input.StudentID == nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Aula individual exige student_id")
	}
	if input.RecurrenceFrequency != nil && model.FrequencyStepDays(*input.RecurrenceFrequency) == 0 {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Frequência de recorrência inválida")
	}

	cls := model.ClassModel{
		ClassTeacherID:            teacherID,
		ClassStudentID:            input.StudentID,
		ClassServiceID:            input.ServiceID,
		ClassTitle:                input.Title,
		ClassDescription:          input.Description,
		ClassStartAt:              input.StartAt,
		ClassDurationMinutes:      input.DurationMin,
		ClassPriceCents:           input.PriceCents,
		ClassStatus:               model.ClassStatusPendente,
		ClassIsGroup:              input.IsGroup,
		ClassIsExperimental:       input.IsExperimental,
		ClassRecurrenceFrequency:  input.RecurrenceFrequency,
		ClassRecurrenceIsInfinite: input.RecurrenceIsInfinite && input.RecurrenceFrequency != nil,
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cls).Error; err != nil {
			return err
		}
		if cls.ClassIsGroup && len(input.ParticipantIDs) > 0 {
			participants := make([]model.ClassParticipantModel, 0, len(input.ParticipantIDs))
			for _, sid := range input.ParticipantIDs {
				participants = append(participants, model.ClassParticipantModel{
					ClassParticipantClassID:   cls.ClassID,
					ClassParticipantStudentID: sid,
				})
			}
			if err := tx.Create(&participants).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao criar aula")
	}

	return helper.JsonCreated(c, "Aula criada com sucesso", cls)
}

// ========================== CALENDAR ==========================
// GET /api/u/classes?from=...&to=...
//
// Lista as aulas do usuário no intervalo, já com as exceções aplicadas:
// ocorrência cancelada aparece como cancelada, remarcada aparece com os
// novos horário/título.
func (ctrl *ClassController) GetCalendar(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetRoleFromToken(c)
	if err != nil {
		return err
	}

	from, to, err := parseRange(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	q := ctrl.DB.Where("class_start_at >= ? AND class_start_at < ?", from, to)
	if role == constants.RoleTeacher {
		q = q.Where("class_teacher_id = ?", userID)
	} else {
		q = q.Where(
			"class_student_id = ? OR class_id IN (?)",
			userID,
			ctrl.DB.Model(&model.ClassParticipantModel{}).
				Select("class_participant_class_id").
				Where("class_participant_student_id = ?", userID),
		)
	}

	var classes []model.ClassModel
	if err := q.Order("class_start_at ASC").Find(&classes).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao listar aulas")
	}

	classes, err = applyExceptions(ctrl.DB, classes)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao aplicar exceções")
	}

	return helper.JsonList(c, "OK", classes, nil)
}

// applyExceptions sobrepõe às instâncias materializadas os desvios
// registrados para a sua data (cancelamento ou remarcação).
func applyExceptions(db *gorm.DB, classes []model.ClassModel) ([]model.ClassModel, error) {
	if len(classes) == 0 {
		return classes, nil
	}

	ids := make([]uuid.UUID, 0, len(classes)*2)
	for _, cls := range classes {
		ids = append(ids, cls.ClassID)
		if cls.ClassSeriesID != nil {
			ids = append(ids, *cls.ClassSeriesID)
		}
	}

	var exceptions []exceptionModel.ClassExceptionModel
	if err := db.Where("class_exception_original_class_id IN ?", ids).
		Find(&exceptions).Error; err != nil {
		return nil, err
	}
	if len(exceptions) == 0 {
		return classes, nil
	}

	type key struct {
		classID uuid.UUID
		date    time.Time
	}
	byKey := make(map[key]*exceptionModel.ClassExceptionModel, len(exceptions))
	for i := range exceptions {
		exc := &exceptions[i]
		k := key{exc.ClassExceptionOriginalClassID, dateOnly(exc.ClassExceptionDate)}
		byKey[k] = exc
	}

	for i := range classes {
		cls := &classes[i]
		date := dateOnly(cls.ClassStartAt)
		exc := byKey[key{cls.ClassID, date}]
		if exc == nil && cls.ClassSeriesID != nil {
			exc = byKey[key{*cls.ClassSeriesID, date}]
		}
		if exc == nil {
			continue
		}
		switch exc.ClassExceptionStatus {
		case exceptionModel.ExceptionStatusCanceled:
			if cls.ClassStatus != model.ClassStatusCancelada {
				cls.ClassStatus = model.ClassStatusCancelada
			}
		case exceptionModel.ExceptionStatusRescheduled:
			if exc.ClassExceptionNewStartAt != nil {
				cls.ClassStartAt = *exc.ClassExceptionNewStartAt
			}
			if exc.ClassExceptionNewDurationMinutes != nil {
				cls.ClassDurationMinutes = *exc.ClassExceptionNewDurationMinutes
			}
			if exc.ClassExceptionNewTitle != nil {
				cls.ClassTitle = *exc.ClassExceptionNewTitle
			}
			if exc.ClassExceptionNewDescription != nil {
				cls.ClassDescription = exc.ClassExceptionNewDescription
			}
		}
	}
	return classes, nil
}

// ========================== DETAIL ==========================
// GET /api/u/classes/:id
func (ctrl *ClassController) GetClassByID(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	classID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de aula inválido")
	}

	var cls model.ClassModel
	if err := ctrl.DB.Where("class_id = ?", classID).First(&cls).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Aula não encontrada")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar aula")
	}

	ok, err := ctrl.userBelongsToClass(&cls, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao verificar acesso")
	}
	if !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "Sem acesso a esta aula")
	}

	return helper.JsonOK(c, "OK", cls)
}

// ========================== UPDATE ==========================
// PUT /api/t/classes/:id
func (ctrl *ClassController) UpdateClass(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	classID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de aula inválido")
	}

	var input dto.UpdateClassRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var cls model.ClassModel
	if err := ctrl.DB.Where("class_id = ? AND class_teacher_id = ?", classID, teacherID).
		First(&cls).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Aula não encontrada")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar aula")
	}
	if cls.ClassStatus == model.ClassStatusCancelada || cls.ClassStatus == model.ClassStatusConcluida {
		return helper.JsonError(c, fiber.StatusConflict, "Aula cancelada ou concluída não pode ser editada")
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["class_title"] = *input.Title
	}
	if input.Description != nil {
		updates["class_description"] = *input.Description
	}
	if input.StartAt != nil {
		updates["class_start_at"] = *input.StartAt
	}
	if input.DurationMin != nil {
		updates["class_duration_minutes"] = *input.DurationMin
	}
	if input.PriceCents != nil {
		updates["class_price_cents"] = *input.PriceCents
	}
	if len(updates) == 0 {
		return helper.JsonOK(c, "Nada para atualizar", cls)
	}

	if err := ctrl.DB.Model(&cls).Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao atualizar aula")
	}
	return helper.JsonUpdated(c, "Aula atualizada com sucesso", cls)
}

// ========================== STATUS TRANSITIONS ==========================
// PATCH /api/u/classes/:id/confirm: pendente -> confirmada
func (ctrl *ClassController) ConfirmClass(c *fiber.Ctx) error {
	return ctrl.transition(c, model.ClassStatusPendente, model.ClassStatusConfirmada, "Aula confirmada")
}

// PATCH /api/t/classes/:id/conclude: confirmada -> concluida
func (ctrl *ClassController) ConcludeClass(c *fiber.Ctx) error {
	if _, err := helper.GetTeacherIDFromToken(c); err != nil {
		return err
	}
	return ctrl.transition(c, model.ClassStatusConfirmada, model.ClassStatusConcluida, "Aula concluída")
}

func (ctrl *ClassController) transition(c *fiber.Ctx, fromStatus, toStatus, okMsg string) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	classID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de aula inválido")
	}

	var cls model.ClassModel
	if err := ctrl.DB.Where("class_id = ?", classID).First(&cls).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Aula não encontrada")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar aula")
	}

	ok, err := ctrl.userBelongsToClass(&cls, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao verificar acesso")
	}
	if !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "Sem acesso a esta aula")
	}

	res := ctrl.DB.Model(&model.ClassModel{}).
		Where("class_id = ? AND class_status = ?", classID, fromStatus).
		Update("class_status", toStatus)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao atualizar status")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Status atual não permite esta transição")
	}

	cls.ClassStatus = toStatus
	return helper.JsonUpdated(c, okMsg, cls)
}

// ========================== CANCEL ==========================
// POST /api/u/classes/:id/cancel
func (ctrl *ClassController) CancelClass(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetRoleFromToken(c)
	if err != nil {
		return err
	}

	classID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de aula inválido")
	}

	// Corpo opcional: só carrega o motivo.
	var input dto.CancelClassRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
		}
	}

	byType := constants.CancelledByStudent
	if role == constants.RoleTeacher {
		byType = constants.CancelledByTeacher
	}

	result, err := policyService.EvaluateCancellation(ctrl.DB, ctrl.Mailer, policyService.CancelInput{
		ClassID:         classID,
		CancelledBy:     userID,
		CancelledByType: byType,
		Reason:          input.Reason,
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return helper.JsonError(c, fe.Code, fe.Message)
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao cancelar aula")
	}

	return helper.JsonOK(c, result.Message, result)
}

// ========================== GENERATE ==========================
// POST /api/t/classes/generate
//
// Materializa as próximas ocorrências das séries infinitas do professor
// até a borda visível do calendário mais a folga de geração.
func (ctrl *ClassController) GenerateClasses(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	var input dto.GenerateClassesRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	created, err := service.GenerateMoreClasses(ctrl.DB, teacherID, input.ViewEndDate, input.SelectedStudents)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao gerar aulas")
	}

	return helper.JsonOK(c, "Geração concluída", fiber.Map{"created": created})
}

// userBelongsToClass: professor dono, aluno da aula ou participante de
// aula em grupo.
func (ctrl *ClassController) userBelongsToClass(cls *model.ClassModel, userID uuid.UUID) (bool, error) {
	if cls.ClassTeacherID == userID {
		return true, nil
	}
	if cls.ClassStudentID != nil && *cls.ClassStudentID == userID {
		return true, nil
	}
	if cls.ClassIsGroup {
		var count int64
		if err := ctrl.DB.Model(&model.ClassParticipantModel{}).
			Where("class_participant_class_id = ? AND class_participant_student_id = ?", cls.ClassID, userID).
			Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
	return false, nil
}

func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return from, to, errors.New("parâmetro from inválido (use YYYY-MM-DD)")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return from, to, errors.New("parâmetro to inválido (use YYYY-MM-DD)")
		}
		to = parsed
	}
	if !to.After(from) {
		return from, to, errors.New("intervalo inválido: to deve ser depois de from")
	}
	return from, to, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
