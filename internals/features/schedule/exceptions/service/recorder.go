package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorflow_backend/internals/configs"
	classModel "tutorflow_backend/internals/features/schedule/classes/model"
	"tutorflow_backend/internals/features/schedule/exceptions/model"
)

const (
	ActionCancel     = "cancel"
	ActionReschedule = "reschedule"
)

// ReschedulePayload carrega os novos dados quando action = reschedule.
type ReschedulePayload struct {
	NewStartAt         time.Time
	NewEndAt           time.Time
	NewTitle           *string
	NewDescription     *string
	NewDurationMinutes *int
}

var exceptionConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "class_exception_original_class_id"},
		{Name: "class_exception_date"},
	},
	DoUpdates: clause.AssignmentColumns([]string{
		"class_exception_status",
		"class_exception_new_start_at",
		"class_exception_new_end_at",
		"class_exception_new_title",
		"class_exception_new_description",
		"class_exception_new_duration_minutes",
		"class_exception_updated_at",
	}),
}

// RecordSingleException grava (upsert) um desvio para UMA ocorrência da
// série, sem alterar a linha-base. Regravar a mesma ocorrência sobrescreve
// o desvio anterior.
func RecordSingleException(db *gorm.DB, teacherID, originalClassID uuid.UUID, exceptionDate time.Time, action string, payload *ReschedulePayload) (*model.ClassExceptionModel, error) {
	base, err := loadOwnedClass(db, teacherID, originalClassID)
	if err != nil {
		return nil, err
	}

	exc, err := buildException(base, dateOnly(exceptionDate), action, payload, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Clauses(exceptionConflict).Create(exc).Error; err != nil {
		return nil, fmt.Errorf("gravar exceção: %w", err)
	}
	return exc, nil
}

// RecordRecurringExceptions grava desvios para todas as ocorrências futuras
// da série a partir de fromDate (até endDate, default fromDate + horizonte
// configurado). Para remarcação aplica a MESMA diferença de horário da
// primeira ocorrência em todas as seguintes (deslocamento uniforme, não
// edições independentes). Retorna o número de ocorrências afetadas.
func RecordRecurringExceptions(db *gorm.DB, teacherID, originalClassID uuid.UUID, fromDate time.Time, action string, payload *ReschedulePayload, endDate *time.Time) (int, error) {
	base, err := loadOwnedClass(db, teacherID, originalClassID)
	if err != nil {
		return 0, err
	}
	if !base.IsSeriesBase() {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, "Aula não é uma série recorrente")
	}
	stepDays := frequencyStep(base)
	if stepDays == 0 {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, "Frequência de recorrência inválida")
	}

	from := dateOnly(fromDate)
	end := from.AddDate(0, 0, configs.ExceptionHorizonDays)
	if endDate != nil {
		end = dateOnly(*endDate)
	}

	// Deslocamento uniforme: diferença entre o horário original da
	// primeira ocorrência e o novo horário pedido.
	var offset time.Duration
	if action == ActionReschedule {
		if payload == nil {
			return 0, fiber.NewError(fiber.StatusBadRequest, "Dados da remarcação são obrigatórios")
		}
		offset = payload.NewStartAt.Sub(occurrenceStart(base, from))
	}

	excs := make([]model.ClassExceptionModel, 0, 64)
	for d, iter := from, 0; !d.After(end) && iter < configs.ExceptionIterationCap; d, iter = d.AddDate(0, 0, stepDays), iter+1 {
		exc, err := buildException(base, d, action, payload, &offset)
		if err != nil {
			return 0, err
		}
		excs = append(excs, *exc)
	}
	if len(excs) == 0 {
		return 0, nil
	}

	// Upsert em lote: falha parcial aborta o lote inteiro.
	if err := db.Clauses(exceptionConflict).Create(&excs).Error; err != nil {
		return 0, fmt.Errorf("gravar exceções recorrentes: %w", err)
	}
	return len(excs), nil
}

func buildException(base *classModel.ClassModel, date time.Time, action string, payload *ReschedulePayload, offset *time.Duration) (*model.ClassExceptionModel, error) {
	exc := &model.ClassExceptionModel{
		ClassExceptionOriginalClassID: base.ClassID,
		ClassExceptionDate:            date,
	}

	switch action {
	case ActionCancel:
		exc.ClassExceptionStatus = model.ExceptionStatusCanceled

	case ActionReschedule:
		if payload == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Dados da remarcação são obrigatórios")
		}
		exc.ClassExceptionStatus = model.ExceptionStatusRescheduled

		newStart := payload.NewStartAt
		newEnd := payload.NewEndAt
		if offset != nil {
			// lote recorrente: mesma diferença para cada ocorrência
			newStart = occurrenceStart(base, date).Add(*offset)
			newEnd = newStart.Add(payload.NewEndAt.Sub(payload.NewStartAt))
		}
		exc.ClassExceptionNewStartAt = &newStart
		exc.ClassExceptionNewEndAt = &newEnd
		exc.ClassExceptionNewTitle = payload.NewTitle
		exc.ClassExceptionNewDescription = payload.NewDescription
		exc.ClassExceptionNewDurationMinutes = payload.NewDurationMinutes

	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "Ação inválida: use cancel ou reschedule")
	}
	return exc, nil
}

func loadOwnedClass(db *gorm.DB, teacherID, classID uuid.UUID) (*classModel.ClassModel, error) {
	var cls classModel.ClassModel
	if err := db.Where("class_id = ?", classID).First(&cls).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Aula não encontrada")
		}
		return nil, fmt.Errorf("buscar aula: %w", err)
	}
	if cls.ClassTeacherID != teacherID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Aula não pertence a este professor")
	}
	return &cls, nil
}

// occurrenceStart combina a data da ocorrência com o horário da linha-base.
func occurrenceStart(base *classModel.ClassModel, date time.Time) time.Time {
	h, m, s := base.ClassStartAt.Clock()
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, base.ClassStartAt.Location())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func frequencyStep(base *classModel.ClassModel) int {
	if base.ClassRecurrenceFrequency == nil {
		return 0
	}
	return classModel.FrequencyStepDays(*base.ClassRecurrenceFrequency)
}
