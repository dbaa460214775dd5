package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorflow_backend/internals/configs"
	"tutorflow_backend/internals/constants"
	invoiceService "tutorflow_backend/internals/features/finance/invoices/service"
	notifService "tutorflow_backend/internals/features/home/notifications/service"
	classModel "tutorflow_backend/internals/features/schedule/classes/model"
	"tutorflow_backend/internals/features/schedule/policies/model"
	profileModel "tutorflow_backend/internals/features/users/profiles/model"
)

type CancelInput struct {
	ClassID         uuid.UUID
	CancelledBy     uuid.UUID
	CancelledByType string // teacher | student
	Reason          string
}

type CancelResult struct {
	Charged bool   `json:"charged"`
	Message string `json:"message"`
}

// GetActivePolicy devolve a política ativa do professor, ou a política
// default (24h de antecedência, 0% de multa: cancelamento livre) quando
// nenhuma foi configurada.
func GetActivePolicy(db *gorm.DB, teacherID uuid.UUID) (*model.CancellationPolicyModel, error) {
	var p model.CancellationPolicyModel
	err := db.
		Where("cancellation_policy_teacher_id = ? AND cancellation_policy_is_active = ?", teacherID, true).
		Order("cancellation_policy_created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.CancellationPolicyModel{
				CancellationPolicyTeacherID:        teacherID,
				CancellationPolicyHoursBeforeClass: configs.DefaultPolicyHours,
				CancellationPolicyChargePercentage: 0,
			}, nil
		}
		return nil, fmt.Errorf("buscar política de cancelamento: %w", err)
	}
	return &p, nil
}

// EvaluateCancellation decide, no momento do cancelamento de uma aula, se
// quem cancelou deve ser cobrado, e coordena notificação + fatura.
//
// Pré-condições (cada uma rejeita antes de qualquer mutação, nesta ordem):
// aula não cancelada; aula não concluída; quem chamou tem permissão.
// Cancelamento iniciado pelo professor NUNCA gera cobrança.
func EvaluateCancellation(db *gorm.DB, mailer notifService.Mailer, in CancelInput) (*CancelResult, error) {
	var cls classModel.ClassModel
	if err := db.Where("class_id = ?", in.ClassID).First(&cls).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Aula não encontrada")
		}
		return nil, fmt.Errorf("buscar aula: %w", err)
	}

	if cls.ClassStatus == classModel.ClassStatusCancelada {
		return nil, fiber.NewError(fiber.StatusConflict, "Aula já está cancelada")
	}
	if cls.ClassStatus == classModel.ClassStatusConcluida {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "Aula concluída não pode ser cancelada")
	}

	students, err := affectedStudents(db, &cls)
	if err != nil {
		return nil, err
	}
	if err := checkPermission(&cls, students, in); err != nil {
		return nil, err
	}

	policy, err := GetActivePolicy(db, cls.ClassTeacherID)
	if err != nil {
		return nil, err
	}

	// Cobrança: só para cancelamento de aluno, dentro da janela da
	// política e com percentual configurado.
	hoursUntil := time.Until(cls.ClassStartAt).Hours()
	charged := in.CancelledByType == constants.CancelledByStudent &&
		hoursUntil < float64(policy.CancellationPolicyHoursBeforeClass) &&
		policy.CancellationPolicyChargePercentage > 0

	// Sem entitlement do módulo financeiro a flag é limpa pós-hoc e a
	// resposta indica "cancelada sem cobrança".
	chargeCleared := false
	if charged {
		var teacher profileModel.ProfileModel
		if err := db.Where("profile_id = ?", cls.ClassTeacherID).First(&teacher).Error; err != nil {
			return nil, fmt.Errorf("buscar perfil do professor: %w", err)
		}
		if !teacher.ProfileFinancialModuleEnabled {
			charged = false
			chargeCleared = true
		}
	}

	originalStatus := cls.ClassStatus
	now := time.Now()

	err = db.Transaction(func(tx *gorm.DB) error {
		// Guarda otimista contra cancelamento duplo concorrente: a
		// transição só acontece se o status ainda for o que lemos.
		res := tx.Model(&classModel.ClassModel{}).
			Where("class_id = ? AND class_status = ?", cls.ClassID, originalStatus).
			Updates(map[string]interface{}{
				"class_status":              classModel.ClassStatusCancelada,
				"class_cancelled_at":        now,
				"class_cancelled_by":        in.CancelledBy,
				"class_cancelled_by_type":   in.CancelledByType,
				"class_cancellation_reason": in.Reason,
				"class_charge_applied":      charged,
			})
		if res.Error != nil {
			return fmt.Errorf("cancelar aula: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "Aula já está sendo cancelada")
		}

		if charged {
			if _, err := invoiceService.CreateLateCancellationInvoice(tx, &cls, in.CancelledBy, policy.CancellationPolicyChargePercentage); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Pós-condição: uma notificação por aluno afetado + e-mail
	// fire-and-forget. Falha aqui não desfaz o cancelamento.
	if err := notifService.NotifyClassCancelled(db, mailer, cls.ClassTitle, students, in.Reason, charged); err != nil {
		log.Printf("[ERROR] notificar cancelamento da aula %s: %v", cls.ClassID, err)
	}

	msg := "Aula cancelada com sucesso"
	switch {
	case charged:
		msg = "Aula cancelada. Cobrança por cancelamento tardio aplicada"
	case chargeCleared:
		msg = "Aula cancelada sem cobrança"
	}
	return &CancelResult{Charged: charged, Message: msg}, nil
}

// affectedStudents resolve quem é notificado: participantes (grupo) ou o
// aluno da aula.
func affectedStudents(db *gorm.DB, cls *classModel.ClassModel) ([]uuid.UUID, error) {
	if cls.ClassIsGroup {
		var ids []uuid.UUID
		if err := db.Model(&classModel.ClassParticipantModel{}).
			Where("class_participant_class_id = ?", cls.ClassID).
			Pluck("class_participant_student_id", &ids).Error; err != nil {
			return nil, fmt.Errorf("buscar participantes: %w", err)
		}
		return ids, nil
	}
	if cls.ClassStudentID != nil {
		return []uuid.UUID{*cls.ClassStudentID}, nil
	}
	return nil, nil
}

func checkPermission(cls *classModel.ClassModel, students []uuid.UUID, in CancelInput) error {
	switch in.CancelledByType {
	case constants.CancelledByTeacher:
		if cls.ClassTeacherID == in.CancelledBy {
			return nil
		}
	case constants.CancelledByStudent:
		for _, sid := range students {
			if sid == in.CancelledBy {
				return nil
			}
		}
	default:
		return fiber.NewError(fiber.StatusBadRequest, "cancelled_by_type inválido")
	}
	return fiber.NewError(fiber.StatusForbidden, "Sem permissão para cancelar esta aula")
}
