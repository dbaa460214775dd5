package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status de uma aula, iguais aos usados pelo frontend.
const (
	ClassStatusPendente   = "pendente"
	ClassStatusConfirmada = "confirmada"
	ClassStatusCancelada  = "cancelada"
	ClassStatusConcluida  = "concluida"
)

// Frequências de recorrência suportadas.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// FrequencyStepDays devolve o passo em dias-calendário de cada frequência
// (7, 14 ou 30). Zero para frequência desconhecida.
func FrequencyStepDays(freq string) int {
	switch freq {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	}
	return 0
}

// ClassModel representa tanto a linha-base de uma série recorrente
// (class_recurrence_frequency preenchido) quanto instâncias concretas
// materializadas pelo gerador (class_series_id apontando para a base).
// O índice único (class_series_id, class_start_at) faz geradores
// concorrentes colidirem sem efeito em vez de duplicar ocorrências.
type ClassModel struct {
	ClassID        uuid.UUID  `gorm:"column:class_id;type:uuid;primaryKey" json:"class_id"`
	ClassTeacherID uuid.UUID  `gorm:"column:class_teacher_id;type:uuid;not null;index:idx_classes_teacher" json:"class_teacher_id"`
	ClassStudentID *uuid.UUID `gorm:"column:class_student_id;type:uuid;index" json:"class_student_id,omitempty"` // nil em aula de grupo
	ClassServiceID *uuid.UUID `gorm:"column:class_service_id;type:uuid" json:"class_service_id,omitempty"`

	ClassTitle       string  `gorm:"column:class_title;type:varchar(160);not null" json:"class_title"`
	ClassDescription *string `gorm:"column:class_description;type:text" json:"class_description,omitempty"`

	ClassStartAt         time.Time `gorm:"column:class_start_at;not null;index:idx_classes_start;uniqueIndex:uq_classes_series_start" json:"class_start_at"`
	ClassDurationMinutes int       `gorm:"column:class_duration_minutes;not null;default:60" json:"class_duration_minutes"`
	ClassPriceCents      int64     `gorm:"column:class_price_cents;not null;default:0" json:"class_price_cents"`

	ClassStatus         string `gorm:"column:class_status;type:varchar(20);not null;default:'pendente'" json:"class_status"`
	ClassIsGroup        bool   `gorm:"column:class_is_group;not null;default:false" json:"class_is_group"`
	ClassIsExperimental bool   `gorm:"column:class_is_experimental;not null;default:false" json:"class_is_experimental"`

	// Recorrência: presente apenas na linha-base da série.
	ClassRecurrenceFrequency  *string `gorm:"column:class_recurrence_frequency;type:varchar(20)" json:"class_recurrence_frequency,omitempty"` // weekly | biweekly | monthly
	ClassRecurrenceIsInfinite bool    `gorm:"column:class_recurrence_is_infinite;not null;default:false" json:"class_recurrence_is_infinite"`

	// Back-reference estável para a série que materializou esta instância.
	ClassSeriesID *uuid.UUID `gorm:"column:class_series_id;type:uuid;index;uniqueIndex:uq_classes_series_start" json:"class_series_id,omitempty"`

	// Auditoria de cancelamento.
	ClassCancelledAt        *time.Time `gorm:"column:class_cancelled_at" json:"class_cancelled_at,omitempty"`
	ClassCancelledBy        *uuid.UUID `gorm:"column:class_cancelled_by;type:uuid" json:"class_cancelled_by,omitempty"`
	ClassCancelledByType    *string    `gorm:"column:class_cancelled_by_type;type:varchar(20)" json:"class_cancelled_by_type,omitempty"` // teacher | student
	ClassCancellationReason *string    `gorm:"column:class_cancellation_reason;type:text" json:"class_cancellation_reason,omitempty"`
	ClassChargeApplied      bool       `gorm:"column:class_charge_applied;not null;default:false" json:"class_charge_applied"`

	ClassCreatedAt time.Time  `gorm:"column:class_created_at;autoCreateTime" json:"class_created_at"`
	ClassUpdatedAt *time.Time `gorm:"column:class_updated_at;autoUpdateTime" json:"class_updated_at,omitempty"`
}

func (ClassModel) TableName() string {
	return "classes"
}

func (m *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	return nil
}

// IsSeriesBase indica se a linha é a base de uma série recorrente.
func (m *ClassModel) IsSeriesBase() bool {
	return m.ClassRecurrenceFrequency != nil && *m.ClassRecurrenceFrequency != ""
}

// EndAt calcula o fim da aula a partir da duração.
func (m *ClassModel) EndAt() time.Time {
	return m.ClassStartAt.Add(time.Duration(m.ClassDurationMinutes) * time.Minute)
}
