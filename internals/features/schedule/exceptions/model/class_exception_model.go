package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ExceptionStatusCanceled    = "canceled"
	ExceptionStatusRescheduled = "rescheduled"
)

// Desvio de uma ocorrência de série recorrente, sem mexer na linha-base.
// Chave de negócio: (original_class_id, exception_date): upsert, nunca
// duplicado; regravar a mesma ocorrência sobrescreve o desvio anterior.
type ClassExceptionModel struct {
	ClassExceptionID              uuid.UUID `gorm:"column:class_exception_id;type:uuid;primaryKey" json:"class_exception_id"`
	ClassExceptionOriginalClassID uuid.UUID `gorm:"column:class_exception_original_class_id;type:uuid;not null;uniqueIndex:uq_exceptions_class_date" json:"class_exception_original_class_id"`
	ClassExceptionDate            time.Time `gorm:"column:class_exception_date;type:date;not null;uniqueIndex:uq_exceptions_class_date" json:"class_exception_date"`

	ClassExceptionStatus string `gorm:"column:class_exception_status;type:varchar(20);not null" json:"class_exception_status"` // canceled | rescheduled

	// Payload de remarcação (só quando status = rescheduled).
	ClassExceptionNewStartAt         *time.Time `gorm:"column:class_exception_new_start_at" json:"class_exception_new_start_at,omitempty"`
	ClassExceptionNewEndAt           *time.Time `gorm:"column:class_exception_new_end_at" json:"class_exception_new_end_at,omitempty"`
	ClassExceptionNewTitle           *string    `gorm:"column:class_exception_new_title;type:varchar(160)" json:"class_exception_new_title,omitempty"`
	ClassExceptionNewDescription     *string    `gorm:"column:class_exception_new_description;type:text" json:"class_exception_new_description,omitempty"`
	ClassExceptionNewDurationMinutes *int       `gorm:"column:class_exception_new_duration_minutes" json:"class_exception_new_duration_minutes,omitempty"`

	ClassExceptionCreatedAt time.Time  `gorm:"column:class_exception_created_at;autoCreateTime" json:"class_exception_created_at"`
	ClassExceptionUpdatedAt *time.Time `gorm:"column:class_exception_updated_at;autoUpdateTime" json:"class_exception_updated_at,omitempty"`
}

func (ClassExceptionModel) TableName() string {
	return "class_exceptions"
}

func (m *ClassExceptionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassExceptionID == uuid.Nil {
		m.ClassExceptionID = uuid.New()
	}
	return nil
}
