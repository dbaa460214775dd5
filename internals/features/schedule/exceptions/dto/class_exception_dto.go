package dto

import (
	"time"

	"github.com/google/uuid"
)

type RecordExceptionRequest struct {
	OriginalClassID uuid.UUID `json:"original_class_id" validate:"required"`
	ExceptionDate   time.Time `json:"exception_date" validate:"required"`
	Action          string    `json:"action" validate:"required,oneof=cancel reschedule"`

	// Obrigatórios quando action = reschedule.
	NewStartAt         *time.Time `json:"new_start_at" validate:"omitempty"`
	NewEndAt           *time.Time `json:"new_end_at" validate:"omitempty"`
	NewTitle           *string    `json:"new_title" validate:"omitempty,max=160"`
	NewDescription     *string    `json:"new_description" validate:"omitempty,max=2000"`
	NewDurationMinutes *int       `json:"new_duration_minutes" validate:"omitempty,min=15,max=480"`
}

type RecordRecurringExceptionsRequest struct {
	OriginalClassID uuid.UUID `json:"original_class_id" validate:"required"`
	FromDate        time.Time `json:"from_date" validate:"required"`
	Action          string    `json:"action" validate:"required,oneof=cancel reschedule"`

	// Limite opcional; sem ele vale o horizonte padrão de 365 dias.
	EndDate *time.Time `json:"end_date" validate:"omitempty"`

	NewStartAt         *time.Time `json:"new_start_at" validate:"omitempty"`
	NewEndAt           *time.Time `json:"new_end_at" validate:"omitempty"`
	NewTitle           *string    `json:"new_title" validate:"omitempty,max=160"`
	NewDescription     *string    `json:"new_description" validate:"omitempty,max=2000"`
	NewDurationMinutes *int       `json:"new_duration_minutes" validate:"omitempty,min=15,max=480"`
}
