package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateClassRequest struct {
	StudentID      *uuid.UUID  `json:"student_id" validate:"omitempty"`
	ServiceID      *uuid.UUID  `json:"service_id" validate:"omitempty"`
	Title          string      `json:"title" validate:"required,min=2,max=160"`
	Description    *string     `json:"description" validate:"omitempty,max=2000"`
	StartAt        time.Time   `json:"start_at" validate:"required"`
	DurationMin    int         `json:"duration_minutes" validate:"required,min=15,max=480"`
	PriceCents     int64       `json:"price_cents" validate:"min=0"`
	IsGroup        bool        `json:"is_group"`
	IsExperimental bool        `json:"is_experimental"`
	ParticipantIDs []uuid.UUID `json:"participant_ids" validate:"omitempty,dive,required"`

	RecurrenceFrequency  *string `json:"recurrence_frequency" validate:"omitempty,oneof=weekly biweekly monthly"`
	RecurrenceIsInfinite bool    `json:"recurrence_is_infinite"`
}

type UpdateClassRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=2,max=160"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	StartAt     *time.Time `json:"start_at" validate:"omitempty"`
	DurationMin *int       `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
	PriceCents  *int64     `json:"price_cents" validate:"omitempty,min=0"`
}

type GenerateClassesRequest struct {
	ViewEndDate      time.Time   `json:"view_end_date" validate:"required"`
	SelectedStudents []uuid.UUID `json:"selected_students" validate:"omitempty,dive,required"`
}

type CancelClassRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
