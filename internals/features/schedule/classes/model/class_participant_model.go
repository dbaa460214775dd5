package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participantes de aulas em grupo: uma linha por aluno por ocorrência.
type ClassParticipantModel struct {
	ClassParticipantID        uuid.UUID `gorm:"column:class_participant_id;type:uuid;primaryKey" json:"class_participant_id"`
	ClassParticipantClassID   uuid.UUID `gorm:"column:class_participant_class_id;type:uuid;not null;uniqueIndex:uq_participant_class_student;index:idx_participants_class" json:"class_participant_class_id"`
	ClassParticipantStudentID uuid.UUID `gorm:"column:class_participant_student_id;type:uuid;not null;uniqueIndex:uq_participant_class_student" json:"class_participant_student_id"`

	ClassParticipantCreatedAt time.Time `gorm:"column:class_participant_created_at;autoCreateTime" json:"class_participant_created_at"`
}

func (ClassParticipantModel) TableName() string {
	return "class_participants"
}

func (m *ClassParticipantModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassParticipantID == uuid.Nil {
		m.ClassParticipantID = uuid.New()
	}
	return nil
}
