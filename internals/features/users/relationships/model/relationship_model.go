package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RelationshipStatusActive   = "active"
	RelationshipStatusInactive = "inactive"
)

// Vínculo professor ↔ aluno. Um aluno só aparece na agenda/cobrança do
// professor se houver vínculo ativo.
type RelationshipModel struct {
	RelationshipID        uuid.UUID `gorm:"column:relationship_id;type:uuid;primaryKey" json:"relationship_id"`
	RelationshipTeacherID uuid.UUID `gorm:"column:relationship_teacher_id;type:uuid;not null;uniqueIndex:uq_rel_teacher_student" json:"relationship_teacher_id"`
	RelationshipStudentID uuid.UUID `gorm:"column:relationship_student_id;type:uuid;not null;uniqueIndex:uq_rel_teacher_student" json:"relationship_student_id"`
	RelationshipStatus    string    `gorm:"column:relationship_status;type:varchar(20);not null;default:'active'" json:"relationship_status"`

	RelationshipCreatedAt time.Time  `gorm:"column:relationship_created_at;autoCreateTime" json:"relationship_created_at"`
	RelationshipUpdatedAt *time.Time `gorm:"column:relationship_updated_at;autoUpdateTime" json:"relationship_updated_at,omitempty"`
}

func (RelationshipModel) TableName() string {
	return "teacher_student_relationships"
}

func (m *RelationshipModel) BeforeCreate(tx *gorm.DB) error {
	if m.RelationshipID == uuid.Nil {
		m.RelationshipID = uuid.New()
	}
	return nil
}
