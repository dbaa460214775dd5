package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileModel struct {
	ProfileID       uuid.UUID `gorm:"column:profile_id;type:uuid;primaryKey" json:"profile_id"`
	ProfileFullName string    `gorm:"column:profile_full_name;type:varchar(120);not null" json:"profile_full_name"`
	ProfileEmail    string    `gorm:"column:profile_email;type:varchar(160);uniqueIndex;not null" json:"profile_email"`
	ProfileRole     string    `gorm:"column:profile_role;type:varchar(20);not null" json:"profile_role"` // teacher | student
	ProfilePhone    *string   `gorm:"column:profile_phone;type:varchar(30)" json:"profile_phone,omitempty"`

	ProfilePasswordHash string `gorm:"column:profile_password_hash;type:text;not null" json:"-"`

	// Entitlement do módulo financeiro: sem ele, cancelamento tardio
	// nunca gera cobrança (a flag é limpa pós-hoc pelo evaluator).
	ProfileFinancialModuleEnabled bool `gorm:"column:profile_financial_module_enabled;not null;default:false" json:"profile_financial_module_enabled"`

	ProfileIsActive bool `gorm:"column:profile_is_active;not null;default:true" json:"profile_is_active"`

	ProfileCreatedAt time.Time  `gorm:"column:profile_created_at;autoCreateTime" json:"profile_created_at"`
	ProfileUpdatedAt *time.Time `gorm:"column:profile_updated_at;autoUpdateTime" json:"profile_updated_at,omitempty"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

func (m *ProfileModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProfileID == uuid.Nil {
		m.ProfileID = uuid.New()
	}
	return nil
}
