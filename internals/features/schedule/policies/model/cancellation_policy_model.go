package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Política de cancelamento por professor. No máximo uma ativa por
// professor: o upsert do controller desativa a anterior na mesma
// transação.
type CancellationPolicyModel struct {
	CancellationPolicyID        uuid.UUID `gorm:"column:cancellation_policy_id;type:uuid;primaryKey" json:"cancellation_policy_id"`
	CancellationPolicyTeacherID uuid.UUID `gorm:"column:cancellation_policy_teacher_id;type:uuid;not null;index:idx_policies_teacher" json:"cancellation_policy_teacher_id"`

	CancellationPolicyHoursBeforeClass int  `gorm:"column:cancellation_policy_hours_before_class;not null;default:24" json:"cancellation_policy_hours_before_class"`
	CancellationPolicyChargePercentage int  `gorm:"column:cancellation_policy_charge_percentage;not null;default:0" json:"cancellation_policy_charge_percentage"` // 0..100
	CancellationPolicyAllowAmnesty     bool `gorm:"column:cancellation_policy_allow_amnesty;not null;default:false" json:"cancellation_policy_allow_amnesty"`
	CancellationPolicyIsActive         bool `gorm:"column:cancellation_policy_is_active;not null;default:true" json:"cancellation_policy_is_active"`

	CancellationPolicyCreatedAt time.Time  `gorm:"column:cancellation_policy_created_at;autoCreateTime" json:"cancellation_policy_created_at"`
	CancellationPolicyUpdatedAt *time.Time `gorm:"column:cancellation_policy_updated_at;autoUpdateTime" json:"cancellation_policy_updated_at,omitempty"`
}

func (CancellationPolicyModel) TableName() string {
	return "cancellation_policies"
}

func (m *CancellationPolicyModel) BeforeCreate(tx *gorm.DB) error {
	if m.CancellationPolicyID == uuid.Nil {
		m.CancellationPolicyID = uuid.New()
	}
	return nil
}
