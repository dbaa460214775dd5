package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Tipos de notificação (enum tratado no código).
const (
	NotificationTypeClassCancelled   = 1
	NotificationTypeClassRescheduled = 2
	NotificationTypeInvoiceCreated   = 3
)

// TagList persiste como text[] no Postgres e como text nos demais dialetos.
type TagList pq.StringArray

func (t TagList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

func (t *TagList) Scan(src interface{}) error {
	return (*pq.StringArray)(t).Scan(src)
}

func (TagList) GormDataType() string {
	return "text"
}

func (TagList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

type NotificationModel struct {
	NotificationID          uuid.UUID  `gorm:"column:notification_id;primaryKey;type:uuid" json:"notification_id"`
	NotificationUserID      uuid.UUID  `gorm:"column:notification_user_id;type:uuid;not null;index:idx_notifications_user" json:"notification_user_id"`
	NotificationTitle       string     `gorm:"column:notification_title;type:varchar(255);not null" json:"notification_title"`
	NotificationDescription string     `gorm:"column:notification_description;type:text" json:"notification_description"`
	NotificationType        int        `gorm:"column:notification_type;not null" json:"notification_type"`
	NotificationTags        TagList    `gorm:"column:notification_tags" json:"notification_tags"`
	NotificationReadAt      *time.Time `gorm:"column:notification_read_at" json:"notification_read_at,omitempty"`
	NotificationCreatedAt   time.Time  `gorm:"column:notification_created_at;autoCreateTime" json:"notification_created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func (m *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.NotificationID == uuid.Nil {
		m.NotificationID = uuid.New()
	}
	return nil
}
