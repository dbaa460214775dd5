package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	InvoiceStatusPendente  = "pendente"
	InvoiceStatusPaga      = "paga"
	InvoiceStatusCancelada = "cancelada"
	InvoiceStatusVencida   = "vencida"
)

type InvoiceModel struct {
	InvoiceID        uuid.UUID  `gorm:"column:invoice_id;type:uuid;primaryKey" json:"invoice_id"`
	InvoiceTeacherID uuid.UUID  `gorm:"column:invoice_teacher_id;type:uuid;not null;index:idx_invoices_teacher" json:"invoice_teacher_id"`
	InvoiceStudentID uuid.UUID  `gorm:"column:invoice_student_id;type:uuid;not null;index:idx_invoices_student" json:"invoice_student_id"`
	InvoiceClassID   *uuid.UUID `gorm:"column:invoice_class_id;type:uuid" json:"invoice_class_id,omitempty"`

	InvoiceDescription string `gorm:"column:invoice_description;type:text;not null" json:"invoice_description"`
	InvoiceAmountCents int64  `gorm:"column:invoice_amount_cents;not null" json:"invoice_amount_cents"`
	InvoiceStatus      string `gorm:"column:invoice_status;type:varchar(20);not null;default:'pendente'" json:"invoice_status"`

	InvoiceDueDate *time.Time `gorm:"column:invoice_due_date;type:date" json:"invoice_due_date,omitempty"`
	InvoicePaidAt  *time.Time `gorm:"column:invoice_paid_at" json:"invoice_paid_at,omitempty"`

	// Integração com o gateway (Midtrans Snap).
	InvoiceOrderID            string  `gorm:"column:invoice_order_id;type:varchar(64);uniqueIndex;not null" json:"invoice_order_id"`
	InvoicePaymentGateway     string  `gorm:"column:invoice_payment_gateway;type:varchar(30);not null;default:'midtrans'" json:"invoice_payment_gateway"`
	InvoicePaymentToken       *string `gorm:"column:invoice_payment_token;type:text" json:"invoice_payment_token,omitempty"`
	InvoicePaymentRedirectURL *string `gorm:"column:invoice_payment_redirect_url;type:text" json:"invoice_payment_redirect_url,omitempty"`

	InvoiceMetadata datatypes.JSON `gorm:"column:invoice_metadata" json:"invoice_metadata,omitempty"`

	InvoiceCreatedAt time.Time  `gorm:"column:invoice_created_at;autoCreateTime" json:"invoice_created_at"`
	InvoiceUpdatedAt *time.Time `gorm:"column:invoice_updated_at;autoUpdateTime" json:"invoice_updated_at,omitempty"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

func (m *InvoiceModel) BeforeCreate(tx *gorm.DB) error {
	if m.InvoiceID == uuid.Nil {
		m.InvoiceID = uuid.New()
	}
	return nil
}
