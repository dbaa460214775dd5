package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tutorflow_backend/internals/features/finance/invoices/model"
	classModel "tutorflow_backend/internals/features/schedule/classes/model"
)

// CreateLateCancellationInvoice gera a fatura de multa por cancelamento
// tardio. Chamada dentro da MESMA transação que marca a aula como
// cancelada, para a dupla escrita aula+fatura ser atômica.
func CreateLateCancellationInvoice(tx *gorm.DB, cls *classModel.ClassModel, studentID uuid.UUID, chargePercentage int) (*model.InvoiceModel, error) {
	amount := cls.ClassPriceCents * int64(chargePercentage) / 100
	if amount <= 0 {
		return nil, nil
	}

	due := time.Now().AddDate(0, 0, 7)
	meta := datatypes.JSON(fmt.Sprintf(
		`{"source":"late_cancellation","charge_percentage":%d,"class_start_at":%q}`,
		chargePercentage, cls.ClassStartAt.Format(time.RFC3339),
	))

	classID := cls.ClassID
	inv := &model.InvoiceModel{
		InvoiceTeacherID:   cls.ClassTeacherID,
		InvoiceStudentID:   studentID,
		InvoiceClassID:     &classID,
		InvoiceDescription: fmt.Sprintf("Multa por cancelamento tardio: %s", cls.ClassTitle),
		InvoiceAmountCents: amount,
		InvoiceStatus:      model.InvoiceStatusPendente,
		InvoiceDueDate:     &due,
		InvoiceOrderID:     fmt.Sprintf("INV-%d", time.Now().UnixNano()),
		InvoiceMetadata:    meta,
	}
	if err := tx.Create(inv).Error; err != nil {
		return nil, fmt.Errorf("criar fatura de cancelamento: %w", err)
	}
	return inv, nil
}
