package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/google/uuid"

	invoiceModel "tutorflow_backend/internals/features/finance/invoices/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invoiceModel.InvoiceModel{}))
	return db
}

func newPendingInvoice(t *testing.T, db *gorm.DB) *invoiceModel.InvoiceModel {
	t.Helper()
	inv := &invoiceModel.InvoiceModel{
		InvoiceTeacherID:   uuid.New(),
		InvoiceStudentID:   uuid.New(),
		InvoiceDescription: "Multa por cancelamento tardio",
		InvoiceAmountCents: 5000,
		InvoiceStatus:      invoiceModel.InvoiceStatusPendente,
		InvoiceOrderID:     fmt.Sprintf("INV-%s", uuid.NewString()),
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func TestHandleInvoiceStatusWebhook_SettlementMarksPaid(t *testing.T) {
	db := setupTestDB(t)
	inv := newPendingInvoice(t, db)

	err := HandleInvoiceStatusWebhook(db, map[string]interface{}{
		"order_id":           inv.InvoiceOrderID,
		"transaction_status": "settlement",
	})
	require.NoError(t, err)

	var reloaded invoiceModel.InvoiceModel
	require.NoError(t, db.Where("invoice_id = ?", inv.InvoiceID).First(&reloaded).Error)
	assert.Equal(t, invoiceModel.InvoiceStatusPaga, reloaded.InvoiceStatus)
	assert.NotNil(t, reloaded.InvoicePaidAt)
}

func TestHandleInvoiceStatusWebhook_ExpireMarksOverdue(t *testing.T) {
	db := setupTestDB(t)
	inv := newPendingInvoice(t, db)

	err := HandleInvoiceStatusWebhook(db, map[string]interface{}{
		"order_id":           inv.InvoiceOrderID,
		"transaction_status": "expire",
	})
	require.NoError(t, err)

	var reloaded invoiceModel.InvoiceModel
	require.NoError(t, db.Where("invoice_id = ?", inv.InvoiceID).First(&reloaded).Error)
	assert.Equal(t, invoiceModel.InvoiceStatusVencida, reloaded.InvoiceStatus)
	assert.Nil(t, reloaded.InvoicePaidAt)
}

func TestHandleInvoiceStatusWebhook_DenyCancels(t *testing.T) {
	db := setupTestDB(t)
	inv := newPendingInvoice(t, db)

	err := HandleInvoiceStatusWebhook(db, map[string]interface{}{
		"order_id":           inv.InvoiceOrderID,
		"transaction_status": "deny",
	})
	require.NoError(t, err)

	var reloaded invoiceModel.InvoiceModel
	require.NoError(t, db.Where("invoice_id = ?", inv.InvoiceID).First(&reloaded).Error)
	assert.Equal(t, invoiceModel.InvoiceStatusCancelada, reloaded.InvoiceStatus)
}

func TestHandleInvoiceStatusWebhook_UnknownStatusIgnored(t *testing.T) {
	db := setupTestDB(t)
	inv := newPendingInvoice(t, db)

	err := HandleInvoiceStatusWebhook(db, map[string]interface{}{
		"order_id":           inv.InvoiceOrderID,
		"transaction_status": "pending",
	})
	require.NoError(t, err)

	var reloaded invoiceModel.InvoiceModel
	require.NoError(t, db.Where("invoice_id = ?", inv.InvoiceID).First(&reloaded).Error)
	assert.Equal(t, invoiceModel.InvoiceStatusPendente, reloaded.InvoiceStatus)
}

func TestHandleInvoiceStatusWebhook_InvalidPayload(t *testing.T) {
	db := setupTestDB(t)

	err := HandleInvoiceStatusWebhook(db, map[string]interface{}{"foo": "bar"})
	require.Error(t, err)

	err = HandleInvoiceStatusWebhook(db, map[string]interface{}{
		"order_id":           "ORD-desconhecida",
		"transaction_status": "settlement",
	})
	require.Error(t, err)
}
