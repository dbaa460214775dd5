package service

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	invoiceModel "tutorflow_backend/internals/features/finance/invoices/model"
)

// HandleInvoiceStatusWebhook é chamado ao receber uma notificação do Midtrans.
func HandleInvoiceStatusWebhook(db *gorm.DB, body map[string]interface{}) error {
	orderID, ok1 := body["order_id"].(string)
	status, ok2 := body["transaction_status"].(string)

	if !ok1 || !ok2 {
		log.Println("[ERROR] Payload do webhook incompleto:", body)
		return fmt.Errorf("invalid payload")
	}

	log.Println("📄 Order ID:", orderID)
	log.Println("📌 Transaction Status:", status)

	var inv invoiceModel.InvoiceModel
	if err := db.Where("invoice_order_id = ?", orderID).First(&inv).Error; err != nil {
		log.Println("[ERROR] Fatura não encontrada:", err)
		return fmt.Errorf("invoice with order_id %s not found", orderID)
	}

	switch status {
	case "capture", "settlement":
		now := time.Now()
		inv.InvoiceStatus = invoiceModel.InvoiceStatusPaga
		inv.InvoicePaidAt = &now

	case "expire":
		inv.InvoiceStatus = invoiceModel.InvoiceStatusVencida
	case "cancel", "deny":
		inv.InvoiceStatus = invoiceModel.InvoiceStatusCancelada
	default:
		log.Println("[INFO] Status não processado:", status)
		return nil
	}

	if err := db.Save(&inv).Error; err != nil {
		log.Println("[ERROR] Falha ao salvar status da fatura:", err)
		return err
	}

	return nil
}
