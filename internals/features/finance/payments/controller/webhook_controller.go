package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tutorflow_backend/internals/features/finance/payments/service"
	helper "tutorflow_backend/internals/helpers"
)

type WebhookController struct {
	DB *gorm.DB
}

func NewWebhookController(db *gorm.DB) *WebhookController {
	return &WebhookController{DB: db}
}

// POST /api/payments/notification
// Endpoint chamado pelo Midtrans; fora do middleware de autenticação.
func (ctrl *WebhookController) HandleNotification(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		log.Println("[ERROR] Webhook com corpo inválido:", err)
		return helper.JsonError(c, fiber.StatusBadRequest, "Corpo inválido")
	}

	if err := service.HandleInvoiceStatusWebhook(ctrl.DB, body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	return helper.JsonOK(c, "Notificação processada", nil)
}
