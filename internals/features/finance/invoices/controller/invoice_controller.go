package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorflow_backend/internals/constants"
	"tutorflow_backend/internals/features/finance/invoices/model"
	paymentService "tutorflow_backend/internals/features/finance/payments/service"
	profileModel "tutorflow_backend/internals/features/users/profiles/model"
	helper "tutorflow_backend/internals/helpers"
)

type InvoiceController struct {
	DB *gorm.DB
}

func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db}
}

// GET /api/u/invoices
// Professor vê as faturas que emitiu; aluno vê as suas.
func (ctrl *InvoiceController) ListInvoices(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetRoleFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&model.InvoiceModel{})
	if role == constants.RoleTeacher {
		q = q.Where("invoice_teacher_id = ?", userID)
	} else {
		q = q.Where("invoice_student_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("invoice_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao contar faturas")
	}

	var invoices []model.InvoiceModel
	if err := q.Order("invoice_created_at DESC").
		Offset(paging.Offset).Limit(paging.PerPage).
		Find(&invoices).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao listar faturas")
	}

	return helper.JsonList(c, "OK", invoices, helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// POST /api/u/invoices/:id/pay
// Gera (ou reaproveita) o token Snap da fatura e devolve o redirect_url.
func (ctrl *InvoiceController) GeneratePaymentToken(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de fatura inválido")
	}

	var inv model.InvoiceModel
	if err := ctrl.DB.Where("invoice_id = ?", invoiceID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Fatura não encontrada")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar fatura")
	}
	if inv.InvoiceStudentID != userID {
		return helper.JsonError(c, fiber.StatusForbidden, "Sem acesso a esta fatura")
	}
	if inv.InvoiceStatus != model.InvoiceStatusPendente {
		return helper.JsonError(c, fiber.StatusConflict, "Fatura não está pendente")
	}

	if inv.InvoicePaymentToken != nil && inv.InvoicePaymentRedirectURL != nil {
		return helper.JsonOK(c, "OK", fiber.Map{
			"token":        *inv.InvoicePaymentToken,
			"redirect_url": *inv.InvoicePaymentRedirectURL,
		})
	}

	var student profileModel.ProfileModel
	if err := ctrl.DB.Where("profile_id = ?", inv.InvoiceStudentID).First(&student).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao buscar aluno")
	}

	token, redirectURL, err := paymentService.GenerateSnapToken(&inv, student.ProfileFullName, student.ProfileEmail)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadGateway, "Falha ao gerar token de pagamento")
	}

	if err := ctrl.DB.Model(&inv).Updates(map[string]interface{}{
		"invoice_payment_token":        token,
		"invoice_payment_redirect_url": redirectURL,
	}).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao salvar token")
	}

	return helper.JsonOK(c, "Token de pagamento gerado", fiber.Map{
		"token":        token,
		"redirect_url": redirectURL,
	})
}

// PATCH /api/t/invoices/:id/cancel
// Professor cancela uma fatura pendente que emitiu (perdão da cobrança).
func (ctrl *InvoiceController) CancelInvoice(c *fiber.Ctx) error {
	teacherID, err := helper.GetTeacherIDFromToken(c)
	if err != nil {
		return err
	}

	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de fatura inválido")
	}

	res := ctrl.DB.Model(&model.InvoiceModel{}).
		Where("invoice_id = ? AND invoice_teacher_id = ? AND invoice_status = ?",
			invoiceID, teacherID, model.InvoiceStatusPendente).
		Update("invoice_status", model.InvoiceStatusCancelada)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao cancelar fatura")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Fatura pendente não encontrada")
	}

	return helper.JsonUpdated(c, "Fatura cancelada com sucesso", nil)
}
