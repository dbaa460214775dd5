package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	invoiceController "tutorflow_backend/internals/features/finance/invoices/controller"
	notificationController "tutorflow_backend/internals/features/home/notifications/controller"
	notifService "tutorflow_backend/internals/features/home/notifications/service"
	classController "tutorflow_backend/internals/features/schedule/classes/controller"
	profileController "tutorflow_backend/internals/features/users/profiles/controller"
)

// UserRoutes registra os endpoints autenticados comuns a professores e
// alunos (grupo /api/u, já atrás do AuthMiddleware).
func UserRoutes(user fiber.Router, db *gorm.DB, mailer notifService.Mailer) {
	profileCtrl := profileController.NewProfileController(db)
	classCtrl := classController.NewClassController(db, mailer)
	invoiceCtrl := invoiceController.NewInvoiceController(db)
	notifCtrl := notificationController.NewNotificationController(db)

	user.Get("/me", profileCtrl.GetMe)
	user.Put("/me", profileCtrl.UpdateMe)

	user.Get("/classes", classCtrl.GetCalendar)
	user.Get("/classes/:id", classCtrl.GetClassByID)
	user.Patch("/classes/:id/confirm", classCtrl.ConfirmClass)
	user.Post("/classes/:id/cancel", classCtrl.CancelClass)

	user.Get("/invoices", invoiceCtrl.ListInvoices)
	user.Post("/invoices/:id/pay", invoiceCtrl.GeneratePaymentToken)

	user.Get("/notifications", notifCtrl.ListNotifications)
	user.Patch("/notifications/read-all", notifCtrl.MarkAllRead)
	user.Patch("/notifications/:id/read", notifCtrl.MarkRead)
}
