package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	invoiceController "tutorflow_backend/internals/features/finance/invoices/controller"
	notifService "tutorflow_backend/internals/features/home/notifications/service"
	classController "tutorflow_backend/internals/features/schedule/classes/controller"
	exceptionController "tutorflow_backend/internals/features/schedule/exceptions/controller"
	policyController "tutorflow_backend/internals/features/schedule/policies/controller"
	relationshipController "tutorflow_backend/internals/features/users/relationships/controller"
)

// TeacherRoutes registra os endpoints exclusivos de professor (grupo
// /api/t, atrás do AuthMiddleware + IsTeacher).
func TeacherRoutes(teacher fiber.Router, db *gorm.DB, mailer notifService.Mailer) {
	classCtrl := classController.NewClassController(db, mailer)
	exceptionCtrl := exceptionController.NewClassExceptionController(db)
	policyCtrl := policyController.NewCancellationPolicyController(db)
	invoiceCtrl := invoiceController.NewInvoiceController(db)
	relCtrl := relationshipController.NewRelationshipController(db)

	teacher.Post("/classes", classCtrl.CreateClass)
	teacher.Put("/classes/:id", classCtrl.UpdateClass)
	teacher.Patch("/classes/:id/conclude", classCtrl.ConcludeClass)
	teacher.Post("/classes/generate", classCtrl.GenerateClasses)

	teacher.Post("/class-exceptions", exceptionCtrl.RecordException)
	teacher.Post("/class-exceptions/recurring", exceptionCtrl.RecordRecurringExceptions)

	teacher.Get("/cancellation-policy", policyCtrl.GetActivePolicy)
	teacher.Post("/cancellation-policy", policyCtrl.UpsertPolicy)

	teacher.Patch("/invoices/:id/cancel", invoiceCtrl.CancelInvoice)

	teacher.Get("/students", relCtrl.ListStudents)
	teacher.Post("/students", relCtrl.LinkStudent)
	teacher.Delete("/students/:id", relCtrl.UnlinkStudent)
}
