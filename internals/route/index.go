package route

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentController "tutorflow_backend/internals/features/finance/payments/controller"
	notifService "tutorflow_backend/internals/features/home/notifications/service"
	helper "tutorflow_backend/internals/helpers"
	authMiddleware "tutorflow_backend/internals/middlewares/auth"
	featuresMiddleware "tutorflow_backend/internals/middlewares/features"
	routeDetails "tutorflow_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, mailer notifService.Mailer) {
	startTime = time.Now()

	app.Get("/health", func(c *fiber.Ctx) error {
		return helper.JsonOK(c, "OK", fiber.Map{
			"uptime": time.Since(startTime).String(),
		})
	})

	// ===================== PÚBLICO =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// Webhook do gateway: fora da autenticação por JWT.
	log.Println("[INFO] Setting up WebhookRoutes...")
	webhookCtrl := paymentController.NewWebhookController(db)
	app.Post("/api/payments/notification", webhookCtrl.HandleNotification)

	// ===================== PRIVADO (USER) =====================
	log.Println("[INFO] Setting up PRIVATE (user) group...")
	user := app.Group("/api/u", authMiddleware.AuthMiddleware(db))
	routeDetails.UserRoutes(user, db, mailer)

	// ===================== PRIVADO (TEACHER) =====================
	log.Println("[INFO] Setting up PRIVATE (teacher) group...")
	teacher := app.Group("/api/t",
		authMiddleware.AuthMiddleware(db),
		featuresMiddleware.IsTeacher(),
	)
	routeDetails.TeacherRoutes(teacher, db, mailer)
}
