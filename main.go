package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"tutorflow_backend/internals/configs"
	database "tutorflow_backend/internals/databases"
	paymentService "tutorflow_backend/internals/features/finance/payments/service"
	notifService "tutorflow_backend/internals/features/home/notifications/service"
	classScheduler "tutorflow_backend/internals/features/schedule/classes/scheduler"
	authScheduler "tutorflow_backend/internals/features/users/auth/scheduler"
	helper "tutorflow_backend/internals/helpers"
	middlewares "tutorflow_backend/internals/middlewares"
	routes "tutorflow_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON rápido
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromFiberError(c, err)
		},
	})

	// ⚙️ middleware básico + performance
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// Timeout HTTP alinhado com o statement_timeout do banco
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	// ⏱ schedulers depois do DB pronto
	authScheduler.StartBlacklistCleanupScheduler(database.DB)
	classScheduler.StartClassArchiveScheduler(database.DB)

	// ✅ MIDTRANS + e-mail
	paymentService.InitMidtrans(configs.MidtransServerKey)
	mailer := notifService.NewMailerFromEnv()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, mailer)

	// 🔒 timeouts do servidor
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + fecha o pool do DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
