package main

import (
	"fmt"
	"os"

	"invoicing-backend/config"
	"invoicing-backend/controllers"
	"invoicing-backend/database"
	"invoicing-backend/logger"
	"invoicing-backend/mailer"
	"invoicing-backend/middlewares"
	"invoicing-backend/pdf"
	"invoicing-backend/repository"
	"invoicing-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	logger.L = log
	defer func() { _ = log.Sync() }()

	// amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// ---- Database (public)
	if err := database.Connect(cfg, log); err != nil {
		log.Fatalw("database connection failed", "error", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalw("public schema migration failed", "error", err)
	}

	// ---- Dependencies
	tokens := middlewares.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.ShareTokenTTL)
	client := mailer.NewClient(mailer.Config{
		Enabled: cfg.Email.Enabled,
		APIKey:  cfg.Email.APIKey,
		ReplyTo: cfg.Email.ReplyTo,
	})
	if !client.IsEnabled() {
		log.Warnw("email delivery disabled", "enabled", cfg.Email.Enabled)
	}
	notifier, err := mailer.New(client, cfg.Email.FromAddress, log)
	if err != nil {
		log.Fatalw("mailer setup failed", "error", err)
	}

	handlers := routes.Handlers{
		Auth: &controllers.AuthController{
			Users:   repository.NewUserRepository(database.DB),
			Tokens:  tokens,
			Tenants: database.Provisioner{},
		},
		Invoices: &controllers.InvoiceController{
			Notifier: notifier,
			Renderer: pdf.NewRenderer(),
			Tokens:   tokens,
			BaseURL:  cfg.App.BaseURL,
			PageSize: cfg.Invoice.PageSize,
		},
		Tokens: tokens,
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.Server.BodyLimitBytes,
	})

	app.Use(middlewares.RequestLogger())

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Global rate limiter (client IP keyed)
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimitMax,
		Expiration: cfg.Server.RateLimitWindow,
	}))

	// ---- Routes
	routes.Register(app, handlers)

	// ---- Start
	log.Infow("API server starting", "port", cfg.Server.Port, "env", cfg.App.Env)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
