package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/edmorua/admin-user-back/internal/config"
	"github.com/edmorua/admin-user-back/internal/credentials"
	"github.com/edmorua/admin-user-back/internal/database"
	"github.com/edmorua/admin-user-back/internal/handlers"
	"github.com/edmorua/admin-user-back/internal/logging"
	"github.com/edmorua/admin-user-back/internal/middleware"
	"github.com/edmorua/admin-user-back/internal/routes"
	"github.com/edmorua/admin-user-back/internal/services"
	"github.com/edmorua/admin-user-back/internal/token"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging; stdout only until the store is reachable
	logging.Setup(cfg.Env)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	hasher, err := credentials.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		slog.Error("invalid password hasher", "error", err)
		os.Exit(1)
	}

	// Database
	repo, err := database.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("database connection failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	// Store log handler (ERROR+ async batch)
	storeLogHandler := logging.NewStoreHandler(repo)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewConsoleHandler(os.Stdout, cfg.Env),
		storeLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(repo, cfg.LogRetention, cleanupDone)

	// Services
	tokens := token.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	accounts := services.NewAccountService(repo, hasher, tokens, cfg.DBTimeout)

	// Handlers
	userHandler := handlers.NewUserHandler(accounts)
	healthHandler := handlers.NewHealthHandler(repo, cfg.DBTimeout)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, tokens, userHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "host", cfg.ServerHost, "addr", cfg.Addr(), "driver", cfg.DBDriver)
		if err := app.Listen(cfg.Addr()); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	storeLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.Close(ctx); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal Server Error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
