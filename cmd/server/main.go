package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/callcleaner/backend/internal/config"
	"github.com/callcleaner/backend/internal/database"
	"github.com/callcleaner/backend/internal/handlers"
	"github.com/callcleaner/backend/internal/logging"
	"github.com/callcleaner/backend/internal/middleware"
	"github.com/callcleaner/backend/internal/repository"
	"github.com/callcleaner/backend/internal/routes"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

var version = "dev"

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	// Repositories
	users := repository.NewUserRepository(db)
	settings := repository.NewSettingsRepository(db)
	whitelist := repository.NewWhitelistRepository(db)
	numbers := repository.NewReportedNumberRepository(db)
	tokens := repository.NewRefreshTokenRepository(db)
	calls := repository.NewBlockedCallRepository(db)
	configs := repository.NewRemoteConfigRepository(db)

	// Log and token cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, tokens, cfg.LogRetentionDays, cleanupDone)

	codes, err := services.NewCodeStore(cfg.RedisURL)
	if err != nil {
		slog.Error("code store init failed", "error", err)
		os.Exit(1)
	}
	mailer := services.NewMailer(cfg)

	// Services
	tokenService := services.NewTokenService(tokens, users, cfg)
	authService := services.NewAuthService(users, tokenService, mailer, codes, cfg)
	numberService := services.NewNumberCheckService(numbers, settings, whitelist, calls)
	settingsService := services.NewSettingsService(settings, whitelist)
	reportService := services.NewReportService(numbers, calls, services.NewContentFilter())
	blockedCallsService := services.NewBlockedCallsService(calls)
	syncService := services.NewSyncService(settings, calls)
	appService := services.NewAppService(configs)
	userService := services.NewUserService(users)

	// Seed default remote config values
	slog.Info("seeding remote config defaults")
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := appService.SeedDefaults(seedCtx); err != nil {
		slog.Error("remote config seed failed", "error", err)
	}
	cancelSeed()

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
			Release:          version,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Health:       handlers.NewHealthHandler(db, version),
		Number:       handlers.NewNumberHandler(numberService),
		Settings:     handlers.NewSettingsHandler(settingsService),
		BlockedCalls: handlers.NewBlockedCallsHandler(blockedCallsService),
		Reports:      handlers.NewReportHandler(reportService),
		Sync:         handlers.NewSyncHandler(syncService),
		App:          handlers.NewAppHandler(appService),
		Admin:        handlers.NewAdminHandler(userService, numberService),
	}, userService)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "version", version)
		if err := app.Listen(":" + cfg.Port); err != nil {
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
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if closer, ok := codes.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Error("code store close error", "error", err)
		}
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
