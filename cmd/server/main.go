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
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/config"
	"github.com/havenwelfare/haven-backend/internal/database"
	"github.com/havenwelfare/haven-backend/internal/handlers"
	"github.com/havenwelfare/haven-backend/internal/logging"
	"github.com/havenwelfare/haven-backend/internal/middleware"
	"github.com/havenwelfare/haven-backend/internal/notify"
	"github.com/havenwelfare/haven-backend/internal/ratelimit"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/routes"
	"github.com/havenwelfare/haven-backend/internal/services"
	"github.com/havenwelfare/haven-backend/internal/storage"
	"github.com/havenwelfare/haven-backend/internal/worker"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if !cfg.UsesMemoryStore() && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Persistence
	var (
		repos   *repository.Repositories
		closeDB = func() {}
	)
	if cfg.UsesMemoryStore() {
		slog.Warn("using in-memory store, data is lost on restart")
		repos = repository.NewMemory()
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		repos = repository.NewGorm(db)
		closeDB = func() {
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					slog.Error("database close error", "error", err)
				}
			}
		}
	}

	// ERROR+ records are mirrored into system_logs
	dbLogHandler := logging.NewDBHandler(repos.SystemLogs)
	logging.WithDatabase(dbLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(repos.SystemLogs, cfg.LogRetention, cleanupDone)

	// Background side effects
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize, 30*time.Second)
	recorder := audit.NewRecorder(repos.AuditLogs, pool)
	mailer := notify.NewSendGridMailer(cfg.SendGridAPIURL, repos.Settings, cfg.MailDefaultSender, cfg.MailDefaultSenderName)
	notifier := notify.NewNotifier(mailer, notify.NewComposer(cfg.FrontendURL), pool)

	uploads, err := storage.NewLocal(cfg.UploadDir, int64(cfg.UploadMaxBytes))
	if err != nil {
		slog.Error("upload storage unavailable", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(repos, auth.NewBcryptHasher(), tokens, recorder, notifier, cfg.ResetTokenTTL)
	userService := services.NewUserService(repos, uploads, recorder, notifier)
	donationService := services.NewDonationService(repos, uploads, recorder, notifier)
	treatmentService := services.NewTreatmentService(repos, recorder)
	registryService := services.NewRegistryService(repos, recorder)
	analyticsService := services.NewAnalyticsService(repos)
	settingsService := services.NewSettingsService(repos, uploads, recorder)

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := authService.SeedAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName); err != nil {
			slog.Error("admin seed failed", "error", err)
		}
		cancel()
	}

	// Rate limiter counters live in Redis when configured
	var limiterStorage fiber.Storage
	if cfg.RedisAddr != "" {
		redisStorage := ratelimit.NewRedisStorage(
			ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), "haven:limiter:")
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisStorage.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, using in-process rate limits", "addr", cfg.RedisAddr, "error", err)
		} else {
			limiterStorage = redisStorage
			defer redisStorage.Close()
		}
		cancel()
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.UploadMaxBytes + 1024*1024,
		ErrorHandler: customErrorHandler,
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
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Static(storage.PublicPrefix, uploads.Dir())

	// Routes
	routes.Setup(app, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Admin:     handlers.NewAdminHandler(userService, analyticsService, settingsService, donationService),
		Donation:  handlers.NewDonationHandler(donationService, settingsService),
		Treatment: handlers.NewTreatmentHandler(treatmentService),
		Registry:  handlers.NewRegistryHandler(registryService),
		Doctor:    handlers.NewDoctorHandler(userService),
		Health:    handlers.NewHealthHandler(repos.Ping),
	}, routes.Options{
		Tokens:         tokens,
		Resolver:       auth.NewResolver(repos.Users),
		LimiterStorage: limiterStorage,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pool.Stop()
	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)
	closeDB()

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
