package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mailroom/internal/config"
	"mailroom/internal/database"
	"mailroom/internal/database/migration"
	handlers "mailroom/internal/http/handler"
	"mailroom/internal/http/middleware"
	"mailroom/internal/jobs"
	"mailroom/internal/logger"
	"mailroom/internal/metrics"
	"mailroom/internal/notify"
	"mailroom/internal/otel"
	"mailroom/internal/repository/postgres"
	"mailroom/internal/security"
	"mailroom/internal/service"
	"mailroom/internal/storage"
)

// @title Mailroom API
// @version 1.0
// @description Digital mailroom: virtual mailboxes, mail intake and customer mail actions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.Location())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	shutdownTracer, err := otel.Init(ctx, zl)
	if err != nil {
		zl.Warn("tracing_disabled", zap.Error(err))
		shutdownTracer = func(context.Context) error { return nil }
	}

	// PostgreSQL connection (pooled via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	err = migration.EnsureMigrated(migrateCtx, db, zl, cfg.Database.Host)
	cancel()
	if err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, zl)
	if err != nil {
		zl.Fatal("failed to initialize object storage", zap.Error(err))
	}

	var rdb *redis.Client
	var loginLimit fiber.Handler
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			zl.Warn("redis_unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		loginLimit = middleware.NewRateLimiter(rdb, "login", cfg.Auth.LoginLimit, cfg.Auth.LoginWindow, zl).Handler()
	}

	notifier := notify.New(ctx, cfg.SES, zl)

	domainMetrics, err := metrics.NewDomain(prometheus.DefaultRegisterer)
	if err != nil {
		zl.Fatal("failed to register domain metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		zl.Fatal("failed to register http metrics", zap.Error(err))
	}

	tokens, err := security.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		zl.Fatal("failed to initialize token service", zap.Error(err))
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	// Repositories
	profileRepo := postgres.NewProfilePostgres(db)
	kycRepo := postgres.NewKYCPostgres(db)
	locationRepo := postgres.NewLocationPostgres(db)
	mailboxRepo := postgres.NewMailboxPostgres(db)
	itemRepo := postgres.NewMailItemPostgres(db)
	actionRepo := postgres.NewActionPostgres(db)
	packageRepo := postgres.NewPackagePostgres(db)
	subRepo := postgres.NewSubscriptionPostgres(db)
	activityRepo := postgres.NewActivityPostgres(db)
	allowedIPRepo := postgres.NewAllowedIPPostgres(db)

	// Services
	activitySvc := service.NewActivityService(activityRepo, zl)
	authSvc := service.NewAuthService(profileRepo, hasher, tokens, activitySvc)
	subSvc := service.NewSubscriptionService(subRepo, packageRepo, profileRepo, activitySvc, domainMetrics, zl, cfg.Webhook.PaymentSecret)
	svcs := handlers.Services{
		DB:            db,
		Dependencies:  []handlers.Pinger{objStore},
		Auth:          authSvc,
		Users:         service.NewUserService(profileRepo, hasher, activitySvc, zl),
		KYC:           service.NewKYCService(kycRepo, profileRepo, objStore, activitySvc, cfg.PresignTTL),
		Locations:     service.NewLocationService(locationRepo, activitySvc),
		Mailboxes:     service.NewMailboxService(mailboxRepo, locationRepo, profileRepo, activitySvc),
		Mail:          service.NewMailService(itemRepo, mailboxRepo, profileRepo, objStore, notifier, activitySvc, domainMetrics, zl, cfg.PresignTTL),
		Actions:       service.NewActionService(actionRepo, itemRepo, profileRepo, subRepo, objStore, notifier, activitySvc, domainMetrics, zl),
		Packages:      service.NewPackageService(packageRepo, activitySvc),
		Subscriptions: subSvc,
		Activity:      activitySvc,
		AllowedIPs:    service.NewAllowedIPService(allowedIPRepo, activitySvc, zl, cfg.AllowlistTTL),
		LoginLimit:    loginLimit,
	}

	if cfg.Auth.BootstrapUser != "" && cfg.Auth.BootstrapPass != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Auth.BootstrapUser, cfg.Auth.BootstrapPass); err != nil {
			zl.Fatal("failed to bootstrap administrator", zap.Error(err))
		}
	}

	scheduler := jobs.New(cfg.Location(), 5*time.Minute, zl)
	if err := scheduler.AddSubscriptionExpiry(cfg.Jobs.ExpirySchedule, subSvc, cfg.Jobs.SubscriptionGrace); err != nil {
		zl.Fatal("failed to schedule jobs", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "mailroom",
		ErrorHandler: handlers.ErrorHandler(zl),
		BodyLimit:    20 * 1024 * 1024,
	})

	// RequestID adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(httpMetrics.Handler())
	// Logger resolves handler errors, so metrics above see the final status
	app.Use(middleware.Logger(zl))
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, svcs)

	scheduler.Start()

	addr := ":" + cfg.Port
	go func() {
		zl.Info("server_starting", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("server_shutdown_failed", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		zl.Error("scheduler_shutdown_failed", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("tracer_shutdown_failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := db.Close(); err != nil {
		zl.Error("database_close_failed", zap.Error(err))
	}

	zl.Info("server_stopped")
}
