package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/clinic-service/internal/api/http"
	"github.com/spec-kit/clinic-service/internal/api/http/handlers"
	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/config"
	"github.com/spec-kit/clinic-service/internal/events"
	"github.com/spec-kit/clinic-service/internal/observability"
	"github.com/spec-kit/clinic-service/internal/persistence"
	"github.com/spec-kit/clinic-service/internal/repository"
	"github.com/spec-kit/clinic-service/internal/service"
	"github.com/spec-kit/clinic-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	signingKey, err := auth.NewSigningKey(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("invalid signing secret", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient := persistence.NewRedis(cfg.Redis, logger)
	defer redisClient.Close()

	adminRepo := repository.NewAdminRepository(pool)
	doctorRepo := repository.NewDoctorRepository(pool)
	patientRepo := repository.NewPatientRepository(pool)
	prescriptionRepo := repository.NewPrescriptionRepository(pool)

	tokens := auth.NewTokenManager(signingKey, auth.WithTTL(cfg.Auth.TokenTTL()))
	gate := auth.NewGate(tokens, auth.NewResolver(adminRepo, doctorRepo, patientRepo), logger)

	var counters auth.CounterStore
	if client := redisClient.Counters(); client != nil {
		counters = client
	}
	throttle := auth.NewLoginThrottle(counters, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authService := service.NewAuthService(service.AuthDependencies{
		Admins:      adminRepo,
		Doctors:     doctorRepo,
		Patients:    patientRepo,
		Tokens:      tokens,
		Throttle:    throttle,
		AdminWriter: adminRepo,
		BcryptCost:  cfg.Auth.BcryptCost,
	})
	if created, err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminUser, cfg.Auth.BootstrapAdminPass); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	} else if created {
		logger.Info("bootstrap admin created", zap.String("username", cfg.Auth.BootstrapAdminUser))
	}

	prescriptionService := service.NewPrescriptionService(service.PrescriptionDependencies{
		Gate:             gate,
		Transactor:       repository.NewTransactor(pool),
		PrescriptionRepo: prescriptionRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		APIPath:       cfg.App.APIPath,
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisClient),
		Metrics:       handlers.NewMetricsHandler(metrics),
		Auth:          handlers.NewAuthHandler(authService, gate),
		Doctors:       handlers.NewDoctorHandler(gate, doctorRepo),
		Prescriptions: handlers.NewPrescriptionHandler(gate, prescriptionService),
		Gate:          gate,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
