package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/api/rest"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/api/rest/handlers"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/channels"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/repository/postgres"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/services"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/workers"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/config"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/database"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting outreach API",
		logger.String("version", cfg.App.Version),
		logger.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL
	db, err := database.NewPostgresDB(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Apply pending migrations on boot
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := db.MigrateUp(migrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis
	redis, err := database.NewRedisClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()

	// Initialize metrics
	m := metrics.New()

	// Initialize repositories
	workflowRepo := postgres.NewWorkflowRepository(db.DB)
	templateRepo := postgres.NewTemplateRepository(db.DB)
	customerRepo := postgres.NewCustomerRepository(db.DB)
	orgRepo := postgres.NewOrganizationRepository(db.DB)
	runRepo := postgres.NewRunRepository(db.DB)

	// Initialize outbound channel senders
	senders := channels.NewRegistryFromConfig(cfg.Channels, log)

	// Initialize services
	dispatchService := services.NewDispatchService(
		runRepo,
		workflowRepo,
		customerRepo,
		orgRepo,
		templateRepo,
		senders,
		redis,
		log,
		m,
		cfg.Outreach.DispatchBatchSize,
		cfg.Outreach.SweepLockTTL,
	)
	runService := services.NewRunService(runRepo, workflowRepo, customerRepo, orgRepo, dispatchService, log, m)
	workflowService := services.NewWorkflowService(workflowRepo, templateRepo, log)
	templateService := services.NewTemplateService(templateRepo, log)
	autoStopService := services.NewAutoStopService(runRepo, customerRepo, log, m)
	idleService := services.NewIdleService(customerRepo, log, m, cfg.Outreach.IdleThreshold, cfg.Outreach.IdleBatchSize)

	// Initialize background workers
	dispatcherWorker, err := workers.NewDispatcherWorker(dispatchService, log, m, cfg.Outreach.DispatchCron)
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher worker: %w", err)
	}
	idleWorker := workers.NewIdleWorker(idleService, log, m, cfg.Outreach.IdleSweepInterval)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcherWorker.Start(workerCtx)
	idleWorker.Start(workerCtx)

	// Initialize handlers
	h := handlers.NewHandlers(
		log,
		workflowService,
		templateService,
		runService,
		dispatchService,
		autoStopService,
		idleService,
		&handlers.HealthCheckers{
			DB:    db,
			Redis: redis,
		},
		cfg.App.Version,
	)

	// Initialize router
	router := rest.NewRouter(log, h, cfg.Outreach.DispatchSecret, m)
	router.SetupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("API server listening", logger.String("address", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))

		// Stop background workers first
		dispatcherWorker.Stop()
		idleWorker.Stop()

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Gracefully shutdown the server
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
