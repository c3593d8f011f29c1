package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/packline/jobdesk-api/docs"
	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/database"
	"github.com/packline/jobdesk-api/internal/events"
	"github.com/packline/jobdesk-api/internal/http/handler"
	"github.com/packline/jobdesk-api/internal/http/middleware"
	"github.com/packline/jobdesk-api/internal/http/router"
	"github.com/packline/jobdesk-api/internal/jobs"
	"github.com/packline/jobdesk-api/internal/logger"
	"github.com/packline/jobdesk-api/internal/metrics"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title Jobdesk API
// @version 1.0
// @description Job tracking for a packaging design agency: projects, jobs, the assignment workflow, time logs, estimates, purchase orders and invoices

// @host localhost:3001
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token returned by /auth/login

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	} else {
		docs.SwaggerInfo.Host = ""
	}

	// In staging/production with USE_AZURE_KEY_VAULT=true secrets come from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		// Postgres is migrated by cmd/migrate; the sqlite mode builds its schema here
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	var publisher events.Publisher = events.NopPublisher{}
	var readiness []router.ReadinessCheck
	if cfg.Redis.Enabled {
		redisPublisher, err := events.NewRedisPublisher(ctx, events.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			// Events are best effort; run without them
			log.Warn("Redis connection failed, continuing without events", zap.Error(err))
		} else {
			publisher = redisPublisher
			readiness = append(readiness, router.ReadinessCheck{Name: "redis", Check: redisPublisher.Ping})
			log.Info("Event publisher connected",
				zap.String("address", cfg.Redis.Address),
				zap.String("channel", cfg.Redis.Channel))
		}
	}
	defer func() { _ = publisher.Close() }()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	// Repositories
	projectRepo := repository.NewProjectRepository(db)
	jobRepo := repository.NewJobRepository(db)
	assignRepo := repository.NewAssignJobRepository(db)
	timeLogRepo := repository.NewTimeLogRepository(db)
	estimateRepo := repository.NewEstimateRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	clientRepo := repository.NewClientSupplierRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	taxRepo := repository.NewTaxCategoryRepository(db)
	numberRepo := repository.NewNumberSequenceRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	tokens := auth.NewTokenManager(&cfg.Auth)
	numbers := service.NewNumberSequenceService(numberRepo, log)
	financialSync := service.NewFinancialSyncService(estimateRepo, poRepo, invoiceRepo, publisher, m, log)

	userService := service.NewUserService(userRepo, tokens, fileStorage, cfg.Auth.BcryptCost, log)
	projectService := service.NewProjectService(projectRepo, jobRepo, assignRepo, timeLogRepo, estimateRepo, poRepo, invoiceRepo, numbers, log, db)
	jobService := service.NewJobService(jobRepo, projectRepo, assignRepo, timeLogRepo, userRepo, numbers, log, db)
	assignmentService := service.NewAssignmentService(assignRepo, jobRepo, projectRepo, userRepo, publisher, m, log, db)
	timeLogService := service.NewTimeLogService(timeLogRepo, assignRepo, jobRepo, projectRepo, userRepo, log)
	estimateService := service.NewEstimateService(estimateRepo, poRepo, clientRepo, projectRepo, companyRepo, numbers, financialSync, log, db)
	invoiceService := service.NewInvoiceService(invoiceRepo, estimateRepo, poRepo, clientRepo, projectRepo, companyRepo, numbers, financialSync, log, db)
	poService := service.NewPurchaseOrderService(poRepo, estimateRepo, clientRepo, projectRepo, fileStorage, log, db)
	clientSupplierService := service.NewClientSupplierService(clientRepo, log)
	companyService := service.NewCompanyService(companyRepo, projectRepo, jobRepo, estimateRepo, poRepo, fileStorage, log)
	dashboardService := service.NewDashboardService(projectRepo, jobRepo, assignRepo, invoiceRepo, poRepo, timeLogRepo, log)
	catalogService := service.NewCatalogService(catalogRepo, log)
	taxService := service.NewTaxCategoryService(taxRepo, log)
	auditService := service.NewAuditLogService(auditRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, tokens, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditService, nil, log)
	if !authMiddleware.Enabled() {
		log.Warn("Authentication disabled; every /api route is open")
	}

	// Handlers
	maxUpload := cfg.Storage.MaxUploadSizeMB
	catalogs := make(map[string]*handler.CatalogHandler, len(router.CatalogRoutes))
	for segment, kind := range router.CatalogRoutes {
		catalogs[segment] = handler.NewCatalogHandler(catalogService, kind, log)
	}
	handlers := router.Handlers{
		Auth:           handler.NewAuthHandler(userService, log),
		User:           handler.NewUserHandler(userService, maxUpload, log),
		Project:        handler.NewProjectHandler(projectService, log),
		Job:            handler.NewJobHandler(jobService, log),
		Assignment:     handler.NewAssignmentHandler(assignmentService, log),
		Estimate:       handler.NewEstimateHandler(estimateService, log),
		Invoice:        handler.NewInvoiceHandler(invoiceService, log),
		PurchaseOrder:  handler.NewPurchaseOrderHandler(poService, maxUpload, log),
		TimeLog:        handler.NewTimeLogHandler(timeLogService, log),
		ClientSupplier: handler.NewClientSupplierHandler(clientSupplierService, log),
		Company:        handler.NewCompanyHandler(companyService, maxUpload, log),
		Dashboard:      handler.NewDashboardHandler(dashboardService, log),
		TaxCategory:    handler.NewTaxCategoryHandler(taxService, log),
		File:           handler.NewFileHandler(fileStorage, log),
		Audit:          handler.NewAuditHandler(auditService, log),
		Catalogs:       catalogs,
	}

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, auditMiddleware, m, handlers, readiness...)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		loc, err := time.LoadLocation(cfg.Jobs.SchedulerTimeZone)
		if err != nil {
			log.Warn("Unknown scheduler time zone, using UTC",
				zap.String("time_zone", cfg.Jobs.SchedulerTimeZone), zap.Error(err))
			loc = time.UTC
		}
		scheduler = jobs.NewScheduler(log, loc)
		jobTimeout := cfg.Jobs.RunTimeout()

		if err := jobs.RegisterFinancialResyncJob(scheduler, financialSync, m, log, cfg.Jobs.FinancialResync, jobTimeout); err != nil {
			log.Error("Failed to register financial re-sync job", zap.Error(err))
		}
		if err := jobs.RegisterStaleAssignmentsJob(scheduler, assignmentService, publisher, m, log,
			cfg.Jobs.StaleAssignments, cfg.Jobs.StaleAfter(), jobTimeout); err != nil {
			log.Error("Failed to register stale assignments job", zap.Error(err))
		}
		if err := jobs.RegisterAuditRetentionJob(scheduler, auditService, m, log,
			cfg.Jobs.AuditRetention, cfg.Jobs.AuditRetentionWindow(), jobTimeout); err != nil {
			log.Error("Failed to register audit retention job", zap.Error(err))
		}
		scheduler.Start()
		log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      http.TimeoutHandler(rt.Setup(), cfg.Server.RequestTimeoutDuration(), `{"success":false,"message":"Request timed out"}`),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		timeout := time.Duration(cfg.Jobs.ShutdownTimeoutSec) * time.Second
		if scheduler != nil {
			select {
			case <-scheduler.Stop().Done():
				log.Info("Scheduler stopped")
			case <-time.After(timeout):
				log.Warn("Scheduler did not stop in time")
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
