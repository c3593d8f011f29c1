package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/database"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/http/handler"
	"github.com/packline/jobdesk-api/internal/http/middleware"
	"github.com/packline/jobdesk-api/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/packline/jobdesk-api/docs" // Import generated swagger docs
)

// ReadinessCheck is an extra dependency reported by /health/ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handlers groups every API handler the router mounts
type Handlers struct {
	Auth           *handler.AuthHandler
	User           *handler.UserHandler
	Project        *handler.ProjectHandler
	Job            *handler.JobHandler
	Assignment     *handler.AssignmentHandler
	Estimate       *handler.EstimateHandler
	Invoice        *handler.InvoiceHandler
	PurchaseOrder  *handler.PurchaseOrderHandler
	TimeLog        *handler.TimeLogHandler
	ClientSupplier *handler.ClientSupplierHandler
	Company        *handler.CompanyHandler
	Dashboard      *handler.DashboardHandler
	TaxCategory    *handler.TaxCategoryHandler
	File           *handler.FileHandler
	Audit          *handler.AuditHandler
	// Catalogs is keyed by the route segment, e.g. "brand" or "flavours"
	Catalogs map[string]*handler.CatalogHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	audit          *middleware.AuditMiddleware
	metrics        *metrics.Metrics
	readiness      []ReadinessCheck
	h              Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	audit *middleware.AuditMiddleware,
	m *metrics.Metrics,
	handlers Handlers,
	readiness ...ReadinessCheck,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		audit:          audit,
		metrics:        m,
		readiness:      readiness,
		h:              handlers,
	}
}

// CatalogRoutes maps each catalog route segment to its kind
var CatalogRoutes = map[string]domain.CatalogKind{
	"brand":      domain.CatalogBrand,
	"subbrands":  domain.CatalogSubBrand,
	"flavours":   domain.CatalogFlavour,
	"packtypes":  domain.CatalogPackType,
	"packcodes":  domain.CatalogPackCode,
	"industries": domain.CatalogIndustry,
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readinessHealth)

	if rt.cfg.Metrics.Enabled && rt.metrics != nil {
		r.Method(http.MethodGet, rt.cfg.Metrics.Path, rt.metrics.Handler())
	}

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)
		r.Use(rt.audit.Audit)

		// Auth and users
		r.Post("/auth/login", rt.h.Auth.Login)
		r.Get("/auth/me", rt.h.Auth.Me)
		r.Route("/users", func(r chi.Router) {
			r.Post("/", rt.h.User.Create)
			r.Get("/", rt.h.User.List)
			r.Put("/change-password/{id}", rt.h.User.ChangePassword)
			r.Get("/{id}", rt.h.User.GetByID)
			r.Put("/{id}", rt.h.User.Update)
			r.Delete("/{id}", rt.h.User.Delete)
		})
		r.Get("/production", rt.h.User.ListProduction)
		r.Get("/employee", rt.h.User.ListEmployees)

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.h.Project.List)
			r.Post("/", rt.h.Project.Create)
			r.Get("/overview/{id}", rt.h.Project.Overview)
			r.Get("/status/{status}", rt.h.Project.ListByStatus)
			r.Get("/{id}", rt.h.Project.GetByID)
			r.Put("/{id}", rt.h.Project.Update)
			r.Delete("/{id}", rt.h.Project.Delete)
		})

		// Jobs
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", rt.h.Job.Create)
			r.Get("/", rt.h.Job.List)
			r.Get("/project/{projectId}", rt.h.Job.ListByProject)
			r.Get("/jobhistoryemployee/{employeeId}", rt.h.Job.EmployeeHistory)
			r.Get("/jobHistoryproduction/{productionId}", rt.h.Job.ProductionHistory)
			r.Get("/{id}", rt.h.Job.GetByID)
			r.Put("/{id}", rt.h.Job.Update)
			r.Delete("/{id}", rt.h.Job.Delete)
		})

		// Assignment workflow
		r.Route("/assignjobs", func(r chi.Router) {
			a := rt.h.Assignment
			r.Post("/", a.Assign)
			r.Put("/production-assign", a.ProductionAssign)
			r.Put("/employee-complete/{assign_job_id}/{job_id}", a.EmployeeComplete)
			r.Put("/employee-reject/{assign_job_id}/{job_id}", a.EmployeeReject)
			r.Put("/production-complete/{id}", a.ProductionComplete)
			r.Put("/production-return", a.ProductionReturn)
			r.Put("/production-return-job-status", a.ProductionReturnJobStatus)
			r.Put("/production-reject", a.ProductionReject)

			r.Get("/employee/{employee_id}", a.ListByEmployee)
			r.Get("/employeeall", a.ListAllEmployee)
			r.Get("/production/{production_id}", a.ListByProduction)
			r.Get("/productionall", a.ListAllProduction)

			r.Get("/jobs/in-progress/{production_id}", a.JobsByStatus(domain.ProductionInProgress, "production_id"))
			r.Get("/jobs/allInprogress", a.JobsByStatus(domain.ProductionInProgress, ""))
			r.Get("/jobs/complete/{production_id}", a.JobsByStatus(domain.ProductionComplete, "production_id"))
			r.Get("/jobs/allcomplete", a.JobsByStatus(domain.ProductionComplete, ""))
			r.Get("/jobs/reject/{production_id}", a.JobsByStatus(domain.ProductionReject, "production_id"))
			r.Get("/jobs/allreject", a.JobsByStatus(domain.ProductionReject, ""))

			r.Delete("/{id}", a.Delete)
		})

		// Cost estimates
		r.Route("/costestimates", func(r chi.Router) {
			e := rt.h.Estimate
			r.Post("/", e.Create)
			r.Get("/", e.List)
			r.Get("/project/{projectId}", e.ListByProject)
			r.Post("/{id}/duplicate", e.Duplicate)
			r.Post("/{id}/resync", e.Resync)
			r.Get("/{id}", e.GetByID)
			r.Put("/{id}", e.Update)
			r.Delete("/{id}", e.Delete)
		})
		r.Get("/costestimatePdf/{id}", rt.h.Estimate.PDFData)

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			i := rt.h.Invoice
			r.Post("/", i.Create)
			r.Get("/", i.List)
			r.Post("/from-estimate/{estimateId}", i.CreateFromEstimate)
			r.Get("/project/{projectId}", i.ListByProject)
			r.Get("/pdf/{id}", i.PDFData)
			r.Get("/{id}", i.GetByID)
			r.Put("/{id}", i.Update)
			r.Delete("/{id}", i.Delete)
		})

		// Purchase orders
		r.Route("/purchaseorders", func(r chi.Router) {
			p := rt.h.PurchaseOrder
			r.Post("/", p.Create)
			r.Get("/", p.List)
			r.Get("/project/{projectId}", p.ListByProject)
			r.Get("/{id}", p.GetByID)
			r.Put("/{id}", p.Update)
			r.Delete("/{id}", p.Delete)
		})

		// Time logs
		r.Route("/time-logs", func(r chi.Router) {
			t := rt.h.TimeLog
			r.Post("/", t.Create)
			r.Get("/", t.List)
			r.Get("/onlyemployeeall/all", t.ListAllEmployee)
			r.Get("/employee/job/{jobId}", t.JobLogs)
			r.Get("/employee/{employeeId}/job/{jobId}", t.JobLogs)
			r.Get("/employee/{employeeId}", t.ListByEmployee)
			r.Get("/production/{productionId}", t.ListByProduction)
			r.Get("/{id}", t.GetByID)
			r.Put("/{id}", t.Update)
			r.Delete("/{id}", t.Delete)
		})

		// Clients and suppliers
		r.Route("/clientsuppliers", func(r chi.Router) {
			c := rt.h.ClientSupplier
			r.Post("/", c.Create)
			r.Get("/", c.List)
			r.Get("/{id}", c.GetByID)
			r.Put("/{id}", c.Update)
			r.Delete("/{id}", c.Delete)
		})
		r.Get("/clients", rt.h.ClientSupplier.ListClients)
		r.Get("/suppliers", rt.h.ClientSupplier.ListSuppliers)

		// Company information
		r.Route("/company", func(r chi.Router) {
			r.Post("/", rt.h.Company.Create)
			r.Get("/", rt.h.Company.List)
			r.Get("/{id}", rt.h.Company.GetByID)
			r.Put("/{id}", rt.h.Company.Update)
			r.Delete("/{id}", rt.h.Company.Delete)
		})

		// Dashboards
		r.Get("/dashboards/production/{productionId}", rt.h.Dashboard.Production)
		r.Get("/dashboards/employee/{employeeId}", rt.h.Dashboard.Employee)
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAdmin)
			r.Get("/admin/reports", rt.h.Dashboard.AdminReport)
			r.Get("/admindashboard", rt.h.Company.AdminDashboard)
			r.Get("/audit-logs", rt.h.Audit.List)
		})

		// Lookup catalogs
		for segment, c := range rt.h.Catalogs {
			r.Route("/"+segment, func(r chi.Router) {
				r.Post("/", c.Create)
				r.Get("/", c.List)
				r.Delete("/bulk-delete", c.BulkDelete)
				r.Delete("/{id}", c.Delete)
			})
		}

		r.Route("/taxcategory", func(r chi.Router) {
			r.Post("/", rt.h.TaxCategory.Create)
			r.Get("/", rt.h.TaxCategory.List)
			r.Get("/{id}", rt.h.TaxCategory.GetByID)
			r.Delete("/{id}", rt.h.TaxCategory.Delete)
		})

		// Stored uploads
		r.Get("/files/*", rt.h.File.Download)
	})

	return r
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// databaseHealth is the readiness probe with connection pool stats
func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	body := map[string]interface{}{
		"status":  "healthy",
		"service": "database",
	}
	if sqlDB, err := rt.db.DB(); err == nil {
		stats := sqlDB.Stats()
		body["stats"] = map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		}
	}
	writeHealth(w, http.StatusOK, body)
}

// readinessHealth checks the database and every registered dependency
func (rt *Router) readinessHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]interface{})
	allHealthy := true

	all := append([]ReadinessCheck{{
		Name:  "database",
		Check: func(ctx context.Context) error { return database.HealthCheck(ctx, rt.db) },
	}}, rt.readiness...)

	for _, c := range all {
		if err := c.Check(ctx); err != nil {
			rt.logger.Error("Readiness check failed", zap.String("check", c.Name), zap.Error(err))
			checks[c.Name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
			continue
		}
		checks[c.Name] = map[string]interface{}{"status": "healthy"}
	}

	status, label := http.StatusOK, "healthy"
	if !allHealthy {
		status, label = http.StatusServiceUnavailable, "unhealthy"
	}
	writeHealth(w, status, map[string]interface{}{"status": label, "checks": checks})
}
