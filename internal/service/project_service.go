package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/money"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService handles projects
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	jobRepo      *repository.JobRepository
	assignRepo   *repository.AssignJobRepository
	timeLogRepo  *repository.TimeLogRepository
	estimateRepo *repository.EstimateRepository
	poRepo       *repository.PurchaseOrderRepository
	invoiceRepo  *repository.InvoiceRepository
	numbers      *NumberSequenceService
	logger       *zap.Logger
	db           *gorm.DB
	now          func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	jobRepo *repository.JobRepository,
	assignRepo *repository.AssignJobRepository,
	timeLogRepo *repository.TimeLogRepository,
	estimateRepo *repository.EstimateRepository,
	poRepo *repository.PurchaseOrderRepository,
	invoiceRepo *repository.InvoiceRepository,
	numbers *NumberSequenceService,
	logger *zap.Logger,
	db *gorm.DB,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		jobRepo:      jobRepo,
		assignRepo:   assignRepo,
		timeLogRepo:  timeLogRepo,
		estimateRepo: estimateRepo,
		poRepo:       poRepo,
		invoiceRepo:  invoiceRepo,
		numbers:      numbers,
		logger:       logger,
		db:           db,
		now:          time.Now,
	}
}

// parseBudget reads a budget sent as a number or a formatted string
func (s *ProjectService) parseBudget(raw any, currency string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	if str, ok := raw.(string); ok && strings.TrimSpace(str) == "" {
		return nil, nil
	}
	if money.IsFallbackCurrency(currency) {
		s.logger.Warn("budget parsed with fallback separator rules", zap.String("currency", currency))
	}
	amount, err := money.ParseAmount(raw, currency)
	if err != nil {
		return nil, domain.Validation("Invalid budget format")
	}
	v := amount.InexactFloat64()
	return &v, nil
}

func (s *ProjectService) apply(p *domain.Project, req *domain.ProjectRequest) error {
	budget, err := s.parseBudget(req.Budget, req.Currency)
	if err != nil {
		return err
	}
	if name := strings.TrimSpace(req.ProjectName); name != "" {
		p.ProjectName = name
	}
	p.ClientName = req.ClientName
	p.StartDate = req.StartDate
	p.ExpectedCompletionDate = req.ExpectedCompletionDate
	p.Priority = normalizePriority(req.Priority)
	p.Status = req.Status
	if p.Status == "" {
		p.Status = "active"
	}
	p.ProjectDescription = req.ProjectDescription
	p.ProjectRequirements = req.ProjectRequirements
	p.Budget = budget
	p.Currency = req.Currency
	return nil
}

// Create stores a project under the next project number
func (s *ProjectService) Create(ctx context.Context, req *domain.ProjectRequest) (*domain.Project, error) {
	if strings.TrimSpace(req.ProjectName) == "" {
		return nil, ErrProjectNameRequired
	}
	project := &domain.Project{}
	if err := s.apply(project, req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		no, err := s.numbers.Next(ctx, tx, repository.SequenceProject)
		if err != nil {
			return err
		}
		project.ProjectNo = no
		return s.projectRepo.WithTx(tx).Create(ctx, project)
	})
	if err != nil {
		s.logger.Error("failed to create project", zap.String("project_name", req.ProjectName), zap.Error(err))
		return nil, err
	}

	s.logger.Info("project created", zap.Int64("project_id", project.ID), zap.Int64("project_no", project.ProjectNo))
	return project, nil
}

// GetByID returns a project
func (s *ProjectService) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	return project, nil
}

// List returns every project, newest first
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projectRepo.List(ctx)
}

// ListByStatus returns the projects with a status, compared case-insensitively
func (s *ProjectService) ListByStatus(ctx context.Context, status string) ([]domain.Project, error) {
	return s.projectRepo.ListByStatus(ctx, status)
}

// Update overwrites the editable project fields
func (s *ProjectService) Update(ctx context.Context, id int64, req *domain.ProjectRequest) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	if err := s.apply(project, req); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		s.logger.Error("failed to update project", zap.Int64("project_id", id), zap.Error(err))
		return nil, err
	}
	return project, nil
}

// Delete removes the project and everything booked on it, children first,
// in one transaction
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		return notFound(err, ErrProjectNotFound)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func() error{
			func() error { return s.timeLogRepo.WithTx(tx).DeleteByProject(ctx, id) },
			func() error { return s.assignRepo.WithTx(tx).DeleteByProject(ctx, id) },
			func() error { return s.jobRepo.WithTx(tx).DeleteByProject(ctx, id) },
			func() error { return s.invoiceRepo.WithTx(tx).DeleteByProject(ctx, id) },
			func() error { return s.estimateRepo.WithTx(tx).DeleteByProject(ctx, id) },
			func() error { return s.poRepo.WithTx(tx).DeleteByProject(ctx, id) },
			func() error { return s.projectRepo.WithTx(tx).Delete(ctx, id) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete project", zap.Int64("project_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("project deleted", zap.Int64("project_id", id))
	return nil
}

// Overview summarizes a project's jobs, hours, purchase orders and recent
// activity
func (s *ProjectService) Overview(ctx context.Context, id int64) (*domain.ProjectOverview, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}

	inProgress, err := s.jobRepo.CountByProjectAndStatus(ctx, id, domain.JobInProgress)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobRepo.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.timeLogRepo.List(ctx, repository.TimeLogFilters{ProjectID: &id})
	if err != nil {
		return nil, err
	}
	pos, err := s.poRepo.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	overview := &domain.ProjectOverview{
		Project:        *project,
		JobsInProgress: inProgress,
		TotalJobs:      int64(len(jobs)),
		DueDate:        project.ExpectedCompletionDate,
		TotalHours:     "00:00",
		PurchaseOrders: poStats(pos),
		RecentActivity: recentActivity(jobs, pos),
	}
	if !project.ExpectedCompletionDate.IsZero() {
		days := int(math.Ceil(project.ExpectedCompletionDate.Sub(s.now()).Hours() / 24))
		if days < 0 {
			days = 0
		}
		overview.DaysRemaining = &days
	}
	if len(logs) > 0 {
		var total time.Duration
		for i := range logs {
			total += logs[i].Total()
		}
		overview.TotalHours = domain.FormatHoursMinutes(total)
	}
	return overview, nil
}

// poStats counts every PO as received; the PO table has no issued state
func poStats(pos []domain.PurchaseOrder) domain.POStats {
	total := decimal.Zero
	for _, po := range pos {
		total = total.Add(decimal.NewFromFloat(po.POAmount))
	}
	return domain.POStats{
		TotalPOs:   len(pos),
		Received:   len(pos),
		Issued:     0,
		TotalValue: total.StringFixed(2),
		Currency:   "USD",
	}
}

// recentActivity merges the two newest jobs and the newest PO, newest first,
// keeping three entries
func recentActivity(jobs []domain.Job, pos []domain.PurchaseOrder) []domain.Activity {
	sorted := append([]domain.Job(nil), jobs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	out := make([]domain.Activity, 0, 3)
	for i := 0; i < len(sorted) && i < 2; i++ {
		out = append(out, domain.Activity{Activity: "New job created", Type: "job", RefID: sorted[i].ID, CreatedAt: sorted[i].CreatedAt})
	}
	var newest *domain.PurchaseOrder
	for i := range pos {
		if newest == nil || pos[i].CreatedAt.After(newest.CreatedAt) {
			newest = &pos[i]
		}
	}
	if newest != nil {
		out = append(out, domain.Activity{Activity: "New purchase order created", Type: "purchase_order", RefID: newest.ID, CreatedAt: newest.CreatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
