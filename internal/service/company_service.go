package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/storage"
	"go.uber.org/zap"
)

// Storage folders for company images
const (
	companyLogoFolder  = "company/logo"
	companyStampFolder = "company/stamp"
)

// CompanyImages are the optional files uploaded with company information
type CompanyImages struct {
	Logo  *domain.Upload
	Stamp *domain.Upload
}

// CompanyService handles the agency's own company information and the
// company admin dashboard
type CompanyService struct {
	companyRepo  *repository.CompanyRepository
	projectRepo  *repository.ProjectRepository
	jobRepo      *repository.JobRepository
	estimateRepo *repository.EstimateRepository
	poRepo       *repository.PurchaseOrderRepository
	storage      storage.Storage
	logger       *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(
	companyRepo *repository.CompanyRepository,
	projectRepo *repository.ProjectRepository,
	jobRepo *repository.JobRepository,
	estimateRepo *repository.EstimateRepository,
	poRepo *repository.PurchaseOrderRepository,
	store storage.Storage,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo:  companyRepo,
		projectRepo:  projectRepo,
		jobRepo:      jobRepo,
		estimateRepo: estimateRepo,
		poRepo:       poRepo,
		storage:      store,
		logger:       logger,
	}
}

func applyCompany(c *domain.CompanyInformation, req *domain.CompanyRequest) {
	c.CompanyName = strings.TrimSpace(req.CompanyName)
	c.Address = req.Address
	c.TRN = req.TRN
	c.Email = req.Email
	c.Phone = req.Phone
	c.BankAccountName = req.BankAccountName
	c.BankName = req.BankName
	c.IBAN = req.IBAN
	c.SwiftCode = req.SwiftCode
	c.TaxCategories = req.TaxCategories
	if req.CompanyLogo != "" {
		c.CompanyLogo = req.CompanyLogo
	}
	if req.CompanyStamp != "" {
		c.CompanyStamp = req.CompanyStamp
	}
}

// Create stores the company information with its optional logo and stamp
func (s *CompanyService) Create(ctx context.Context, req *domain.CompanyRequest, images CompanyImages) (*domain.CompanyInformation, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, domain.Validation("company_name is required")
	}
	company := &domain.CompanyInformation{}
	applyCompany(company, req)

	stored, err := s.storeImages(ctx, company, images)
	if err != nil {
		return nil, err
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		s.logger.Error("failed to create company information", zap.String("company_name", company.CompanyName), zap.Error(err))
		s.discard(ctx, stored)
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) GetByID(ctx context.Context, id int64) (*domain.CompanyInformation, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	return company, nil
}

func (s *CompanyService) List(ctx context.Context) ([]domain.CompanyInformation, error) {
	return s.companyRepo.List(ctx)
}

// Update overwrites the company fields. Logo and stamp are replaced only when
// a new image is uploaded.
func (s *CompanyService) Update(ctx context.Context, id int64, req *domain.CompanyRequest, images CompanyImages) (*domain.CompanyInformation, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	previousLogo, previousStamp := company.CompanyLogo, company.CompanyStamp
	applyCompany(company, req)

	stored, err := s.storeImages(ctx, company, images)
	if err != nil {
		return nil, err
	}
	if err := s.companyRepo.Update(ctx, company); err != nil {
		s.logger.Error("failed to update company information", zap.Int64("company_id", id), zap.Error(err))
		s.discard(ctx, stored)
		return nil, err
	}
	if images.Logo != nil && previousLogo != company.CompanyLogo {
		s.discard(ctx, []string{previousLogo})
	}
	if images.Stamp != nil && previousStamp != company.CompanyStamp {
		s.discard(ctx, []string{previousStamp})
	}
	return company, nil
}

func (s *CompanyService) Delete(ctx context.Context, id int64) error {
	n, err := s.companyRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete company information", zap.Int64("company_id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// AdminDashboard returns the landing page counters, the project status chart
// and the five newest projects
func (s *CompanyService) AdminDashboard(ctx context.Context) (*domain.AdminDashboard, error) {
	var cards domain.AdminCards
	counters := []struct {
		name  string
		dst   *int64
		count func() (int64, error)
	}{
		{"projects_in_progress", &cards.ProjectsInProgress, func() (int64, error) { return s.projectRepo.CountByStatus(ctx, "in_progress") }},
		{"jobs_in_progress", &cards.JobsInProgress, func() (int64, error) { return s.jobRepo.CountByStatus(ctx, domain.JobInProgress) }},
		{"cost_estimates", &cards.CostEstimates, func() (int64, error) { return s.estimateRepo.CountByStatus(ctx, "Draft") }},
		{"receivable_po", &cards.ReceivablePO, func() (int64, error) { return s.poRepo.Count(ctx) }},
		{"completed_projects", &cards.CompletedProjects, func() (int64, error) { return s.projectRepo.CountByStatus(ctx, "completed") }},
	}
	for _, c := range counters {
		n, err := c.count()
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
		*c.dst = n
	}

	statuses, err := s.projectRepo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to group projects by status: %w", err)
	}
	recent, err := s.projectRepo.Recent(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent projects: %w", err)
	}

	dashboard := &domain.AdminDashboard{
		Cards:          cards,
		ProjectStatus:  statuses,
		RecentActivity: make([]domain.ProjectActivity, 0, len(recent)),
	}
	if dashboard.ProjectStatus == nil {
		dashboard.ProjectStatus = []domain.StatusCount{}
	}
	for _, p := range recent {
		dashboard.RecentActivity = append(dashboard.RecentActivity, domain.ProjectActivity{
			ProjectName: p.ProjectName,
			ClientName:  p.ClientName,
			Budget:      p.Budget,
			Currency:    p.Currency,
			CreatedAt:   p.CreatedAt,
		})
	}
	return dashboard, nil
}

// storeImages uploads the logo and stamp and points company at them. It
// returns the keys written so a failed save can remove them.
func (s *CompanyService) storeImages(ctx context.Context, company *domain.CompanyInformation, images CompanyImages) ([]string, error) {
	var stored []string
	uploads := []struct {
		upload *domain.Upload
		folder string
		target *string
	}{
		{images.Logo, companyLogoFolder, &company.CompanyLogo},
		{images.Stamp, companyStampFolder, &company.CompanyStamp},
	}
	for _, u := range uploads {
		if u.upload == nil || len(u.upload.Data) == 0 {
			continue
		}
		if s.storage == nil {
			s.discard(ctx, stored)
			return nil, fmt.Errorf("image storage is not configured")
		}
		key, err := s.storage.Upload(ctx, u.folder, u.upload.Filename, u.upload.ContentType, bytes.NewReader(u.upload.Data))
		if err != nil {
			s.logger.Error("failed to store company image", zap.String("folder", u.folder), zap.Error(err))
			s.discard(ctx, stored)
			return nil, err
		}
		*u.target = key
		stored = append(stored, key)
	}
	return stored, nil
}

func (s *CompanyService) discard(ctx context.Context, keys []string) {
	if s.storage == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to remove company image", zap.String("key", key), zap.Error(err))
		}
	}
}
