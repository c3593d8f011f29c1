package service

import (
	"context"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
)

var errTaxCategoryFields = domain.Validation("category_name and tax_rate are required")

// TaxCategoryService handles named VAT rates
type TaxCategoryService struct {
	repo   *repository.TaxCategoryRepository
	logger *zap.Logger
}

// NewTaxCategoryService creates a new TaxCategoryService
func NewTaxCategoryService(repo *repository.TaxCategoryRepository, logger *zap.Logger) *TaxCategoryService {
	return &TaxCategoryService{repo: repo, logger: logger}
}

func (s *TaxCategoryService) Create(ctx context.Context, req *domain.TaxCategoryRequest) (*domain.TaxCategory, error) {
	name := strings.TrimSpace(req.CategoryName)
	if name == "" || req.TaxRate == nil {
		return nil, errTaxCategoryFields
	}
	if *req.TaxRate < 0 {
		return nil, domain.Validation("tax_rate must not be negative")
	}
	category := &domain.TaxCategory{CategoryName: name, TaxRate: *req.TaxRate}
	if err := s.repo.Create(ctx, category); err != nil {
		s.logger.Error("failed to create tax category", zap.String("category_name", name), zap.Error(err))
		return nil, err
	}
	return category, nil
}

func (s *TaxCategoryService) List(ctx context.Context) ([]domain.TaxCategory, error) {
	return s.repo.List(ctx)
}

func (s *TaxCategoryService) GetByID(ctx context.Context, id int64) (*domain.TaxCategory, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTaxCategoryNotFound)
	}
	return category, nil
}

func (s *TaxCategoryService) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete tax category", zap.Int64("tax_category_id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrTaxCategoryNotFound
	}
	return nil
}
