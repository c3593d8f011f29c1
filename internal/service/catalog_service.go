package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
)

// CatalogService handles the brand, sub-brand, flavour, pack type, pack code
// and industry lookup tables
type CatalogService struct {
	repo   *repository.CatalogRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(repo *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) check(kind domain.CatalogKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown catalog %q", kind)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, kind domain.CatalogKind, req *domain.CatalogRequest) (*domain.CatalogItem, error) {
	if err := s.check(kind); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.Validation(fmt.Sprintf("%s name is required", kind.Label()))
	}
	item := &domain.CatalogItem{Name: name}
	if err := s.repo.Create(ctx, kind, item); err != nil {
		s.logger.Error("failed to create catalog item", zap.String("catalog", string(kind)), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	if err := s.check(kind); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, kind)
}

// Delete removes one entry. A missing id is not an error.
func (s *CatalogService) Delete(ctx context.Context, kind domain.CatalogKind, id int64) error {
	if err := s.check(kind); err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, kind, id); err != nil {
		s.logger.Error("failed to delete catalog item", zap.String("catalog", string(kind)), zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// BulkDelete removes every listed entry and returns how many existed
func (s *CatalogService) BulkDelete(ctx context.Context, kind domain.CatalogKind, ids []int64) (int64, error) {
	if err := s.check(kind); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrIDsRequired
	}
	deleted, err := s.repo.DeleteMany(ctx, kind, ids)
	if err != nil {
		s.logger.Error("failed to bulk delete catalog items", zap.String("catalog", string(kind)), zap.Int64s("ids", ids), zap.Error(err))
		return 0, err
	}
	if deleted == 0 {
		return 0, domain.Validation(fmt.Sprintf("No %ss deleted (IDs not found or restricted)", strings.ToLower(kind.Label())))
	}
	s.logger.Info("catalog items deleted", zap.String("catalog", string(kind)), zap.Int64("deleted", deleted))
	return deleted, nil
}
