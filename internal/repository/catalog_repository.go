package repository

import (
	"context"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// CatalogRepository handles the name-only lookup tables. Every method takes
// the catalog kind, which selects the table.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) table(ctx context.Context, kind domain.CatalogKind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.Table())
}

func (r *CatalogRepository) Create(ctx context.Context, kind domain.CatalogKind, item *domain.CatalogItem) error {
	return r.table(ctx, kind).Create(item).Error
}

func (r *CatalogRepository) GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	if err := r.table(ctx, kind).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	err := r.table(ctx, kind).Order("id DESC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) Delete(ctx context.Context, kind domain.CatalogKind, id int64) (int64, error) {
	result := r.table(ctx, kind).Where("id = ?", id).Delete(&domain.CatalogItem{})
	return result.RowsAffected, result.Error
}

// DeleteMany removes the rows in ids and returns how many existed
func (r *CatalogRepository) DeleteMany(ctx context.Context, kind domain.CatalogKind, ids []int64) (int64, error) {
	result := r.table(ctx, kind).Where("id IN ?", ids).Delete(&domain.CatalogItem{})
	return result.RowsAffected, result.Error
}
