package repository

import (
	"context"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// TaxCategoryRepository handles tax category data access
type TaxCategoryRepository struct {
	db *gorm.DB
}

// NewTaxCategoryRepository creates a new tax category repository
func NewTaxCategoryRepository(db *gorm.DB) *TaxCategoryRepository {
	return &TaxCategoryRepository{db: db}
}

func (r *TaxCategoryRepository) Create(ctx context.Context, c *domain.TaxCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *TaxCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.TaxCategory, error) {
	var c domain.TaxCategory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *TaxCategoryRepository) List(ctx context.Context) ([]domain.TaxCategory, error) {
	var rows []domain.TaxCategory
	err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *TaxCategoryRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.TaxCategory{}, id)
	return result.RowsAffected, result.Error
}
