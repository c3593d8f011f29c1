package repository

import (
	"context"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// ClientSupplierRepository handles client and supplier data access
type ClientSupplierRepository struct {
	db *gorm.DB
}

// NewClientSupplierRepository creates a new client/supplier repository
func NewClientSupplierRepository(db *gorm.DB) *ClientSupplierRepository {
	return &ClientSupplierRepository{db: db}
}

func (r *ClientSupplierRepository) Create(ctx context.Context, c *domain.ClientSupplier) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClientSupplierRepository) GetByID(ctx context.Context, id int64) (*domain.ClientSupplier, error) {
	var c domain.ClientSupplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDs returns the counterparties keyed by id
func (r *ClientSupplierRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.ClientSupplier, error) {
	out := make(map[int64]*domain.ClientSupplier, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.ClientSupplier
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *ClientSupplierRepository) Update(ctx context.Context, c *domain.ClientSupplier) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ClientSupplierRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.ClientSupplier{}, id)
	return result.RowsAffected, result.Error
}

// List returns every counterparty of kind ("client", "supplier"), or all of
// them when kind is empty
func (r *ClientSupplierRepository) List(ctx context.Context, kind string) ([]domain.ClientSupplier, error) {
	q := r.db.WithContext(ctx).Model(&domain.ClientSupplier{})
	if kind != "" {
		q = q.Where("LOWER(type) = LOWER(?)", kind)
	}
	var rows []domain.ClientSupplier
	err := q.Order("id DESC").Find(&rows).Error
	return rows, err
}

// Count counts counterparties of kind, or all of them when kind is empty
func (r *ClientSupplierRepository) Count(ctx context.Context, kind string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.ClientSupplier{})
	if kind != "" {
		q = q.Where("LOWER(type) = LOWER(?)", kind)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
