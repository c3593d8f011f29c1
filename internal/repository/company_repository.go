package repository

import (
	"context"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// CompanyRepository handles company information data access
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.CompanyInformation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*domain.CompanyInformation, error) {
	var c domain.CompanyInformation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetFirst returns the oldest company record, which is the letterhead used on
// printable documents
func (r *CompanyRepository) GetFirst(ctx context.Context) (*domain.CompanyInformation, error) {
	var c domain.CompanyInformation
	if err := r.db.WithContext(ctx).Order("id ASC").First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]domain.CompanyInformation, error) {
	var rows []domain.CompanyInformation
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *CompanyRepository) Update(ctx context.Context, c *domain.CompanyInformation) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CompanyRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.CompanyInformation{}, id)
	return result.RowsAffected, result.Error
}
