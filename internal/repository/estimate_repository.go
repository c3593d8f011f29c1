package repository

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// EstimateRepository handles cost-estimate data access
type EstimateRepository struct {
	db *gorm.DB
}

// NewEstimateRepository creates a new estimate repository
func NewEstimateRepository(db *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *EstimateRepository) WithTx(tx *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: tx}
}

func (r *EstimateRepository) Create(ctx context.Context, e *domain.Estimate) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EstimateRepository) GetByID(ctx context.Context, id int64) (*domain.Estimate, error) {
	var e domain.Estimate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByIDs returns the estimates keyed by id
func (r *EstimateRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Estimate, error) {
	out := make(map[int64]*domain.Estimate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Estimate
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *EstimateRepository) Update(ctx context.Context, e *domain.Estimate) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// UpdateFields writes a partial update and refreshes updated_at
func (r *EstimateRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (int64, error) {
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.Estimate{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// ApplyTotals overwrites the priced fields of an estimate
func (r *EstimateRepository) ApplyTotals(ctx context.Context, id int64, t domain.Totals) (int64, error) {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"line_items":   t.Items,
		"vat_rate":     t.VATRate,
		"subtotal":     t.Subtotal,
		"vat_amount":   t.VATAmount,
		"total_amount": t.Total,
	})
}

// SetStatuses writes the document statuses and the flags derived from them
func (r *EstimateRepository) SetStatuses(ctx context.Context, id int64, ceStatus string, po, inv domain.DocStatus) error {
	f := domain.ComputeEstimateFlags(po, inv)
	fields := map[string]interface{}{
		"ce_po_status":      po,
		"ce_invoice_status": inv,
		"to_be_invoiced":    f.ToBeInvoiced,
		"invoice":           f.Invoice,
		"invoiced":          f.Invoiced,
	}
	if ceStatus != "" {
		fields["ce_status"] = ceStatus
	}
	_, err := r.UpdateFields(ctx, id, fields)
	return err
}

func (r *EstimateRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Estimate{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByProject removes every estimate of a project
func (r *EstimateRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.Estimate{}).Error
}

// List returns every estimate, newest first
func (r *EstimateRepository) List(ctx context.Context) ([]domain.Estimate, error) {
	var rows []domain.Estimate
	err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListByProject returns a project's estimates, newest first
func (r *EstimateRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Estimate, error) {
	var rows []domain.Estimate
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *EstimateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Estimate{}).Count(&count).Error
	return count, err
}

// CountByStatus counts estimates whose ce_status matches case-insensitively
func (r *EstimateRepository) CountByStatus(ctx context.Context, ceStatus string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Estimate{}).
		Where("LOWER(ce_status) = LOWER(?)", ceStatus).
		Count(&count).Error
	return count, err
}
