package repository

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// PurchaseOrderRepository handles purchase-order data access
type PurchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository creates a new purchase-order repository
func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PurchaseOrderRepository) WithTx(tx *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: tx}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

// GetByIDs returns the purchase orders keyed by id
func (r *PurchaseOrderRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.PurchaseOrder, error) {
	out := make(map[int64]*domain.PurchaseOrder, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.PurchaseOrder
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

// SetAmount overwrites po_amount
func (r *PurchaseOrderRepository) SetAmount(ctx context.Context, id int64, amount float64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Where("id = ?", id).
		Updates(map[string]interface{}{"po_amount": amount, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

func (r *PurchaseOrderRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.PurchaseOrder{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByEstimate removes every PO raised against an estimate
func (r *PurchaseOrderRepository) DeleteByEstimate(ctx context.Context, estimateID int64) error {
	return r.db.WithContext(ctx).Where("cost_estimation_id = ?", estimateID).Delete(&domain.PurchaseOrder{}).Error
}

// DeleteByProject removes every PO of a project
func (r *PurchaseOrderRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.PurchaseOrder{}).Error
}

// List returns every PO, newest first
func (r *PurchaseOrderRepository) List(ctx context.Context) ([]domain.PurchaseOrder, error) {
	var rows []domain.PurchaseOrder
	err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListByProject returns a project's POs, newest first
func (r *PurchaseOrderRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.PurchaseOrder, error) {
	var rows []domain.PurchaseOrder
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListByEstimate returns the POs raised against an estimate, ordered by id
func (r *PurchaseOrderRepository) ListByEstimate(ctx context.Context, estimateID int64) ([]domain.PurchaseOrder, error) {
	var rows []domain.PurchaseOrder
	err := r.db.WithContext(ctx).Where("cost_estimation_id = ?", estimateID).Order("id ASC").Find(&rows).Error
	return rows, err
}

// ListByEstimates returns the first PO of each estimate, keyed by estimate id
func (r *PurchaseOrderRepository) ListByEstimates(ctx context.Context, estimateIDs []int64) (map[int64]*domain.PurchaseOrder, error) {
	out := make(map[int64]*domain.PurchaseOrder, len(estimateIDs))
	if len(estimateIDs) == 0 {
		return out, nil
	}
	var rows []domain.PurchaseOrder
	if err := r.db.WithContext(ctx).Where("cost_estimation_id IN ?", estimateIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		id := *rows[i].CostEstimationID
		if _, ok := out[id]; !ok {
			out[id] = &rows[i]
		}
	}
	return out, nil
}

// SumByCurrency sums po_amount per linked estimate currency, optionally
// restricted to POs dated on or after since
func (r *PurchaseOrderRepository) SumByCurrency(ctx context.Context, since *time.Time) ([]domain.CurrencyAmount, error) {
	q := r.db.WithContext(ctx).Table("purchase_orders AS po").
		Select("COALESCE(e.currency, '') AS currency, COALESCE(SUM(po.po_amount), 0) AS amount").
		Joins("LEFT JOIN estimates e ON e.id = po.cost_estimation_id")
	if since != nil {
		q = q.Where("po.po_date >= ?", domain.NewDate(*since))
	}
	var out []domain.CurrencyAmount
	err := q.Group("e.currency").Order("currency").Scan(&out).Error
	return out, err
}

func (r *PurchaseOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Count(&count).Error
	return count, err
}
