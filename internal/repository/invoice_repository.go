package repository

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// InvoiceRepository handles invoice data access
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// ApplyTotals overwrites the priced fields of an invoice
func (r *InvoiceRepository) ApplyTotals(ctx context.Context, id int64, t domain.Totals) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"line_items":   t.Items,
			"vat_rate":     t.VATRate,
			"subtotal":     t.Subtotal,
			"vat_amount":   t.VATAmount,
			"total_amount": t.Total,
			"updated_at":   time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *InvoiceRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Invoice{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByProject removes every invoice of a project
func (r *InvoiceRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.Invoice{}).Error
}

// ExistsFor reports whether an invoice already references the purchase order
// or the estimate. Nil ids are not checked.
func (r *InvoiceRepository) ExistsFor(ctx context.Context, purchaseOrderID, estimateID *int64) (bool, error) {
	if purchaseOrderID == nil && estimateID == nil {
		return false, nil
	}
	q := r.db.WithContext(ctx).Model(&domain.Invoice{})
	switch {
	case purchaseOrderID != nil && estimateID != nil:
		q = q.Where("purchase_order_id = ? OR estimate_id = ?", *purchaseOrderID, *estimateID)
	case purchaseOrderID != nil:
		q = q.Where("purchase_order_id = ?", *purchaseOrderID)
	default:
		q = q.Where("estimate_id = ?", *estimateID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByEstimate counts the invoices raised against an estimate
func (r *InvoiceRepository) CountByEstimate(ctx context.Context, estimateID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).Where("estimate_id = ?", estimateID).Count(&count).Error
	return count, err
}

// List returns every invoice, newest first
func (r *InvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	var rows []domain.Invoice
	err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListByProject returns a project's invoices, newest first
func (r *InvoiceRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Invoice, error) {
	var rows []domain.Invoice
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListByEstimate returns the invoices raised against an estimate
func (r *InvoiceRepository) ListByEstimate(ctx context.Context, estimateID int64) ([]domain.Invoice, error) {
	var rows []domain.Invoice
	err := r.db.WithContext(ctx).Where("estimate_id = ?", estimateID).Order("id ASC").Find(&rows).Error
	return rows, err
}

// SumByCurrency sums total_amount per currency, optionally restricted to
// invoices dated on or after since
func (r *InvoiceRepository) SumByCurrency(ctx context.Context, since *time.Time) ([]domain.CurrencyAmount, error) {
	q := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Select("currency, COALESCE(SUM(total_amount), 0) AS amount")
	if since != nil {
		q = q.Where("invoice_date >= ?", domain.NewDate(*since))
	}
	var out []domain.CurrencyAmount
	err := q.Group("currency").Order("currency").Scan(&out).Error
	return out, err
}

// SumByPaymentStatus sums total_amount of invoices with paymentStatus
func (r *InvoiceRepository) SumByPaymentStatus(ctx context.Context, paymentStatus string) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ?", paymentStatus).
		Row().Scan(&sum)
	return sum, err
}

func (r *InvoiceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).Count(&count).Error
	return count, err
}
