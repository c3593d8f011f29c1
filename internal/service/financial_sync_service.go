package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/events"
	"github.com/packline/jobdesk-api/internal/metrics"
	"github.com/packline/jobdesk-api/internal/money"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
)

// FinancialSyncService pushes a document's totals to its linked documents.
// Fan-out is best effort: each target is attempted, failures are logged and
// reported, and none of them undoes the source update.
type FinancialSyncService struct {
	estimateRepo *repository.EstimateRepository
	poRepo       *repository.PurchaseOrderRepository
	invoiceRepo  *repository.InvoiceRepository
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewFinancialSyncService creates a new FinancialSyncService
func NewFinancialSyncService(
	estimateRepo *repository.EstimateRepository,
	poRepo *repository.PurchaseOrderRepository,
	invoiceRepo *repository.InvoiceRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FinancialSyncService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &FinancialSyncService{
		estimateRepo: estimateRepo,
		poRepo:       poRepo,
		invoiceRepo:  invoiceRepo,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// FromInvoice writes the invoice total to every linked PO (the direct one and
// every PO of the invoice's estimate) and the invoice's priced fields to the
// estimate.
func (s *FinancialSyncService) FromInvoice(ctx context.Context, inv *domain.Invoice) *domain.SyncReport {
	report := domain.NewSyncReport()
	totals := inv.Totals()

	var poIDs []int64
	if inv.PurchaseOrderID != nil {
		poIDs = append(poIDs, *inv.PurchaseOrderID)
	}
	if inv.EstimateID != nil {
		linked, err := s.poRepo.ListByEstimate(ctx, *inv.EstimateID)
		if err != nil {
			s.logger.Error("failed to list purchase orders of estimate",
				zap.Int64("estimate_id", *inv.EstimateID), zap.Error(err))
			report.Fail(domain.SyncTargetPurchaseOrder, 0, err)
		}
		for _, po := range linked {
			poIDs = append(poIDs, po.ID)
		}
	}
	for _, id := range domain.NewJobIDs(poIDs...) {
		s.syncPurchaseOrder(ctx, report, id, totals.Total)
	}

	if inv.EstimateID != nil {
		s.syncEstimate(ctx, report, *inv.EstimateID, totals)
	}

	s.publish(ctx, "invoice", inv.ID, report)
	return report
}

// FromEstimate writes the estimate total to every PO raised against it and
// its priced fields to every invoice raised from it.
func (s *FinancialSyncService) FromEstimate(ctx context.Context, est *domain.Estimate) *domain.SyncReport {
	report := domain.NewSyncReport()
	totals := est.Totals()

	pos, err := s.poRepo.ListByEstimate(ctx, est.ID)
	if err != nil {
		s.logger.Error("failed to list purchase orders of estimate", zap.Int64("estimate_id", est.ID), zap.Error(err))
		report.Fail(domain.SyncTargetPurchaseOrder, 0, err)
	}
	for _, po := range pos {
		s.syncPurchaseOrder(ctx, report, po.ID, totals.Total)
	}

	invoices, err := s.invoiceRepo.ListByEstimate(ctx, est.ID)
	if err != nil {
		s.logger.Error("failed to list invoices of estimate", zap.Int64("estimate_id", est.ID), zap.Error(err))
		report.Fail(domain.SyncTargetInvoice, 0, err)
	}
	for _, inv := range invoices {
		s.syncInvoice(ctx, report, inv.ID, totals)
	}

	s.publish(ctx, "estimate", est.ID, report)
	return report
}

// Resync re-applies an estimate's stored totals to its linked documents.
// Running it twice leaves the same state.
func (s *FinancialSyncService) Resync(ctx context.Context, estimateID int64) (*domain.SyncReport, error) {
	est, err := s.estimateRepo.GetByID(ctx, estimateID)
	if err != nil {
		return nil, notFound(err, ErrEstimateNotFound)
	}
	return s.FromEstimate(ctx, est), nil
}

// ResyncAll re-syncs every estimate and returns how many fully synced and
// how many reported at least one failure
func (s *FinancialSyncService) ResyncAll(ctx context.Context) (synced, failed int, err error) {
	estimates, err := s.estimateRepo.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list estimates: %w", err)
	}
	for i := range estimates {
		if err := ctx.Err(); err != nil {
			return synced, failed, err
		}
		if s.FromEstimate(ctx, &estimates[i]).OK() {
			synced++
		} else {
			failed++
		}
	}
	return synced, failed, nil
}

func (s *FinancialSyncService) syncPurchaseOrder(ctx context.Context, report *domain.SyncReport, id int64, amount float64) {
	err := func() error {
		if _, err := s.poRepo.GetByID(ctx, id); err != nil {
			return notFound(err, ErrPurchaseOrderNotFound)
		}
		if _, err := s.poRepo.SetAmount(ctx, id, amount); err != nil {
			return err
		}
		after, err := s.poRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !money.WithinTolerance(after.POAmount, amount) {
			return fmt.Errorf("po_amount is %.2f after update, expected %.2f", after.POAmount, amount)
		}
		return nil
	}()

	s.metrics.SyncTarget(domain.SyncTargetPurchaseOrder, err)
	if err != nil {
		s.logger.Error("failed to sync purchase order amount",
			zap.Int64("purchase_order_id", id),
			zap.Float64("amount", amount),
			zap.Error(err))
		report.Fail(domain.SyncTargetPurchaseOrder, id, err)
		return
	}
	report.PurchaseOrdersSynced = append(report.PurchaseOrdersSynced, id)
}

func (s *FinancialSyncService) syncEstimate(ctx context.Context, report *domain.SyncReport, id int64, totals domain.Totals) {
	rows, err := s.estimateRepo.ApplyTotals(ctx, id, totals)
	if err == nil && rows == 0 {
		err = ErrEstimateNotFound
	}

	s.metrics.SyncTarget(domain.SyncTargetEstimate, err)
	if err != nil {
		s.logger.Error("failed to sync estimate totals", zap.Int64("estimate_id", id), zap.Error(err))
		report.Fail(domain.SyncTargetEstimate, id, err)
		return
	}
	report.EstimateSynced = true
}

func (s *FinancialSyncService) syncInvoice(ctx context.Context, report *domain.SyncReport, id int64, totals domain.Totals) {
	rows, err := s.invoiceRepo.ApplyTotals(ctx, id, totals)
	if err == nil && rows == 0 {
		err = ErrInvoiceNotFound
	}

	s.metrics.SyncTarget(domain.SyncTargetInvoice, err)
	if err != nil {
		s.logger.Error("failed to sync invoice totals", zap.Int64("invoice_id", id), zap.Error(err))
		report.Fail(domain.SyncTargetInvoice, id, err)
		return
	}
	report.InvoicesSynced = append(report.InvoicesSynced, id)
}

func (s *FinancialSyncService) publish(ctx context.Context, source string, id int64, report *domain.SyncReport) {
	if !report.OK() {
		s.logger.Warn("financial sync finished with failures",
			zap.String("source", source),
			zap.Int64("source_id", id),
			zap.Int("failures", len(report.Failures)))
	}
	events.Emit(ctx, s.publisher, s.logger, events.TypeFinancialSync, events.SyncEvent{
		Source:         source,
		SourceID:       id,
		PurchaseOrders: report.PurchaseOrdersSynced,
		Invoices:       report.InvoicesSynced,
		Estimate:       report.EstimateSynced,
		Failures:       len(report.Failures),
	})
}

// SyncMessage appends what a fan-out synced to the base response message,
// e.g. "Invoice updated successfully. 2 PO(s) amount synced."
func SyncMessage(base string, report *domain.SyncReport) string {
	var b strings.Builder
	b.WriteString(base)
	if n := len(report.PurchaseOrdersSynced); n > 0 {
		fmt.Fprintf(&b, " %d PO(s) amount synced.", n)
	}
	if n := len(report.InvoicesSynced); n > 0 {
		fmt.Fprintf(&b, " %d Invoice(s) amount synced.", n)
	}
	if report.EstimateSynced {
		b.WriteString(" Cost Estimate amount synced.")
	}
	if n := len(report.Failures); n > 0 {
		fmt.Fprintf(&b, " %d linked document(s) failed to sync.", n)
	}
	return b.String()
}
