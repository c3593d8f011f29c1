package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/money"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService handles invoices and their effect on the linked estimate
type InvoiceService struct {
	invoiceRepo  *repository.InvoiceRepository
	estimateRepo *repository.EstimateRepository
	poRepo       *repository.PurchaseOrderRepository
	clientRepo   *repository.ClientSupplierRepository
	projectRepo  *repository.ProjectRepository
	companyRepo  *repository.CompanyRepository
	numbers      *NumberSequenceService
	sync         *FinancialSyncService
	logger       *zap.Logger
	db           *gorm.DB
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	estimateRepo *repository.EstimateRepository,
	poRepo *repository.PurchaseOrderRepository,
	clientRepo *repository.ClientSupplierRepository,
	projectRepo *repository.ProjectRepository,
	companyRepo *repository.CompanyRepository,
	numbers *NumberSequenceService,
	sync *FinancialSyncService,
	logger *zap.Logger,
	db *gorm.DB,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		estimateRepo: estimateRepo,
		poRepo:       poRepo,
		clientRepo:   clientRepo,
		projectRepo:  projectRepo,
		companyRepo:  companyRepo,
		numbers:      numbers,
		sync:         sync,
		logger:       logger,
		db:           db,
	}
}

// Create stores a new invoice. At most one invoice may reference a given
// purchase order or estimate. Raising an invoice against an estimate marks
// the estimate Completed with its invoice received.
func (s *InvoiceService) Create(ctx context.Context, req *domain.InvoiceRequest) (*domain.Invoice, error) {
	if req.ClientID == nil || req.InvoiceDate.IsZero() || strings.TrimSpace(req.Currency) == "" {
		return nil, ErrRequiredFieldsMissing
	}
	if len(req.LineItems) == 0 {
		return nil, ErrLineItemsRequired
	}

	exists, err := s.invoiceRepo.ExistsFor(ctx, req.PurchaseOrderID, req.EstimateID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateInvoice
	}

	totals, err := priceItems(s.logger, req.LineItems, req.Currency, req.VATRate, true)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		ClientID:        *req.ClientID,
		ProjectID:       req.ProjectID,
		EstimateID:      req.EstimateID,
		PurchaseOrderID: req.PurchaseOrderID,
		InvoiceDate:     req.InvoiceDate,
		DueDate:         req.DueDate,
		Currency:        req.Currency,
		DocumentType:    req.DocumentType,
		InvoiceStatus:   req.InvoiceStatus,
		PaymentStatus:   req.PaymentStatus,
		Notes:           req.Notes,
	}
	if inv.DocumentType == "" {
		inv.DocumentType = "Tax Invoice"
	}
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = domain.PaymentUnpaid
	}
	inv.ApplyTotals(totals)
	inv.ApplyFlags()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		estimates := s.estimateRepo.WithTx(tx)

		var est *domain.Estimate
		if inv.EstimateID != nil {
			var err error
			if est, err = estimates.GetByID(ctx, *inv.EstimateID); err != nil {
				return notFound(err, ErrEstimateNotFound)
			}
		}

		no, err := s.numbers.Next(ctx, tx, repository.SequenceInvoice)
		if err != nil {
			return err
		}
		inv.InvoiceNo = no
		if err := s.invoiceRepo.WithTx(tx).Create(ctx, inv); err != nil {
			return err
		}

		if est == nil {
			return nil
		}
		return estimates.SetStatuses(ctx, est.ID, domain.EstimateStatusCompleted,
			docStatusOr(est.CEPOStatus, domain.DocPending), domain.DocReceived)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to create invoice", zap.Int64("client_id", inv.ClientID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("invoice created", zap.Int64("invoice_id", inv.ID), zap.Int64("invoice_no", inv.InvoiceNo))
	return inv, nil
}

// CreateFromEstimate raises an invoice carrying the estimate's client,
// project, currency, VAT and line items
func (s *InvoiceService) CreateFromEstimate(ctx context.Context, estimateID int64) (*domain.Invoice, error) {
	est, err := s.estimateRepo.GetByID(ctx, estimateID)
	if err != nil {
		return nil, notFound(err, ErrEstimateNotFound)
	}

	clientID := est.ClientID
	return s.Create(ctx, &domain.InvoiceRequest{
		ClientID:      &clientID,
		ProjectID:     est.ProjectID,
		EstimateID:    &est.ID,
		InvoiceDate:   domain.NewDate(time.Now()),
		Currency:      est.Currency,
		InvoiceStatus: domain.InvoiceStatusActive,
		PaymentStatus: domain.PaymentUnpaid,
		VATRate:       est.VATRate,
		LineItems:     money.ItemsFromLineItems(est.LineItems),
		Notes:         est.Notes,
	})
}

// Update re-prices the invoice, then pushes its total to every linked PO and
// its priced fields to the linked estimate. The invoice update stands even
// when some targets fail; the report lists them.
func (s *InvoiceService) Update(ctx context.Context, id int64, req *domain.InvoiceRequest) (*domain.Invoice, *domain.SyncReport, error) {
	if strings.TrimSpace(req.Currency) == "" {
		return nil, nil, domain.Validation("Invoice id & currency required")
	}
	if len(req.LineItems) == 0 {
		return nil, nil, ErrLineItemsRequired
	}

	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, ErrInvoiceNotFound)
	}

	totals, err := priceItems(s.logger, req.LineItems, req.Currency, req.VATRate, true)
	if err != nil {
		return nil, nil, err
	}

	if !req.InvoiceDate.IsZero() {
		inv.InvoiceDate = req.InvoiceDate
	}
	inv.DueDate = req.DueDate
	inv.Currency = req.Currency
	if req.DocumentType != "" {
		inv.DocumentType = req.DocumentType
	}
	inv.InvoiceStatus = req.InvoiceStatus
	inv.PaymentStatus = req.PaymentStatus
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = domain.PaymentUnpaid
	}
	inv.Notes = req.Notes
	inv.ApplyTotals(totals)
	inv.ApplyFlags()

	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		s.logger.Error("failed to update invoice", zap.Int64("invoice_id", id), zap.Error(err))
		return nil, nil, err
	}

	report := s.sync.FromInvoice(ctx, inv)
	return inv, report, nil
}

// Delete removes the invoice. Its estimate stays Completed while another
// invoice references it and returns to Active otherwise.
func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrInvoiceNotFound)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoiceRepo.WithTx(tx)
		if _, err := invoices.Delete(ctx, id); err != nil {
			return err
		}
		if inv.EstimateID == nil {
			return nil
		}

		remaining, err := invoices.CountByEstimate(ctx, *inv.EstimateID)
		if err != nil {
			return err
		}
		status := domain.EstimateStatusActive
		if remaining > 0 {
			status = domain.EstimateStatusCompleted
		}
		_, err = s.estimateRepo.WithTx(tx).UpdateFields(ctx, *inv.EstimateID, map[string]interface{}{"ce_status": status})
		return err
	})
	if err != nil {
		s.logger.Error("failed to delete invoice", zap.Int64("invoice_id", id), zap.Error(err))
		return err
	}
	return nil
}

// GetByID returns one invoice with its PO number and estimate number
func (s *InvoiceService) GetByID(ctx context.Context, id int64) (*domain.InvoiceView, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrInvoiceNotFound)
	}
	views, err := s.views(ctx, []domain.Invoice{*inv})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns every invoice, newest first
func (s *InvoiceService) List(ctx context.Context) ([]domain.InvoiceView, error) {
	rows, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

// ListByProject returns a project's invoices, newest first
func (s *InvoiceService) ListByProject(ctx context.Context, projectID int64) ([]domain.InvoiceView, error) {
	rows, err := s.invoiceRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

// invoiceLinks resolves the PO number (the direct PO, else the estimate's
// first PO) and the estimate number of each invoice
type invoiceLinks struct {
	direct     map[int64]*domain.PurchaseOrder
	byEstimate map[int64]*domain.PurchaseOrder
	estimates  map[int64]*domain.Estimate
}

func (s *InvoiceService) links(ctx context.Context, rows []domain.Invoice) (*invoiceLinks, error) {
	var poIDs, estimateIDs []int64
	for _, inv := range rows {
		if inv.PurchaseOrderID != nil {
			poIDs = append(poIDs, *inv.PurchaseOrderID)
		}
		if inv.EstimateID != nil {
			estimateIDs = append(estimateIDs, *inv.EstimateID)
		}
	}
	estimateIDs = domain.NewJobIDs(estimateIDs...)

	direct, err := s.poRepo.GetByIDs(ctx, domain.NewJobIDs(poIDs...))
	if err != nil {
		return nil, err
	}
	byEstimate, err := s.poRepo.ListByEstimates(ctx, estimateIDs)
	if err != nil {
		return nil, err
	}
	estimates, err := s.estimateRepo.GetByIDs(ctx, estimateIDs)
	if err != nil {
		return nil, err
	}
	return &invoiceLinks{direct: direct, byEstimate: byEstimate, estimates: estimates}, nil
}

func (l *invoiceLinks) poNumber(inv *domain.Invoice) *string {
	if inv.PurchaseOrderID != nil {
		if po, ok := l.direct[*inv.PurchaseOrderID]; ok {
			return &po.PONumber
		}
	}
	if inv.EstimateID != nil {
		if po, ok := l.byEstimate[*inv.EstimateID]; ok {
			return &po.PONumber
		}
	}
	return nil
}

func (l *invoiceLinks) estimateNo(inv *domain.Invoice) *int64 {
	if inv.EstimateID == nil {
		return nil
	}
	if est, ok := l.estimates[*inv.EstimateID]; ok {
		no := est.EstimateNo
		return &no
	}
	return nil
}

func (s *InvoiceService) views(ctx context.Context, rows []domain.Invoice) ([]domain.InvoiceView, error) {
	links, err := s.links(ctx, rows)
	if err != nil {
		return nil, err
	}
	clientIDs := make([]int64, 0, len(rows))
	var projectIDs []int64
	for _, inv := range rows {
		clientIDs = append(clientIDs, inv.ClientID)
		projectIDs = append(projectIDs, ptrIDs(inv.ProjectID)...)
	}
	names, err := loadDocNames(ctx, s.clientRepo, s.projectRepo, clientIDs, projectIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.InvoiceView, 0, len(rows))
	for i := range rows {
		inv := rows[i]
		inv.ApplyFlags()
		projectName, projectNo := names.project(inv.ProjectID)
		out = append(out, domain.InvoiceView{
			Invoice:     inv,
			PONumber:    links.poNumber(&inv),
			CENo:        links.estimateNo(&inv),
			ClientName:  names.clientName(inv.ClientID),
			ProjectName: projectName,
			ProjectNo:   projectNo,
		})
	}
	return out, nil
}

// PDFData returns what a client needs to render the invoice
func (s *InvoiceService) PDFData(ctx context.Context, id int64) (*domain.InvoicePDF, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrInvoiceNotFound)
	}
	links, err := s.links(ctx, []domain.Invoice{*inv})
	if err != nil {
		return nil, err
	}
	names, err := loadDocNames(ctx, s.clientRepo, s.projectRepo, []int64{inv.ClientID}, ptrIDs(inv.ProjectID))
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetFirst(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pdf := &domain.InvoicePDF{
		InvoiceNo:    inv.InvoiceNo,
		InvoiceDate:  inv.InvoiceDate,
		DueDate:      inv.DueDate,
		DocumentType: inv.DocumentType,
		CENo:         links.estimateNo(inv),
		Currency:     inv.Currency,
		Client:       names.pdfClient(inv.ClientID),
		Items:        inv.LineItems,
		Summary: domain.PDFSummary{
			Currency:  inv.Currency,
			Subtotal:  inv.Subtotal,
			VATRate:   inv.VATRate,
			VATAmount: inv.VATAmount,
			Total:     inv.TotalAmount,
		},
		Notes: inv.Notes,
	}
	if no := links.poNumber(inv); no != nil {
		pdf.PONo = *no
	}
	pdf.Project.ProjectName, pdf.Project.ProjectNo = names.project(inv.ProjectID)
	if company != nil {
		pdf.Company = domain.PDFCompany{
			Name:    company.CompanyName,
			Stamp:   company.CompanyStamp,
			Address: company.Address,
			Phone:   company.Phone,
			Email:   company.Email,
			TRN:     company.TRN,
			Logo:    company.CompanyLogo,
		}
		pdf.Bank = domain.PDFBank{
			AccountName: company.BankAccountName,
			BankName:    company.BankName,
			IBAN:        company.IBAN,
			SwiftCode:   company.SwiftCode,
		}
	}
	return pdf, nil
}
