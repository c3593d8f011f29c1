package service

import (
	"context"
	"errors"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/money"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EstimateService handles cost estimates
type EstimateService struct {
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

// NewEstimateService creates a new EstimateService
func NewEstimateService(
	estimateRepo *repository.EstimateRepository,
	poRepo *repository.PurchaseOrderRepository,
	clientRepo *repository.ClientSupplierRepository,
	projectRepo *repository.ProjectRepository,
	companyRepo *repository.CompanyRepository,
	numbers *NumberSequenceService,
	sync *FinancialSyncService,
	logger *zap.Logger,
	db *gorm.DB,
) *EstimateService {
	return &EstimateService{
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

// priceItems runs the amount parser over a request's line items and logs
// when the currency falls back to the legacy separator stripping
func priceItems(logger *zap.Logger, items []domain.LineItemInput, currency string, vatRate float64, requirePositiveQty bool) (domain.Totals, error) {
	if money.IsFallbackCurrency(currency) {
		logger.Warn("amounts parsed with fallback separator rules", zap.String("currency", currency))
	}
	totals, err := money.ComputeTotals(items, currency, vatRate, requirePositiveQty)
	if err != nil {
		var invalid *money.InvalidAmountError
		if errors.As(err, &invalid) {
			return domain.Totals{}, domain.Validation(invalid.Error())
		}
		return domain.Totals{}, err
	}
	return totals, nil
}

func docStatusOr(s, fallback domain.DocStatus) domain.DocStatus {
	if s == "" {
		return fallback
	}
	return s
}

// Create prices and stores a new estimate under the next estimate number
func (s *EstimateService) Create(ctx context.Context, req *domain.EstimateRequest) (*domain.Estimate, error) {
	if req.ClientID == nil || req.EstimateDate.IsZero() || strings.TrimSpace(req.Currency) == "" {
		return nil, ErrRequiredFieldsMissing
	}
	if len(req.LineItems) == 0 {
		return nil, ErrLineItemsRequired
	}

	totals, err := priceItems(s.logger, req.LineItems, req.Currency, req.VATRate, false)
	if err != nil {
		return nil, err
	}

	est := &domain.Estimate{
		ClientID:        *req.ClientID,
		ProjectID:       req.ProjectID,
		EstimateDate:    req.EstimateDate,
		ValidUntil:      req.ValidUntil,
		Currency:        req.Currency,
		CEStatus:        req.CEStatus,
		CEPOStatus:      docStatusOr(req.CEPOStatus, domain.DocPending),
		CEInvoiceStatus: docStatusOr(req.CEInvoiceStatus, domain.DocPending),
		Notes:           req.Notes,
	}
	if est.CEStatus == "" {
		est.CEStatus = domain.EstimateStatusDraft
	}
	est.ApplyTotals(totals)
	est.ApplyFlags()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		no, err := s.numbers.Next(ctx, tx, repository.SequenceEstimate)
		if err != nil {
			return err
		}
		est.EstimateNo = no
		return s.estimateRepo.WithTx(tx).Create(ctx, est)
	})
	if err != nil {
		s.logger.Error("failed to create estimate", zap.Int64("client_id", *req.ClientID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("estimate created", zap.Int64("estimate_id", est.ID), zap.Int64("estimate_no", est.EstimateNo))
	return est, nil
}

// Update re-prices the estimate and pushes its totals to every linked PO and
// invoice. The estimate update stands even when some targets fail; the
// report lists them.
func (s *EstimateService) Update(ctx context.Context, id int64, req *domain.EstimateRequest) (*domain.Estimate, *domain.SyncReport, error) {
	if len(req.LineItems) == 0 {
		return nil, nil, ErrLineItemsRequired
	}
	est, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, ErrEstimateNotFound)
	}

	currency := req.Currency
	if strings.TrimSpace(currency) == "" {
		currency = est.Currency
	}
	totals, err := priceItems(s.logger, req.LineItems, currency, req.VATRate, false)
	if err != nil {
		return nil, nil, err
	}

	if !req.EstimateDate.IsZero() {
		est.EstimateDate = req.EstimateDate
	}
	est.ValidUntil = req.ValidUntil
	est.Currency = currency
	if req.CEStatus != "" {
		est.CEStatus = req.CEStatus
	}
	est.CEPOStatus = docStatusOr(req.CEPOStatus, est.CEPOStatus)
	est.CEInvoiceStatus = docStatusOr(req.CEInvoiceStatus, est.CEInvoiceStatus)
	est.Notes = req.Notes
	if req.ClientID != nil {
		est.ClientID = *req.ClientID
	}
	if req.ProjectID != nil {
		est.ProjectID = req.ProjectID
	}
	est.ApplyTotals(totals)
	est.ApplyFlags()

	if err := s.estimateRepo.Update(ctx, est); err != nil {
		s.logger.Error("failed to update estimate", zap.Int64("estimate_id", id), zap.Error(err))
		return nil, nil, err
	}

	report := s.sync.FromEstimate(ctx, est)
	return est, report, nil
}

// Resync re-applies the stored estimate totals to its linked documents
func (s *EstimateService) Resync(ctx context.Context, id int64) (*domain.SyncReport, error) {
	return s.sync.Resync(ctx, id)
}

// Delete removes the estimate and its purchase orders together. Invoices
// raised from it are kept.
func (s *EstimateService) Delete(ctx context.Context, id int64) error {
	if _, err := s.estimateRepo.GetByID(ctx, id); err != nil {
		return notFound(err, ErrEstimateNotFound)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.poRepo.WithTx(tx).DeleteByEstimate(ctx, id); err != nil {
			return err
		}
		_, err := s.estimateRepo.WithTx(tx).Delete(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("failed to delete estimate", zap.Int64("estimate_id", id), zap.Error(err))
		return err
	}
	return nil
}

// Duplicate copies an estimate under a new number with both document
// statuses reset to pending
func (s *EstimateService) Duplicate(ctx context.Context, id int64) (*domain.Estimate, error) {
	src, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEstimateNotFound)
	}

	dup := &domain.Estimate{
		ClientID:        src.ClientID,
		ProjectID:       src.ProjectID,
		EstimateDate:    src.EstimateDate,
		ValidUntil:      src.ValidUntil,
		Currency:        src.Currency,
		CEStatus:        src.CEStatus,
		CEPOStatus:      domain.DocPending,
		CEInvoiceStatus: domain.DocPending,
		Notes:           src.Notes,
	}
	if dup.CEStatus == "" {
		dup.CEStatus = domain.EstimateStatusDraft
	}
	dup.ApplyTotals(src.Totals())
	dup.ApplyFlags()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		no, err := s.numbers.Next(ctx, tx, repository.SequenceEstimate)
		if err != nil {
			return err
		}
		dup.EstimateNo = no
		return s.estimateRepo.WithTx(tx).Create(ctx, dup)
	})
	if err != nil {
		s.logger.Error("failed to duplicate estimate", zap.Int64("estimate_id", id), zap.Error(err))
		return nil, err
	}
	return dup, nil
}

// GetByID returns one estimate with display names
func (s *EstimateService) GetByID(ctx context.Context, id int64) (*domain.EstimateView, error) {
	est, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEstimateNotFound)
	}
	views, err := s.views(ctx, []domain.Estimate{*est})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns every estimate, newest first
func (s *EstimateService) List(ctx context.Context) ([]domain.EstimateView, error) {
	rows, err := s.estimateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

// ListByProject returns a project's estimates, newest first
func (s *EstimateService) ListByProject(ctx context.Context, projectID int64) ([]domain.EstimateView, error) {
	rows, err := s.estimateRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

func (s *EstimateService) views(ctx context.Context, rows []domain.Estimate) ([]domain.EstimateView, error) {
	clientIDs := make([]int64, 0, len(rows))
	projectIDs := make([]int64, 0, len(rows))
	for _, e := range rows {
		clientIDs = append(clientIDs, e.ClientID)
		if e.ProjectID != nil {
			projectIDs = append(projectIDs, *e.ProjectID)
		}
	}
	names, err := loadDocNames(ctx, s.clientRepo, s.projectRepo, clientIDs, projectIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.EstimateView, 0, len(rows))
	for _, e := range rows {
		e.ApplyFlags()
		projectName, projectNo := names.project(e.ProjectID)
		out = append(out, domain.EstimateView{
			Estimate:    e,
			ClientName:  names.clientName(e.ClientID),
			ProjectName: projectName,
			ProjectNo:   projectNo,
		})
	}
	return out, nil
}

// PDFData returns what a client needs to render the estimate
func (s *EstimateService) PDFData(ctx context.Context, id int64) (*domain.EstimatePDF, error) {
	est, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEstimateNotFound)
	}

	names, err := loadDocNames(ctx, s.clientRepo, s.projectRepo, []int64{est.ClientID}, ptrIDs(est.ProjectID))
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetFirst(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pdf := &domain.EstimatePDF{
		EstimateNo:   est.EstimateNo,
		EstimateDate: est.EstimateDate,
		ValidUntil:   est.ValidUntil,
		Client:       names.pdfClient(est.ClientID),
		Items:        est.LineItems,
		Summary: domain.PDFSummary{
			Currency:  est.Currency,
			Subtotal:  est.Subtotal,
			VATRate:   est.VATRate,
			VATAmount: est.VATAmount,
			Total:     est.TotalAmount,
		},
		Notes: est.Notes,
	}
	pdf.Project.ProjectName, pdf.Project.ProjectNo = names.project(est.ProjectID)
	if company != nil {
		pdf.CompanyName = company.CompanyName
		pdf.CompanyLogo = company.CompanyLogo
	}
	return pdf, nil
}

// docNames resolves the client and project shown next to financial documents
type docNames struct {
	clients  map[int64]*domain.ClientSupplier
	projects map[int64]*domain.Project
}

func loadDocNames(ctx context.Context, clientRepo *repository.ClientSupplierRepository, projectRepo *repository.ProjectRepository, clientIDs, projectIDs []int64) (*docNames, error) {
	clients, err := clientRepo.GetByIDs(ctx, domain.NewJobIDs(clientIDs...))
	if err != nil {
		return nil, err
	}
	projects, err := projectRepo.GetByIDs(ctx, domain.NewJobIDs(projectIDs...))
	if err != nil {
		return nil, err
	}
	return &docNames{clients: clients, projects: projects}, nil
}

// client returns the counterparty only when it is a client
func (n *docNames) client(id int64) *domain.ClientSupplier {
	c, ok := n.clients[id]
	if !ok || !strings.EqualFold(c.Type, "client") {
		return nil
	}
	return c
}

func (n *docNames) clientName(id int64) string {
	if c := n.client(id); c != nil {
		return c.Name
	}
	return ""
}

func (n *docNames) pdfClient(id int64) domain.PDFClient {
	c := n.client(id)
	if c == nil {
		return domain.PDFClient{}
	}
	return domain.PDFClient{Name: c.Name, Address: c.Address, Phone: c.Phone, TaxID: c.TaxID}
}

func (n *docNames) project(id *int64) (string, *int64) {
	if id == nil {
		return "", nil
	}
	p, ok := n.projects[*id]
	if !ok {
		return "", nil
	}
	no := p.ProjectNo
	return p.ProjectName, &no
}

func ptrIDs(id *int64) []int64 {
	if id == nil {
		return nil
	}
	return []int64{*id}
}
