package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/money"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// poDocumentFolder is the storage folder for uploaded PO documents
const poDocumentFolder = "purchase_orders"

// PurchaseOrderService handles purchase orders and their effect on the
// linked estimate's PO status
type PurchaseOrderService struct {
	poRepo       *repository.PurchaseOrderRepository
	estimateRepo *repository.EstimateRepository
	clientRepo   *repository.ClientSupplierRepository
	projectRepo  *repository.ProjectRepository
	storage      storage.Storage
	logger       *zap.Logger
	db           *gorm.DB
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	poRepo *repository.PurchaseOrderRepository,
	estimateRepo *repository.EstimateRepository,
	clientRepo *repository.ClientSupplierRepository,
	projectRepo *repository.ProjectRepository,
	store storage.Storage,
	logger *zap.Logger,
	db *gorm.DB,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		poRepo:       poRepo,
		estimateRepo: estimateRepo,
		clientRepo:   clientRepo,
		projectRepo:  projectRepo,
		storage:      store,
		logger:       logger,
		db:           db,
	}
}

// Create stores a PO raised against an estimate and marks the estimate's PO
// as received. The optional upload is stored before the row is written.
func (s *PurchaseOrderService) Create(ctx context.Context, req *domain.PurchaseOrderRequest, upload *domain.Upload) (*domain.PurchaseOrder, error) {
	if strings.TrimSpace(req.PONumber) == "" || req.ProjectID == nil || req.ClientID == nil ||
		strings.TrimSpace(req.POAmount) == "" || req.PODate.IsZero() || req.CostEstimationID == nil {
		return nil, ErrRequiredFieldsMissing
	}

	est, err := s.estimateRepo.GetByID(ctx, *req.CostEstimationID)
	if err != nil {
		return nil, notFound(err, ErrEstimateNotFound)
	}
	amount, err := s.parseAmount(req, est.Currency)
	if err != nil {
		return nil, err
	}

	po := &domain.PurchaseOrder{
		PONumber:         strings.TrimSpace(req.PONumber),
		ProjectID:        *req.ProjectID,
		ClientID:         *req.ClientID,
		CostEstimationID: req.CostEstimationID,
		POAmount:         amount,
		PODate:           req.PODate,
	}
	if po.PODocument, err = s.store(ctx, upload); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.poRepo.WithTx(tx).Create(ctx, po); err != nil {
			return err
		}
		return s.estimateRepo.WithTx(tx).SetStatuses(ctx, est.ID, "", domain.DocReceived,
			docStatusOr(est.CEInvoiceStatus, domain.DocPending))
	})
	if err != nil {
		s.logger.Error("failed to create purchase order", zap.String("po_number", po.PONumber), zap.Error(err))
		s.discard(ctx, po.PODocument)
		return nil, err
	}

	s.logger.Info("purchase order created", zap.Int64("purchase_order_id", po.ID), zap.Int64("estimate_id", est.ID))
	return po, nil
}

// Update overwrites the PO fields. The stored document is replaced only when
// a new one is uploaded.
func (s *PurchaseOrderService) Update(ctx context.Context, id int64, req *domain.PurchaseOrderRequest, upload *domain.Upload) (*domain.PurchaseOrder, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPurchaseOrderNotFound)
	}

	currency := req.Currency
	if currency == "" && po.CostEstimationID != nil {
		if est, err := s.estimateRepo.GetByID(ctx, *po.CostEstimationID); err == nil {
			currency = est.Currency
		}
	}

	if strings.TrimSpace(req.PONumber) != "" {
		po.PONumber = strings.TrimSpace(req.PONumber)
	}
	if req.ProjectID != nil {
		po.ProjectID = *req.ProjectID
	}
	if req.ClientID != nil {
		po.ClientID = *req.ClientID
	}
	if strings.TrimSpace(req.POAmount) != "" {
		if po.POAmount, err = s.parseAmount(req, currency); err != nil {
			return nil, err
		}
	}
	if !req.PODate.IsZero() {
		po.PODate = req.PODate
	}

	previous := po.PODocument
	doc, err := s.store(ctx, upload)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		po.PODocument = doc
	}

	if err := s.poRepo.Update(ctx, po); err != nil {
		s.logger.Error("failed to update purchase order", zap.Int64("purchase_order_id", id), zap.Error(err))
		s.discard(ctx, doc)
		return nil, err
	}
	if doc != nil {
		s.discard(ctx, previous)
	}
	return po, nil
}

// Delete removes the PO and rolls the estimate's PO status back to pending
func (s *PurchaseOrderService) Delete(ctx context.Context, id int64) error {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrPurchaseOrderNotFound)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.poRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		if po.CostEstimationID == nil {
			return nil
		}
		estimates := s.estimateRepo.WithTx(tx)
		est, err := estimates.GetByID(ctx, *po.CostEstimationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return estimates.SetStatuses(ctx, est.ID, "", domain.DocPending, docStatusOr(est.CEInvoiceStatus, domain.DocPending))
	})
	if err != nil {
		s.logger.Error("failed to delete purchase order", zap.Int64("purchase_order_id", id), zap.Error(err))
		return err
	}

	s.discard(ctx, po.PODocument)
	return nil
}

// GetByID returns one PO with its estimate information
func (s *PurchaseOrderService) GetByID(ctx context.Context, id int64) (*domain.PurchaseOrderView, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPurchaseOrderNotFound)
	}
	views, err := s.views(ctx, []domain.PurchaseOrder{*po})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns every PO, newest first
func (s *PurchaseOrderService) List(ctx context.Context) ([]domain.PurchaseOrderView, error) {
	rows, err := s.poRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

// ListByProject returns a project's POs, newest first
func (s *PurchaseOrderService) ListByProject(ctx context.Context, projectID int64) ([]domain.PurchaseOrderView, error) {
	rows, err := s.poRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

func (s *PurchaseOrderService) views(ctx context.Context, rows []domain.PurchaseOrder) ([]domain.PurchaseOrderView, error) {
	var estimateIDs, clientIDs, projectIDs []int64
	for _, po := range rows {
		estimateIDs = append(estimateIDs, ptrIDs(po.CostEstimationID)...)
		clientIDs = append(clientIDs, po.ClientID)
		projectIDs = append(projectIDs, po.ProjectID)
	}
	estimates, err := s.estimateRepo.GetByIDs(ctx, domain.NewJobIDs(estimateIDs...))
	if err != nil {
		return nil, err
	}
	names, err := loadDocNames(ctx, s.clientRepo, s.projectRepo, clientIDs, projectIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PurchaseOrderView, 0, len(rows))
	for _, po := range rows {
		projectID := po.ProjectID
		view := domain.PurchaseOrderView{
			PurchaseOrder: po,
			ClientName:    names.clientName(po.ClientID),
		}
		view.ProjectName, _ = names.project(&projectID)
		if po.CostEstimationID != nil {
			if est, ok := estimates[*po.CostEstimationID]; ok {
				id, no := est.ID, est.EstimateNo
				view.EstimateID = &id
				view.EstimateNo = &no
				view.Currency = est.Currency
				view.CEStatus = est.CEStatus
				view.CEPOStatus = est.CEPOStatus
				view.CEInvoiceStatus = est.CEInvoiceStatus
				view.PurchaseOrderFlags = domain.ComputePurchaseOrderFlags(est.CEPOStatus, est.CEInvoiceStatus)
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *PurchaseOrderService) parseAmount(req *domain.PurchaseOrderRequest, estimateCurrency string) (float64, error) {
	currency := req.Currency
	if currency == "" {
		currency = estimateCurrency
	}
	if money.IsFallbackCurrency(currency) {
		s.logger.Warn("amounts parsed with fallback separator rules", zap.String("currency", currency))
	}
	amount, err := money.ParseAmount(req.POAmount, currency)
	if err != nil {
		return 0, domain.Validation(err.Error())
	}
	return amount.InexactFloat64(), nil
}

// store uploads a PO document and returns its storage key, or nil without
// an upload
func (s *PurchaseOrderService) store(ctx context.Context, upload *domain.Upload) (*string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, nil
	}
	if s.storage == nil {
		return nil, errors.New("document storage is not configured")
	}
	key, err := s.storage.Upload(ctx, poDocumentFolder, upload.Filename, upload.ContentType, bytes.NewReader(upload.Data))
	if err != nil {
		s.logger.Error("failed to store purchase order document", zap.String("filename", upload.Filename), zap.Error(err))
		return nil, err
	}
	return &key, nil
}

// discard removes a stored document that is no longer referenced
func (s *PurchaseOrderService) discard(ctx context.Context, key *string) {
	if key == nil || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, *key); err != nil {
		s.logger.Warn("failed to remove purchase order document", zap.String("key", *key), zap.Error(err))
	}
}
