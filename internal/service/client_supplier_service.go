package service

import (
	"context"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
)

// Counterparty kinds stored in clients_suppliers.type
const (
	KindClient   = "client"
	KindSupplier = "supplier"
)

var errClientSupplierNotFound = domain.NotFound("Record not found")

// ClientSupplierService handles clients and suppliers
type ClientSupplierService struct {
	repo   *repository.ClientSupplierRepository
	logger *zap.Logger
}

// NewClientSupplierService creates a new ClientSupplierService
func NewClientSupplierService(repo *repository.ClientSupplierRepository, logger *zap.Logger) *ClientSupplierService {
	return &ClientSupplierService{repo: repo, logger: logger}
}

func applyClientSupplier(c *domain.ClientSupplier, req *domain.ClientSupplierRequest) {
	if t := strings.TrimSpace(req.Type); t != "" {
		c.Type = strings.ToLower(t)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	c.Industry = req.Industry
	c.Website = req.Website
	c.Address = req.Address
	c.TaxID = req.TaxID
	c.Phone = req.Phone
	c.Status = req.Status
	if c.Status == "" {
		c.Status = "active"
	}
	c.ContactPersons = req.ContactPersons
	c.PaymentTerms = req.PaymentTerms
	c.CreditLimit = req.CreditLimit
	c.Notes = req.Notes
}

func (s *ClientSupplierService) Create(ctx context.Context, req *domain.ClientSupplierRequest) (*domain.ClientSupplier, error) {
	if strings.TrimSpace(req.Type) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, ErrTypeAndNameRequired
	}
	c := &domain.ClientSupplier{}
	applyClientSupplier(c, req)
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create client/supplier", zap.String("name", c.Name), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *ClientSupplierService) GetByID(ctx context.Context, id int64) (*domain.ClientSupplier, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errClientSupplierNotFound)
	}
	return c, nil
}

// List returns the counterparties of kind, or all of them when kind is empty
func (s *ClientSupplierService) List(ctx context.Context, kind string) ([]domain.ClientSupplier, error) {
	return s.repo.List(ctx, kind)
}

// Update overwrites the record. Type and name keep their stored values when
// sent empty.
func (s *ClientSupplierService) Update(ctx context.Context, id int64, req *domain.ClientSupplierRequest) (*domain.ClientSupplier, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errClientSupplierNotFound)
	}
	applyClientSupplier(c, req)
	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Error("failed to update client/supplier", zap.Int64("client_supplier_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *ClientSupplierService) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete client/supplier", zap.Int64("client_supplier_id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return errClientSupplierNotFound
	}
	return nil
}
