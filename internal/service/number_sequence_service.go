package service

import (
	"context"
	"fmt"

	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sequenceSpec ties a number series to the column it fills and the last
// number issued before sequences were tracked
type sequenceSpec struct {
	table  string
	column string
	base   int64
}

var sequences = map[string]sequenceSpec{
	repository.SequenceProject:  {table: "projects", column: "project_no", base: 2093},
	repository.SequenceJob:      {table: "jobs", column: "job_no", base: 18542},
	repository.SequenceEstimate: {table: "estimates", column: "estimate_no", base: 6607},
	repository.SequenceInvoice:  {table: "invoices", column: "invoice_no", base: 5000},
}

// NumberSequenceService issues the sequential project, job, estimate and
// invoice numbers
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// Next returns the next number of the named series. Pass the caller's
// transaction as tx so the number is released if the insert fails; nil uses
// the service's own connection.
func (s *NumberSequenceService) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	spec, ok := sequences[name]
	if !ok {
		return 0, fmt.Errorf("unknown number sequence %q", name)
	}

	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	n, err := repo.GetNextNumber(ctx, name, func(tx *gorm.DB) (int64, error) {
		return repository.MaxColumn(tx, spec.table, spec.column, spec.base)
	})
	if err != nil {
		s.logger.Error("failed to generate number", zap.String("sequence", name), zap.Error(err))
		return 0, err
	}
	return n, nil
}
