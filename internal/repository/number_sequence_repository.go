package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Names of the document number series
const (
	SequenceProject  = "project_no"
	SequenceJob      = "job_no"
	SequenceEstimate = "estimate_no"
	SequenceInvoice  = "invoice_no"
)

// NumberSequenceRepository handles database operations for number sequences.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *NumberSequenceRepository) WithTx(tx *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: tx}
}

// GetNextNumber atomically increments the named sequence and returns the new
// value. The row is read with SELECT FOR UPDATE. A missing sequence is created
// at floor+1, where floor is the last number already in use.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, name string, floor func(tx *gorm.DB) (int64, error)) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			First(&seq)

		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			last, err := floor(tx)
			if err != nil {
				return fmt.Errorf("failed to seed number sequence %s: %w", name, err)
			}
			next = last + 1
			seq = domain.NumberSequence{Name: name, LastValue: next, UpdatedAt: time.Now()}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence %s: %w", name, err)
			}
		case result.Error != nil:
			return fmt.Errorf("failed to get number sequence %s: %w", name, result.Error)
		default:
			next = seq.LastValue + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_value": next,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetCurrent returns the last issued value, or 0 if the sequence is unused
func (r *NumberSequenceRepository) GetCurrent(ctx context.Context, name string) (int64, error) {
	var seq domain.NumberSequence
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get number sequence %s: %w", name, err)
	}
	return seq.LastValue, nil
}

// MaxColumn returns the largest value of column in table, or base when the
// table is empty or holds only smaller values
func MaxColumn(tx *gorm.DB, table, column string, base int64) (int64, error) {
	var max sql.NullInt64
	if err := tx.Table(table).Select("MAX(" + column + ")").Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid || max.Int64 < base {
		return base, nil
	}
	return max.Int64, nil
}
