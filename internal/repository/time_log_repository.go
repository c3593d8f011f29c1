package repository

import (
	"context"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// TimeLogFilters narrows time-log listings. Nil fields are ignored.
type TimeLogFilters struct {
	JobID        *int64
	ProjectID    *int64
	EmployeeID   *int64
	ProductionID *int64
	// EmployeeRole keeps only logs booked by users with the employee role
	EmployeeRole bool
}

// TimeLogRepository handles time-log data access
type TimeLogRepository struct {
	db *gorm.DB
}

// NewTimeLogRepository creates a new time-log repository
func NewTimeLogRepository(db *gorm.DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *TimeLogRepository) WithTx(tx *gorm.DB) *TimeLogRepository {
	return &TimeLogRepository{db: tx}
}

func (r *TimeLogRepository) Create(ctx context.Context, l *domain.TimeLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *TimeLogRepository) GetByID(ctx context.Context, id int64) (*domain.TimeLog, error) {
	var l domain.TimeLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *TimeLogRepository) Update(ctx context.Context, l *domain.TimeLog) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *TimeLogRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.TimeLog{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByJob removes every log booked on a job
func (r *TimeLogRepository) DeleteByJob(ctx context.Context, jobID int64) error {
	return r.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&domain.TimeLog{}).Error
}

// DeleteByProject removes every log booked on a project
func (r *TimeLogRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.TimeLog{}).Error
}

// List returns the logs matching f, newest date first
func (r *TimeLogRepository) List(ctx context.Context, f TimeLogFilters) ([]domain.TimeLog, error) {
	q := r.db.WithContext(ctx).Model(&domain.TimeLog{})
	if f.JobID != nil {
		q = q.Where("job_id = ?", *f.JobID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.ProductionID != nil {
		q = q.Where("production_id = ?", *f.ProductionID)
	}
	if f.EmployeeRole {
		q = q.Where("employee_id IN (?)",
			r.db.Model(&domain.User{}).Select("id").Where("role_name = ?", domain.RoleEmployee))
	}

	var logs []domain.TimeLog
	err := q.Order("date DESC, id DESC").Find(&logs).Error
	return logs, err
}

// ListSince returns logs dated on or after since (YYYY-MM-DD)
func (r *TimeLogRepository) ListSince(ctx context.Context, since domain.Date) ([]domain.TimeLog, error) {
	var logs []domain.TimeLog
	q := r.db.WithContext(ctx).Model(&domain.TimeLog{})
	if !since.IsZero() {
		q = q.Where("date >= ?", since)
	}
	err := q.Find(&logs).Error
	return logs, err
}
