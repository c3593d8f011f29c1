package repository

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// AssignJobFilters narrows assignment listings. Nil fields are ignored.
type AssignJobFilters struct {
	ProjectID        *int64
	EmployeeID       *int64
	ProductionID     *int64
	HasEmployee      *bool
	ProductionStatus []domain.ProductionStatus
	EmployeeStatus   []domain.EmployeeStatus
	AdminStatus      []domain.AdminStatus
	UpdatedBefore    *time.Time
}

// AssignJobRepository handles assignment data access
type AssignJobRepository struct {
	db *gorm.DB
}

// NewAssignJobRepository creates a new assignment repository
func NewAssignJobRepository(db *gorm.DB) *AssignJobRepository {
	return &AssignJobRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *AssignJobRepository) WithTx(tx *gorm.DB) *AssignJobRepository {
	return &AssignJobRepository{db: tx}
}

func (r *AssignJobRepository) Create(ctx context.Context, a *domain.AssignJob) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssignJobRepository) GetByID(ctx context.Context, id int64) (*domain.AssignJob, error) {
	var a domain.AssignJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIDs returns the rows in ids, ordered by id
func (r *AssignJobRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.AssignJob, error) {
	var rows []domain.AssignJob
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *AssignJobRepository) Save(ctx context.Context, a *domain.AssignJob) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// UpdateJobIDs rewrites the job set of one row
func (r *AssignJobRepository) UpdateJobIDs(ctx context.Context, id int64, ids domain.JobIDs) error {
	return r.db.WithContext(ctx).Model(&domain.AssignJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{"job_ids": ids, "updated_at": time.Now().UTC()}).Error
}

// UpdateState writes a status triple to every row in ids
func (r *AssignJobRepository) UpdateState(ctx context.Context, ids []int64, s domain.AssignmentState) error {
	return r.db.WithContext(ctx).Model(&domain.AssignJob{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"admin_status":      s.Admin,
			"production_status": s.Production,
			"employee_status":   s.Employee,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *AssignJobRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.AssignJob{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByProject removes every assignment of a project
func (r *AssignJobRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.AssignJob{}).Error
}

// List returns the rows matching f, newest first
func (r *AssignJobRepository) List(ctx context.Context, f AssignJobFilters) ([]domain.AssignJob, error) {
	q := r.db.WithContext(ctx).Model(&domain.AssignJob{})
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.ProductionID != nil {
		q = q.Where("production_id = ?", *f.ProductionID)
	}
	if f.HasEmployee != nil {
		if *f.HasEmployee {
			q = q.Where("employee_id IS NOT NULL")
		} else {
			q = q.Where("employee_id IS NULL")
		}
	}
	if len(f.ProductionStatus) > 0 {
		q = q.Where("production_status IN ?", f.ProductionStatus)
	}
	if len(f.EmployeeStatus) > 0 {
		q = q.Where("employee_status IN ?", f.EmployeeStatus)
	}
	if len(f.AdminStatus) > 0 {
		q = q.Where("admin_status IN ?", f.AdminStatus)
	}
	if f.UpdatedBefore != nil {
		q = q.Where("updated_at < ?", *f.UpdatedBefore)
	}

	var rows []domain.AssignJob
	err := q.Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

// ListContainingJob returns the project's rows whose job set contains jobID,
// newest first. The first row is the job's current assignment.
func (r *AssignJobRepository) ListContainingJob(ctx context.Context, projectID, jobID int64) ([]domain.AssignJob, error) {
	return r.listContaining(ctx, AssignJobFilters{ProjectID: &projectID}, jobID)
}

// ListContainingJobAnyProject returns every assignment whose job set holds
// jobID, whatever project the row belongs to
func (r *AssignJobRepository) ListContainingJobAnyProject(ctx context.Context, jobID int64) ([]domain.AssignJob, error) {
	return r.listContaining(ctx, AssignJobFilters{}, jobID)
}

func (r *AssignJobRepository) listContaining(ctx context.Context, filters AssignJobFilters, jobID int64) ([]domain.AssignJob, error) {
	rows, err := r.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, row := range rows {
		if row.JobIDs.Contains(jobID) {
			out = append(out, row)
		}
	}
	return out, nil
}

// FindExact returns the row with the same project, job set, assignees and
// task description (NULL equal to NULL), or nil
func (r *AssignJobRepository) FindExact(ctx context.Context, a *domain.AssignJob) (*domain.AssignJob, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", a.ProjectID)
	q = whereNullable(q, "employee_id", a.EmployeeID)
	q = whereNullable(q, "production_id", a.ProductionID)
	q = whereNullable(q, "task_description", a.TaskDescription)

	var rows []domain.AssignJob
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].JobIDs.SameSet(a.JobIDs) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func whereNullable[T any](q *gorm.DB, column string, v *T) *gorm.DB {
	if v == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *v)
}
