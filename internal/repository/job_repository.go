package repository

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles job data access
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *JobRepository) WithTx(tx *gorm.DB) *JobRepository {
	return &JobRepository{db: tx}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByIDs returns the jobs in ids ordered by id
func (r *JobRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Job, error) {
	var jobs []domain.Job
	if len(ids) == 0 {
		return jobs, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&jobs).Error
	return jobs, err
}

// List returns every job, newest first
func (r *JobRepository) List(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).Order("id DESC").Find(&jobs).Error
	return jobs, err
}

// ListByProject returns the jobs of a project, newest first
func (r *JobRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id DESC").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// ApplyEffect writes a workflow job effect to every job in ids. An empty
// Assigned leaves the assigned column as it is.
func (r *JobRepository) ApplyEffect(ctx context.Context, ids []int64, effect domain.JobEffect) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	updates := map[string]interface{}{
		"job_status": effect.Status,
		"updated_at": time.Now().UTC(),
	}
	if effect.Assigned != "" {
		updates["assigned"] = effect.Assigned
	}
	result := r.db.WithContext(ctx).Model(&domain.Job{}).Where("id IN ?", ids).Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *JobRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Job{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByProject removes every job of a project
func (r *JobRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.Job{}).Error
}

// CountByStatus counts jobs with one of statuses; no statuses counts all jobs
func (r *JobRepository) CountByStatus(ctx context.Context, statuses ...domain.JobStatus) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.Job{})
	if len(statuses) > 0 {
		q = q.Where("job_status IN ?", statuses)
	}
	err := q.Count(&count).Error
	return count, err
}

// CountByProjectAndStatus counts a project's jobs with status
func (r *JobRepository) CountByProjectAndStatus(ctx context.Context, projectID int64, status domain.JobStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("project_id = ? AND job_status = ?", projectID, status).
		Count(&count).Error
	return count, err
}

// JobCountFilter narrows Count. Zero fields are ignored.
type JobCountFilter struct {
	IDs           []int64
	Statuses      []domain.JobStatus
	Unassigned    bool
	CreatedFrom   time.Time
	CreatedBefore time.Time
	UpdatedFrom   time.Time
	UpdatedBefore time.Time
}

// Count counts the jobs matching f. An empty, non-nil IDs matches nothing.
func (r *JobRepository) Count(ctx context.Context, f JobCountFilter) (int64, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return 0, nil
	}
	q := r.db.WithContext(ctx).Model(&domain.Job{})
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("job_status IN ?", f.Statuses)
	}
	if f.Unassigned {
		q = q.Where("assigned IS NULL OR assigned = '' OR assigned = ?", domain.Unassigned)
	}
	if !f.CreatedFrom.IsZero() {
		q = q.Where("created_at >= ?", f.CreatedFrom)
	}
	if !f.CreatedBefore.IsZero() {
		q = q.Where("created_at < ?", f.CreatedBefore)
	}
	if !f.UpdatedFrom.IsZero() {
		q = q.Where("updated_at >= ?", f.UpdatedFrom)
	}
	if !f.UpdatedBefore.IsZero() {
		q = q.Where("updated_at < ?", f.UpdatedBefore)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
