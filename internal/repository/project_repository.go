package repository

import (
	"context"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectRepository handles project data access
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByIDs returns the projects keyed by id
func (r *ProjectRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Project, error) {
	out := make(map[int64]*domain.Project, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var projects []domain.Project
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&projects).Error; err != nil {
		return nil, err
	}
	for i := range projects {
		out[projects[i].ID] = &projects[i]
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, id).Error
}

// List returns every project, newest first
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Order("id DESC").Find(&projects).Error
	return projects, err
}

// ListByStatus returns projects whose status matches case-insensitively
func (r *ProjectRepository) ListByStatus(ctx context.Context, status string) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("LOWER(status) = LOWER(?)", status).
		Order("id DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Count(&count).Error
	return count, err
}

// CountByStatus counts projects whose status matches case-insensitively
func (r *ProjectRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("LOWER(status) = LOWER(?)", status).
		Count(&count).Error
	return count, err
}

// StatusCounts groups projects by status
func (r *ProjectRepository) StatusCounts(ctx context.Context) ([]domain.StatusCount, error) {
	var out []domain.StatusCount
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&out).Error
	return out, err
}

// Recent returns the latest n projects
func (r *ProjectRepository) Recent(ctx context.Context, n int) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(n).Find(&projects).Error
	return projects, err
}
