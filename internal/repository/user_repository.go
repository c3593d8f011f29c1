package repository

import (
	"context"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles user data access
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail looks a user up by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs returns the users keyed by id
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password", hash)
	return result.RowsAffected, result.Error
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	return result.RowsAffected, result.Error
}

// List returns users with role, or every user when role is empty
func (r *UserRepository) List(ctx context.Context, role string) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if role != "" {
		q = q.Where("role_name = ?", role)
	}
	var users []domain.User
	err := q.Order("id DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, err
}
