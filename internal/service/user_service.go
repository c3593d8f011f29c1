package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const userImageFolder = "user_image"

// TokenIssuer signs the token returned by Login
type TokenIssuer interface {
	Issue(userID int64, role string) (string, error)
}

// UserService handles users, passwords and login
type UserService struct {
	userRepo   *repository.UserRepository
	tokens     TokenIssuer
	storage    storage.Storage
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService creates a new UserService. A bcryptCost outside bcrypt's
// range falls back to bcrypt.DefaultCost.
func NewUserService(userRepo *repository.UserRepository, tokens TokenIssuer, store storage.Storage, bcryptCost int, logger *zap.Logger) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		tokens:     tokens,
		storage:    store,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Create registers a user. The email must not be taken.
func (s *UserService) Create(ctx context.Context, req *domain.UserRequest, image *domain.Upload) (*domain.User, error) {
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       email,
		PhoneNumber: req.PhoneNumber,
		Password:    hash,
		State:       req.State,
		Country:     req.Country,
		RoleName:    strings.ToLower(req.RoleName),
		Image:       req.Image,
	}
	if user.RoleName == "" {
		user.RoleName = domain.RoleEmployee
	}
	key, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}
	if key != "" {
		user.Image = key
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.String("email", email), zap.Error(err))
		s.discard(ctx, key)
		return nil, err
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", user.RoleName))
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// List returns users with role, or every user when role is empty
func (s *UserService) List(ctx context.Context, role string) ([]domain.User, error) {
	return s.userRepo.List(ctx, role)
}

// Update overwrites the profile fields. Email and password are never changed
// here; the image is replaced only when a new one is uploaded.
func (s *UserService) Update(ctx context.Context, id int64, req *domain.UserRequest, image *domain.Upload) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	previous := user.Image

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	user.State = req.State
	user.Country = req.Country
	if req.RoleName != "" {
		user.RoleName = strings.ToLower(req.RoleName)
	}
	if req.Image != "" {
		user.Image = req.Image
	}
	key, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}
	if key != "" {
		user.Image = key
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user", zap.Int64("user_id", id), zap.Error(err))
		s.discard(ctx, key)
		return nil, err
	}
	if key != "" {
		s.discard(ctx, previous)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	n, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ChangePassword replaces the user's password hash
func (s *UserService) ChangePassword(ctx context.Context, id int64, newPassword string) error {
	if newPassword == "" {
		return ErrNewPasswordRequired
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		s.logger.Error("failed to change password", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	return nil
}

// Login checks the credentials and issues a token carrying the user's id
// and role
func (s *UserService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, notFound(err, ErrLoginUnknownUser)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Warn("login rejected", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.RoleName)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", user.RoleName))
	return &domain.LoginResult{Token: token, Role: user.RoleName, User: *user}, nil
}

func (s *UserService) storeImage(ctx context.Context, image *domain.Upload) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", nil
	}
	if s.storage == nil {
		return "", errors.New("image storage is not configured")
	}
	key, err := s.storage.Upload(ctx, userImageFolder, image.Filename, image.ContentType, bytes.NewReader(image.Data))
	if err != nil {
		s.logger.Error("failed to store user image", zap.String("filename", image.Filename), zap.Error(err))
		return "", err
	}
	return key, nil
}

func (s *UserService) discard(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove user image", zap.String("key", key), zap.Error(err))
	}
}
