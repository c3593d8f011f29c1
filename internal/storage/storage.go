package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/packline/jobdesk-api/internal/config"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Download for a missing object
var ErrNotFound = errors.New("file not found")

// Storage stores uploaded documents under generated names. The returned key
// is what the owning record keeps (e.g. purchase_orders.po_document).
type Storage interface {
	Upload(ctx context.Context, folder, filename, contentType string, data io.Reader) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewStorage creates the storage selected by cfg.Mode ("local" or "azure")
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local", "":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// objectKey returns folder/<uuid><ext>, keeping only the extension of the
// client supplied name
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return path.Join(folder, uuid.New().String()+ext)
}

// LocalStorage keeps files below a base directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// resolve maps key to a path inside basePath, rejecting traversal
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	full := filepath.Join(s.basePath, clean)
	if !strings.HasPrefix(full, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}

func (s *LocalStorage) Upload(_ context.Context, folder, filename, _ string, data io.Reader) (string, error) {
	key := objectKey(folder, filename)
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return key, nil
}

func (s *LocalStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
