package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Upload(ctx, "po-documents", "../../PO 42.PDF", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "po-documents/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is not an error")

	_, err = s.Download(ctx, key)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLocalStorage_KeysStayInsideBase(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Download(context.Background(), "../../etc/passwd")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "traversal is clamped to the base directory")
}

func TestNewStorage_Modes(t *testing.T) {
	s, err := storage.NewStorage(&config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	_, err = storage.NewStorage(&config.StorageConfig{Mode: "azure"}, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
