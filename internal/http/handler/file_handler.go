package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/packline/jobdesk-api/internal/storage"
	"go.uber.org/zap"
)

// FileHandler streams stored uploads (user images, company logos and
// stamps, PO documents) back by the key their record keeps
type FileHandler struct {
	storage storage.Storage
	logger  *zap.Logger
}

func NewFileHandler(store storage.Storage, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		storage: store,
		logger:  logger,
	}
}

// Download godoc
// @Summary Download a stored file
// @Description The path after /files/ is the key stored on the owning record, e.g. `po_documents/<uuid>.pdf`
// @Tags Files
// @Produce application/octet-stream
// @Param key path string true "Storage key"
// @Success 200
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /files/{key} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" || strings.Contains(key, "..") {
		respondWithError(w, http.StatusBadRequest, "Invalid file key")
		return
	}

	reader, err := h.storage.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("failed to download file", zap.Error(err), zap.String("key", key))
		respondWithError(w, http.StatusInternalServerError, "Failed to download file")
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "inline; filename=\""+path.Base(key)+"\"")
	_, _ = io.Copy(w, reader)
}
