package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// defaultMaxUploadMB matches the legacy body limit
const defaultMaxUploadMB = 50

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// envelope is the body of every response: {success, data|message, ...}
type envelope map[string]any

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, envelope{"success": true, "data": data})
}

// respondList adds the legacy count field next to data
func respondList[T any](w http.ResponseWriter, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	respondJSON(w, http.StatusOK, envelope{"success": true, "count": len(rows), "data": rows})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{"success": true, "message": message})
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{"success": false, "message": message})
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = formatValidationError(fe)
		}
	}
	respondJSON(w, http.StatusBadRequest, envelope{
		"success": false,
		"message": "One or more fields failed validation",
		"errors":  fields,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// errorStatus picks the status code for a service error
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError writes err with the status of its kind. Unclassified
// errors are logged and surfaced as 500 with their message.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string, fields ...zap.Field) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("failed to "+action, append(fields, zap.Error(err))...)
	}
	respondWithError(w, status, err.Error())
}

// decodeJSON reads the request body into dst and validates it. On failure it
// writes the response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// urlID parses a numeric path parameter. On failure it writes a 400 and
// returns false.
func urlID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipart limits and parses a multipart body. On failure it writes
// the response and returns false.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxUploadMB int64) bool {
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", maxUploadMB))
		return false
	}
	return true
}

// formFile reads an optional file field of a parsed multipart form
func formFile(r *http.Request, field string) (*domain.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formInt64 parses an optional numeric form value
func formInt64(r *http.Request, field string) (*int64, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" || v == "null" || v == "undefined" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, domain.Validation(fmt.Sprintf("Invalid %s", field))
	}
	return &n, nil
}

// formDate parses an optional YYYY-MM-DD form value
func formDate(r *http.Request, field string) (domain.Date, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return domain.Date{}, domain.Validation(fmt.Sprintf("Invalid %s", field))
	}
	return d, nil
}
