package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultAuditPageSize = 20
	maxAuditPageSize     = 100
	maxAuditPayload      = 8 << 10
)

// sensitiveFields are stripped from recorded request bodies
var sensitiveFields = []string{"password", "new_password", "newPassword", "token", "secret"}

// AuditLogService records and lists the audit trail of mutating API calls
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// LogEntry is the request side of one audit record
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   *int64
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	IPAddress  string
	UserAgent  string
	RequestID  string
}

// AuditLogQuery selects one page of the audit trail
type AuditLogQuery struct {
	repository.AuditLogFilter
	Page     int
	PageSize int
}

// Log stores entry, attributing it to the user on ctx when there is one
func (s *AuditLogService) Log(ctx context.Context, entry LogEntry) error {
	log := &domain.AuditLog{
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Method:      entry.Method,
		Path:        truncate(entry.Path, 255),
		StatusCode:  entry.StatusCode,
		Payload:     sanitizePayload(entry.Body),
		IPAddress:   entry.IPAddress,
		UserAgent:   truncate(entry.UserAgent, 255),
		RequestID:   entry.RequestID,
		PerformedAt: s.now().UTC(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		id := userCtx.UserID
		log.UserID = &id
		log.UserRole = userCtx.Role
	}

	if err := s.auditRepo.Create(ctx, log); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err))
		return err
	}
	return nil
}

// List returns one page of the audit trail, newest first
func (s *AuditLogService) List(ctx context.Context, q AuditLogQuery) (*domain.AuditLogPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultAuditPageSize
	}
	if q.PageSize > maxAuditPageSize {
		q.PageSize = maxAuditPageSize
	}

	logs, total, err := s.auditRepo.List(ctx, &q.AuditLogFilter, q.Page, q.PageSize)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		totalPages++
	}
	return &domain.AuditLogPage{
		Data:       logs,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Purge deletes entries older than retention and returns how many went
func (s *AuditLogService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.auditRepo.DeleteOlderThan(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged audit logs", zap.Int64("deleted", n), zap.Duration("retention", retention))
	}
	return n, nil
}

// sanitizePayload keeps JSON object bodies minus their secrets. Anything
// else (multipart uploads, arrays of ids) is recorded only when small.
func sanitizePayload(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		if json.Valid(body) && len(body) <= maxAuditPayload {
			return string(body)
		}
		return ""
	}
	for _, f := range sensitiveFields {
		delete(parsed, f)
	}
	out, err := json.Marshal(parsed)
	if err != nil || len(out) > maxAuditPayload {
		return ""
	}
	return string(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
