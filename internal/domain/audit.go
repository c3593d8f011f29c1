package domain

import "time"

// AuditAction is the kind of change an audit entry records
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog is one recorded mutating API call. Rows are append-only; only
// the retention job removes them.
type AuditLog struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	UserID      *int64      `gorm:"index" json:"user_id"`
	UserRole    string      `gorm:"type:varchar(50)" json:"user_role"`
	Action      AuditAction `gorm:"type:varchar(20);not null;index" json:"action"`
	EntityType  string      `gorm:"type:varchar(50);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID    *int64      `gorm:"index:idx_audit_entity" json:"entity_id"`
	Method      string      `gorm:"type:varchar(10);not null" json:"method"`
	Path        string      `gorm:"type:varchar(255);not null" json:"path"`
	StatusCode  int         `gorm:"not null" json:"status_code"`
	Payload     string      `gorm:"type:text" json:"payload,omitempty"`
	IPAddress   string      `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent   string      `gorm:"type:varchar(255)" json:"user_agent"`
	RequestID   string      `gorm:"type:varchar(64);index" json:"request_id"`
	PerformedAt time.Time   `gorm:"not null;index" json:"performed_at"`
}

// AuditLogPage is one page of audit entries, newest first
type AuditLogPage struct {
	Data       []AuditLog `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
