package domain

// Response envelopes. Handlers write maps with the same keys; these types
// exist for the API documentation.

// ErrorResponse is the body of every 4xx and 5xx response
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Job not found"`
}

// ValidationErrorResponse adds the failing fields to an ErrorResponse
type ValidationErrorResponse struct {
	Success bool              `json:"success" example:"false"`
	Message string            `json:"message" example:"One or more fields failed validation"`
	Errors  map[string]string `json:"errors"`
}

// MessageResponse acknowledges a write
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

// CreatedResponse acknowledges a create and carries the new id
type CreatedResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// DataResponse wraps a single object or list
type DataResponse struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

// ListResponse wraps a list with its length
type ListResponse struct {
	Success bool `json:"success" example:"true"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

// SyncResponse acknowledges an update that fanned out to linked documents
type SyncResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message"`
	Sync    *SyncReport `json:"sync"`
}
