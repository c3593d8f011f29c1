package domain

import "errors"

// Error kinds. Every service error wraps exactly one of these so the HTTP
// layer can pick a status code with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error is a user-facing message tagged with a kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation returns a validation error with the given message
func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

// NotFound returns a not-found error with the given message
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

// Conflict returns a conflict error with the given message
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// ValidationMessages maps validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gt":       "Must be greater than minimum value",
	"gte":      "Must be greater than or equal to minimum value",
	"oneof":    "Must be one of the allowed values",
	"dive":     "Contains an invalid element",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
