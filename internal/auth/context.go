package auth

import (
	"context"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID int64
	Role   string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasRole checks the user's role, ignoring case
func (u *UserContext) HasRole(role string) bool {
	return strings.EqualFold(u.Role, role)
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user has the admin role
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(domain.RoleAdmin)
}
