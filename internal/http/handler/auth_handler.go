package handler

import (
	"fmt"
	"net/http"

	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// loginUser is the public part of a user returned by login
type loginUser struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	RoleName    string `json:"role_name"`
	Image       string `json:"image"`
}

// Login godoc
// @Summary Log in
// @Description Checks email and password and returns a signed token carrying the user's id and role
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.ValidationErrorResponse
// @Failure 403 {object} domain.ErrorResponse "Invalid password"
// @Failure 404 {object} domain.ErrorResponse "Unknown user"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "log in")
		return
	}

	u := result.User
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": fmt.Sprintf("%s login successful", u.RoleName),
		"token":   result.Token,
		"role":    result.Role,
		"data": loginUser{
			ID:          u.ID,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
			RoleName:    u.RoleName,
			Image:       u.Image,
		},
	})
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the user named by the request's token
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.DataResponse{data=domain.User}
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err, "load current user", zap.Int64("user_id", userCtx.UserID))
		return
	}
	respondData(w, user)
}
