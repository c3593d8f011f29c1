package handler

import (
	"net/http"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// userImageField is the multipart field carrying a profile image
const userImageField = "file"

type UserHandler struct {
	userService *service.UserService
	maxUploadMB int64
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, maxUploadMB int64, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// readRequest decodes a user from JSON or from a multipart form with an
// optional image. On failure it writes the response and returns false.
func (h *UserHandler) readRequest(w http.ResponseWriter, r *http.Request) (*domain.UserRequest, *domain.Upload, bool) {
	var req domain.UserRequest
	if !isMultipart(r) {
		if !decodeJSON(w, r, &req) {
			return nil, nil, false
		}
		return &req, nil, true
	}

	if !parseMultipart(w, r, h.maxUploadMB) {
		return nil, nil, false
	}
	req = domain.UserRequest{
		FirstName:   r.FormValue("first_name"),
		LastName:    r.FormValue("last_name"),
		Email:       r.FormValue("email"),
		PhoneNumber: r.FormValue("phone_number"),
		Password:    r.FormValue("password"),
		State:       r.FormValue("state"),
		Country:     r.FormValue("country"),
		RoleName:    r.FormValue("role_name"),
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return nil, nil, false
	}
	image, err := formFile(r, userImageField)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file")
		return nil, nil, false
	}
	return &req, image, true
}

// Create godoc
// @Summary Create user
// @Description Registers a user. The role defaults to employee; the email must be unused.
// @Tags Users
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body domain.UserRequest true "User data"
// @Success 200 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse "User already exists"
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, image, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Create(r.Context(), req, image)
	if err != nil {
		handleServiceError(w, h.logger, err, "create user")
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "User created successfully",
		"id":      user.ID,
	})
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.User}
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, "")
}

// ListProduction godoc
// @Summary List production users
// @Tags Users
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.User}
// @Security BearerAuth
// @Router /production [get]
func (h *UserHandler) ListProduction(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, domain.RoleProduction)
}

// ListEmployees godoc
// @Summary List employees
// @Tags Users
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.User}
// @Security BearerAuth
// @Router /employee [get]
func (h *UserHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, domain.RoleEmployee)
}

func (h *UserHandler) listByRole(w http.ResponseWriter, r *http.Request, role string) {
	users, err := h.userService.List(r.Context(), role)
	if err != nil {
		handleServiceError(w, h.logger, err, "list users", zap.String("role", role))
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	respondData(w, users)
}

// GetByID godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.DataResponse{data=domain.User}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get user", zap.Int64("user_id", id))
		return
	}
	respondData(w, user)
}

// Update godoc
// @Summary Update user
// @Description Updates the profile. Email and password are not changed here.
// @Tags Users
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "User ID"
// @Param request body domain.UserRequest true "User data"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req, image, ok := h.readRequest(w, r)
	if !ok {
		return
	}
	if _, err := h.userService.Update(r.Context(), id, req, image); err != nil {
		handleServiceError(w, h.logger, err, "update user", zap.Int64("user_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "User updated successfully")
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete user", zap.Int64("user_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "User deleted successfully")
}

// ChangePassword godoc
// @Summary Change password
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body domain.ChangePasswordRequest true "New password"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/change-password/{id} [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req domain.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.userService.ChangePassword(r.Context(), id, req.NewPassword); err != nil {
		handleServiceError(w, h.logger, err, "change password", zap.Int64("user_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Password changed successfully")
}
