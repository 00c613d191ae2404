package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BradenHooton/elecpower/internal/models"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

const maxUserPageSize = 100

// UserService defines the interface for user business logic
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.UserDetail, error)
	ListUsers(ctx context.Context, params models.ListUsersParams) (*models.UserListResult, error)
	ListEmployees(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, actorID, targetID uuid.UUID, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error
	UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, isAdmin bool) (*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// Request/Response DTOs

// UpdateUserRequest lists the profile fields a client may send. Anything
// else is rejected by the decoder.
type UpdateUserRequest struct {
	FirstName      *string `json:"firstName" validate:"omitempty,max=100"`
	LastName       *string `json:"lastName" validate:"omitempty,max=100"`
	Email          *string `json:"email" validate:"omitempty,email,max=254"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,max=32"`
	Role           *string `json:"role" validate:"omitempty,max=100"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
	Password       *string `json:"password"`
}

// UpdateRoleRequest represents the request body for granting or revoking admin
type UpdateRoleRequest struct {
	IsAdmin *bool `json:"isAdmin" validate:"required"`
}

// UserResponse represents a user in the HTTP response. The password hash
// and lockout counters never leave the server.
type UserResponse struct {
	ID                  uuid.UUID   `json:"id"`
	FirstName           string      `json:"firstName"`
	LastName            string      `json:"lastName"`
	Email               string      `json:"email"`
	PhoneNumber         string      `json:"phoneNumber"`
	Role                string      `json:"role"`
	ProfilePicture      string      `json:"profilePicture"`
	IsAdmin             bool        `json:"isAdmin"`
	IsTemporaryPassword bool        `json:"isTemporaryPassword"`
	Projects            []uuid.UUID `json:"projects"`
	CreatedAt           string      `json:"createdAt"`
	UpdatedAt           string      `json:"updatedAt"`
}

// UserDetailResponse is a user with summaries of their projects.
type UserDetailResponse struct {
	*UserResponse
	ProjectDetails []*models.ProjectSummary `json:"projectDetails"`
}

// UserListResponse is one admin page of users.
type UserListResponse struct {
	Success        bool            `json:"success"`
	Users          []*UserResponse `json:"users"`
	TotalUsers     int             `json:"totalUsers"`
	LastMonthUsers int             `json:"lastMonthUsers"`
}

// toUserResponse converts a user model to a response DTO
func toUserResponse(user *models.User) *UserResponse {
	projects := user.Projects
	if projects == nil {
		projects = []uuid.UUID{}
	}
	return &UserResponse{
		ID:                  user.ID,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Email:               user.Email,
		PhoneNumber:         user.PhoneNumber,
		Role:                user.Role,
		ProfilePicture:      user.ProfilePicture,
		IsAdmin:             user.IsAdmin,
		IsTemporaryPassword: user.IsTemporaryPassword,
		Projects:            projects,
		CreatedAt:           user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           user.UpdatedAt.Format(time.RFC3339),
	}
}

func toUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i, user := range users {
		out[i] = toUserResponse(user)
	}
	return out
}

// GetUser returns a user and their project summaries
// @Router /getuser/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	summaries := detail.Projects
	if summaries == nil {
		summaries = []*models.ProjectSummary{}
	}
	pkghttp.WriteSuccess(w, http.StatusOK, "", UserDetailResponse{
		UserResponse:   toUserResponse(detail.User),
		ProjectDetails: summaries,
	})
}

// ListUsers returns one page of users with totals. Admin only.
//
// @Param startIndex query int false "Offset (default 0)"
// @Param limit query int false "Page size (default 9)"
// @Param sort query string false "asc or desc by creation date (default desc)"
// @Router /getusers [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var params models.ListUsersParams

	query := r.URL.Query()
	if s := query.Get("startIndex"); s != "" {
		if _, err := parseIntParam(s, &params.StartIndex, 0, 1_000_000); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid startIndex parameter")
			return
		}
	}
	if l := query.Get("limit"); l != "" {
		if _, err := parseIntParam(l, &params.Limit, 1, maxUserPageSize); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
	}
	switch query.Get("sort") {
	case "", "desc":
	case "asc":
		params.SortAsc = true
	default:
		pkghttp.WriteBadRequest(w, "Invalid sort parameter")
		return
	}

	result, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UserListResponse{
		Success:        true,
		Users:          toUserResponses(result.Users),
		TotalUsers:     result.TotalUsers,
		LastMonthUsers: result.LastMonthUsers,
	})
}

// ListEmployees returns every non-admin user sorted by last name
// @Router /getemployees [get]
func (h *UserHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListEmployees(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", toUserResponses(users))
}

// UpdateUser applies a profile patch. Non-admins may only update themselves.
// @Router /updateuser/{id} [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), actorID, targetID, models.UserPatch{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Role:           req.Role,
		ProfilePicture: req.ProfilePicture,
		Password:       req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "User updated successfully", toUserResponse(user))
}

// DeleteUser removes an account. Admins may delete anyone, users only themselves.
// @Router /delete/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), actorID, targetID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "User has been deleted", nil)
}

// UpdateRole grants or revokes admin rights. Admin only.
// @Router /update-role/{id} [patch]
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.UpdateRole(r.Context(), actorID, targetID, *req.IsAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "User role updated successfully", toUserResponse(user))
}
