package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BradenHooton/elecpower/internal/auth"
	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, in services.RegisterInput, meta services.RequestMeta) (*models.User, error)
	AdminCreate(ctx context.Context, actorID uuid.UUID, in services.AdminCreateInput) (*models.User, error)
	Login(ctx context.Context, email, password string, meta services.RequestMeta) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, in services.ChangePasswordInput) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service     AuthServiceInterface
	ipConfig    *pkghttp.IPConfig
	cookies     auth.CookieConfig
	tokenExpiry time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, cookies auth.CookieConfig, tokenExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		service:     service,
		ipConfig:    ipConfig,
		cookies:     cookies,
		tokenExpiry: tokenExpiry,
	}
}

// Request DTOs

// SignupRequest represents the request body for self registration
type SignupRequest struct {
	FirstName       string `json:"firstName" validate:"max=100"`
	LastName        string `json:"lastName" validate:"max=100"`
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SigninRequest represents the request body for login
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest represents the request body for admin account creation
type CreateUserRequest struct {
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	Role        string `json:"role" validate:"max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// LoginResponse is the body of a successful sign-in.
type LoginResponse struct {
	Success             bool          `json:"success"`
	User                *UserResponse `json:"user"`
	IsTemporaryPassword bool          `json:"isTemporaryPassword"`
	Token               string        `json:"token"`
}

// ChangePasswordResponse tells the client where to sign in again.
type ChangePasswordResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirectTo"`
}

func (h *AuthHandler) requestMeta(r *http.Request) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

// Signup registers a new account
// @Router /signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, h.requestMeta(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Signup successful", toUserResponse(user))
}

// Signin authenticates a user and sets the session cookie
// @Router /signin [post]
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, h.requestMeta(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	auth.SetAccessTokenCookie(w, result.Token, h.tokenExpiry, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:             true,
		User:                toUserResponse(result.User),
		IsTemporaryPassword: result.IsTemporaryPassword,
		Token:               result.Token,
	})
}

// Signout clears the session cookie. Tokens are stateless so nothing is
// revoked server side.
// @Router /signout [post]
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAccessTokenCookie(w, h.cookies)
	pkghttp.WriteSuccess(w, http.StatusOK, "User has been signed out", nil)
}

// ChangePassword replaces the caller's password. The session token is read
// from the cookie or bearer header by the service, not by middleware, so
// expired sessions get a precise message.
// @Router /change-password [patch]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.ChangePassword(r.Context(), services.ChangePasswordInput{
		Tokens:             auth.SessionTokens(r),
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	auth.ClearAccessTokenCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, ChangePasswordResponse{
		Success:    true,
		Message:    "Password changed successfully. Please login again.",
		RedirectTo: "/login",
	})
}

// CreateUser creates an account with a temporary password handed to the
// email notifier. Admin only.
// @Router /createuser [post]
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.AdminCreate(r.Context(), actorID, services.AdminCreateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "User created successfully", toUserResponse(user))
}
