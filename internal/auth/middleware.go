package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/elecpower/internal/models"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

type contextKey string

const (
	// UserContextKey is the key for storing user claims in context
	UserContextKey contextKey = "user"
)

// UserFetcher loads the account behind a token for role checks.
type UserFetcher interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware validates the session token from the cookie or bearer
// header and injects its claims into the request context. A cookie that
// fails validation does not hide a valid bearer header.
func AuthMiddleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tm.ValidateAny(SessionTokens(r)...)
			if err != nil {
				WriteSessionError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WriteSessionError distinguishes missing, expired and invalid sessions so
// clients know whether to re-authenticate.
func WriteSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrMissingToken):
		pkghttp.WriteUnauthorized(w, "missing_token", "Unauthorized - Please login")
	case errors.Is(err, models.ErrSessionExpired):
		pkghttp.WriteUnauthorized(w, "session_expired", "Session expired - Please login again")
	default:
		pkghttp.WriteUnauthorized(w, "session_invalid", "Session invalid - Please login again")
	}
}

// RequireAdmin rejects callers whose account is not flagged admin. The flag
// is read from the store so demotions apply to live tokens.
func RequireAdmin(users UserFetcher, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				WriteSessionError(w, models.ErrMissingToken)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					WriteSessionError(w, models.ErrSessionInvalid)
					return
				}
				logger.Error("failed to load user for admin check",
					slog.String("user_id", userID.String()),
					slog.Any("error", err))
				pkghttp.WriteInternalError(w)
				return
			}

			if !user.IsAdmin {
				pkghttp.WriteForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the authenticated account id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithClaims returns ctx carrying claims, as AuthMiddleware would.
func WithClaims(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
