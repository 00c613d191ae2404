package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/BradenHooton/elecpower/internal/auth"
	"github.com/BradenHooton/elecpower/internal/models"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// writeServiceError maps a service error onto the uniform error body.
// Services log unexpected failures before returning them.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		notFoundErr   *models.NotFoundError
		conflictErr   *models.ConflictError
		forbiddenErr  *models.ForbiddenError
		lockedErr     *models.AccountLockedError
	)

	switch {
	case errors.As(err, &validationErr):
		pkghttp.WriteValidationError(w, validationErr.Message)
	case errors.As(err, &notFoundErr):
		pkghttp.WriteNotFound(w, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		pkghttp.WriteConflict(w, conflictErr.Error())
	case errors.As(err, &forbiddenErr):
		pkghttp.WriteForbidden(w, forbiddenErr.Error())
	case errors.As(err, &lockedErr):
		pkghttp.WriteError(w, http.StatusForbidden, "account_locked", lockedErr.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "invalid_credentials", "Invalid password")
	case errors.Is(err, models.ErrIncorrectPassword):
		pkghttp.WriteUnauthorized(w, "incorrect_password", "Current password is incorrect")
	case errors.Is(err, models.ErrMissingToken),
		errors.Is(err, models.ErrSessionExpired),
		errors.Is(err, models.ErrSessionInvalid):
		auth.WriteSessionError(w, err)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	default:
		pkghttp.WriteInternalError(w)
	}
}

// pathID parses a uuid URL parameter, writing a 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// callerID returns the authenticated account id, writing a 401 when the
// request carries no usable claims.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		auth.WriteSessionError(w, models.ErrSessionInvalid)
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes a strict JSON body and runs struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := pkghttp.DecodeJSON(r, dst); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	if err := ValidateRequest(dst); err != nil {
		pkghttp.WriteValidationError(w, err.Error())
		return false
	}
	return true
}

// parseIntParam parses and validates an integer parameter
func parseIntParam(value string, dest *int, min, max int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	if n < min || n > max {
		return 0, errors.New("parameter out of range")
	}

	*dest = n
	return n, nil
}
