package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/elecpower/internal/auth"
	"github.com/BradenHooton/elecpower/internal/models"
	pkgauth "github.com/BradenHooton/elecpower/pkg/auth"
	pkglogger "github.com/BradenHooton/elecpower/pkg/logger"
	"github.com/google/uuid"
)

// LockoutPolicy controls when repeated sign-in failures lock an account.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// RequestMeta describes the client behind an auth request, for audit logs.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

type AdminCreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	Role        string
	PhoneNumber string
}

type ChangePasswordInput struct {
	Tokens             []string
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	User                *models.User
	Token               string
	IsTemporaryPassword bool
}

// AuthService handles authentication business logic
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	notifier    EmailService
	timingDelay *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	lockout     LockoutPolicy
	now         func() time.Time
}

func NewAuthService(repo UserRepository, tm *auth.TokenManager, notifier EmailService, timingDelay *auth.TimingDelay, logger *slog.Logger, auditLogger *pkglogger.AuditLogger, lockout LockoutPolicy) *AuthService {
	if lockout.Threshold < 1 {
		lockout.Threshold = 3
	}
	return &AuthService{
		repo:        repo,
		tm:          tm,
		notifier:    notifier,
		timingDelay: timingDelay,
		logger:      logger,
		auditLogger: auditLogger,
		lockout:     lockout,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a self-service account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, models.NewValidationError("All fields are required")
	}
	if len(in.Password) < pkgauth.MinPasswordLen {
		return nil, models.NewValidationError("Password must be at least %d characters long", pkgauth.MinPasswordLen)
	}
	if len(in.Password) > pkgauth.MaxPasswordLen {
		return nil, models.NewValidationError("Password must be at most %d characters long", pkgauth.MaxPasswordLen)
	}
	if in.Password != in.ConfirmPassword {
		return nil, models.NewValidationError("Passwords do not match")
	}

	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.repo.Create(ctx, &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewValidationError("User already registered")
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventRegister,
		UserID:    user.ID.String(),
		Email:     user.Email,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return user, nil
}

// AdminCreate creates an account with a generated temporary password and
// mails it to the new user. The password is never returned.
func (s *AuthService) AdminCreate(ctx context.Context, actorID uuid.UUID, in AdminCreateInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.TrimSpace(in.Role)

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Role == "" {
		return nil, models.NewValidationError("First name, last name, email and role are required")
	}

	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	password, err := pkgauth.GenerateTemporaryPassword()
	if err != nil {
		s.logger.Error("failed to generate temporary password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.repo.Create(ctx, &models.User{
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Email:               in.Email,
		PhoneNumber:         strings.TrimSpace(in.PhoneNumber),
		PasswordHash:        hash,
		Role:                in.Role,
		IsAdmin:             in.Role == models.RoleAdmin,
		IsTemporaryPassword: true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewValidationError("User already registered")
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// The account stays even when the mail cannot be delivered.
	if err := s.notifier.SendTemporaryPassword(ctx, user.Email, user.FirstName, password); err != nil {
		s.logger.Error("failed to send temporary password",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err))
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventAdminCreateUser, actorID.String(), user.ID.String(),
		map[string]string{"role": user.Role})

	return user, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return models.NewValidationError("User already registered")
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up email", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// Login authenticates a user. A locked account is refused before the
// password is compared; the threshold-th consecutive failure locks it.
func (s *AuthService) Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error) {
	start := time.Now()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	event := pkglogger.AuditEvent{
		EventType: pkglogger.EventLogin,
		Email:     email,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			event.FailureReason = "unknown_email"
			s.auditLogger.LogAuthAttempt(ctx, event)
			s.timingDelay.WaitFrom(ctx, start)
			return nil, models.NewNotFoundError("User")
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	event.UserID = user.ID.String()

	now := s.now()
	if user.IsLocked(now, s.lockout.Threshold) {
		event.FailureReason = "account_locked"
		s.auditLogger.LogAuthAttempt(ctx, event)
		s.timingDelay.WaitFrom(ctx, start)
		return nil, &models.AccountLockedError{Remaining: user.LockUntil.Sub(now)}
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		attempts := user.FailedLoginAttempts + 1

		var lockUntil *time.Time
		if attempts >= s.lockout.Threshold {
			until := now.Add(s.lockout.Duration)
			lockUntil = &until
		}

		if err := s.repo.UpdateLoginState(ctx, user.ID, attempts, lockUntil); err != nil {
			s.logger.Error("failed to record failed login",
				slog.String("user_id", user.ID.String()),
				slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		event.FailureReason = "invalid_password"
		s.auditLogger.LogAuthAttempt(ctx, event)
		if lockUntil != nil {
			s.logger.Warn("account locked after failed logins",
				slog.String("user_id", user.ID.String()),
				slog.Int("failed_attempts", attempts))
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:     pkglogger.EventAccountLocked,
				UserID:        user.ID.String(),
				IPAddress:     meta.IPAddress,
				FailureReason: "too_many_failed_attempts",
			})
		}

		s.timingDelay.WaitFrom(ctx, start)
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tm.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.repo.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
		s.logger.Error("failed to reset login state", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.FailedLoginAttempts = 0
	user.LockUntil = nil

	s.logger.Info("user logged in", slog.String("user_id", user.ID.String()))
	event.Success = true
	s.auditLogger.LogAuthAttempt(ctx, event)

	return &LoginResult{
		User:                user,
		Token:               token,
		IsTemporaryPassword: user.IsTemporaryPassword,
	}, nil
}

// ChangePassword replaces the password of the account behind the first valid
// token in in.Tokens. Temporary-password accounts skip the current password
// check.
func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if len(in.NewPassword) < pkgauth.MinChangedPasswordLen {
		return models.NewValidationError("New password must be at least %d characters long", pkgauth.MinChangedPasswordLen)
	}
	if len(in.NewPassword) > pkgauth.MaxPasswordLen {
		return models.NewValidationError("New password must be at most %d characters long", pkgauth.MaxPasswordLen)
	}
	if in.NewPassword == in.CurrentPassword {
		return models.NewValidationError("New password must be different from the current password")
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return models.NewValidationError("Passwords do not match")
	}

	claims, err := s.tm.ValidateAny(in.Tokens...)
	if err != nil {
		if errors.Is(err, models.ErrMissingToken) {
			return models.ErrSessionExpired
		}
		s.logger.Info("password change with unusable session", slog.Any("error", err))
		return err
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return models.ErrSessionInvalid
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("User")
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !user.IsTemporaryPassword {
		if in.CurrentPassword == "" {
			return models.NewValidationError("Current password is required")
		}
		if err := pkgauth.ComparePassword(user.PasswordHash, in.CurrentPassword); err != nil {
			s.auditLogger.LogPasswordChange(ctx, user.ID.String(), false, false)
			return models.ErrIncorrectPassword
		}
	}

	hash, err := pkgauth.HashPassword(in.NewPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hash, false, s.now().UTC()); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("user_id", user.ID.String()))
	s.auditLogger.LogPasswordChange(ctx, user.ID.String(), user.IsTemporaryPassword, true)

	return nil
}
