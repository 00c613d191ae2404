package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/elecpower/internal/models"
	pkgauth "github.com/BradenHooton/elecpower/pkg/auth"
	pkglogger "github.com/BradenHooton/elecpower/pkg/logger"
	"github.com/google/uuid"
)

const defaultUserPageSize = 9

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, params models.ListUsersParams) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	ListEmployees(ctx context.Context) ([]*models.User, error)
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
	UpdateLoginState(ctx context.Context, id uuid.UUID, failedAttempts int, lockUntil *time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, temporary bool, changedAt time.Time) error
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddProjectToUsers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
	RemoveProjectFromUsers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
}

// UserService handles user business logic
type UserService struct {
	repo        UserRepository
	projects    ProjectRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

func NewUserService(repo UserRepository, projects ProjectRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		projects:    projects,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

func (s *UserService) getUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id.String()))
			return nil, models.NewNotFoundError("User")
		}
		s.logger.Error("failed to get user", slog.String("user_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// GetUser returns a user together with summaries of their projects.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.UserDetail, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	summaries, err := s.projects.ListSummaries(ctx, user.Projects)
	if err != nil {
		s.logger.Error("failed to load user projects", slog.String("user_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &models.UserDetail{User: user, Projects: summaries}, nil
}

// ListUsers returns one page of users with the overall and last month totals.
func (s *UserService) ListUsers(ctx context.Context, params models.ListUsersParams) (*models.UserListResult, error) {
	if params.StartIndex < 0 {
		params.StartIndex = 0
	}
	if params.Limit <= 0 {
		params.Limit = defaultUserPageSize
	}

	users, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list users",
			slog.Int("start_index", params.StartIndex),
			slog.Int("limit", params.Limit),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	lastMonth, err := s.repo.CountCreatedSince(ctx, s.now().AddDate(0, -1, 0))
	if err != nil {
		s.logger.Error("failed to count recent users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &models.UserListResult{Users: users, TotalUsers: total, LastMonthUsers: lastMonth}, nil
}

func (s *UserService) ListEmployees(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.ListEmployees(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return users, nil
}

// authorizeSelfOrAdmin allows admins to act on anyone and others only on themselves.
func (s *UserService) authorizeSelfOrAdmin(ctx context.Context, actorID, targetID uuid.UUID, message string) error {
	if actorID == targetID {
		return nil
	}

	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrSessionInvalid
		}
		return err
	}
	if !actor.IsAdmin {
		return models.NewForbiddenError(message)
	}
	return nil
}

// UpdateUser applies patch to the target account. A new password is stored
// as temporary so the user is asked to replace it.
func (s *UserService) UpdateUser(ctx context.Context, actorID, targetID uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if err := s.authorizeSelfOrAdmin(ctx, actorID, targetID, "You can only update your own account"); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		if user.FirstName = strings.TrimSpace(*patch.FirstName); user.FirstName == "" {
			return nil, models.NewValidationError("First name cannot be empty")
		}
	}
	if patch.LastName != nil {
		if user.LastName = strings.TrimSpace(*patch.LastName); user.LastName == "" {
			return nil, models.NewValidationError("Last name cannot be empty")
		}
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if patch.Role != nil {
		user.Role = strings.TrimSpace(*patch.Role)
	}
	if patch.ProfilePicture != nil {
		user.ProfilePicture = strings.TrimSpace(*patch.ProfilePicture)
		if user.ProfilePicture == "" {
			user.ProfilePicture = models.DefaultProfilePicture
		}
	}

	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return nil, models.NewValidationError("Email cannot be empty")
		}
		if email != user.Email {
			existing, err := s.repo.GetByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, models.NewValidationError("Email already exists")
			}
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				s.logger.Error("failed to look up email", slog.Any("error", err))
				return nil, models.ErrInternalServer
			}
		}
		user.Email = email
	}

	if patch.Password != nil {
		if len(*patch.Password) < pkgauth.MinPasswordLen {
			return nil, models.NewValidationError("Password must be at least %d characters long", pkgauth.MinPasswordLen)
		}
		if len(*patch.Password) > pkgauth.MaxPasswordLen {
			return nil, models.NewValidationError("Password must be at most %d characters long", pkgauth.MaxPasswordLen)
		}
		hash, err := pkgauth.HashPassword(*patch.Password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		user.PasswordHash = hash
		user.IsTemporaryPassword = true
	}

	updated, err := s.repo.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewValidationError("Email already exists")
		}
		s.logger.Error("failed to update user", slog.String("user_id", targetID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user updated", slog.String("user_id", targetID.String()))
	return updated, nil
}

// DeleteUser removes an account after pulling it from every project.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.authorizeSelfOrAdmin(ctx, actorID, targetID, "You can only delete your own account"); err != nil {
		return err
	}

	if _, err := s.getUser(ctx, targetID); err != nil {
		return err
	}

	if err := s.projects.RemoveEmployee(ctx, targetID); err != nil {
		s.logger.Error("failed to remove user from projects", slog.String("user_id", targetID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("User")
		}
		s.logger.Error("failed to delete user", slog.String("user_id", targetID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user deleted", slog.String("user_id", targetID.String()))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUserDeleted, actorID.String(), targetID.String(), nil)

	return nil
}

// UpdateRole grants or revokes admin rights.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, isAdmin bool) (*models.User, error) {
	user, err := s.repo.SetAdmin(ctx, targetID, isAdmin)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		s.logger.Error("failed to update role", slog.String("user_id", targetID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventRoleChange, actorID.String(), targetID.String(),
		map[string]string{"is_admin": strconv.FormatBool(isAdmin)})

	return user, nil
}
