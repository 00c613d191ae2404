package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, p *models.Project) (*models.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error
	SetCabinet(ctx context.Context, id uuid.UUID, cabinetID *uuid.UUID) error
	AppendTask(ctx context.Context, id, taskID uuid.UUID) error
	RemoveTask(ctx context.Context, id, taskID uuid.UUID) error
	RemoveEmployee(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListSummaries(ctx context.Context, ids []uuid.UUID) ([]*models.ProjectSummary, error)
}

type ProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	StartDate   time.Time
	EndDate     time.Time
	Destination string
	Employees   []uuid.UUID
}

// ProjectService handles projects and keeps each employee's project set in
// step with the project's employee set.
type ProjectService struct {
	repo   ProjectRepository
	users  UserRepository
	logger *slog.Logger
}

func NewProjectService(repo ProjectRepository, users UserRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

func (s *ProjectService) getProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Project")
		}
		s.logger.Error("failed to get project", slog.String("project_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return project, nil
}

// checkEmployees fails when any id does not name an existing user.
func (s *ProjectService) checkEmployees(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.users.CountByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to check employees", slog.Any("error", err))
		return models.ErrInternalServer
	}
	if found != len(ids) {
		return models.NewValidationError("Employee not found")
	}
	return nil
}

func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Destination = strings.TrimSpace(in.Destination)

	if in.Name == "" || in.Description == "" || in.Destination == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, models.NewValidationError("Name, description, start date, end date and destination are required")
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusNotStarted
	}
	if !in.Status.Valid() {
		return nil, models.NewValidationError("Invalid project status")
	}

	employees := dedupeIDs(in.Employees)
	if err := s.checkEmployees(ctx, employees); err != nil {
		return nil, err
	}

	project, err := s.repo.Create(ctx, &models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Destination: in.Destination,
		Employees:   employees,
	})
	if err != nil {
		s.logger.Error("failed to create project", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.users.AddProjectToUsers(ctx, project.ID, employees); err != nil {
		s.logger.Error("failed to mirror project employees",
			slog.String("project_id", project.ID.String()),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("project created", slog.String("project_id", project.ID.String()))
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.getProject(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list projects", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return projects, nil
}

// UpdateProject applies patch. When patch.Employees is set, users added to
// the project gain it in their project set and removed users lose it.
func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if project.Name = strings.TrimSpace(*patch.Name); project.Name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
	}
	if patch.Description != nil {
		if project.Description = strings.TrimSpace(*patch.Description); project.Description == "" {
			return nil, models.NewValidationError("Description cannot be empty")
		}
	}
	if patch.Destination != nil {
		if project.Destination = strings.TrimSpace(*patch.Destination); project.Destination == "" {
			return nil, models.NewValidationError("Destination cannot be empty")
		}
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, models.NewValidationError("Invalid project status")
		}
		project.Status = *patch.Status
	}
	if patch.StartDate != nil {
		project.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		project.EndDate = *patch.EndDate
	}

	var added, removed []uuid.UUID
	if patch.Employees != nil {
		next := dedupeIDs(*patch.Employees)
		if err := s.checkEmployees(ctx, next); err != nil {
			return nil, err
		}
		added, removed = diffMembers(project.Employees, next)
		project.Employees = next
	}

	updated, err := s.repo.Update(ctx, project)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Project")
		}
		s.logger.Error("failed to update project", slog.String("project_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.users.AddProjectToUsers(ctx, id, added); err != nil {
		s.logger.Error("failed to mirror added employees", slog.String("project_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if err := s.users.RemoveProjectFromUsers(ctx, id, removed); err != nil {
		s.logger.Error("failed to mirror removed employees", slog.String("project_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("project updated",
		slog.String("project_id", id.String()),
		slog.Int("employees_added", len(added)),
		slog.Int("employees_removed", len(removed)))

	return updated, nil
}

// DeleteProject pulls the project from its employees before deleting it.
// Tasks, the cabinet and its QR code go with it.
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.RemoveProjectFromUsers(ctx, id, project.Employees); err != nil {
		s.logger.Error("failed to detach project from employees", slog.String("project_id", id.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("Project")
		}
		s.logger.Error("failed to delete project", slog.String("project_id", id.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("project deleted", slog.String("project_id", id.String()))
	return nil
}
