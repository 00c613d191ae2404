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

// IncidentRepository defines the interface for incident report data access
type IncidentRepository interface {
	Create(ctx context.Context, inc *models.IncidentReport) (*models.IncidentReport, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.IncidentReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus, notes string) (*models.IncidentReport, error)
}

type IncidentInput struct {
	Type        models.IncidentType
	Description string
	Date        *time.Time
	Images      []string
}

// IncidentService handles on-site incident reports.
type IncidentService struct {
	repo     IncidentRepository
	projects ProjectRepository
	users    UserRepository
	logger   *slog.Logger
}

func NewIncidentService(repo IncidentRepository, projects ProjectRepository, users UserRepository, logger *slog.Logger) *IncidentService {
	return &IncidentService{
		repo:     repo,
		projects: projects,
		users:    users,
		logger:   logger,
	}
}

func validIncidentType(t models.IncidentType) bool {
	switch t {
	case models.IncidentMinor, models.IncidentMajor, models.IncidentCritical:
		return true
	}
	return false
}

func validIncidentStatus(s models.IncidentStatus) bool {
	switch s {
	case models.IncidentOpen, models.IncidentInReview, models.IncidentResolved:
		return true
	}
	return false
}

func (s *IncidentService) getProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Project")
		}
		s.logger.Error("failed to get project", slog.String("project_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return project, nil
}

// ReportIncident files an incident on a project. The reporter must work on
// the project or be an admin.
func (s *IncidentService) ReportIncident(ctx context.Context, projectID, reporterID uuid.UUID, in IncidentInput) (*models.IncidentReport, error) {
	if !validIncidentType(in.Type) {
		return nil, models.NewValidationError("Incident type must be minor, major or critical")
	}
	if in.Description = strings.TrimSpace(in.Description); in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}

	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !containsID(project.Employees, reporterID) {
		reporter, err := s.users.GetByID(ctx, reporterID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.ErrSessionInvalid
			}
			s.logger.Error("failed to get reporter", slog.String("user_id", reporterID.String()), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if !reporter.IsAdmin {
			return nil, models.NewForbiddenError("You are not assigned to this project")
		}
	}

	report := &models.IncidentReport{
		Type:        in.Type,
		Description: in.Description,
		Status:      models.IncidentOpen,
		EmployeeID:  reporterID,
		ProjectID:   projectID,
		Images:      in.Images,
	}
	if in.Date != nil {
		report.Date = *in.Date
	}

	created, err := s.repo.Create(ctx, report)
	if err != nil {
		s.logger.Error("failed to create incident", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Warn("incident reported",
		slog.String("incident_id", created.ID.String()),
		slog.String("project_id", projectID.String()),
		slog.String("type", string(created.Type)))

	return created, nil
}

func (s *IncidentService) ListProjectIncidents(ctx context.Context, projectID uuid.UUID) ([]*models.IncidentReport, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	incidents, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to list incidents", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return incidents, nil
}

func (s *IncidentService) UpdateIncidentStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus, notes string) (*models.IncidentReport, error) {
	if !validIncidentStatus(status) {
		return nil, models.NewValidationError("Invalid incident status")
	}

	incident, err := s.repo.UpdateStatus(ctx, id, status, strings.TrimSpace(notes))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Incident report")
		}
		s.logger.Error("failed to update incident", slog.String("incident_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return incident, nil
}
