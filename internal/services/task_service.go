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

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	Priority    models.TaskPriority
	Deadline    *time.Time
	EmployeeID  *uuid.UUID
	Notes       string
}

// TaskService handles tasks and rolls their status up into the project.
type TaskService struct {
	repo     TaskRepository
	projects ProjectRepository
	users    UserRepository
	logger   *slog.Logger
}

func NewTaskService(repo TaskRepository, projects ProjectRepository, users UserRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		projects: projects,
		users:    users,
		logger:   logger,
	}
}

func validPriority(p models.TaskPriority) bool {
	switch p {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		return true
	}
	return false
}

func (s *TaskService) getTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Task")
		}
		s.logger.Error("failed to get task", slog.String("task_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return task, nil
}

func (s *TaskService) getProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
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

func (s *TaskService) ensureUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("Employee")
		}
		s.logger.Error("failed to get user", slog.String("user_id", id.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// CreateTask adds a task to a project and appends it to the project's task list.
func (s *TaskService) CreateTask(ctx context.Context, projectID uuid.UUID, in TaskInput) (*models.Task, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return nil, models.NewValidationError("Task name is required")
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusNotStarted
	}
	if !in.Status.Valid() {
		return nil, models.NewValidationError("Invalid task status")
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if !validPriority(in.Priority) {
		return nil, models.NewValidationError("Invalid task priority")
	}
	if in.EmployeeID != nil {
		if err := s.ensureUser(ctx, *in.EmployeeID); err != nil {
			return nil, err
		}
	}

	task, err := s.repo.Create(ctx, &models.Task{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		Deadline:    in.Deadline,
		ProjectID:   projectID,
		EmployeeID:  in.EmployeeID,
		Notes:       in.Notes,
	})
	if err != nil {
		s.logger.Error("failed to create task", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.projects.AppendTask(ctx, projectID, task.ID); err != nil {
		s.logger.Error("failed to link task to project",
			slog.String("project_id", projectID.String()),
			slog.String("task_id", task.ID.String()),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("task created", slog.String("task_id", task.ID.String()), slog.String("project_id", projectID.String()))
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.getTask(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return tasks, nil
}

func (s *TaskService) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to list project tasks", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return tasks, nil
}

// UpdateTask applies patch and, when it carries a status, re-derives the
// project status from all of the project's tasks.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if task.Name = strings.TrimSpace(*patch.Name); task.Name == "" {
			return nil, models.NewValidationError("Task name cannot be empty")
		}
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, models.NewValidationError("Invalid task status")
		}
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !validPriority(*patch.Priority) {
			return nil, models.NewValidationError("Invalid task priority")
		}
		task.Priority = *patch.Priority
	}
	if patch.Deadline != nil {
		task.Deadline = patch.Deadline
	}
	if patch.Notes != nil {
		task.Notes = *patch.Notes
	}

	updated, err := s.save(ctx, task)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		if err := s.rollup(ctx, updated.ProjectID, updated.Status); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// rollup re-evaluates the project status after a task moved to changed.
func (s *TaskService) rollup(ctx context.Context, projectID uuid.UUID, changed models.ProjectStatus) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	siblings, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to load sibling tasks", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	next, changedProject := rollupStatus(project.Status, changed, siblings)
	if !changedProject {
		return nil
	}

	if err := s.projects.UpdateStatus(ctx, projectID, next); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("Project")
		}
		s.logger.Error("failed to roll up project status", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("project status rolled up",
		slog.String("project_id", projectID.String()),
		slog.String("from", string(project.Status)),
		slog.String("to", string(next)))

	return nil
}

func (s *TaskService) save(ctx context.Context, task *models.Task) (*models.Task, error) {
	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Task")
		}
		s.logger.Error("failed to update task", slog.String("task_id", task.ID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return updated, nil
}

// AssignTask sets the task's assignee.
func (s *TaskService) AssignTask(ctx context.Context, id, employeeID uuid.UUID) (*models.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUser(ctx, employeeID); err != nil {
		return nil, err
	}

	task.EmployeeID = &employeeID
	return s.save(ctx, task)
}

// SelfAssignTask assigns the caller, who must be an employee of the task's project.
func (s *TaskService) SelfAssignTask(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	project, err := s.getProject(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	if !containsID(project.Employees, userID) {
		return nil, models.NewForbiddenError("You are not assigned to this project")
	}

	task.EmployeeID = &userID
	return s.save(ctx, task)
}

// DeleteTask removes a task and unlinks it from its project.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("Task")
		}
		s.logger.Error("failed to delete task", slog.String("task_id", id.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.projects.RemoveTask(ctx, task.ProjectID, id); err != nil {
		s.logger.Error("failed to unlink task from project",
			slog.String("task_id", id.String()),
			slog.String("project_id", task.ProjectID.String()),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}
