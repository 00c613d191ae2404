package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

type TaskService interface {
	CreateTask(ctx context.Context, projectID uuid.UUID, in services.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)
	ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error)
	AssignTask(ctx context.Context, id, employeeID uuid.UUID) (*models.Task, error)
	SelfAssignTask(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	service TaskService
}

func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type CreateTaskRequest struct {
	Name        string               `json:"name" validate:"max=200"`
	Description string               `json:"description" validate:"max=5000"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.TaskPriority  `json:"priority"`
	Deadline    *jsonDate            `json:"deadline"`
	EmployeeID  *uuid.UUID           `json:"employeeId"`
	Notes       string               `json:"notes" validate:"max=5000"`
}

type UpdateTaskRequest struct {
	Name        *string               `json:"name" validate:"omitempty,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=5000"`
	Status      *models.ProjectStatus `json:"status"`
	Priority    *models.TaskPriority  `json:"priority"`
	Deadline    *jsonDate             `json:"deadline"`
	Notes       *string               `json:"notes" validate:"omitempty,max=5000"`
}

type AssignTaskRequest struct {
	EmployeeID *uuid.UUID `json:"employeeId" validate:"required"`
}

// CreateTask adds a task to a project
// @Router /projects/{projectId}/createtask [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.service.CreateTask(r.Context(), projectID, services.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline.ptr(),
		EmployeeID:  req.EmployeeID,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Task created successfully", task)
}

// @Router /projects/{projectId}/tasks [get]
func (h *TaskHandler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	tasks, err := h.service.ListProjectTasks(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", tasks)
}

// @Router /tasks/all [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListTasks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", tasks)
}

// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", task)
}

// UpdateTask applies a task patch; a status change rolls up into the project
// @Router /tasks/update/{id} [patch]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.service.UpdateTask(r.Context(), id, models.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline.ptr(),
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Task updated successfully", task)
}

// @Router /tasks/{id}/assign [patch]
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req AssignTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.service.AssignTask(r.Context(), id, *req.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Task assigned successfully", task)
}

// SelfAssignTask assigns the task to the caller, who must work on its project
// @Router /tasks/{id}/self-assign [patch]
func (h *TaskHandler) SelfAssignTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.service.SelfAssignTask(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Task assigned successfully", task)
}

// @Router /tasks/delete/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Task deleted successfully", nil)
}
