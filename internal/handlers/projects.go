package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

type ProjectService interface {
	CreateProject(ctx context.Context, in services.ProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	service ProjectService
}

func NewProjectHandler(service ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type CreateProjectRequest struct {
	Name        string               `json:"name" validate:"max=200"`
	Description string               `json:"description" validate:"max=5000"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   *jsonDate            `json:"startDate"`
	EndDate     *jsonDate            `json:"endDate"`
	Destination string               `json:"destination" validate:"max=200"`
	Employees   []uuid.UUID          `json:"employees"`
}

// UpdateProjectRequest is a project patch. Omitting employees leaves the
// employee set untouched; an empty list clears it.
type UpdateProjectRequest struct {
	Name        *string               `json:"name" validate:"omitempty,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=5000"`
	Status      *models.ProjectStatus `json:"status"`
	StartDate   *jsonDate             `json:"startDate"`
	EndDate     *jsonDate             `json:"endDate"`
	Destination *string               `json:"destination" validate:"omitempty,max=200"`
	Employees   *[]uuid.UUID          `json:"employees"`
}

// CreateProject creates a project and links its employees
// @Router /projects/create [post]
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.service.CreateProject(r.Context(), services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate.value(),
		EndDate:     req.EndDate.value(),
		Destination: req.Destination,
		Employees:   req.Employees,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Project created successfully", project)
}

// @Router /projects/all [get]
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", projects)
}

// @Router /projects/{projectId} [get]
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", project)
}

// UpdateProject applies a project patch and re-syncs employee mirrors when
// the employee list is part of it
// @Router /projects/update/{projectId} [patch]
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.service.UpdateProject(r.Context(), id, models.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate.ptr(),
		EndDate:     req.EndDate.ptr(),
		Destination: req.Destination,
		Employees:   req.Employees,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Project updated successfully", project)
}

// @Router /projects/delete/{projectId} [delete]
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Project deleted successfully", nil)
}
