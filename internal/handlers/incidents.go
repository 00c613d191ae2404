package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

type IncidentService interface {
	ReportIncident(ctx context.Context, projectID, reporterID uuid.UUID, in services.IncidentInput) (*models.IncidentReport, error)
	ListProjectIncidents(ctx context.Context, projectID uuid.UUID) ([]*models.IncidentReport, error)
	UpdateIncidentStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus, notes string) (*models.IncidentReport, error)
}

// IncidentHandler handles on-site incident reports
type IncidentHandler struct {
	service IncidentService
}

func NewIncidentHandler(service IncidentService) *IncidentHandler {
	return &IncidentHandler{service: service}
}

type ReportIncidentRequest struct {
	Type        models.IncidentType `json:"type"`
	Description string              `json:"description" validate:"max=5000"`
	Date        *jsonDate           `json:"date"`
	Images      []string            `json:"images" validate:"max=10"`
}

type UpdateIncidentStatusRequest struct {
	Status          models.IncidentStatus `json:"status"`
	ResolutionNotes string                `json:"resolutionNotes" validate:"max=5000"`
}

// ReportIncident files a report on a project. The reporter is the caller.
// @Router /projects/{projectId}/incidents [post]
func (h *IncidentHandler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	var req ReportIncidentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	incident, err := h.service.ReportIncident(r.Context(), projectID, userID, services.IncidentInput{
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date.ptr(),
		Images:      req.Images,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Incident reported successfully", incident)
}

// @Router /projects/{projectId}/incidents [get]
func (h *IncidentHandler) ListProjectIncidents(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	incidents, err := h.service.ListProjectIncidents(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", incidents)
}

// UpdateIncidentStatus moves a report through review. Admin only.
// @Router /incidents/{id}/status [patch]
func (h *IncidentHandler) UpdateIncidentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateIncidentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	incident, err := h.service.UpdateIncidentStatus(r.Context(), id, req.Status, req.ResolutionNotes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Incident status updated successfully", incident)
}
