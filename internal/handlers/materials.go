package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

type MaterialService interface {
	CreateMaterial(ctx context.Context, in services.MaterialInput) (*models.Material, error)
	GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error)
	ListMaterials(ctx context.Context) ([]*models.Material, error)
	UpdateMaterial(ctx context.Context, id uuid.UUID, patch models.MaterialPatch) (*models.Material, error)
	UpdateMaterialStatus(ctx context.Context, id uuid.UUID, status models.MaterialStatus) (*models.Material, error)
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
	ListProjectMaterials(ctx context.Context, projectID uuid.UUID) ([]*models.CabinetMaterialDetail, error)
	ListCabinetMaterials(ctx context.Context, cabinetID uuid.UUID) ([]*models.CabinetMaterialDetail, error)
}

// MaterialHandler handles the materials inventory
type MaterialHandler struct {
	service MaterialService
}

func NewMaterialHandler(service MaterialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

type CreateMaterialRequest struct {
	Reference    string                `json:"reference" validate:"max=100"`
	Designation  string                `json:"designation" validate:"max=500"`
	TotalInStock int                   `json:"totalInStock"`
	Status       models.MaterialStatus `json:"status"`
}

type UpdateMaterialRequest struct {
	Reference    *string                `json:"reference" validate:"omitempty,max=100"`
	Designation  *string                `json:"designation" validate:"omitempty,max=500"`
	TotalInStock *int                   `json:"totalInStock"`
	Status       *models.MaterialStatus `json:"status"`
}

type UpdateMaterialStatusRequest struct {
	Status models.MaterialStatus `json:"status"`
}

// @Router /materials/create [post]
func (h *MaterialHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req CreateMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.service.CreateMaterial(r.Context(), services.MaterialInput{
		Reference:    req.Reference,
		Designation:  req.Designation,
		TotalInStock: req.TotalInStock,
		Status:       req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Material created successfully", material)
}

// @Router /materials/all [get]
func (h *MaterialHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.ListMaterials(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", materials)
}

// @Router /materials/{id} [get]
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	material, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", material)
}

// @Router /materials/update/{id} [patch]
func (h *MaterialHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.service.UpdateMaterial(r.Context(), id, models.MaterialPatch{
		Reference:    req.Reference,
		Designation:  req.Designation,
		TotalInStock: req.TotalInStock,
		Status:       req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Material updated successfully", material)
}

// @Router /materials/update-status/{id} [patch]
func (h *MaterialHandler) UpdateMaterialStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateMaterialStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.service.UpdateMaterialStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Material status updated successfully", material)
}

// @Router /materials/delete/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteMaterial(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Material deleted successfully", nil)
}

// ListProjectMaterials returns the material lines of the project's cabinet
// @Router /projects/{projectId}/materials [get]
func (h *MaterialHandler) ListProjectMaterials(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	lines, err := h.service.ListProjectMaterials(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", lines)
}

// @Router /cabinets/{id}/materials [get]
func (h *MaterialHandler) ListCabinetMaterials(w http.ResponseWriter, r *http.Request) {
	cabinetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	lines, err := h.service.ListCabinetMaterials(r.Context(), cabinetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", lines)
}
