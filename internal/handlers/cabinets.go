package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

type CabinetService interface {
	CreateCabinet(ctx context.Context, projectID uuid.UUID, in services.CabinetInput) (*models.ElectricalCabinet, error)
	GetCabinet(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error)
	ListCabinets(ctx context.Context) ([]*models.ElectricalCabinet, error)
	GetProjectCabinet(ctx context.Context, projectID uuid.UUID) (*models.ElectricalCabinet, error)
	UpdateCabinet(ctx context.Context, id uuid.UUID, patch models.CabinetPatch) (*models.ElectricalCabinet, error)
	AssignMaterials(ctx context.Context, id uuid.UUID, lines []models.MaterialAssignment) (*models.ElectricalCabinet, error)
	UpdateCabinetMaterial(ctx context.Context, cabinetID, assignmentID, callerID uuid.UUID, patch models.CabinetMaterialPatch) (*models.CabinetMaterial, error)
	ListVerifications(ctx context.Context, cabinetID uuid.UUID) ([]*models.MaterialVerification, error)
	AddMaintenance(ctx context.Context, id uuid.UUID, date time.Time, description string) (*models.ElectricalCabinet, error)
	GenerateQRCode(ctx context.Context, id uuid.UUID) (*models.QRCode, error)
	ScanCabinet(ctx context.Context, id uuid.UUID) (*models.QRCode, error)
}

// CabinetHandler handles electrical cabinet and QR code requests
type CabinetHandler struct {
	service CabinetService
}

func NewCabinetHandler(service CabinetService) *CabinetHandler {
	return &CabinetHandler{service: service}
}

type CreateCabinetRequest struct {
	Name             string               `json:"name" validate:"max=200"`
	Description      string               `json:"description" validate:"max=5000"`
	Status           models.CabinetStatus `json:"status"`
	InstallationDate *jsonDate            `json:"installationDate"`
}

type UpdateCabinetRequest struct {
	Name             *string               `json:"name" validate:"omitempty,max=200"`
	Description      *string               `json:"description" validate:"omitempty,max=5000"`
	Status           *models.CabinetStatus `json:"status"`
	InstallationDate *jsonDate             `json:"installationDate"`
}

type MaterialLine struct {
	Material uuid.UUID `json:"material"`
	Quantity int       `json:"quantity"`
}

type AssignMaterialsRequest struct {
	Materials []MaterialLine `json:"materials" validate:"required"`
}

type UpdateCabinetMaterialRequest struct {
	Checked *bool `json:"checked"`
	Missing *int  `json:"missing"`
}

type MaintenanceRequest struct {
	Date        *jsonDate `json:"date"`
	Description string    `json:"description" validate:"max=5000"`
}

// CreateCabinet creates the single cabinet of a project
// @Router /project/{projectId}/cabinet/create [post]
func (h *CabinetHandler) CreateCabinet(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	var req CreateCabinetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cabinet, err := h.service.CreateCabinet(r.Context(), projectID, services.CabinetInput{
		Name:             req.Name,
		Description:      req.Description,
		Status:           req.Status,
		InstallationDate: req.InstallationDate.ptr(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Electrical cabinet created successfully", cabinet)
}

// @Router /cabinets/all [get]
func (h *CabinetHandler) ListCabinets(w http.ResponseWriter, r *http.Request) {
	cabinets, err := h.service.ListCabinets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", cabinets)
}

// @Router /projects/{projectId}/cabinet [get]
func (h *CabinetHandler) GetProjectCabinet(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}

	cabinet, err := h.service.GetProjectCabinet(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", cabinet)
}

// @Router /cabinets/{id} [get]
func (h *CabinetHandler) GetCabinet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cabinet, err := h.service.GetCabinet(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", cabinet)
}

// @Router /cabinets/update/{id} [patch]
func (h *CabinetHandler) UpdateCabinet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCabinetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cabinet, err := h.service.UpdateCabinet(r.Context(), id, models.CabinetPatch{
		Name:             req.Name,
		Description:      req.Description,
		Status:           req.Status,
		InstallationDate: req.InstallationDate.ptr(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Electrical cabinet updated successfully", cabinet)
}

// AssignMaterials replaces the cabinet's material list
// @Router /{id}/assign-materials [patch]
func (h *CabinetHandler) AssignMaterials(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req AssignMaterialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lines := make([]models.MaterialAssignment, len(req.Materials))
	for i, line := range req.Materials {
		lines[i] = models.MaterialAssignment{MaterialID: line.Material, Quantity: line.Quantity}
	}

	cabinet, err := h.service.AssignMaterials(r.Context(), id, lines)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Materials assigned successfully", cabinet)
}

// UpdateCabinetMaterial records the caller's check of one material line.
// materialId is the id of the line, not of the material.
// @Router /cabinets/{id}/materials/{materialId} [patch]
func (h *CabinetHandler) UpdateCabinetMaterial(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	cabinetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	assignmentID, ok := pathID(w, r, "materialId")
	if !ok {
		return
	}

	var req UpdateCabinetMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	line, err := h.service.UpdateCabinetMaterial(r.Context(), cabinetID, assignmentID, userID, models.CabinetMaterialPatch{
		Checked: req.Checked,
		Missing: req.Missing,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Material updated successfully", line)
}

// @Router /cabinets/{id}/verifications [get]
func (h *CabinetHandler) ListVerifications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	verifications, err := h.service.ListVerifications(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "", verifications)
}

// @Router /cabinets/{id}/maintenance [post]
func (h *CabinetHandler) AddMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req MaintenanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cabinet, err := h.service.AddMaintenance(r.Context(), id, req.Date.value(), req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Maintenance entry added successfully", cabinet)
}

// GenerateQRCode creates the cabinet's QR code once
// @Router /generate-qr/{id} [post]
func (h *CabinetHandler) GenerateQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	qrCode, err := h.service.GenerateQRCode(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "QR Code generated successfully", qrCode)
}

// ScanCabinet stamps the cabinet's QR code as scanned
// @Router /cabinets/{id}/scan [post]
func (h *CabinetHandler) ScanCabinet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	qrCode, err := h.service.ScanCabinet(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "QR Code scanned successfully", qrCode)
}
