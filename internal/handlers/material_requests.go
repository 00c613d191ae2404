package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/google/uuid"
)

type MaterialRequestService interface {
	CreateRequest(ctx context.Context, callerID uuid.UUID, in services.MaterialRequestInput) (*models.MaterialRequest, error)
	TotalRequested(ctx context.Context, materialID uuid.UUID) (int, error)
}

// MaterialRequestHandler handles material requests raised from the field
type MaterialRequestHandler struct {
	service MaterialRequestService
}

func NewMaterialRequestHandler(service MaterialRequestService) *MaterialRequestHandler {
	return &MaterialRequestHandler{service: service}
}

type CreateMaterialRequestRequest struct {
	Material          *uuid.UUID `json:"material" validate:"required"`
	Project           *uuid.UUID `json:"project"`
	Cabinet           *uuid.UUID `json:"cabinet"`
	RequestedQuantity int        `json:"requestedQuantity"`
}

type TotalRequestedResponse struct {
	Success        bool `json:"success"`
	TotalRequested int  `json:"totalRequested"`
}

// @Router /material-request [post]
func (h *MaterialRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateMaterialRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	request, err := h.service.CreateRequest(r.Context(), userID, services.MaterialRequestInput{
		MaterialID:        *req.Material,
		ProjectID:         req.Project,
		CabinetID:         req.Cabinet,
		RequestedQuantity: req.RequestedQuantity,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Material request created successfully", request)
}

// TotalRequested sums the open requests for a material
// @Router /material-requests/total/{materialId} [get]
func (h *MaterialRequestHandler) TotalRequested(w http.ResponseWriter, r *http.Request) {
	materialID, ok := pathID(w, r, "materialId")
	if !ok {
		return
	}

	total, err := h.service.TotalRequested(r.Context(), materialID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TotalRequestedResponse{Success: true, TotalRequested: total})
}
