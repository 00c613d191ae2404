package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
)

// MaterialRequestRepository defines the interface for material request data access
type MaterialRequestRepository interface {
	Create(ctx context.Context, req *models.MaterialRequest) (*models.MaterialRequest, error)
	TotalRequested(ctx context.Context, materialID uuid.UUID) (int, error)
}

type MaterialRequestInput struct {
	MaterialID        uuid.UUID
	ProjectID         *uuid.UUID
	CabinetID         *uuid.UUID
	RequestedQuantity int
}

type MaterialRequestService struct {
	repo      MaterialRequestRepository
	materials MaterialRepository
	projects  ProjectRepository
	cabinets  CabinetRepository
	logger    *slog.Logger
}

func NewMaterialRequestService(repo MaterialRequestRepository, materials MaterialRepository, projects ProjectRepository, cabinets CabinetRepository, logger *slog.Logger) *MaterialRequestService {
	return &MaterialRequestService{
		repo:      repo,
		materials: materials,
		projects:  projects,
		cabinets:  cabinets,
		logger:    logger,
	}
}

// lookup maps a repository miss to a named not-found error.
func (s *MaterialRequestService) lookup(entity string, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return models.NewNotFoundError(entity)
	}
	s.logger.Error("failed to look up "+entity, slog.String("id", id.String()), slog.Any("error", err))
	return models.ErrInternalServer
}

// CreateRequest files a pending request on behalf of callerID.
func (s *MaterialRequestService) CreateRequest(ctx context.Context, callerID uuid.UUID, in MaterialRequestInput) (*models.MaterialRequest, error) {
	if in.MaterialID == uuid.Nil {
		return nil, models.NewValidationError("Material is required")
	}
	if in.RequestedQuantity < 1 {
		return nil, models.NewValidationError("Requested quantity must be at least 1")
	}

	_, err := s.materials.GetByID(ctx, in.MaterialID)
	if err := s.lookup("Material", in.MaterialID, err); err != nil {
		return nil, err
	}
	if in.ProjectID != nil {
		_, err := s.projects.GetByID(ctx, *in.ProjectID)
		if err := s.lookup("Project", *in.ProjectID, err); err != nil {
			return nil, err
		}
	}
	if in.CabinetID != nil {
		_, err := s.cabinets.GetByID(ctx, *in.CabinetID)
		if err := s.lookup("Electrical cabinet", *in.CabinetID, err); err != nil {
			return nil, err
		}
	}

	req, err := s.repo.Create(ctx, &models.MaterialRequest{
		MaterialID:        in.MaterialID,
		ProjectID:         in.ProjectID,
		CabinetID:         in.CabinetID,
		RequestedQuantity: in.RequestedQuantity,
		Status:            models.MaterialRequestPending,
		CreatedBy:         &callerID,
	})
	if err != nil {
		s.logger.Error("failed to create material request", slog.String("material_id", in.MaterialID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("material request created",
		slog.String("request_id", req.ID.String()),
		slog.String("material_id", in.MaterialID.String()),
		slog.Int("quantity", in.RequestedQuantity))

	return req, nil
}

// TotalRequested sums the open requests for a material. A material nobody
// requested, known or not, totals 0.
func (s *MaterialRequestService) TotalRequested(ctx context.Context, materialID uuid.UUID) (int, error) {
	total, err := s.repo.TotalRequested(ctx, materialID)
	if err != nil {
		s.logger.Error("failed to total material requests", slog.String("material_id", materialID.String()), slog.Any("error", err))
		return 0, models.ErrInternalServer
	}
	return total, nil
}
