package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
)

// MaterialRepository defines the interface for material data access
type MaterialRepository interface {
	Create(ctx context.Context, m *models.Material) (*models.Material, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error)
	GetByReference(ctx context.Context, reference string) (*models.Material, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Material, error)
	List(ctx context.Context) ([]*models.Material, error)
	Update(ctx context.Context, m *models.Material) (*models.Material, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MaterialStatus) (*models.Material, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCabinet(ctx context.Context, cabinetID uuid.UUID) ([]*models.CabinetMaterialDetail, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.CabinetMaterialDetail, error)
}

type MaterialInput struct {
	Reference    string
	Designation  string
	TotalInStock int
	Status       models.MaterialStatus
}

// MaterialService handles the materials inventory.
type MaterialService struct {
	repo     MaterialRepository
	projects ProjectRepository
	cabinets CabinetRepository
	logger   *slog.Logger
}

func NewMaterialService(repo MaterialRepository, projects ProjectRepository, cabinets CabinetRepository, logger *slog.Logger) *MaterialService {
	return &MaterialService{
		repo:     repo,
		projects: projects,
		cabinets: cabinets,
		logger:   logger,
	}
}

func validMaterialStatus(s models.MaterialStatus) bool {
	switch s {
	case models.MaterialStatusAvailable, models.MaterialStatusOutOfStock, models.MaterialStatusReserved:
		return true
	}
	return false
}

func (s *MaterialService) getMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	material, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Material")
		}
		s.logger.Error("failed to get material", slog.String("material_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return material, nil
}

// ensureReferenceFree fails when another material already uses reference.
func (s *MaterialService) ensureReferenceFree(ctx context.Context, reference string, self uuid.UUID) error {
	existing, err := s.repo.GetByReference(ctx, reference)
	if err == nil && existing.ID != self {
		return models.NewValidationError("Reference already exists")
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up reference", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

func (s *MaterialService) CreateMaterial(ctx context.Context, in MaterialInput) (*models.Material, error) {
	in.Reference = strings.TrimSpace(in.Reference)
	in.Designation = strings.TrimSpace(in.Designation)

	if in.Reference == "" || in.Designation == "" {
		return nil, models.NewValidationError("Reference and designation are required")
	}
	if in.TotalInStock < 0 {
		return nil, models.NewValidationError("Total in stock cannot be negative")
	}
	if in.Status == "" {
		in.Status = models.MaterialStatusAvailable
	}
	if !validMaterialStatus(in.Status) {
		return nil, models.NewValidationError("Invalid material status")
	}

	if err := s.ensureReferenceFree(ctx, in.Reference, uuid.Nil); err != nil {
		return nil, err
	}

	material, err := s.repo.Create(ctx, &models.Material{
		Reference:    in.Reference,
		Designation:  in.Designation,
		TotalInStock: in.TotalInStock,
		Status:       in.Status,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewValidationError("Reference already exists")
		}
		s.logger.Error("failed to create material", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("material created", slog.String("material_id", material.ID.String()))
	return material, nil
}

func (s *MaterialService) GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	return s.getMaterial(ctx, id)
}

func (s *MaterialService) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	materials, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list materials", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return materials, nil
}

func (s *MaterialService) UpdateMaterial(ctx context.Context, id uuid.UUID, patch models.MaterialPatch) (*models.Material, error) {
	material, err := s.getMaterial(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Reference != nil {
		reference := strings.TrimSpace(*patch.Reference)
		if reference == "" {
			return nil, models.NewValidationError("Reference cannot be empty")
		}
		if reference != material.Reference {
			if err := s.ensureReferenceFree(ctx, reference, material.ID); err != nil {
				return nil, err
			}
		}
		material.Reference = reference
	}
	if patch.Designation != nil {
		if material.Designation = strings.TrimSpace(*patch.Designation); material.Designation == "" {
			return nil, models.NewValidationError("Designation cannot be empty")
		}
	}
	if patch.TotalInStock != nil {
		if *patch.TotalInStock < 0 {
			return nil, models.NewValidationError("Total in stock cannot be negative")
		}
		material.TotalInStock = *patch.TotalInStock
	}
	if patch.Status != nil {
		if !validMaterialStatus(*patch.Status) {
			return nil, models.NewValidationError("Invalid material status")
		}
		material.Status = *patch.Status
	}

	updated, err := s.repo.Update(ctx, material)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			return nil, models.NewValidationError("Reference already exists")
		case errors.Is(err, models.ErrNotFound):
			return nil, models.NewNotFoundError("Material")
		}
		s.logger.Error("failed to update material", slog.String("material_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

func (s *MaterialService) UpdateMaterialStatus(ctx context.Context, id uuid.UUID, status models.MaterialStatus) (*models.Material, error) {
	if !validMaterialStatus(status) {
		return nil, models.NewValidationError("Invalid material status")
	}

	material, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Material")
		}
		s.logger.Error("failed to update material status", slog.String("material_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return material, nil
}

// DeleteMaterial removes a material, its cabinet assignments and its requests.
func (s *MaterialService) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("Material")
		}
		s.logger.Error("failed to delete material", slog.String("material_id", id.String()), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("material deleted", slog.String("material_id", id.String()))
	return nil
}

// ListProjectMaterials returns the materials assigned to the project's cabinet.
func (s *MaterialService) ListProjectMaterials(ctx context.Context, projectID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Project")
		}
		s.logger.Error("failed to get project", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	materials, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to list project materials", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return materials, nil
}

func (s *MaterialService) ListCabinetMaterials(ctx context.Context, cabinetID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	if _, err := s.cabinets.GetByID(ctx, cabinetID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Electrical cabinet")
		}
		s.logger.Error("failed to get cabinet", slog.String("cabinet_id", cabinetID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	materials, err := s.repo.ListByCabinet(ctx, cabinetID)
	if err != nil {
		s.logger.Error("failed to list cabinet materials", slog.String("cabinet_id", cabinetID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return materials, nil
}
