package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/pkg/qr"
	"github.com/google/uuid"
)

// CabinetRepository defines the interface for electrical cabinet data access
type CabinetRepository interface {
	Create(ctx context.Context, c *models.ElectricalCabinet) (*models.ElectricalCabinet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error)
	List(ctx context.Context) ([]*models.ElectricalCabinet, error)
	Update(ctx context.Context, c *models.ElectricalCabinet) (*models.ElectricalCabinet, error)
	SetQRCode(ctx context.Context, id, qrCodeID uuid.UUID) error
	ReplaceMaterials(ctx context.Context, id uuid.UUID, lines []models.MaterialAssignment) ([]*models.CabinetMaterial, error)
	UpdateMaterial(ctx context.Context, cabinetID, assignmentID uuid.UUID, patch models.CabinetMaterialPatch) (*models.CabinetMaterial, error)
	AddMaintenance(ctx context.Context, cabinetID uuid.UUID, entry *models.MaintenanceEntry) (*models.MaintenanceEntry, error)
	AddVerification(ctx context.Context, v *models.MaterialVerification) (*models.MaterialVerification, error)
	ListVerifications(ctx context.Context, cabinetID uuid.UUID) ([]*models.MaterialVerification, error)
}

// QRCodeRepository defines the interface for QR code data access
type QRCodeRepository interface {
	Create(ctx context.Context, code *models.QRCode) (*models.QRCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error)
	MarkScanned(ctx context.Context, id uuid.UUID, at time.Time) (*models.QRCode, error)
}

// QREncoder renders a payload as an image data URL.
type QREncoder interface {
	Encode(payload string) (string, error)
}

type CabinetInput struct {
	Name             string
	Description      string
	Status           models.CabinetStatus
	InstallationDate *time.Time
}

// CabinetService handles electrical cabinets, their material lists,
// maintenance log and QR code.
type CabinetService struct {
	repo          CabinetRepository
	qrCodes       QRCodeRepository
	projects      ProjectRepository
	materials     MaterialRepository
	encoder       QREncoder
	publicBaseURL string
	logger        *slog.Logger
	now           func() time.Time
}

func NewCabinetService(repo CabinetRepository, qrCodes QRCodeRepository, projects ProjectRepository, materials MaterialRepository, encoder QREncoder, publicBaseURL string, logger *slog.Logger) *CabinetService {
	return &CabinetService{
		repo:          repo,
		qrCodes:       qrCodes,
		projects:      projects,
		materials:     materials,
		encoder:       encoder,
		publicBaseURL: publicBaseURL,
		logger:        logger,
		now:           time.Now,
	}
}

func validCabinetStatus(s models.CabinetStatus) bool {
	switch s {
	case models.CabinetStatusInstalled, models.CabinetStatusUnderMaintenance, models.CabinetStatusDecommissioned:
		return true
	}
	return false
}

func (s *CabinetService) getCabinet(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error) {
	cabinet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Electrical cabinet")
		}
		s.logger.Error("failed to get cabinet", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return cabinet, nil
}

func (s *CabinetService) getProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
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

// CreateCabinet creates the single cabinet of a project.
func (s *CabinetService) CreateCabinet(ctx context.Context, projectID uuid.UUID, in CabinetInput) (*models.ElectricalCabinet, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.ElectricalCabinetID != nil {
		return nil, models.NewValidationError("Project already has an electrical cabinet")
	}

	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return nil, models.NewValidationError("Cabinet name is required")
	}
	if in.Status == "" {
		in.Status = models.CabinetStatusInstalled
	}
	if !validCabinetStatus(in.Status) {
		return nil, models.NewValidationError("Invalid cabinet status")
	}

	cabinet, err := s.repo.Create(ctx, &models.ElectricalCabinet{
		Name:             in.Name,
		Description:      strings.TrimSpace(in.Description),
		Status:           in.Status,
		InstallationDate: in.InstallationDate,
		ProjectID:        projectID,
	})
	if err != nil {
		s.logger.Error("failed to create cabinet", slog.String("project_id", projectID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.projects.SetCabinet(ctx, projectID, &cabinet.ID); err != nil {
		s.logger.Error("failed to link cabinet to project",
			slog.String("project_id", projectID.String()),
			slog.String("cabinet_id", cabinet.ID.String()),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("cabinet created", slog.String("cabinet_id", cabinet.ID.String()), slog.String("project_id", projectID.String()))
	return cabinet, nil
}

func (s *CabinetService) GetCabinet(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error) {
	return s.getCabinet(ctx, id)
}

func (s *CabinetService) ListCabinets(ctx context.Context) ([]*models.ElectricalCabinet, error) {
	cabinets, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list cabinets", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return cabinets, nil
}

// GetProjectCabinet returns the cabinet linked to a project.
func (s *CabinetService) GetProjectCabinet(ctx context.Context, projectID uuid.UUID) (*models.ElectricalCabinet, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ElectricalCabinetID == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return s.getCabinet(ctx, *project.ElectricalCabinetID)
}

func (s *CabinetService) UpdateCabinet(ctx context.Context, id uuid.UUID, patch models.CabinetPatch) (*models.ElectricalCabinet, error) {
	cabinet, err := s.getCabinet(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if cabinet.Name = strings.TrimSpace(*patch.Name); cabinet.Name == "" {
			return nil, models.NewValidationError("Cabinet name cannot be empty")
		}
	}
	if patch.Description != nil {
		cabinet.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !validCabinetStatus(*patch.Status) {
			return nil, models.NewValidationError("Invalid cabinet status")
		}
		cabinet.Status = *patch.Status
	}
	if patch.InstallationDate != nil {
		cabinet.InstallationDate = patch.InstallationDate
	}

	updated, err := s.repo.Update(ctx, cabinet)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Electrical cabinet")
		}
		s.logger.Error("failed to update cabinet", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

// AssignMaterials replaces the cabinet's material list.
func (s *CabinetService) AssignMaterials(ctx context.Context, id uuid.UUID, lines []models.MaterialAssignment) (*models.ElectricalCabinet, error) {
	cabinet, err := s.getCabinet(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, models.NewValidationError("Quantity must be at least 1")
		}
		ids = append(ids, line.MaterialID)
	}
	ids = dedupeIDs(ids)

	found, err := s.materials.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load materials", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if len(found) != len(ids) {
		return nil, models.NewNotFoundError("Material")
	}

	materials, err := s.repo.ReplaceMaterials(ctx, id, lines)
	if err != nil {
		s.logger.Error("failed to assign materials", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	cabinet.Materials = materials
	s.logger.Info("cabinet materials assigned", slog.String("cabinet_id", id.String()), slog.Int("lines", len(lines)))
	return cabinet, nil
}

// UpdateCabinetMaterial records a check of one material line by the caller.
func (s *CabinetService) UpdateCabinetMaterial(ctx context.Context, cabinetID, assignmentID, callerID uuid.UUID, patch models.CabinetMaterialPatch) (*models.CabinetMaterial, error) {
	if patch.Checked == nil && patch.Missing == nil {
		return nil, models.NewValidationError("Either checked or missing must be provided")
	}
	if patch.Missing != nil && *patch.Missing < 0 {
		return nil, models.NewValidationError("Missing quantity cannot be negative")
	}

	if _, err := s.getCabinet(ctx, cabinetID); err != nil {
		return nil, err
	}

	line, err := s.repo.UpdateMaterial(ctx, cabinetID, assignmentID, patch)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Material in cabinet")
		}
		s.logger.Error("failed to update cabinet material",
			slog.String("cabinet_id", cabinetID.String()),
			slog.String("assignment_id", assignmentID.String()),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	_, err = s.repo.AddVerification(ctx, &models.MaterialVerification{
		CabinetID:       cabinetID,
		MaterialID:      line.MaterialID,
		EmployeeID:      callerID,
		Verified:        line.Checked,
		MissingQuantity: line.Missing,
	})
	if err != nil {
		s.logger.Error("failed to record material verification",
			slog.String("cabinet_id", cabinetID.String()),
			slog.String("employee_id", callerID.String()),
			slog.Any("error", err))
	}

	return line, nil
}

func (s *CabinetService) ListVerifications(ctx context.Context, cabinetID uuid.UUID) ([]*models.MaterialVerification, error) {
	if _, err := s.getCabinet(ctx, cabinetID); err != nil {
		return nil, err
	}

	verifications, err := s.repo.ListVerifications(ctx, cabinetID)
	if err != nil {
		s.logger.Error("failed to list verifications", slog.String("cabinet_id", cabinetID.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return verifications, nil
}

// AddMaintenance appends an entry to the cabinet's maintenance history.
func (s *CabinetService) AddMaintenance(ctx context.Context, id uuid.UUID, date time.Time, description string) (*models.ElectricalCabinet, error) {
	description = strings.TrimSpace(description)
	if date.IsZero() || description == "" {
		return nil, models.NewValidationError("Date and description are required")
	}

	cabinet, err := s.getCabinet(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.AddMaintenance(ctx, id, &models.MaintenanceEntry{Date: date, Description: description})
	if err != nil {
		s.logger.Error("failed to add maintenance entry", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	cabinet.MaintenanceHistory = append(cabinet.MaintenanceHistory, entry)
	return cabinet, nil
}

// GenerateQRCode creates the cabinet's QR code. An existing code is never replaced.
func (s *CabinetService) GenerateQRCode(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	cabinet, err := s.getCabinet(ctx, id)
	if err != nil {
		return nil, err
	}

	if cabinet.QRCodeID != nil {
		return nil, models.NewConflictError("QR Code already exists")
	}

	payload := qr.CabinetURL(s.publicBaseURL, cabinet.ID.String())
	data, err := s.encoder.Encode(payload)
	if err != nil {
		s.logger.Error("failed to encode QR code", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	code, err := s.qrCodes.Create(ctx, &models.QRCode{
		Code:                cabinet.ID.String(),
		Data:                data,
		Status:              models.QRCodeStatusActive,
		ProjectID:           cabinet.ProjectID,
		ElectricalCabinetID: cabinet.ID,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewConflictError("QR Code already exists")
		}
		s.logger.Error("failed to store QR code", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.repo.SetQRCode(ctx, cabinet.ID, code.ID); err != nil {
		s.logger.Error("failed to link QR code", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("QR code generated", slog.String("cabinet_id", id.String()), slog.String("qr_code_id", code.ID.String()))
	return code, nil
}

// ScanCabinet stamps the scan time on the cabinet's QR code.
func (s *CabinetService) ScanCabinet(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	cabinet, err := s.getCabinet(ctx, id)
	if err != nil {
		return nil, err
	}

	if cabinet.QRCodeID == nil {
		return nil, models.NewValidationError("Cabinet has no QR code")
	}

	code, err := s.qrCodes.MarkScanned(ctx, *cabinet.QRCodeID, s.now().UTC())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("QR Code")
		}
		s.logger.Error("failed to record scan", slog.String("cabinet_id", id.String()), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return code, nil
}
