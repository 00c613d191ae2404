package models

import (
	"time"

	"github.com/google/uuid"
)

type CabinetStatus string

const (
	CabinetStatusInstalled        CabinetStatus = "installed"
	CabinetStatusUnderMaintenance CabinetStatus = "under maintenance"
	CabinetStatusDecommissioned   CabinetStatus = "decommissioned"
)

type ElectricalCabinet struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Status             CabinetStatus       `json:"status"`
	InstallationDate   *time.Time          `json:"installationDate,omitempty"`
	ProjectID          uuid.UUID           `json:"projectId"`
	QRCodeID           *uuid.UUID          `json:"qrCodeId,omitempty"`
	Materials          []*CabinetMaterial  `json:"materials"`
	MaintenanceHistory []*MaintenanceEntry `json:"maintenanceHistory"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// CabinetMaterial is a quantity-annotated material assignment owned by a
// cabinet. ID identifies the assignment, not the material.
type CabinetMaterial struct {
	ID         uuid.UUID `json:"id"`
	MaterialID uuid.UUID `json:"material"`
	Quantity   int       `json:"quantity"`
	Checked    bool      `json:"checked"`
	Missing    int       `json:"missing"`
}

type MaintenanceEntry struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

type CabinetPatch struct {
	Name             *string
	Description      *string
	Status           *CabinetStatus
	InstallationDate *time.Time
}

// MaterialAssignment is one requested line of an assign-materials call.
type MaterialAssignment struct {
	MaterialID uuid.UUID
	Quantity   int
}

// CabinetMaterialPatch updates the check state of one assignment.
type CabinetMaterialPatch struct {
	Checked *bool
	Missing *int
}

// CabinetMaterialDetail joins an assignment with its material record.
type CabinetMaterialDetail struct {
	CabinetMaterial
	CabinetID   uuid.UUID `json:"cabinetId"`
	Reference   string    `json:"reference"`
	Designation string    `json:"designation"`
}

// MaterialVerification records an employee checking a cabinet material.
type MaterialVerification struct {
	ID              uuid.UUID `json:"id"`
	CabinetID       uuid.UUID `json:"cabinetId"`
	MaterialID      uuid.UUID `json:"materialId"`
	EmployeeID      uuid.UUID `json:"employeeId"`
	Verified        bool      `json:"verified"`
	MissingQuantity int       `json:"missingQuantity"`
	CreatedAt       time.Time `json:"createdAt"`
}

type QRCodeStatus string

const (
	QRCodeStatusActive   QRCodeStatus = "active"
	QRCodeStatusInactive QRCodeStatus = "inactive"
)

type QRCode struct {
	ID                  uuid.UUID    `json:"id"`
	Code                string       `json:"code"`
	Data                string       `json:"data"`
	LastScannedAt       *time.Time   `json:"lastScannedAt,omitempty"`
	Status              QRCodeStatus `json:"status"`
	ProjectID           uuid.UUID    `json:"projectId"`
	ElectricalCabinetID uuid.UUID    `json:"electricalCabinet"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}
