package models

import (
	"time"

	"github.com/google/uuid"
)

type MaterialStatus string

const (
	MaterialStatusAvailable  MaterialStatus = "available"
	MaterialStatusOutOfStock MaterialStatus = "out of stock"
	MaterialStatusReserved   MaterialStatus = "reserved"
)

type Material struct {
	ID           uuid.UUID      `json:"id"`
	Reference    string         `json:"reference"`
	Designation  string         `json:"designation"`
	TotalInStock int            `json:"totalInStock"`
	Status       MaterialStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type MaterialPatch struct {
	Reference    *string
	Designation  *string
	TotalInStock *int
	Status       *MaterialStatus
}

type MaterialRequestStatus string

const (
	MaterialRequestPending   MaterialRequestStatus = "pending"
	MaterialRequestApproved  MaterialRequestStatus = "approved"
	MaterialRequestFulfilled MaterialRequestStatus = "fulfilled"
)

type MaterialRequest struct {
	ID                uuid.UUID             `json:"id"`
	MaterialID        uuid.UUID             `json:"material"`
	ProjectID         *uuid.UUID            `json:"project,omitempty"`
	CabinetID         *uuid.UUID            `json:"cabinet,omitempty"`
	RequestedQuantity int                   `json:"requestedQuantity"`
	Status            MaterialRequestStatus `json:"status"`
	CreatedBy         *uuid.UUID            `json:"createdBy,omitempty"`
	FulfilledAt       *time.Time            `json:"fulfilledAt,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}
