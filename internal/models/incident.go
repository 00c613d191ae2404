package models

import (
	"time"

	"github.com/google/uuid"
)

type IncidentType string

const (
	IncidentMinor    IncidentType = "minor"
	IncidentMajor    IncidentType = "major"
	IncidentCritical IncidentType = "critical"
)

type IncidentStatus string

const (
	IncidentOpen     IncidentStatus = "open"
	IncidentInReview IncidentStatus = "in review"
	IncidentResolved IncidentStatus = "resolved"
)

type IncidentReport struct {
	ID              uuid.UUID      `json:"id"`
	Type            IncidentType   `json:"type"`
	Description     string         `json:"description"`
	Status          IncidentStatus `json:"status"`
	Date            time.Time      `json:"date"`
	EmployeeID      uuid.UUID      `json:"employeeId"`
	ProjectID       uuid.UUID      `json:"projectId"`
	Images          []string       `json:"images"`
	ResolutionNotes string         `json:"resolutionNotes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
