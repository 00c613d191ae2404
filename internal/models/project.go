package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "not started"
	ProjectStatusInProgress ProjectStatus = "in progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusNotStarted, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	Status              ProjectStatus `json:"status"`
	StartDate           time.Time     `json:"startDate"`
	EndDate             time.Time     `json:"endDate"`
	Destination         string        `json:"destination"`
	Employees           []uuid.UUID   `json:"employees"`
	Tasks               []uuid.UUID   `json:"tasks"`
	ElectricalCabinetID *uuid.UUID    `json:"electricalCabinetId,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// ProjectPatch holds the mutable project fields. A nil Employees leaves the
// employee set and every user mirror untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Destination *string
	Employees   *[]uuid.UUID
}

// ProjectSummary is the projection embedded in user detail responses.
type ProjectSummary struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Status      ProjectStatus `json:"status"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	Destination string        `json:"destination"`
}
