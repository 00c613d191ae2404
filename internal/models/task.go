package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task statuses share the project status values.
type Task struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Priority    TaskPriority  `json:"priority"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	ProjectID   uuid.UUID     `json:"projectId"`
	EmployeeID  *uuid.UUID    `json:"employeeId,omitempty"`
	Notes       string        `json:"notes"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type TaskPatch struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
	Priority    *TaskPriority
	Deadline    *time.Time
	Notes       *string
}
