package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/elecpower/internal/database"
	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const incidentColumns = `id, type, description, status, date, employee_id, project_id, images,
	resolution_notes, created_at, updated_at`

type IncidentRepository struct {
	pool *pgxpool.Pool
}

func NewIncidentRepository(db *database.DB) *IncidentRepository {
	return &IncidentRepository{pool: db.Pool}
}

func scanIncidentRow(scanner rowScanner) (*models.IncidentReport, error) {
	var inc models.IncidentReport

	err := scanner.Scan(&inc.ID, &inc.Type, &inc.Description, &inc.Status, &inc.Date, &inc.EmployeeID,
		&inc.ProjectID, &inc.Images, &inc.ResolutionNotes, &inc.CreatedAt, &inc.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if inc.Images == nil {
		inc.Images = []string{}
	}

	return &inc, nil
}

func (r *IncidentRepository) Create(ctx context.Context, inc *models.IncidentReport) (*models.IncidentReport, error) {
	inc.ID = uuid.New()

	now := time.Now().UTC()
	inc.CreatedAt = now
	inc.UpdatedAt = now

	if inc.Status == "" {
		inc.Status = models.IncidentOpen
	}
	if inc.Date.IsZero() {
		inc.Date = now
	}
	if inc.Images == nil {
		inc.Images = []string{}
	}

	query := `
		INSERT INTO incident_reports (id, type, description, status, date, employee_id, project_id, images,
			resolution_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + incidentColumns

	return scanIncidentRow(r.pool.QueryRow(ctx, query,
		inc.ID, inc.Type, inc.Description, inc.Status, inc.Date, inc.EmployeeID, inc.ProjectID, inc.Images,
		inc.ResolutionNotes, inc.CreatedAt, inc.UpdatedAt,
	))
}

func (r *IncidentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.IncidentReport, error) {
	query := `SELECT ` + incidentColumns + ` FROM incident_reports WHERE project_id = $1 ORDER BY date DESC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.IncidentReport, 0)
	for rows.Next() {
		inc, err := scanIncidentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return incidents, nil
}

// UpdateStatus moves an incident through its review workflow. Empty notes
// keep the stored resolution notes.
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus, notes string) (*models.IncidentReport, error) {
	query := `
		UPDATE incident_reports SET status = $1, resolution_notes = COALESCE(NULLIF($2, ''), resolution_notes),
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + incidentColumns

	return scanIncidentRow(r.pool.QueryRow(ctx, query, status, notes, id))
}
