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

const materialRequestColumns = `id, material_id, project_id, cabinet_id, requested_quantity, status,
	created_by, fulfilled_at, created_at, updated_at`

type MaterialRequestRepository struct {
	pool *pgxpool.Pool
}

func NewMaterialRequestRepository(db *database.DB) *MaterialRequestRepository {
	return &MaterialRequestRepository{pool: db.Pool}
}

func (r *MaterialRequestRepository) Create(ctx context.Context, req *models.MaterialRequest) (*models.MaterialRequest, error) {
	req.ID = uuid.New()

	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	if req.Status == "" {
		req.Status = models.MaterialRequestPending
	}

	query := `
		INSERT INTO material_requests (id, material_id, project_id, cabinet_id, requested_quantity, status,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + materialRequestColumns

	var saved models.MaterialRequest
	err := r.pool.QueryRow(ctx, query,
		req.ID, req.MaterialID, req.ProjectID, req.CabinetID, req.RequestedQuantity, req.Status,
		req.CreatedBy, req.CreatedAt, req.UpdatedAt,
	).Scan(
		&saved.ID, &saved.MaterialID, &saved.ProjectID, &saved.CabinetID, &saved.RequestedQuantity,
		&saved.Status, &saved.CreatedBy, &saved.FulfilledAt, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &saved, nil
}

// TotalRequested sums the open (pending or approved) requests for a material.
func (r *MaterialRequestRepository) TotalRequested(ctx context.Context, materialID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(requested_quantity), 0)
		FROM material_requests
		WHERE material_id = $1 AND status IN ($2, $3)
	`

	var total int
	err := r.pool.QueryRow(ctx, query, materialID, models.MaterialRequestPending, models.MaterialRequestApproved).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum material requests: %w", err)
	}

	return total, nil
}
