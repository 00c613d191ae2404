package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/elecpower/internal/database"
	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const materialColumns = `id, reference, designation, total_in_stock, status, created_at, updated_at`

type MaterialRepository struct {
	pool *pgxpool.Pool
}

func NewMaterialRepository(db *database.DB) *MaterialRepository {
	return &MaterialRepository{pool: db.Pool}
}

func scanMaterialRow(scanner rowScanner) (*models.Material, error) {
	var m models.Material

	err := scanner.Scan(&m.ID, &m.Reference, &m.Designation, &m.TotalInStock, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &m, nil
}

func scanMaterialRows(rows pgx.Rows) ([]*models.Material, error) {
	defer rows.Close()

	materials := make([]*models.Material, 0)
	for rows.Next() {
		m, err := scanMaterialRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return materials, nil
}

func (r *MaterialRepository) Create(ctx context.Context, m *models.Material) (*models.Material, error) {
	m.ID = uuid.New()

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if m.Status == "" {
		m.Status = models.MaterialStatusAvailable
	}

	query := `
		INSERT INTO materials (id, reference, designation, total_in_stock, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + materialColumns

	return scanMaterialRow(r.pool.QueryRow(ctx, query,
		m.ID, m.Reference, m.Designation, m.TotalInStock, m.Status, m.CreatedAt, m.UpdatedAt,
	))
}

func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`

	return scanMaterialRow(r.pool.QueryRow(ctx, query, id))
}

func (r *MaterialRepository) GetByReference(ctx context.Context, reference string) (*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE reference = $1`

	return scanMaterialRow(r.pool.QueryRow(ctx, query, reference))
}

// GetByIDs returns the materials matching ids; missing ids are skipped.
func (r *MaterialRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Material, error) {
	if len(ids) == 0 {
		return []*models.Material{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}

	return scanMaterialRows(rows)
}

func (r *MaterialRepository) List(ctx context.Context) ([]*models.Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY reference`)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}

	return scanMaterialRows(rows)
}

func (r *MaterialRepository) Update(ctx context.Context, m *models.Material) (*models.Material, error) {
	query := `
		UPDATE materials SET reference = $1, designation = $2, total_in_stock = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + materialColumns

	return scanMaterialRow(r.pool.QueryRow(ctx, query, m.Reference, m.Designation, m.TotalInStock, m.Status, m.ID))
}

func (r *MaterialRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MaterialStatus) (*models.Material, error) {
	query := `UPDATE materials SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + materialColumns

	return scanMaterialRow(r.pool.QueryRow(ctx, query, status, id))
}

func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const cabinetMaterialDetailQuery = `
	SELECT cm.id, cm.material_id, cm.quantity, cm.checked, cm.missing, cm.cabinet_id,
		m.reference, m.designation
	FROM cabinet_materials cm
	JOIN materials m ON m.id = cm.material_id
`

func scanCabinetMaterialDetails(rows pgx.Rows) ([]*models.CabinetMaterialDetail, error) {
	defer rows.Close()

	details := make([]*models.CabinetMaterialDetail, 0)
	for rows.Next() {
		var d models.CabinetMaterialDetail
		err := rows.Scan(&d.ID, &d.MaterialID, &d.Quantity, &d.Checked, &d.Missing, &d.CabinetID,
			&d.Reference, &d.Designation)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cabinet material: %w", err)
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return details, nil
}

// ListByCabinet returns the materials assigned to a cabinet with their
// assignment state.
func (r *MaterialRepository) ListByCabinet(ctx context.Context, cabinetID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	query := cabinetMaterialDetailQuery + ` WHERE cm.cabinet_id = $1 ORDER BY cm.position`

	rows, err := r.pool.Query(ctx, query, cabinetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cabinet materials: %w", err)
	}

	return scanCabinetMaterialDetails(rows)
}

// ListByProject returns the materials assigned to the project's cabinet.
func (r *MaterialRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	query := cabinetMaterialDetailQuery + `
		JOIN electrical_cabinets c ON c.id = cm.cabinet_id
		WHERE c.project_id = $1
		ORDER BY cm.position
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project materials: %w", err)
	}

	return scanCabinetMaterialDetails(rows)
}
