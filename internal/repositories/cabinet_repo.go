package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/elecpower/internal/database"
	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cabinetColumns = `id, name, description, status, installation_date, project_id, qr_code_id,
	created_at, updated_at`

const cabinetMaterialColumns = `id, material_id, quantity, checked, missing`

type CabinetRepository struct {
	db *database.DB
}

func NewCabinetRepository(db *database.DB) *CabinetRepository {
	return &CabinetRepository{db: db}
}

func scanCabinetRow(scanner rowScanner) (*models.ElectricalCabinet, error) {
	var c models.ElectricalCabinet

	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.Status, &c.InstallationDate, &c.ProjectID, &c.QRCodeID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	c.Materials = []*models.CabinetMaterial{}
	c.MaintenanceHistory = []*models.MaintenanceEntry{}

	return &c, nil
}

func scanCabinetMaterialRow(scanner rowScanner) (*models.CabinetMaterial, error) {
	var cm models.CabinetMaterial

	if err := scanner.Scan(&cm.ID, &cm.MaterialID, &cm.Quantity, &cm.Checked, &cm.Missing); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &cm, nil
}

// loadChildren fills the material list and maintenance history of c.
func (r *CabinetRepository) loadChildren(ctx context.Context, c *models.ElectricalCabinet) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+cabinetMaterialColumns+` FROM cabinet_materials WHERE cabinet_id = $1 ORDER BY position`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to query cabinet materials: %w", err)
	}

	for rows.Next() {
		cm, err := scanCabinetMaterialRow(rows)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan cabinet material: %w", err)
		}
		c.Materials = append(c.Materials, cm)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx,
		`SELECT id, date, description FROM cabinet_maintenance WHERE cabinet_id = $1 ORDER BY created_at`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to query maintenance history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.MaintenanceEntry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Description); err != nil {
			return fmt.Errorf("failed to scan maintenance entry: %w", err)
		}
		c.MaintenanceHistory = append(c.MaintenanceHistory, &entry)
	}

	return rows.Err()
}

func (r *CabinetRepository) Create(ctx context.Context, c *models.ElectricalCabinet) (*models.ElectricalCabinet, error) {
	c.ID = uuid.New()

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if c.Status == "" {
		c.Status = models.CabinetStatusInstalled
	}

	query := `
		INSERT INTO electrical_cabinets (id, name, description, status, installation_date, project_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + cabinetColumns

	return scanCabinetRow(r.db.Pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Description, c.Status, c.InstallationDate, c.ProjectID, c.CreatedAt, c.UpdatedAt,
	))
}

func (r *CabinetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error) {
	query := `SELECT ` + cabinetColumns + ` FROM electrical_cabinets WHERE id = $1`

	c, err := scanCabinetRow(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *CabinetRepository) List(ctx context.Context) ([]*models.ElectricalCabinet, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+cabinetColumns+` FROM electrical_cabinets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cabinets: %w", err)
	}

	cabinets := make([]*models.ElectricalCabinet, 0)
	for rows.Next() {
		c, err := scanCabinetRow(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cabinet: %w", err)
		}
		cabinets = append(cabinets, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, c := range cabinets {
		if err := r.loadChildren(ctx, c); err != nil {
			return nil, err
		}
	}

	return cabinets, nil
}

func (r *CabinetRepository) Update(ctx context.Context, c *models.ElectricalCabinet) (*models.ElectricalCabinet, error) {
	query := `
		UPDATE electrical_cabinets SET name = $1, description = $2, status = $3, installation_date = $4,
			updated_at = NOW()
		WHERE id = $5
		RETURNING ` + cabinetColumns

	updated, err := scanCabinetRow(r.db.Pool.QueryRow(ctx, query,
		c.Name, c.Description, c.Status, c.InstallationDate, c.ID,
	))
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *CabinetRepository) SetQRCode(ctx context.Context, id, qrCodeID uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE electrical_cabinets SET qr_code_id = $1, updated_at = NOW() WHERE id = $2`, qrCodeID, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ReplaceMaterials swaps the whole material list of a cabinet in one
// transaction. Check state starts fresh for every line.
func (r *CabinetRepository) ReplaceMaterials(ctx context.Context, id uuid.UUID, lines []models.MaterialAssignment) ([]*models.CabinetMaterial, error) {
	materials := make([]*models.CabinetMaterial, 0, len(lines))

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cabinet_materials WHERE cabinet_id = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}

		query := `
			INSERT INTO cabinet_materials (id, cabinet_id, material_id, quantity, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + cabinetMaterialColumns

		for i, line := range lines {
			cm, err := scanCabinetMaterialRow(tx.QueryRow(ctx, query, uuid.New(), id, line.MaterialID, line.Quantity, i))
			if err != nil {
				return err
			}
			materials = append(materials, cm)
		}

		if _, err := tx.Exec(ctx, `UPDATE electrical_cabinets SET updated_at = NOW() WHERE id = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return materials, nil
}

// UpdateMaterial applies patch to one assignment of the cabinet. Returns
// models.ErrNotFound when the assignment does not belong to the cabinet.
func (r *CabinetRepository) UpdateMaterial(ctx context.Context, cabinetID, assignmentID uuid.UUID, patch models.CabinetMaterialPatch) (*models.CabinetMaterial, error) {
	query := `
		UPDATE cabinet_materials SET checked = COALESCE($1, checked), missing = COALESCE($2, missing)
		WHERE id = $3 AND cabinet_id = $4
		RETURNING ` + cabinetMaterialColumns

	return scanCabinetMaterialRow(r.db.Pool.QueryRow(ctx, query, patch.Checked, patch.Missing, assignmentID, cabinetID))
}

func (r *CabinetRepository) AddMaintenance(ctx context.Context, cabinetID uuid.UUID, entry *models.MaintenanceEntry) (*models.MaintenanceEntry, error) {
	entry.ID = uuid.New()

	query := `
		INSERT INTO cabinet_maintenance (id, cabinet_id, date, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date, description
	`

	var saved models.MaintenanceEntry
	err := r.db.Pool.QueryRow(ctx, query, entry.ID, cabinetID, entry.Date, entry.Description).
		Scan(&saved.ID, &saved.Date, &saved.Description)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &saved, nil
}

func (r *CabinetRepository) AddVerification(ctx context.Context, v *models.MaterialVerification) (*models.MaterialVerification, error) {
	v.ID = uuid.New()
	v.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO material_verifications (id, cabinet_id, material_id, employee_id, verified, missing_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query, v.ID, v.CabinetID, v.MaterialID, v.EmployeeID, v.Verified, v.MissingQuantity, v.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return v, nil
}

func (r *CabinetRepository) ListVerifications(ctx context.Context, cabinetID uuid.UUID) ([]*models.MaterialVerification, error) {
	query := `
		SELECT id, cabinet_id, material_id, employee_id, verified, missing_quantity, created_at
		FROM material_verifications WHERE cabinet_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, cabinetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query verifications: %w", err)
	}
	defer rows.Close()

	verifications := make([]*models.MaterialVerification, 0)
	for rows.Next() {
		var v models.MaterialVerification
		if err := rows.Scan(&v.ID, &v.CabinetID, &v.MaterialID, &v.EmployeeID, &v.Verified, &v.MissingQuantity, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		verifications = append(verifications, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return verifications, nil
}
