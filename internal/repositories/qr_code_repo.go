package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/elecpower/internal/database"
	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const qrCodeColumns = `id, code, data, last_scanned_at, status, project_id, cabinet_id, created_at, updated_at`

type QRCodeRepository struct {
	pool *pgxpool.Pool
}

func NewQRCodeRepository(db *database.DB) *QRCodeRepository {
	return &QRCodeRepository{pool: db.Pool}
}

func scanQRCodeRow(scanner rowScanner) (*models.QRCode, error) {
	var qr models.QRCode

	err := scanner.Scan(&qr.ID, &qr.Code, &qr.Data, &qr.LastScannedAt, &qr.Status, &qr.ProjectID,
		&qr.ElectricalCabinetID, &qr.CreatedAt, &qr.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &qr, nil
}

func (r *QRCodeRepository) Create(ctx context.Context, qr *models.QRCode) (*models.QRCode, error) {
	qr.ID = uuid.New()

	now := time.Now().UTC()
	qr.CreatedAt = now
	qr.UpdatedAt = now

	if qr.Status == "" {
		qr.Status = models.QRCodeStatusActive
	}

	query := `
		INSERT INTO qr_codes (id, code, data, status, project_id, cabinet_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + qrCodeColumns

	return scanQRCodeRow(r.pool.QueryRow(ctx, query,
		qr.ID, qr.Code, qr.Data, qr.Status, qr.ProjectID, qr.ElectricalCabinetID, qr.CreatedAt, qr.UpdatedAt,
	))
}

func (r *QRCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	return scanQRCodeRow(r.pool.QueryRow(ctx, `SELECT `+qrCodeColumns+` FROM qr_codes WHERE id = $1`, id))
}

// MarkScanned stamps the last scan time of a code.
func (r *QRCodeRepository) MarkScanned(ctx context.Context, id uuid.UUID, at time.Time) (*models.QRCode, error) {
	query := `UPDATE qr_codes SET last_scanned_at = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + qrCodeColumns

	return scanQRCodeRow(r.pool.QueryRow(ctx, query, at, id))
}
