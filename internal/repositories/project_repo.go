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

const projectColumns = `id, name, description, status, start_date, end_date, destination,
	employee_ids, task_ids, cabinet_id, created_at, updated_at`

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{pool: db.Pool}
}

func scanProjectRow(scanner rowScanner) (*models.Project, error) {
	var p models.Project

	err := scanner.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.Destination,
		&p.Employees, &p.Tasks, &p.ElectricalCabinetID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if p.Employees == nil {
		p.Employees = []uuid.UUID{}
	}
	if p.Tasks == nil {
		p.Tasks = []uuid.UUID{}
	}

	return &p, nil
}

func scanProjectRows(rows pgx.Rows) ([]*models.Project, error) {
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.ID = uuid.New()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if p.Status == "" {
		p.Status = models.ProjectStatusNotStarted
	}
	if p.Employees == nil {
		p.Employees = []uuid.UUID{}
	}
	if p.Tasks == nil {
		p.Tasks = []uuid.UUID{}
	}

	query := `
		INSERT INTO projects (id, name, description, status, start_date, end_date, destination,
			employee_ids, task_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + projectColumns

	return scanProjectRow(r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, p.Destination,
		p.Employees, p.Tasks, p.CreatedAt, p.UpdatedAt,
	))
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	return scanProjectRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}

	return scanProjectRows(rows)
}

// Update writes every editable column of p, including the employee set.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	query := `
		UPDATE projects SET name = $1, description = $2, status = $3, start_date = $4, end_date = $5,
			destination = $6, employee_ids = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + projectColumns

	return scanProjectRow(r.pool.QueryRow(ctx, query,
		p.Name, p.Description, p.Status, p.StartDate, p.EndDate, p.Destination, p.Employees, p.ID,
	))
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetCabinet links (or with nil, unlinks) the project's electrical cabinet.
func (r *ProjectRepository) SetCabinet(ctx context.Context, id uuid.UUID, cabinetID *uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE projects SET cabinet_id = $1, updated_at = NOW() WHERE id = $2`, cabinetID, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) AppendTask(ctx context.Context, id, taskID uuid.UUID) error {
	query := `
		UPDATE projects SET task_ids = array_append(task_ids, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(task_ids))
	`
	if _, err := r.pool.Exec(ctx, query, taskID, id); err != nil {
		return fmt.Errorf("failed to append task: %w", database.MapPostgresError(err))
	}
	return nil
}

func (r *ProjectRepository) RemoveTask(ctx context.Context, id, taskID uuid.UUID) error {
	query := `UPDATE projects SET task_ids = array_remove(task_ids, $1), updated_at = NOW() WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, taskID, id); err != nil {
		return fmt.Errorf("failed to remove task: %w", database.MapPostgresError(err))
	}
	return nil
}

// RemoveEmployee pulls userID out of every project's employee set.
func (r *ProjectRepository) RemoveEmployee(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE projects SET employee_ids = array_remove(employee_ids, $1), updated_at = NOW()
		WHERE $1 = ANY(employee_ids)
	`
	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to remove employee from projects: %w", database.MapPostgresError(err))
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListSummaries returns the summary projection of the given projects.
func (r *ProjectRepository) ListSummaries(ctx context.Context, ids []uuid.UUID) ([]*models.ProjectSummary, error) {
	summaries := make([]*models.ProjectSummary, 0, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	query := `
		SELECT id, name, status, start_date, end_date, destination
		FROM projects WHERE id = ANY($1) ORDER BY start_date
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query project summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ProjectSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Status, &s.StartDate, &s.EndDate, &s.Destination); err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return summaries, nil
}
