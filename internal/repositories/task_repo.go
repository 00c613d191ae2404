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

const taskColumns = `id, name, description, status, priority, deadline, project_id, employee_id,
	notes, created_at, updated_at`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{pool: db.Pool}
}

func scanTaskRow(scanner rowScanner) (*models.Task, error) {
	var t models.Task

	err := scanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.Status, &t.Priority, &t.Deadline,
		&t.ProjectID, &t.EmployeeID, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &t, nil
}

func scanTaskRows(rows pgx.Rows) ([]*models.Task, error) {
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	t.ID = uuid.New()

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if t.Status == "" {
		t.Status = models.ProjectStatusNotStarted
	}
	if t.Priority == "" {
		t.Priority = models.TaskPriorityMedium
	}

	query := `
		INSERT INTO tasks (id, name, description, status, priority, deadline, project_id, employee_id,
			notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + taskColumns

	return scanTaskRow(r.pool.QueryRow(ctx, query,
		t.ID, t.Name, t.Description, t.Status, t.Priority, t.Deadline, t.ProjectID, t.EmployeeID,
		t.Notes, t.CreatedAt, t.UpdatedAt,
	))
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	return scanTaskRow(r.pool.QueryRow(ctx, query, id))
}

func (r *TaskRepository) List(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	return scanTaskRows(rows)
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project tasks: %w", err)
	}

	return scanTaskRows(rows)
}

// Update writes every editable column of t, including the assignee.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	query := `
		UPDATE tasks SET name = $1, description = $2, status = $3, priority = $4, deadline = $5,
			employee_id = $6, notes = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + taskColumns

	return scanTaskRow(r.pool.QueryRow(ctx, query,
		t.Name, t.Description, t.Status, t.Priority, t.Deadline, t.EmployeeID, t.Notes, t.ID,
	))
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
