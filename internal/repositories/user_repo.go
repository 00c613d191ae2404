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

const userColumns = `id, first_name, last_name, email, phone_number, password_hash, role, profile_picture,
	is_admin, is_temporary_password, failed_login_attempts, lock_until, password_changed_at,
	project_ids, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PhoneNumber,
		&user.PasswordHash, &user.Role, &user.ProfilePicture,
		&user.IsAdmin, &user.IsTemporaryPassword, &user.FailedLoginAttempts,
		&user.LockUntil, &user.PasswordChangedAt,
		&user.Projects, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if user.Projects == nil {
		user.Projects = []uuid.UUID{}
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

// List returns one page of users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, params models.ListUsersParams) ([]*models.User, error) {
	order := "DESC"
	if params.SortAsc {
		order = "ASC"
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ` + order + `, id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, params.Limit, params.StartIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

func (r *UserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent users: %w", err)
	}
	return total, nil
}

// ListEmployees returns every non-admin account sorted by last name.
func (r *UserRepository) ListEmployees(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_admin = FALSE ORDER BY last_name, first_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}

	return scanUserRows(rows)
}

// CountByIDs returns how many of the given ids belong to existing users.
func (r *UserRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = ANY($1)`, ids).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.ProfilePicture == "" {
		user.ProfilePicture = models.DefaultProfilePicture
	}
	if user.Projects == nil {
		user.Projects = []uuid.UUID{}
	}

	query := `
		INSERT INTO users (id, first_name, last_name, email, phone_number, password_hash, role, profile_picture,
			is_admin, is_temporary_password, password_changed_at, project_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.PasswordHash,
		user.Role, user.ProfilePicture, user.IsAdmin, user.IsTemporaryPassword,
		user.PasswordChangedAt, user.Projects, user.CreatedAt, user.UpdatedAt,
	))
}

// UpdateProfile persists the profile fields and password of user.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users SET first_name = $1, last_name = $2, email = $3, phone_number = $4, role = $5,
			profile_picture = $6, password_hash = $7, is_temporary_password = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.Role,
		user.ProfilePicture, user.PasswordHash, user.IsTemporaryPassword, user.ID,
	))
}

// UpdateLoginState stores the lockout counter and lock expiry.
func (r *UserRepository) UpdateLoginState(ctx context.Context, id uuid.UUID, failedAttempts int, lockUntil *time.Time) error {
	query := `UPDATE users SET failed_login_attempts = $1, lock_until = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, failedAttempts, lockUntil, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, temporary bool, changedAt time.Time) error {
	query := `
		UPDATE users SET password_hash = $1, is_temporary_password = $2, password_changed_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, passwordHash, temporary, changedAt, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error) {
	query := `UPDATE users SET is_admin = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query, isAdmin, id))
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// AddProjectToUsers adds projectID to the project set of each user,
// skipping users that already hold it.
func (r *UserRepository) AddProjectToUsers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	query := `
		UPDATE users SET project_ids = array_append(project_ids, $1), updated_at = NOW()
		WHERE id = ANY($2) AND NOT ($1 = ANY(project_ids))
	`

	if _, err := r.pool.Exec(ctx, query, projectID, userIDs); err != nil {
		return fmt.Errorf("failed to add project to users: %w", database.MapPostgresError(err))
	}
	return nil
}

// RemoveProjectFromUsers pulls projectID from the project set of each user.
func (r *UserRepository) RemoveProjectFromUsers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	query := `
		UPDATE users SET project_ids = array_remove(project_ids, $1), updated_at = NOW()
		WHERE id = ANY($2) AND $1 = ANY(project_ids)
	`

	if _, err := r.pool.Exec(ctx, query, projectID, userIDs); err != nil {
		return fmt.Errorf("failed to remove project from users: %w", database.MapPostgresError(err))
	}
	return nil
}
