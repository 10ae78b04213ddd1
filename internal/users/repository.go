package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = "id, username, email, password_hash, role, is_active, created_at, updated_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves an account by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns), id)
	return scanUser(row)
}

// GetUserByEmail retrieves an account by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM users WHERE lower(email) = lower($1)", userColumns), email)
	return scanUser(row)
}

// ListUsers returns every account ordered by username.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM users ORDER BY username", userColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// CreateUser inserts a new account and returns its ID.
func (r *Repository) CreateUser(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Username, u.Email, u.PasswordHash, u.Role, u.IsActive).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdateUser applies the given column updates.
func (r *Repository) UpdateUser(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE users SET updated_at = NOW()"
	args := []any{}
	argPos := 1
	for col, val := range updates {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, val)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeactivateUser flips the active flag off. Accounts are never hard deleted.
func (r *Repository) DeactivateUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
