package auth

import (
	"context"
	"database/sql"
	"errors"

	"schooltrack/internal/apierr"
	"schooltrack/internal/store"
)

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new user. Duplicate usernames surface as Conflict.
func (r *Repository) Insert(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Username, u.PasswordHash, u.Role)
	if store.IsUniqueViolation(err) {
		return apierr.New(apierr.Conflict, "username already exists")
	}
	return err
}

// FindByUsername returns nil when no user matches.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE username = $1
	`, username)
}

// FindByID returns nil when no user matches.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE id = $1
	`, id)
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
