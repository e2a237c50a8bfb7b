package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront-gateway/internal/identity/domain"
)

// PostgresUserRepository implements UserRepository on a Postgres database.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository returns a user repository that uses the given db for persistence.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = "id, email, name, password_hash, status, created_at, updated_at"

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByEmail returns the user for email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set.
func (r *PostgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Status), u.CreatedAt, u.UpdatedAt)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var status string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Status = domain.UserStatus(status)
	return &u, nil
}

// PostgresSessionRepository implements SessionRepository on a Postgres database.
type PostgresSessionRepository struct {
	db *sql.DB
}

// NewPostgresSessionRepository returns a session repository that uses the given db for persistence.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, revoked_at, last_seen_at, created_at FROM sessions WHERE id = $1", id)
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.RevokedAt, &s.LastSeenAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Create persists the session to the database.
func (r *PostgresSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, revoked_at, last_seen_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.ExpiresAt, s.RevokedAt, s.LastSeenAt, s.CreatedAt)
	return err
}

// Revoke marks the session revoked. No-op for missing or already revoked sessions.
func (r *PostgresSessionRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL", id)
	return err
}

// UpdateLastSeen records session activity.
func (r *PostgresSessionRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE sessions SET last_seen_at = $2 WHERE id = $1", id, at)
	return err
}
