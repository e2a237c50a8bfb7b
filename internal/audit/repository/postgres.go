package repository

import (
	"context"
	"database/sql"

	"storefront-gateway/internal/audit/domain"
)

// PostgresRepository implements Repository on a Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log entry. The entry must have ID set.
// Replays of an already-stored id are ignored, so the Kafka worker can
// re-process a partition safely.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, app, path, user_id, action, decision, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, e.App, e.Path, e.UserID, e.Action, e.Decision, e.Metadata, e.CreatedAt)
	return err
}

// ListRecentByUser returns up to limit most recent entries for userID.
func (r *PostgresRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, app, path, user_id, action, decision, metadata, created_at
		 FROM audit_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var e domain.AuditLog
		if err := rows.Scan(&e.ID, &e.App, &e.Path, &e.UserID, &e.Action, &e.Decision, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
