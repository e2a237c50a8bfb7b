package repository

import (
	"context"
	"database/sql"

	"storefront-gateway/internal/roles/domain"
)

// PostgresRepository implements Repository on a Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a role repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListRolesByUser returns the roles granted to userID.
// It returns an error only for database failures; no rows yields an empty assignment.
func (r *PostgresRepository) ListRolesByUser(ctx context.Context, userID string) (domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT role FROM user_roles WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignment := domain.Assignment{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		assignment[domain.Role(role)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Grant adds role to userID's assignment. Idempotent.
func (r *PostgresRepository) Grant(ctx context.Context, userID string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		 ON CONFLICT (user_id, role) DO NOTHING`,
		userID, string(role))
	return err
}

// Revoke removes role from userID's assignment. Idempotent.
func (r *PostgresRepository) Revoke(ctx context.Context, userID string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id = $1 AND role = $2", userID, string(role))
	return err
}
