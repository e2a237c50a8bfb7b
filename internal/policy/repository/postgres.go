package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-gateway/internal/policy/domain"
)

// PostgresRepository implements Repository on a Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a policy repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const policyColumns = "id, app, rules, enabled, created_at, updated_at"

// GetByID returns the policy for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AccessPolicy, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+policyColumns+" FROM access_policies WHERE id = $1", id)
	p, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListByApp returns all policy documents for the given application.
func (r *PostgresRepository) ListByApp(ctx context.Context, app string) ([]*domain.AccessPolicy, error) {
	return r.list(ctx,
		"SELECT "+policyColumns+" FROM access_policies WHERE app = $1 ORDER BY created_at", app)
}

// ListEnabledByApp returns the enabled policy documents for the given application.
func (r *PostgresRepository) ListEnabledByApp(ctx context.Context, app string) ([]*domain.AccessPolicy, error) {
	return r.list(ctx,
		"SELECT "+policyColumns+" FROM access_policies WHERE app = $1 AND enabled ORDER BY created_at", app)
}

// Create persists the policy. The policy must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.AccessPolicy) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_policies (id, app, rules, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.App, p.Rules, p.Enabled, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update updates the existing policy record.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.AccessPolicy) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE access_policies SET rules = $2, enabled = $3, updated_at = $4 WHERE id = $1",
		p.ID, p.Rules, p.Enabled, p.UpdatedAt)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query, app string) ([]*domain.AccessPolicy, error) {
	rows, err := r.db.QueryContext(ctx, query, app)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AccessPolicy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*domain.AccessPolicy, error) {
	var p domain.AccessPolicy
	if err := row.Scan(&p.ID, &p.App, &p.Rules, &p.Enabled, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
