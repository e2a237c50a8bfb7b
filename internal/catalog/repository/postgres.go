package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-gateway/internal/catalog/domain"
)

// PostgresRepository implements Repository on a Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a product repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = "id, seller_id, name, description, price_cents, published, created_at, updated_at"

// GetByID returns the product for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListPublished returns all published products, newest first.
func (r *PostgresRepository) ListPublished(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx,
		"SELECT "+productColumns+" FROM products WHERE published ORDER BY created_at DESC")
}

// ListBySeller returns all of sellerID's products, published or not, newest first.
func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Product, error) {
	return r.list(ctx,
		"SELECT "+productColumns+" FROM products WHERE seller_id = $1 ORDER BY created_at DESC", sellerID)
}

// Create persists the product. The product must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, seller_id, name, description, price_cents, published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.SellerID, p.Name, p.Description, p.PriceCents, p.Published, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update updates the existing product record.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $2, description = $3, price_cents = $4, published = $5, updated_at = $6
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Published, p.UpdatedAt)
	return err
}

// Delete removes the product. Deleting a missing product is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
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

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.PriceCents,
		&p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
