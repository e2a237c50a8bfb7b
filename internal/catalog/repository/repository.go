package repository

import (
	"context"

	"storefront-gateway/internal/catalog/domain"
)

// Repository defines persistence for catalog products.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListPublished(ctx context.Context) ([]*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}
