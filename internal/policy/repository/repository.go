package repository

import (
	"context"

	"storefront-gateway/internal/policy/domain"
)

// Repository defines persistence for access policy documents.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AccessPolicy, error)
	ListByApp(ctx context.Context, app string) ([]*domain.AccessPolicy, error)
	ListEnabledByApp(ctx context.Context, app string) ([]*domain.AccessPolicy, error)
	Create(ctx context.Context, p *domain.AccessPolicy) error
	Update(ctx context.Context, p *domain.AccessPolicy) error
}
