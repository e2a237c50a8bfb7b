// Package service implements catalog operations: the public storefront
// listing, seller-scoped product management, and admin takedowns.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-gateway/internal/catalog/domain"
)

// Sentinel errors for the catalog service; handlers map them to HTTP responses.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotProductOwner = errors.New("product belongs to another seller")
)

// ProductRepo is the minimal product repository needed by the catalog service.
type ProductRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListPublished(ctx context.Context) ([]*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// ProductInput holds the writable product fields for create and update.
type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Published   bool
}

// Service implements catalog operations over a product repository.
type Service struct {
	repo   ProductRepo
	logger *zap.Logger
	nowF   func() time.Time
}

// NewService returns a Service with the given dependencies. logger may be nil.
func NewService(repo ProductRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, nowF: time.Now}
}

// ListPublished returns the products visible on the customer storefront.
func (s *Service) ListPublished(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListPublished(ctx)
}

// GetPublished returns the published product for id.
// It returns ErrProductNotFound for missing or unpublished products.
func (s *Service) GetPublished(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.Published {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// ListBySeller returns all of sellerID's products, published or not.
func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Product, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

// Create adds a product owned by sellerID.
func (s *Service) Create(ctx context.Context, sellerID string, in ProductInput) (*domain.Product, error) {
	now := s.nowF().UTC()
	p := &domain.Product{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Published:   in.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("product created",
		zap.String("product_id", p.ID), zap.String("seller_id", sellerID))
	return p, nil
}

// Update rewrites the product's writable fields. It returns ErrProductNotFound
// for unknown ids and ErrNotProductOwner when the product belongs to a
// different seller.
func (s *Service) Update(ctx context.Context, sellerID, productID string, in ProductInput) (*domain.Product, error) {
	p, err := s.owned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Description = in.Description
	p.PriceCents = in.PriceCents
	p.Published = in.Published
	p.UpdatedAt = s.nowF().UTC()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes sellerID's product. It returns ErrProductNotFound for
// unknown ids and ErrNotProductOwner for products owned by another seller.
func (s *Service) Delete(ctx context.Context, sellerID, productID string) error {
	if _, err := s.owned(ctx, sellerID, productID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, productID)
}

// AdminRemove removes any product regardless of owner. Used for takedowns
// from the admin console. Returns ErrProductNotFound for unknown ids.
func (s *Service) AdminRemove(ctx context.Context, productID string) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	s.logger.Info("product removed by admin",
		zap.String("product_id", productID), zap.String("seller_id", p.SellerID))
	return nil
}

func (s *Service) owned(ctx context.Context, sellerID, productID string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if p.SellerID != sellerID {
		return nil, ErrNotProductOwner
	}
	return p, nil
}
