// Package handler exposes the catalog over HTTP: public storefront listings
// on the customer app and product management on the seller and admin apps.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront-gateway/internal/catalog/domain"
	"storefront-gateway/internal/catalog/service"
	servermw "storefront-gateway/internal/server/middleware"
)

// CatalogService is the catalog surface needed by the HTTP handlers.
type CatalogService interface {
	ListPublished(ctx context.Context) ([]*domain.Product, error)
	GetPublished(ctx context.Context, id string) (*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Product, error)
	Create(ctx context.Context, sellerID string, in service.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, sellerID, productID string, in service.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, sellerID, productID string) error
	AdminRemove(ctx context.Context, productID string) error
}

// Handler serves the catalog HTTP endpoints.
type Handler struct {
	catalog CatalogService
	logger  *zap.Logger
}

// NewHandler returns a catalog HTTP handler. logger may be nil.
func NewHandler(catalog CatalogService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{catalog: catalog, logger: logger}
}

type productResponse struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Published   bool   `json:"published"`
}

// ListPublished handles GET /products on the customer app.
func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListPublished(r.Context())
	if err != nil {
		h.serverError(w, "list published products", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(products))
}

// GetPublished handles GET /products/{productID} on the customer app.
func (h *Handler) GetPublished(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	p, err := h.catalog.GetPublished(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

// ListMine handles GET /products on the seller app: the signed-in seller's
// products, drafts included.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := servermw.GetPrincipal(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	products, err := h.catalog.ListBySeller(r.Context(), principal.ID)
	if err != nil {
		h.serverError(w, "list seller products", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(products))
}

// Create handles POST /products on the seller app.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := servermw.GetPrincipal(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.catalog.Create(r.Context(), principal.ID, service.ProductInput(req))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(p))
}

// Update handles PUT /products/{productID} on the seller app.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := servermw.GetPrincipal(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "productID")
	p, err := h.catalog.Update(r.Context(), principal.ID, id, service.ProductInput(req))
	if err != nil {
		h.writeOwnedError(w, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

// Delete handles DELETE /products/{productID} on the seller app.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := servermw.GetPrincipal(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "productID")
	if err := h.catalog.Delete(r.Context(), principal.ID, id); err != nil {
		h.writeOwnedError(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminRemove handles DELETE /products/{productID} on the admin app: removes
// any product regardless of owner.
func (h *Handler) AdminRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if err := h.catalog.AdminRemove(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "remove product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeOwnedError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotProductOwner):
		http.Error(w, "product belongs to another seller", http.StatusForbidden)
	default:
		h.serverError(w, op, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("catalog handler failure", zap.String("op", op), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Published:   p.Published,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toResponse(p)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
