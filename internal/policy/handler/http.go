// Package handler exposes access policy administration over HTTP on the
// admin app: listing, creating, and updating per-application policy documents.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-gateway/internal/policy/domain"
	"storefront-gateway/internal/policy/repository"
)

// Handler serves the access policy administration endpoints.
type Handler struct {
	repo   repository.Repository
	logger *zap.Logger
}

// NewHandler returns a policy administration handler. logger may be nil.
func NewHandler(repo repository.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

type policyResponse struct {
	ID        string    `json:"id"`
	App       string    `json:"app"`
	Rules     string    `json:"rules"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type policyRequest struct {
	App     string `json:"app"`
	Rules   string `json:"rules"`
	Enabled bool   `json:"enabled"`
}

// List handles GET /policies?app=<app>.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	app := r.URL.Query().Get("app")
	if app == "" {
		http.Error(w, "app query parameter is required", http.StatusBadRequest)
		return
	}
	docs, err := h.repo.ListByApp(r.Context(), app)
	if err != nil {
		h.serverError(w, "list policies", err)
		return
	}
	out := make([]policyResponse, len(docs))
	for i, d := range docs {
		out[i] = toResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /policies.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.App == "" || req.Rules == "" {
		http.Error(w, "app and rules are required", http.StatusBadRequest)
		return
	}
	now := time.Now().UTC()
	doc := &domain.AccessPolicy{
		ID:        uuid.NewString(),
		App:       req.App,
		Rules:     req.Rules,
		Enabled:   req.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Create(r.Context(), doc); err != nil {
		h.serverError(w, "create policy", err)
		return
	}
	h.logger.Info("access policy created",
		zap.String("policy_id", doc.ID), zap.String("app", doc.App), zap.Bool("enabled", doc.Enabled))
	writeJSON(w, http.StatusCreated, toResponse(doc))
}

// Update handles PUT /policies/{policyID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "policyID")
	doc, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.serverError(w, "get policy", err)
		return
	}
	if doc == nil {
		http.Error(w, "policy not found", http.StatusNotFound)
		return
	}
	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rules != "" {
		doc.Rules = req.Rules
	}
	doc.Enabled = req.Enabled
	doc.UpdatedAt = time.Now().UTC()
	if err := h.repo.Update(r.Context(), doc); err != nil {
		h.serverError(w, "update policy", err)
		return
	}
	h.logger.Info("access policy updated",
		zap.String("policy_id", doc.ID), zap.Bool("enabled", doc.Enabled))
	writeJSON(w, http.StatusOK, toResponse(doc))
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("policy handler failure", zap.String("op", op), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toResponse(d *domain.AccessPolicy) policyResponse {
	return policyResponse{
		ID:        d.ID,
		App:       d.App,
		Rules:     d.Rules,
		Enabled:   d.Enabled,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
