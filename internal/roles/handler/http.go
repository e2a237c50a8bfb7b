// Package handler exposes role administration over HTTP on the admin app:
// listing, granting, and revoking a user's roles. Every write invalidates the
// role directory cache so in-flight requests re-check against fresh data.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront-gateway/internal/roles/domain"
)

// RoleRepo is the role persistence surface needed by the admin handlers.
type RoleRepo interface {
	ListRolesByUser(ctx context.Context, userID string) (domain.Assignment, error)
	Grant(ctx context.Context, userID string, role domain.Role) error
	Revoke(ctx context.Context, userID string, role domain.Role) error
}

// Invalidator drops cached role answers for a principal after a write.
type Invalidator interface {
	Invalidate(principalID string)
}

// Handler serves the role administration endpoints.
type Handler struct {
	repo        RoleRepo
	invalidator Invalidator
	logger      *zap.Logger
}

// NewHandler returns a role administration handler. logger may be nil.
func NewHandler(repo RoleRepo, invalidator Invalidator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, invalidator: invalidator, logger: logger}
}

type rolesResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// List handles GET /users/{userID}/roles.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	assignment, err := h.repo.ListRolesByUser(r.Context(), userID)
	if err != nil {
		h.serverError(w, "list roles", err)
		return
	}
	resp := rolesResponse{UserID: userID, Roles: []string{}}
	for _, role := range assignment.Roles() {
		resp.Roles = append(resp.Roles, string(role))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// Grant handles PUT /users/{userID}/roles/{role}. Idempotent.
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.repo.Grant(r.Context(), userID, role); err != nil {
		h.serverError(w, "grant role", err)
		return
	}
	h.invalidator.Invalidate(userID)
	h.logger.Info("role granted", zap.String("user_id", userID), zap.String("role", string(role)))
	w.WriteHeader(http.StatusNoContent)
}

// Revoke handles DELETE /users/{userID}/roles/{role}. Idempotent.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.repo.Revoke(r.Context(), userID, role); err != nil {
		h.serverError(w, "revoke role", err)
		return
	}
	h.invalidator.Invalidate(userID)
	h.logger.Info("role revoked", zap.String("user_id", userID), zap.String("role", string(role)))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (string, domain.Role, bool) {
	userID := chi.URLParam(r, "userID")
	role := domain.Role(chi.URLParam(r, "role"))
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return "", "", false
	}
	if !domain.IsValidRole(role) {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return "", "", false
	}
	return userID, role, true
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("role handler failure", zap.String("op", op), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
