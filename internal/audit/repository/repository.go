// Package repository persists audit logs in Postgres.
package repository

import (
	"context"

	"storefront-gateway/internal/audit/domain"
)

// Repository is the persistence surface for audit logs.
type Repository interface {
	// Create persists the audit log entry. The entry must have ID set.
	Create(ctx context.Context, e *domain.AuditLog) error
	// ListRecentByUser returns up to limit most recent entries for userID.
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}
