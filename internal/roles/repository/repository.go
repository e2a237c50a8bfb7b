// Package repository persists role assignments in Postgres.
package repository

import (
	"context"

	"storefront-gateway/internal/roles/domain"
)

// Repository is the persistence surface for role assignments.
type Repository interface {
	// ListRolesByUser returns the roles granted to userID. An empty assignment
	// is not an error: authenticated but roleless principals are valid.
	ListRolesByUser(ctx context.Context, userID string) (domain.Assignment, error)
	// Grant adds role to userID's assignment. Granting an already-held role is a no-op.
	Grant(ctx context.Context, userID string, role domain.Role) error
	// Revoke removes role from userID's assignment. Revoking a missing role is a no-op.
	Revoke(ctx context.Context, userID string, role domain.Role) error
}
