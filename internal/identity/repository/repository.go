// Package repository persists users and sessions in Postgres.
package repository

import (
	"context"
	"time"

	"storefront-gateway/internal/identity/domain"
)

// UserRepository is the persistence surface for user accounts.
type UserRepository interface {
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail returns the user for email, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists the user. The user must have ID set.
	Create(ctx context.Context, u *domain.User) error
}

// SessionRepository is the persistence surface for sessions.
type SessionRepository interface {
	// GetByID returns the session for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Create persists the session.
	Create(ctx context.Context, s *domain.Session) error
	// Revoke marks the session revoked. Revoking an already-revoked or missing
	// session is not an error.
	Revoke(ctx context.Context, id string) error
	// UpdateLastSeen records session activity. Best-effort; callers may ignore the error.
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}
