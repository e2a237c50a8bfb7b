package domain

import "time"

// Session is a server-side session record. The session cookie carries a JWT
// referencing this row; the row is the source of truth for revocation.
type Session struct {
	ID         string
	UserID     string
	ExpiresAt  time.Time
	RevokedAt  *time.Time // nil when not revoked
	LastSeenAt *time.Time
	CreatedAt  time.Time
}

// Live reports whether the session is usable at the given instant.
func (s *Session) Live(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && s.ExpiresAt.After(now)
}
