// Package domain defines the access-decision audit record.
package domain

import "time"

// AuditLog is one recorded access decision or session event.
type AuditLog struct {
	ID        string
	App       string // application surface: customer, seller, admin
	Path      string // request path the decision applied to
	UserID    string // empty when no principal was resolved
	Action    string // e.g. access_check, sign_in, sign_out
	Decision  string // e.g. granted, denied_unauthenticated, denied_unauthorized
	Metadata  string // optional JSON detail
	CreatedAt time.Time
}
