package domain

import "time"

// AccessPolicy is a per-application access policy document. Rules holds a
// Rego module in the storefront.access package; when enabled, it replaces
// the built-in allow-everything policy for its application.
type AccessPolicy struct {
	ID        string
	App       string
	Rules     string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
