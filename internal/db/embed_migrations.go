package db

import "embed"

// MigrationFS carries the gateway's SQL migrations (users, sessions,
// user_roles, products, access_policies, audit_logs) so the migrate
// runner ships them inside the binary.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
