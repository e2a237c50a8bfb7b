package engine

import (
	"context"

	"storefront-gateway/internal/apphost"
	identitydomain "storefront-gateway/internal/identity/domain"
	rolesdomain "storefront-gateway/internal/roles/domain"
)

// Evaluator evaluates per-application access policies using OPA or other engines.
type Evaluator interface {
	// Allow evaluates the access policy for the given application and
	// principal. It returns an error when the policy cannot be evaluated;
	// callers must treat an error as a denial.
	Allow(ctx context.Context, app apphost.App, principal identitydomain.Principal, assignment rolesdomain.Assignment) (bool, error)
}
