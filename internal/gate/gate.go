// Package gate enforces the two-stage access check in front of protected
// routes: authenticated, then holding the required role. The decision is an
// explicit state machine evaluated fresh on every request; a grant is never
// cached across role changes.
package gate

import (
	identitydomain "storefront-gateway/internal/identity/domain"
	"storefront-gateway/internal/roles"
	rolesdomain "storefront-gateway/internal/roles/domain"
)

// Status is the outcome of evaluating the gate for one request.
type Status string

const (
	// StatusVerifying means session or role resolution has not finished.
	// Protected content must not render.
	StatusVerifying Status = "verifying"
	// StatusDeniedUnauthenticated means no principal; redirect to login.
	StatusDeniedUnauthenticated Status = "denied_unauthenticated"
	// StatusDeniedUnauthorized means an authenticated principal lacks the
	// required role; show the denial panel, never auto-redirect.
	StatusDeniedUnauthorized Status = "denied_unauthorized"
	// StatusGranted means the protected content may render.
	StatusGranted Status = "granted"
)

// GuardConfig is the static per-route-group configuration: the role a
// principal must hold, where to send unauthenticated visitors, and where the
// denial panel's escape link points. Never mutated at runtime.
type GuardConfig struct {
	RequiredRole         rolesdomain.Role
	LoginPath            string
	UnauthorizedRedirect string
}

// Decision is the evaluated gate outcome. RedirectTo is set only for
// DeniedUnauthenticated; EscapeHref only for DeniedUnauthorized. Principal and
// Roles are set only for Granted.
type Decision struct {
	Status     Status
	RedirectTo string
	EscapeHref string
	Principal  *identitydomain.Principal
	Roles      rolesdomain.Assignment
}

// Evaluate runs the gate state machine over the current session and role
// states. It is pure: all timing lives in the inputs.
//
//	Verifying  -> DeniedUnauthenticated  when the session resolves to no principal
//	Verifying  -> DeniedUnauthorized     when roles resolve without the required role
//	Verifying  -> Granted                when roles resolve with the required role
//
// While either input is still loading the decision stays Verifying, so
// protected content is never rendered on partial information.
func Evaluate(session identitydomain.SessionState, roleState roles.State, cfg GuardConfig) Decision {
	if session.IsLoading() {
		return Decision{Status: StatusVerifying}
	}
	if session.Phase == identitydomain.SessionUnauthenticated {
		return Decision{Status: StatusDeniedUnauthenticated, RedirectTo: cfg.LoginPath}
	}
	if roleState.Loading {
		return Decision{Status: StatusVerifying}
	}
	if !roleState.HasRole(cfg.RequiredRole) {
		return Decision{Status: StatusDeniedUnauthorized, EscapeHref: cfg.UnauthorizedRedirect}
	}
	return Decision{
		Status:    StatusGranted,
		Principal: session.Principal,
		Roles:     roleState.Assignment,
	}
}
