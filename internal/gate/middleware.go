package gate

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront-gateway/internal/apphost"
	"storefront-gateway/internal/audit"
	identitydomain "storefront-gateway/internal/identity/domain"
	"storefront-gateway/internal/roles"
	rolesdomain "storefront-gateway/internal/roles/domain"
	servermw "storefront-gateway/internal/server/middleware"
	"storefront-gateway/internal/web"
)

// SessionResolution is an in-flight session resolution the gate can await.
// Satisfied by *service.Resolution.
type SessionResolution interface {
	Await(ctx context.Context) identitydomain.SessionState
}

// SessionResolver starts session resolution for the token carried by a request.
type SessionResolver interface {
	StartResolve(ctx context.Context, token string) SessionResolution
}

// RoleResolution is an in-flight role lookup the gate can await.
// Satisfied by *roles.Lookup.
type RoleResolution interface {
	Await(ctx context.Context) roles.State
}

// RoleLookup resolves the role assignment for a resolved session.
type RoleLookup interface {
	Lookup(ctx context.Context, session identitydomain.SessionState) RoleResolution
}

// AccessPolicy is the optional post-role policy stage (e.g. maintenance mode).
// An error counts as deny: ambiguous policy data never grants access.
type AccessPolicy interface {
	Allow(ctx context.Context, app apphost.App, principal identitydomain.Principal, assignment rolesdomain.Assignment) (bool, error)
}

// Middleware wraps protected route groups with the access gate. One Middleware
// serves one application; Protect instantiates it per route group with that
// group's GuardConfig.
type Middleware struct {
	app        apphost.App
	sessions   SessionResolver
	roles      RoleLookup
	policy     AccessPolicy   // may be nil
	recorder   audit.Recorder // may be nil
	cookieName string
	verifyWait time.Duration
	logger     *zap.Logger
}

// NewMiddleware returns a gate Middleware for the given application.
// policy and recorder may be nil; logger may be nil.
func NewMiddleware(app apphost.App, sessions SessionResolver, roleLookup RoleLookup, policy AccessPolicy, recorder audit.Recorder, cookieName string, verifyWait time.Duration, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	if verifyWait <= 0 {
		verifyWait = 3 * time.Second
	}
	return &Middleware{
		app:        app,
		sessions:   sessions,
		roles:      roleLookup,
		policy:     policy,
		recorder:   recorder,
		cookieName: cookieName,
		verifyWait: verifyWait,
		logger:     logger,
	}
}

// Protect wraps next with the gate configured by cfg. Every request is
// evaluated fresh: session resolution, then role lookup, then the optional
// access policy. The only non-content responses a visitor ever sees are the
// verifying indicator and the denial panel.
func (m *Middleware) Protect(cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			waitCtx, cancel := context.WithTimeout(ctx, m.verifyWait)
			defer cancel()

			session := m.sessions.StartResolve(ctx, m.sessionToken(r)).Await(waitCtx)

			roleState := roles.State{Loading: true}
			if !session.IsLoading() {
				roleState = m.roles.Lookup(ctx, session).Await(waitCtx)
			}

			decision := Evaluate(session, roleState, cfg)
			if decision.Status == StatusGranted && m.policy != nil {
				allowed, err := m.policy.Allow(ctx, m.app, *decision.Principal, decision.Roles)
				if err != nil {
					m.logger.Warn("access policy evaluation failed",
						zap.String("app", string(m.app)), zap.Error(err))
					allowed = false
				}
				if !allowed {
					decision = Decision{Status: StatusDeniedUnauthorized, EscapeHref: cfg.UnauthorizedRedirect}
				}
			}

			m.record(ctx, r, session, decision)

			switch decision.Status {
			case StatusVerifying:
				web.Verifying(w)
			case StatusDeniedUnauthenticated:
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			case StatusDeniedUnauthorized:
				web.AccessDenied(w, decision.EscapeHref)
			case StatusGranted:
				ctx = servermw.WithIdentity(ctx, *decision.Principal, decision.Roles)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

func (m *Middleware) sessionToken(r *http.Request) string {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *Middleware) record(ctx context.Context, r *http.Request, session identitydomain.SessionState, d Decision) {
	if m.recorder == nil || d.Status == StatusVerifying {
		return
	}
	userID := ""
	if session.Principal != nil {
		userID = session.Principal.ID
	}
	m.recorder.Record(ctx, audit.Event{
		App:      string(m.app),
		Path:     r.URL.Path,
		UserID:   userID,
		Action:   audit.ActionAccessCheck,
		Decision: string(d.Status),
	})
}
