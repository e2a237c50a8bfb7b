// Package server assembles the gateway's HTTP surface: one route table per
// application, a host/path dispatcher in front of them, and the access gate
// wrapped around every protected group.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"storefront-gateway/internal/apphost"
	"storefront-gateway/internal/audit"
	cataloghandler "storefront-gateway/internal/catalog/handler"
	"storefront-gateway/internal/gate"
	identitydomain "storefront-gateway/internal/identity/domain"
	identityhandler "storefront-gateway/internal/identity/handler"
	identityservice "storefront-gateway/internal/identity/service"
	policyhandler "storefront-gateway/internal/policy/handler"
	"storefront-gateway/internal/roles"
	rolesdomain "storefront-gateway/internal/roles/domain"
	roleshandler "storefront-gateway/internal/roles/handler"
	servermw "storefront-gateway/internal/server/middleware"
	"storefront-gateway/internal/web"
)

// Deps carries everything the router needs. Policy, Recorder, and Health may
// be nil, as may Logger.
type Deps struct {
	Resolver *apphost.Resolver
	Identity *identityservice.Service
	Roles    *roles.Directory
	Policy   gate.AccessPolicy
	Recorder audit.Recorder
	Catalog  *cataloghandler.Handler
	RoleAdm  *roleshandler.Handler
	Policies *policyhandler.Handler

	CookieName   string
	SecureCookie bool
	VerifyWait   time.Duration
	Health       func(ctx context.Context) error
	Logger       *zap.Logger
}

// Router dispatches each request to the route table of the application that
// owns it, per the host/path resolution rules.
type Router struct {
	resolver *apphost.Resolver
	apps     map[apphost.App]http.Handler
	health   func(ctx context.Context) error
}

// Guard configurations per application. The redirect and escape targets are
// load-bearing: bookmarked deep links depend on them staying exactly here.
var (
	customerGuard = gate.GuardConfig{
		RequiredRole:         rolesdomain.RoleConsumer,
		LoginPath:            "/login",
		UnauthorizedRedirect: "/",
	}
	sellerGuard = gate.GuardConfig{
		RequiredRole:         rolesdomain.RoleSeller,
		LoginPath:            "/seller/login",
		UnauthorizedRedirect: "/",
	}
	adminGuard = gate.GuardConfig{
		RequiredRole:         rolesdomain.RoleAdmin,
		LoginPath:            "/admin/login",
		UnauthorizedRedirect: "/",
	}
)

// New builds the dispatcher and the three application route tables, with
// request tracing wrapped around the whole surface.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sessions := sessionResolver{svc: d.Identity}
	lookup := roleLookup{dir: d.Roles}
	newGate := func(app apphost.App) *gate.Middleware {
		return gate.NewMiddleware(app, sessions, lookup, d.Policy, d.Recorder,
			d.CookieName, d.VerifyWait, logger)
	}

	rt := &Router{
		resolver: d.Resolver,
		health:   d.Health,
		apps: map[apphost.App]http.Handler{
			apphost.AppCustomer: customerRoutes(d, newGate(apphost.AppCustomer), logger),
			apphost.AppSeller:   sellerRoutes(d, newGate(apphost.AppSeller), logger),
			apphost.AppAdmin:    adminRoutes(d, newGate(apphost.AppAdmin), logger),
		},
	}
	return otelhttp.NewHandler(rt, "storefront-gateway")
}

// ServeHTTP resolves the owning application and forwards the request to its
// route table. The application's base path is stripped when present so the
// tables stay app-relative on both path and subdomain deployments.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/healthz" {
		rt.serveHealth(w, r)
		return
	}

	res := rt.resolver.Resolve(r.Host, r.URL.Path)
	if stripped, ok := trimBasePath(r.URL.Path, res.BasePath); ok {
		r2 := new(http.Request)
		*r2 = *r
		u := *r.URL
		u.Path = stripped
		r2.URL = &u
		r = r2
	}
	rt.apps[res.App].ServeHTTP(w, r)
}

func (rt *Router) serveHealth(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		if err := rt.health(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// trimBasePath removes base from the front of path on a segment boundary.
// Reports whether anything was stripped.
func trimBasePath(path, base string) (string, bool) {
	if base == "" || base == "/" {
		return path, false
	}
	if path == base {
		return "/", true
	}
	if strings.HasPrefix(path, base+"/") {
		return path[len(base):], true
	}
	return path, false
}

func customerRoutes(d Deps, g *gate.Middleware, logger *zap.Logger) http.Handler {
	identity := identityhandler.NewHandler(d.Identity, d.Recorder, identityhandler.LoginConfig{
		App:       string(apphost.AppCustomer),
		Title:     "Sign in",
		LoginPath: "/login",
		HomePath:  "/",
	}, d.CookieName, d.SecureCookie, logger)

	r := chi.NewRouter()
	r.Use(servermw.RequestLogger(logger, apphost.AppCustomer))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		web.Landing(w, "Storefront", "Welcome to the shop.", "/products", "Browse products")
	})
	r.Get("/products", d.Catalog.ListPublished)
	r.Get("/products/{productID}", d.Catalog.GetPublished)

	r.Get("/login", identity.LoginForm)
	r.Post("/login", identity.SignIn)
	r.Post("/logout", identity.SignOut)
	r.Get("/register", func(w http.ResponseWriter, req *http.Request) {
		web.Login(w, http.StatusOK, "Create account", "/register", "")
	})
	r.Post("/register", identity.Register)

	r.Group(func(r chi.Router) {
		r.Use(g.Protect(customerGuard))
		r.Get("/account", func(w http.ResponseWriter, req *http.Request) {
			principal, _ := servermw.GetPrincipal(req.Context())
			web.Landing(w, "Your account", "Signed in as "+principal.Email+".", "/", "Back to the shop")
		})
	})

	r.NotFound(redirectTo("/"))
	return r
}

func sellerRoutes(d Deps, g *gate.Middleware, logger *zap.Logger) http.Handler {
	identity := identityhandler.NewHandler(d.Identity, d.Recorder, identityhandler.LoginConfig{
		App:       string(apphost.AppSeller),
		Title:     "Seller sign in",
		LoginPath: "/seller/login",
		HomePath:  "/seller",
	}, d.CookieName, d.SecureCookie, logger)

	r := chi.NewRouter()
	r.Use(servermw.RequestLogger(logger, apphost.AppSeller))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		web.Landing(w, "Sell on the storefront", "Manage your products and orders.", "/seller/login", "Seller sign in")
	})
	r.Get("/login", identity.LoginForm)
	r.Post("/login", identity.SignIn)
	r.Post("/logout", identity.SignOut)

	r.Group(func(r chi.Router) {
		r.Use(g.Protect(sellerGuard))
		r.Get("/dashboard", func(w http.ResponseWriter, req *http.Request) {
			principal, _ := servermw.GetPrincipal(req.Context())
			web.Landing(w, "Seller dashboard", "Signed in as "+principal.Email+".", "/seller/products", "Your products")
		})
		r.Get("/products", d.Catalog.ListMine)
		r.Post("/products", d.Catalog.Create)
		r.Put("/products/{productID}", d.Catalog.Update)
		r.Delete("/products/{productID}", d.Catalog.Delete)
	})

	r.NotFound(redirectTo("/seller"))
	return r
}

func adminRoutes(d Deps, g *gate.Middleware, logger *zap.Logger) http.Handler {
	identity := identityhandler.NewHandler(d.Identity, d.Recorder, identityhandler.LoginConfig{
		App:       string(apphost.AppAdmin),
		Title:     "Admin sign in",
		LoginPath: "/admin/login",
		HomePath:  "/admin",
	}, d.CookieName, d.SecureCookie, logger)

	r := chi.NewRouter()
	r.Use(servermw.RequestLogger(logger, apphost.AppAdmin))

	r.Get("/login", identity.LoginForm)
	r.Post("/login", identity.SignIn)
	r.Post("/logout", identity.SignOut)

	r.Group(func(r chi.Router) {
		r.Use(g.Protect(adminGuard))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			principal, _ := servermw.GetPrincipal(req.Context())
			web.Landing(w, "Admin console", "Signed in as "+principal.Email+".", "/", "Back to the shop")
		})
		r.Get("/users/{userID}/roles", d.RoleAdm.List)
		r.Put("/users/{userID}/roles/{role}", d.RoleAdm.Grant)
		r.Delete("/users/{userID}/roles/{role}", d.RoleAdm.Revoke)
		r.Delete("/products/{productID}", d.Catalog.AdminRemove)
		r.Get("/policies", d.Policies.List)
		r.Post("/policies", d.Policies.Create)
		r.Put("/policies/{policyID}", d.Policies.Update)
	})

	r.NotFound(redirectTo("/admin/login"))
	return r
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// sessionResolver adapts the identity service to the gate's resolver interface.
type sessionResolver struct {
	svc *identityservice.Service
}

func (s sessionResolver) StartResolve(ctx context.Context, token string) gate.SessionResolution {
	return s.svc.StartResolve(ctx, token)
}

// roleLookup adapts the role directory to the gate's lookup interface.
type roleLookup struct {
	dir *roles.Directory
}

func (l roleLookup) Lookup(ctx context.Context, session identitydomain.SessionState) gate.RoleResolution {
	return l.dir.Lookup(ctx, session)
}
