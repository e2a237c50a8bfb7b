package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-gateway/internal/apphost"
	catalogdomain "storefront-gateway/internal/catalog/domain"
	cataloghandler "storefront-gateway/internal/catalog/handler"
	catalogservice "storefront-gateway/internal/catalog/service"
	identitydomain "storefront-gateway/internal/identity/domain"
	identityservice "storefront-gateway/internal/identity/service"
	policydomain "storefront-gateway/internal/policy/domain"
	policyhandler "storefront-gateway/internal/policy/handler"
	"storefront-gateway/internal/roles"
	rolesdomain "storefront-gateway/internal/roles/domain"
	roleshandler "storefront-gateway/internal/roles/handler"
	"storefront-gateway/internal/security"
)

// In-memory repositories backing a fully wired router.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*identitydomain.User
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*identitydomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*identitydomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Create(ctx context.Context, u *identitydomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*identitydomain.Session
}

func (m *memSessionRepo) GetByID(ctx context.Context, id string) (*identitydomain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) Create(ctx context.Context, s *identitydomain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionRepo) Revoke(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && s.RevokedAt == nil {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (m *memSessionRepo) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = &at
	}
	return nil
}

type memRoleRepo struct {
	mu          sync.Mutex
	assignments map[string]rolesdomain.Assignment
}

func (m *memRoleRepo) ListRolesByUser(ctx context.Context, userID string) (rolesdomain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := rolesdomain.Assignment{}
	for r := range m.assignments[userID] {
		out[r] = struct{}{}
	}
	return out, nil
}

func (m *memRoleRepo) Grant(ctx context.Context, userID string, role rolesdomain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.assignments[userID]
	if a == nil {
		a = rolesdomain.Assignment{}
		m.assignments[userID] = a
	}
	a[role] = struct{}{}
	return nil
}

func (m *memRoleRepo) Revoke(ctx context.Context, userID string, role rolesdomain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments[userID], role)
	return nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*catalogdomain.Product
}

func (m *memProductRepo) GetByID(ctx context.Context, id string) (*catalogdomain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) ListPublished(ctx context.Context) ([]*catalogdomain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*catalogdomain.Product
	for _, p := range m.products {
		if p.Published {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memProductRepo) ListBySeller(ctx context.Context, sellerID string) ([]*catalogdomain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*catalogdomain.Product
	for _, p := range m.products {
		if p.SellerID == sellerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memProductRepo) Create(ctx context.Context, p *catalogdomain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductRepo) Update(ctx context.Context, p *catalogdomain.Product) error {
	return m.Create(ctx, p)
}

func (m *memProductRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

type memPolicyRepo struct{}

func (memPolicyRepo) GetByID(ctx context.Context, id string) (*policydomain.AccessPolicy, error) {
	return nil, nil
}
func (memPolicyRepo) ListByApp(ctx context.Context, app string) ([]*policydomain.AccessPolicy, error) {
	return nil, nil
}
func (memPolicyRepo) ListEnabledByApp(ctx context.Context, app string) ([]*policydomain.AccessPolicy, error) {
	return nil, nil
}
func (memPolicyRepo) Create(ctx context.Context, p *policydomain.AccessPolicy) error { return nil }
func (memPolicyRepo) Update(ctx context.Context, p *policydomain.AccessPolicy) error { return nil }

type testGateway struct {
	handler  http.Handler
	roleRepo *memRoleRepo
	identity *identityservice.Service
}

// newTestGateway wires a complete router over in-memory repositories with
// one user per role: shopper (consumer), seller (seller), admin (admin).
func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("token provider: %v", err)
	}
	hasher := security.NewHasher(4)
	hash, err := hasher.Hash([]byte("CorrectHorse9!aa"))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	userRepo := &memUserRepo{users: map[string]*identitydomain.User{
		"u-shopper": {ID: "u-shopper", Email: "shopper@example.com", PasswordHash: hash, Status: identitydomain.UserStatusActive},
		"u-seller":  {ID: "u-seller", Email: "seller@example.com", PasswordHash: hash, Status: identitydomain.UserStatusActive},
		"u-admin":   {ID: "u-admin", Email: "admin@example.com", PasswordHash: hash, Status: identitydomain.UserStatusActive},
	}}
	sessionRepo := &memSessionRepo{sessions: map[string]*identitydomain.Session{}}
	roleRepo := &memRoleRepo{assignments: map[string]rolesdomain.Assignment{
		"u-shopper": rolesdomain.NewAssignment(rolesdomain.RoleConsumer),
		"u-seller":  rolesdomain.NewAssignment(rolesdomain.RoleSeller),
		"u-admin":   rolesdomain.NewAssignment(rolesdomain.RoleAdmin),
	}}

	identity := identityservice.NewService(userRepo, sessionRepo, hasher, tokens, nil)
	directory := roles.NewDirectory(roleRepo, time.Minute, nil)
	catalog := catalogservice.NewService(&memProductRepo{products: map[string]*catalogdomain.Product{}}, nil)

	handler := New(Deps{
		Resolver:   apphost.NewResolver("", ""),
		Identity:   identity,
		Roles:      directory,
		Catalog:    cataloghandler.NewHandler(catalog, nil),
		RoleAdm:    roleshandler.NewHandler(roleRepo, directory, nil),
		Policies:   policyhandler.NewHandler(memPolicyRepo{}, nil),
		CookieName: "storefront_session",
		VerifyWait: 2 * time.Second,
	})
	return &testGateway{handler: handler, roleRepo: roleRepo, identity: identity}
}

// signIn performs a form sign-in on loginPath and returns the session cookie.
func (g *testGateway) signIn(t *testing.T, loginPath, email string) *http.Cookie {
	t.Helper()
	form := url.Values{"email": {email}, "password": {"CorrectHorse9!aa"}}
	req := httptest.NewRequest(http.MethodPost, loginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("sign-in status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "storefront_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func (g *testGateway) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicSurfaces(t *testing.T) {
	g := newTestGateway(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/", http.StatusOK},
		{"/products", http.StatusOK},
		{"/login", http.StatusOK},
		{"/seller", http.StatusOK},
		{"/seller/login", http.StatusOK},
		{"/admin/login", http.StatusOK},
		{"/healthz", http.StatusOK},
	}
	for _, tt := range tests {
		if rec := g.get(tt.path, nil); rec.Code != tt.wantStatus {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantStatus)
		}
	}
}

func TestRouter_UnauthenticatedRedirects(t *testing.T) {
	g := newTestGateway(t)

	tests := []struct {
		path         string
		wantLocation string
	}{
		{"/seller/dashboard", "/seller/login"},
		{"/admin", "/admin/login"},
		{"/account", "/login"},
	}
	for _, tt := range tests {
		rec := g.get(tt.path, nil)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("GET %s = %d, want 303", tt.path, rec.Code)
			continue
		}
		if got := rec.Header().Get("Location"); got != tt.wantLocation {
			t.Errorf("GET %s Location = %q, want %q", tt.path, got, tt.wantLocation)
		}
	}
}

func TestRouter_SellerCanReachDashboard(t *testing.T) {
	g := newTestGateway(t)
	cookie := g.signIn(t, "/seller/login", "seller@example.com")

	rec := g.get("/seller/dashboard", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "seller@example.com") {
		t.Fatalf("dashboard should greet the signed-in seller: %s", rec.Body.String())
	}
}

func TestRouter_ConsumerDeniedOnSellerApp(t *testing.T) {
	g := newTestGateway(t)
	cookie := g.signIn(t, "/login", "shopper@example.com")

	rec := g.get("/seller/dashboard", cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Fatalf("denial must not redirect, got Location %q", loc)
	}
	if !strings.Contains(rec.Body.String(), `href="/"`) {
		t.Fatalf("denial panel should link back to the shop: %s", rec.Body.String())
	}
}

func TestRouter_SubdomainResolution(t *testing.T) {
	g := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Host = "seller.shop.example"
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Seller sign in") {
		t.Fatalf("expected the seller login form: %s", rec.Body.String())
	}
}

func TestRouter_CatchAllsRedirectToAppEntry(t *testing.T) {
	g := newTestGateway(t)

	tests := []struct {
		path         string
		wantLocation string
	}{
		{"/no-such-page", "/"},
		{"/seller/no-such-page", "/seller"},
		{"/admin/no-such-page", "/admin/login"},
	}
	for _, tt := range tests {
		rec := g.get(tt.path, nil)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("GET %s = %d, want 303", tt.path, rec.Code)
			continue
		}
		if got := rec.Header().Get("Location"); got != tt.wantLocation {
			t.Errorf("GET %s Location = %q, want %q", tt.path, got, tt.wantLocation)
		}
	}
}

func TestRouter_RoleGrantTakesEffectImmediately(t *testing.T) {
	g := newTestGateway(t)
	shopper := g.signIn(t, "/login", "shopper@example.com")
	admin := g.signIn(t, "/admin/login", "admin@example.com")

	if rec := g.get("/seller/dashboard", shopper); rec.Code != http.StatusForbidden {
		t.Fatalf("pre-grant status = %d, want 403", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPut, "/admin/users/u-shopper/roles/seller", nil)
	req.AddCookie(admin)
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("grant status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	// The grant invalidates the shopper's cached assignment, so the very
	// next evaluation sees the new role.
	if rec := g.get("/seller/dashboard", shopper); rec.Code != http.StatusOK {
		t.Fatalf("post-grant status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SignOutEndsAccess(t *testing.T) {
	g := newTestGateway(t)
	cookie := g.signIn(t, "/seller/login", "seller@example.com")

	req := httptest.NewRequest(http.MethodPost, "/seller/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want 303", rec.Code)
	}

	after := g.get("/seller/dashboard", cookie)
	if after.Code != http.StatusSeeOther {
		t.Fatalf("post-logout status = %d, want 303 redirect to login", after.Code)
	}
	if got := after.Header().Get("Location"); got != "/seller/login" {
		t.Fatalf("Location = %q, want /seller/login", got)
	}
}
