package apphost

import "testing"

func TestResolve_SubdomainBeatsPath(t *testing.T) {
	r := NewResolver("", "")

	testCases := []struct {
		name         string
		host         string
		path         string
		wantApp      App
		wantBasePath string
		wantViaSub   bool
	}{
		{"seller subdomain plain path", "seller.shop.example", "/", AppSeller, "/seller", true},
		{"seller subdomain admin path", "seller.shop.example", "/admin/dashboard", AppSeller, "/seller", true},
		{"admin subdomain seller path", "admin.shop.example", "/seller/products", AppAdmin, "/admin", true},
		{"admin subdomain with port", "admin.shop.example:8443", "/", AppAdmin, "/admin", true},
		{"mixed case host", "Seller.Shop.Example", "/", AppSeller, "/seller", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(tc.host, tc.path)
			if got.App != tc.wantApp {
				t.Errorf("app = %q, want %q", got.App, tc.wantApp)
			}
			if got.BasePath != tc.wantBasePath {
				t.Errorf("base path = %q, want %q", got.BasePath, tc.wantBasePath)
			}
			if got.ViaSubdomain != tc.wantViaSub {
				t.Errorf("via subdomain = %v, want %v", got.ViaSubdomain, tc.wantViaSub)
			}
		})
	}
}

func TestResolve_PathFallback(t *testing.T) {
	r := NewResolver("", "")

	testCases := []struct {
		name    string
		host    string
		path    string
		wantApp App
	}{
		{"seller path", "shop.example", "/seller", AppSeller},
		{"seller subpath", "shop.example", "/seller/products/42", AppSeller},
		{"admin path", "shop.example", "/admin", AppAdmin},
		{"admin subpath", "shop.example", "/admin/users", AppAdmin},
		{"root", "shop.example", "/", AppCustomer},
		{"catalog path", "shop.example", "/products/42", AppCustomer},
		{"prefix not at segment boundary", "shop.example", "/sellers", AppCustomer},
		{"admin prefix not at boundary", "shop.example", "/administration", AppCustomer},
		{"empty path", "shop.example", "", AppCustomer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(tc.host, tc.path)
			if got.App != tc.wantApp {
				t.Errorf("app = %q, want %q", got.App, tc.wantApp)
			}
			if got.ViaSubdomain {
				t.Errorf("via subdomain = true for path-based resolution")
			}
		})
	}
}

func TestResolve_CustomMarkers(t *testing.T) {
	r := NewResolver("portal.", "console.")

	if got := r.Resolve("portal.shop.example", "/"); got.App != AppSeller {
		t.Errorf("app = %q, want %q", got.App, AppSeller)
	}
	if got := r.Resolve("console.shop.example", "/"); got.App != AppAdmin {
		t.Errorf("app = %q, want %q", got.App, AppAdmin)
	}
	// Default markers no longer apply.
	if got := r.Resolve("seller.shop.example", "/"); got.App != AppCustomer {
		t.Errorf("app = %q, want %q", got.App, AppCustomer)
	}
}

func TestResolve_CustomerBasePathEmpty(t *testing.T) {
	r := NewResolver("", "")
	got := r.Resolve("shop.example", "/products")
	if got.BasePath != "" {
		t.Errorf("base path = %q, want empty", got.BasePath)
	}
}
