// Package apphost resolves which storefront application owns an incoming
// request, based on the request's hostname and path.
package apphost

import (
	"net"
	"strings"
)

// App identifies one of the three applications served from this deployment.
type App string

const (
	AppCustomer App = "customer"
	AppSeller   App = "seller"
	AppAdmin    App = "admin"
)

// Default subdomain markers. A host like seller.shop.example matches the
// seller marker; admin.shop.example matches the admin marker.
const (
	DefaultSellerSubdomain = "seller."
	DefaultAdminSubdomain  = "admin."
)

// Resolution is the outcome of resolving a request to an application.
// BasePath is the path prefix the application's routes are mounted under
// ("" for customer, "/seller" for seller, "/admin" for admin). ViaSubdomain
// reports whether the subdomain marker decided the resolution; on subdomain
// deployments request paths usually arrive without the base path, though a
// redirect target may still carry it.
type Resolution struct {
	App          App
	BasePath     string
	ViaSubdomain bool
}

// Resolver maps a request's host and path to an application.
type Resolver struct {
	sellerSubdomain string
	adminSubdomain  string
}

// NewResolver returns a Resolver using the given subdomain markers.
// Empty markers fall back to the defaults.
func NewResolver(sellerSubdomain, adminSubdomain string) *Resolver {
	if sellerSubdomain == "" {
		sellerSubdomain = DefaultSellerSubdomain
	}
	if adminSubdomain == "" {
		adminSubdomain = DefaultAdminSubdomain
	}
	return &Resolver{sellerSubdomain: sellerSubdomain, adminSubdomain: adminSubdomain}
}

// Resolve maps host and path to an application. Resolution is total: it
// always terminates in the customer app when no rule matches.
//
// Priority order, first match wins:
//  1. host begins with the seller subdomain marker
//  2. host begins with the admin subdomain marker
//  3. path begins with /seller
//  4. path begins with /admin
//  5. customer (default)
//
// Subdomain rules outrank path rules so that a production subdomain
// deployment is never misclassified by a path prefix it happens to share
// with a path-routed environment.
func (r *Resolver) Resolve(host, path string) Resolution {
	h := normalizeHost(host)
	switch {
	case strings.HasPrefix(h, r.sellerSubdomain):
		return Resolution{App: AppSeller, BasePath: "/seller", ViaSubdomain: true}
	case strings.HasPrefix(h, r.adminSubdomain):
		return Resolution{App: AppAdmin, BasePath: "/admin", ViaSubdomain: true}
	case hasPathPrefix(path, "/seller"):
		return Resolution{App: AppSeller, BasePath: "/seller"}
	case hasPathPrefix(path, "/admin"):
		return Resolution{App: AppAdmin, BasePath: "/admin"}
	default:
		return Resolution{App: AppCustomer, BasePath: ""}
	}
}

// normalizeHost lowercases the host and strips any port so that
// "Seller.shop.example:8443" matches the seller marker.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// hasPathPrefix reports whether path starts with prefix at a path-segment
// boundary, so /sellers does not match /seller.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
