package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "storefront-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "storefront-auth")
	}
	if cfg.JWTAudience != "storefront-web" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "storefront-web")
	}
	if cfg.SessionTTL != "24h" {
		t.Errorf("SessionTTL = %q, want %q", cfg.SessionTTL, "24h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.SellerSubdomain != "seller." {
		t.Errorf("SellerSubdomain = %q, want %q", cfg.SellerSubdomain, "seller.")
	}
	if cfg.AdminSubdomain != "admin." {
		t.Errorf("AdminSubdomain = %q, want %q", cfg.AdminSubdomain, "admin.")
	}
	if cfg.SessionCookie != "storefront_session" {
		t.Errorf("SessionCookie = %q, want %q", cfg.SessionCookie, "storefront_session")
	}
	if cfg.AuditKafkaTopic != "storefront-audit" {
		t.Errorf("AuditKafkaTopic = %q, want %q", cfg.AuditKafkaTopic, "storefront-audit")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("SELLER_SUBDOMAIN", "portal.")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.SellerSubdomain != "portal." {
		t.Errorf("SellerSubdomain = %q, want %q", cfg.SellerSubdomain, "portal.")
	}
}

func TestLoad_Failure_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for BCRYPT_COST out of range")
	}
}

func TestDurationAccessors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		got  func(*Config) time.Duration
		want time.Duration
	}{
		{"session ttl valid", Config{SessionTTL: "1h"}, (*Config).SessionLifetime, time.Hour},
		{"session ttl invalid", Config{SessionTTL: "bogus"}, (*Config).SessionLifetime, 24 * time.Hour},
		{"session ttl empty", Config{}, (*Config).SessionLifetime, 24 * time.Hour},
		{"role cache valid", Config{RoleCacheTTL: "10s"}, (*Config).RoleCacheLifetime, 10 * time.Second},
		{"role cache negative", Config{RoleCacheTTL: "-5s"}, (*Config).RoleCacheLifetime, 30 * time.Second},
		{"verify wait valid", Config{VerifyWait: "500ms"}, (*Config).VerifyWaitDuration, 500 * time.Millisecond},
		{"verify wait empty", Config{}, (*Config).VerifyWaitDuration, 3 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if d := tc.got(&tc.cfg); d != tc.want {
				t.Errorf("duration = %v, want %v", d, tc.want)
			}
		})
	}
}

func TestAuditKafkaBrokersList(t *testing.T) {
	testCases := []struct {
		name    string
		brokers string
		want    int
	}{
		{"empty", "", 0},
		{"single", "localhost:9092", 1},
		{"multiple with spaces", "a:9092, b:9092 ,c:9092", 3},
		{"trailing comma", "a:9092,", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{AuditKafkaBrokers: tc.brokers}
			if got := cfg.AuditKafkaBrokersList(); len(got) != tc.want {
				t.Errorf("len = %d, want %d (%v)", len(got), tc.want, got)
			}
		})
	}
}
