// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP gateway listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; signs session tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; verifies session tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "storefront-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "storefront-web").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// SessionTTL is the session token lifetime (e.g. "24h").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// SellerSubdomain is the hostname prefix that routes to the seller portal (default "seller.").
	SellerSubdomain string `mapstructure:"SELLER_SUBDOMAIN"`
	// AdminSubdomain is the hostname prefix that routes to the admin console (default "admin.").
	AdminSubdomain string `mapstructure:"ADMIN_SUBDOMAIN"`

	// SessionCookie is the name of the session cookie (default "storefront_session").
	SessionCookie string `mapstructure:"SESSION_COOKIE"`
	// RoleCacheTTL bounds how long a principal's role set may be served from
	// the in-memory snapshot before a fresh lookup (e.g. "30s").
	RoleCacheTTL string `mapstructure:"ROLE_CACHE_TTL"`
	// VerifyWait bounds how long a protected request waits on session/role
	// resolution before the gate renders the verifying page (e.g. "3s").
	VerifyWait string `mapstructure:"VERIFY_WAIT"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317); empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// AuditKafkaBrokers is a comma-separated list of Kafka broker addresses; when set,
	// access decisions are also published to Kafka.
	AuditKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for access-decision events (default storefront-audit).
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "storefront-auth")
	v.SetDefault("JWT_AUDIENCE", "storefront-web")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SELLER_SUBDOMAIN", "seller.")
	v.SetDefault("ADMIN_SUBDOMAIN", "admin.")
	v.SetDefault("SESSION_COOKIE", "storefront_session")
	v.SetDefault("ROLE_CACHE_TTL", "30s")
	v.SetDefault("VERIFY_WAIT", "3s")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "storefront-audit")
	v.SetDefault("KAFKA_GROUP_ID", "storefront-audit-worker")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// SessionLifetime parses SessionTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) SessionLifetime() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// RoleCacheLifetime parses RoleCacheTTL as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) RoleCacheLifetime() time.Duration {
	d, err := time.ParseDuration(c.RoleCacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// VerifyWaitDuration parses VerifyWait as a time.Duration. Returns 3s if unset or invalid.
func (c *Config) VerifyWaitDuration() time.Duration {
	d, err := time.ParseDuration(c.VerifyWait)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// AuditKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka audit publishing is enabled (non-empty list) and to create the producer.
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil || c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
