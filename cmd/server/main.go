package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront-gateway/internal/apphost"
	"storefront-gateway/internal/audit"
	auditproducer "storefront-gateway/internal/audit/producer"
	auditrepo "storefront-gateway/internal/audit/repository"
	cataloghandler "storefront-gateway/internal/catalog/handler"
	catalogrepo "storefront-gateway/internal/catalog/repository"
	catalogservice "storefront-gateway/internal/catalog/service"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/db"
	identityrepo "storefront-gateway/internal/identity/repository"
	identityservice "storefront-gateway/internal/identity/service"
	"storefront-gateway/internal/policy/engine"
	policyhandler "storefront-gateway/internal/policy/handler"
	policyrepo "storefront-gateway/internal/policy/repository"
	"storefront-gateway/internal/roles"
	roleshandler "storefront-gateway/internal/roles/handler"
	rolesrepo "storefront-gateway/internal/roles/repository"
	"storefront-gateway/internal/security"
	"storefront-gateway/internal/server"
	"storefront-gateway/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "storefront-gateway", cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal("telemetry", zap.Error(err))
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer conn.Close()

	signer, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logger.Fatal("JWT_PRIVATE_KEY", zap.Error(err))
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		logger.Fatal("JWT_PUBLIC_KEY", zap.Error(err))
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionLifetime())
	hasher := security.NewHasher(cfg.BcryptCost)

	identity := identityservice.NewService(
		identityrepo.NewPostgresUserRepository(conn),
		identityrepo.NewPostgresSessionRepository(conn),
		hasher, tokens, logger)
	roleRepo := rolesrepo.NewPostgresRepository(conn)
	directory := roles.NewDirectory(roleRepo, cfg.RoleCacheLifetime(), logger)
	catalog := catalogservice.NewService(catalogrepo.NewPostgresRepository(conn), logger)

	producer, err := auditproducer.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic)
	if err != nil {
		logger.Fatal("kafka producer", zap.Error(err))
	}
	defer func() { _ = producer.Close() }()

	var publisher audit.Publisher
	if producer != nil {
		publisher = producer
	}
	recorder := audit.NewLogger(auditrepo.NewPostgresRepository(conn), publisher, logger)

	policies := policyrepo.NewPostgresRepository(conn)
	evaluator := engine.NewOPAEvaluator(policies, logger)
	if err := evaluator.HealthCheck(ctx); err != nil {
		logger.Fatal("policy engine", zap.Error(err))
	}

	handler := server.New(server.Deps{
		Resolver:     apphost.NewResolver(cfg.SellerSubdomain, cfg.AdminSubdomain),
		Identity:     identity,
		Roles:        directory,
		Policy:       evaluator,
		Recorder:     recorder,
		Catalog:      cataloghandler.NewHandler(catalog, logger),
		RoleAdm:      roleshandler.NewHandler(roleRepo, directory, logger),
		Policies:     policyhandler.NewHandler(policies, logger),
		CookieName:   cfg.SessionCookie,
		SecureCookie: cfg.Env == "production",
		VerifyWait:   cfg.VerifyWaitDuration(),
		Health:       func(ctx context.Context) error { return conn.PingContext(ctx) },
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("gateway listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("gateway stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
