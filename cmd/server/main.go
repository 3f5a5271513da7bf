package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health"

	"techtrends/backend/internal/audit"
	audithandler "techtrends/backend/internal/audit/handler"
	auditrepo "techtrends/backend/internal/audit/repository"
	"techtrends/backend/internal/config"
	"techtrends/backend/internal/db"
	healthpkg "techtrends/backend/internal/health"
	healthhandler "techtrends/backend/internal/health/handler"
	identityhandler "techtrends/backend/internal/identity/handler"
	identityrepo "techtrends/backend/internal/identity/repository"
	identityservice "techtrends/backend/internal/identity/service"
	jobtelemetryhandler "techtrends/backend/internal/jobtelemetry/handler"
	jobtelemetryrepo "techtrends/backend/internal/jobtelemetry/repository"
	"techtrends/backend/internal/policy/engine"
	savingshandler "techtrends/backend/internal/savings/handler"
	savingsrepo "techtrends/backend/internal/savings/repository"
	savingsservice "techtrends/backend/internal/savings/service"
	"techtrends/backend/internal/security"
	"techtrends/backend/internal/server"
	"techtrends/backend/internal/telemetry"
	telemetryotel "techtrends/backend/internal/telemetry/otel"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	emitter := telemetryotel.NewEventEmitter(providers.LoggerProvider)

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	authz, err := loadPolicy(ctx, cfg.AuthzPolicyFile)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	tokens, err := loadTokens(cfg)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}
	auth, err := identityservice.NewAuthService(
		identityrepo.NewPostgresRepository(conn),
		security.NewHasher(cfg.BcryptCost),
		tokens,
	)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	audits := auditrepo.NewPostgresRepository(conn)

	checker := healthpkg.NewChecker(conn, authz)
	grpcHealth := health.NewServer()
	go checker.Watch(ctx, healthInterval, grpcHealth)

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewHTTPHandler(server.Deps{
			Savings:      savingshandler.NewServer(savingsservice.NewAggregator(savingsrepo.NewPostgresReader(conn))),
			JobTelemetry: jobtelemetryhandler.NewServer(jobtelemetryrepo.NewPostgresRepository(conn)),
			Identity:     identityhandler.NewServer(auth),
			AuditLogs:    audithandler.NewServer(audits),
			Health:       healthhandler.NewServer(checker),
			Tokens:       tokens,
			Authz:        authz,
			Audit:        audit.NewLogger(audits),
			Emitter:      emitter,
			AuthDisabled: cfg.AuthDisabled,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.AuthDisabled {
		log.Println("server: AUTH_DISABLED is set; every request runs as the development admin")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	grpcSrv := server.NewGRPCServer(grpcHealth)

	go func() {
		log.Printf("gRPC health server listening on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down servers...")
	grpcHealth.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	grpcSrv.GracefulStop()

	// Let in-flight async telemetry emits finish before the exporters close.
	time.Sleep(telemetry.ShutdownDrainDuration)
	otelCtx, otelCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer otelCancel()
	if err := providers.Shutdown(otelCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("servers stopped")
}

func loadPolicy(ctx context.Context, path string) (*engine.OPAEvaluator, error) {
	if path == "" {
		return engine.NewOPAEvaluator(ctx, "")
	}
	log.Printf("policy: loading %s", path)
	return engine.NewOPAEvaluatorFromFile(ctx, path)
}

// loadTokens builds the token provider from the configured key pair. Outside production a
// missing pair falls back to an ephemeral key, so tokens do not survive a restart.
func loadTokens(cfg *config.Config) (*security.TokenProvider, error) {
	if cfg.JWTPrivateKey != "" || cfg.JWTPublicKey != "" {
		return security.NewTokenProviderFromPEM(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	}
	if cfg.Env == "production" {
		return nil, errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required when APP_ENV=production")
	}
	log.Println("jwt: no key pair configured; using an ephemeral signing key")
	return security.NewEphemeralTokenProvider(cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
}
