package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/featureflags"
	"github.com/aryan0dhankhar/ordertrack/internal/handler"
	"github.com/aryan0dhankhar/ordertrack/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/ordertrack/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/ordertrack/internal/observability/tracing"
	"github.com/aryan0dhankhar/ordertrack/internal/reliability/retry"
	"github.com/aryan0dhankhar/ordertrack/internal/repository"
	"github.com/aryan0dhankhar/ordertrack/internal/repository/memory"
	"github.com/aryan0dhankhar/ordertrack/internal/security"
	"github.com/aryan0dhankhar/ordertrack/internal/security/audit"
	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
	"github.com/aryan0dhankhar/ordertrack/internal/security/ratelimit"
	"github.com/aryan0dhankhar/ordertrack/internal/server"
	"github.com/aryan0dhankhar/ordertrack/internal/service"
	"github.com/aryan0dhankhar/ordertrack/pkg/config"
	"github.com/aryan0dhankhar/ordertrack/pkg/database"
)

type stores struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	orders   domain.OrderRepository
}

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting ordertrack server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: "ordertrack",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	}, log)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Storage
	readiness := map[string]handler.Pinger{}
	var repos stores
	if cfg.InMemory() {
		log.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = stores{users: store.Users(), projects: store.Projects(), orders: store.Orders()}
	} else {
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			Retry:           retry.DefaultConfig(),
		}, log)
		if err != nil {
			log.Error("failed to connect to PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		db := pool.GetDB()
		repos = stores{
			users:    repository.NewPostgresUserRepository(db, log),
			projects: repository.NewPostgresProjectRepository(db, log),
			orders:   repository.NewPostgresOrderRepository(db, log),
		}
		readiness["postgres"] = handler.PingFunc(pool.Health)
	}

	// 5. Session revocation (optional Redis)
	var revoker auth.Revoker = auth.NopRevoker{}
	readiness["redis"] = nil
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, retry.DefaultConfig(), log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		revoker = auth.NewRedisRevoker(redisClient)
		readiness["redis"] = redisClient
	} else {
		log.Warn("REDIS_URL not set; logged out tokens stay valid until expiry")
	}

	// 6. Security components
	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			log.Error("failed to generate JWT secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Warn("JWT_SECRET not set; using a random secret, sessions end on restart")
	}
	tokenManager, err := auth.NewTokenManager(secret, auth.DefaultIssuer, cfg.SessionTTL)
	if err != nil {
		log.Error("failed to create token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	auditLogger := audit.NewLogger(log)
	authz := security.NewAuthorizationService(log)
	authLimiter := ratelimit.NewLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	defer authLimiter.Stop()

	// 7. Services
	authService := service.NewAuthService(repos.users, auth.NewPasswordHasher(cfg.BcryptCost),
		tokenManager, revoker, auditLogger, cfg.MinPasswordLength, log)
	approvals := service.NewApprovalService(repos.users, authz, auditLogger, log)
	projects := service.NewProjectService(repos.projects, authz, log)
	orders := service.NewOrderService(repos.orders, projects, authz, service.OrderServiceConfig{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		FlagEnabled:     featureflags.FromEnv().Enabled,
	}, log)

	if cfg.BootstrapAdminEmail != "" {
		if err := bootstrapAdmin(ctx, authService, approvals, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			log.Error("failed to bootstrap admin", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("admin account ready", slog.String("email", cfg.BootstrapAdminEmail))
	}

	// 8. HTTP routes and middleware
	rootHandler := server.NewRouter(server.Dependencies{
		Auth:               authService,
		Approvals:          approvals,
		Projects:           projects,
		Orders:             orders,
		Audit:              auditLogger,
		AuthLimiter:        authLimiter,
		Readiness:          readiness,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SecureCookies:      cfg.SecureCookies(),
		Logger:             log,
	})

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("in_memory", cfg.InMemory()),
		slog.Bool("revocation", cfg.RedisURL != ""),
		slog.Int("auth_rate_limit", cfg.AuthRateLimit),
		slog.Duration("auth_rate_window", cfg.AuthRateWindow),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// bootstrapAdmin registers email when absent and promotes it to an
// approved administrator
func bootstrapAdmin(ctx context.Context, authService *service.AuthService, approvals *service.ApprovalService, email, password string) error {
	_, err := authService.Register(ctx, service.Credentials{Email: email, Password: password})
	if err != nil && !errors.Is(err, domain.ErrEmailTaken) {
		return err
	}
	_, err = approvals.Promote(ctx, email)
	return err
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
