package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrValraven/greendash-core/internal/auth"
	"github.com/MrValraven/greendash-core/internal/config"
	"github.com/MrValraven/greendash-core/internal/event"
	handler "github.com/MrValraven/greendash-core/internal/handler/http"
	"github.com/MrValraven/greendash-core/internal/notify"
	"github.com/MrValraven/greendash-core/internal/oauth"
	"github.com/MrValraven/greendash-core/internal/repository/postgres"
	"github.com/MrValraven/greendash-core/internal/service"
	"github.com/MrValraven/greendash-core/pkg/database"
	"github.com/MrValraven/greendash-core/pkg/health"
	"github.com/MrValraven/greendash-core/pkg/httpclient"
	pkgkafka "github.com/MrValraven/greendash-core/pkg/kafka"
)

// App wires together all dependencies and runs the account service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "auth")

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Token manager with a distinct secret per purpose.
	tokens, err := auth.NewTokenManager(map[auth.Purpose]auth.PurposeKey{
		auth.PurposeAccess:        {Secret: []byte(cfg.AccessTokenSecret), TTL: cfg.AccessTokenTTL},
		auth.PurposeRefresh:       {Secret: []byte(cfg.RefreshTokenSecret), TTL: cfg.RefreshTokenTTL},
		auth.PurposeVerifyEmail:   {Secret: []byte(cfg.VerifyEmailTokenSecret), TTL: cfg.VerifyEmailTokenTTL},
		auth.PurposePasswordReset: {Secret: []byte(cfg.PasswordResetTokenSecret), TTL: cfg.PasswordResetTokenTTL},
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	// Build the dependency graph.
	userRepo := postgres.NewUserRepository(pool)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(pool)
	notifier := notify.NewKafkaNotifier(producer, logger)
	eventProducer := event.NewProducer(producer, logger)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, tokens, notifier, eventProducer, logger, service.Options{
		RequireVerifiedEmail: cfg.RequireVerifiedEmail,
	})

	googleClient := oauth.NewGoogleClient(oauth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, httpclient.New(httpclient.DefaultConfig()), logger)
	googleService := service.NewGoogleAuthService(googleClient, userRepo, authService, logger)

	// Health checks. Kafka is best-effort for request serving, so a broker
	// outage only degrades readiness instead of failing it.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	// HTTP router.
	cookies := handler.CookieConfig{
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	corsConfig := handler.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	}
	router := handler.NewRouter(authService, googleService, tokens, healthHandler, cookies, corsConfig, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: drain in-flight HTTP requests,
// then close the Kafka producer and the PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
