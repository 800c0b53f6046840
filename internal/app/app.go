package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aldermoor/storefront/internal/auth"
	"github.com/aldermoor/storefront/internal/config"
	"github.com/aldermoor/storefront/internal/event"
	handler "github.com/aldermoor/storefront/internal/handler/http"
	"github.com/aldermoor/storefront/internal/repository"
	"github.com/aldermoor/storefront/internal/repository/postgres"
	"github.com/aldermoor/storefront/internal/service"
	"github.com/aldermoor/storefront/migrations"
	"github.com/aldermoor/storefront/pkg/database"
	"github.com/aldermoor/storefront/pkg/health"
	pkgkafka "github.com/aldermoor/storefront/pkg/kafka"
	"github.com/aldermoor/storefront/pkg/middleware"
	"github.com/aldermoor/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	tokenRepo      repository.RefreshTokenRepository
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:      cfg.TracingEnabled,
		Endpoint:     cfg.TracingEndpoint,
		ServiceName:  cfg.ServiceName,
		SampleRatio:  cfg.TracingSample,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	prometheus.MustRegister(database.NewPoolStatsCollector(pool, cfg.PostgresDB))

	if err := database.RunMigrations(ctx, pool, migrations.FS, migrations.Dir, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	jwtManager, err := auth.NewJWTManager(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.JWTAccessExpiry,
		cfg.JWTRefreshExpiry,
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init jwt manager: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	postRepo := postgres.NewPostRepository(pool)
	wishlistRepo := postgres.NewWishlistRepository(pool)

	eventProducer := event.NewProducer(producer, logger)

	authService := service.NewAuthService(userRepo, tokenRepo, jwtManager, hasher, eventProducer, logger)
	userService := service.NewUserService(userRepo, tokenRepo, hasher, eventProducer, logger)
	productService := service.NewProductService(productRepo, logger)
	postService := service.NewPostService(postRepo, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(
		authService,
		userService,
		productService,
		postService,
		wishlistService,
		healthHandler,
		logger,
		handler.RouterConfig{
			CORS:             corsCfg,
			AuthRateRPS:      cfg.AuthRateLimitRPS,
			AuthRateBurst:    cfg.AuthRateLimitBurst,
			ProductCacheSecs: 60,
		},
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		tokenRepo:      tokenRepo,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.sweepExpiredTokens(ctx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// sweepExpiredTokens periodically removes refresh token rows whose expiry has
// passed. Expired rows are already rejected at refresh time; this keeps the
// table from growing unbounded.
func (a *App) sweepExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := a.tokenRepo.DeleteExpired(sweepCtx)
			cancel()
			if err != nil {
				a.logger.Error("expired token sweep failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				a.logger.Info("swept expired refresh tokens", slog.Int64("removed", n))
			}
		}
	}
}

// Shutdown gracefully stops all components in order: HTTP server first so
// in-flight requests drain, then the tracer flush, the Kafka producer, and
// finally the connection pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
