package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/config"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/database"
	kafkainfra "github.com/InkyWorld/goit-web-hw-14/internal/infra/kafka"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/logger"
	redisinfra "github.com/InkyWorld/goit-web-hw-14/internal/infra/redis"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/security"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/storage"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/telemetry"
	postgresrepo "github.com/InkyWorld/goit-web-hw-14/internal/repository/postgres"
	redisrepo "github.com/InkyWorld/goit-web-hw-14/internal/repository/redis"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/routes"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type Application struct {
	cfg     *config.AppConfig
	handler http.Handler
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	kafka   *kafkainfra.Producer
	tracer  *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, Version, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	a := &Application{cfg: cfg, logger: log, tracer: tracer}
	if err := a.connect(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}

	if cfg.Postgres.AutoMigrate {
		if err := database.MigratePool(ctx, a.pool); err != nil {
			a.close(context.Background())
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret:     cfg.JWT.SecretKey,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTTL: cfg.JWT.RefreshTokenTTL,
	})
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("init token service: %w", err)
	}

	policy := security.NewPasswordPolicy(security.PasswordPolicyConfig{
		MinLength:   cfg.Password.MinLength,
		MaxLength:   cfg.Password.MaxLength,
		MinStrength: cfg.Password.MinStrength,
	})

	cacheMetrics, err := telemetry.NewCacheMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("init cache metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	repos := postgresrepo.NewRepositories(a.pool)
	store := redisrepo.NewStore(a.redis.Client())
	sessions := redisrepo.NewSessionCache(store, cfg.Cache.SessionTTL, cacheMetrics)
	contactCache := redisrepo.NewContactCache(store, cfg.Cache.QueryTTL, cacheMetrics)

	rateLimitStore := redisrepo.NewRateLimitRepository(a.redis.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "contacts:rate-limit",
		TTL:       2 * max(cfg.RateLimit.ContactsWindow, cfg.RateLimit.AvatarWindow, time.Minute),
	})

	events := a.eventPublisher()

	var avatars port.AvatarStorage
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewAvatarStore(ctx, cfg.Storage, log)
		if err != nil {
			a.close(context.Background())
			return nil, fmt.Errorf("init avatar storage: %w", err)
		}
		avatars = s3Store
	} else {
		log.Info("avatar storage disabled")
	}

	authService := usecase.NewAuthService(repos.Users, sessions, tokens, hasher, policy, events, log)
	contactService := usecase.NewContactService(repos.Contacts, contactCache, log)
	profileService := usecase.NewProfileService(repos.Users, sessions, avatars, log)

	engine := routes.Register(routes.Dependencies{
		Config:         cfg,
		Logger:         log,
		RateLimiter:    middleware.NewRateLimiter(rateLimitStore, log),
		Metrics:        httpMetrics,
		TracerProvider: tracer.TracerProvider(),
		Database:       database.NewProber(a.pool),
		Cache:          a.redis,
		Services: routes.ServiceSet{
			Auth:     authService,
			Contacts: contactService,
			Profiles: profileService,
		},
	})

	a.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.TraceIDHeader, "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	}).Handler(engine)

	return a, nil
}

// connect opens Postgres and Redis concurrently.
func (a *Application) connect(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pool, err := database.NewPostgresPool(gctx, a.cfg.Postgres, a.logger)
		if err != nil {
			return fmt.Errorf("init postgres: %w", err)
		}
		a.pool = pool

		pingCtx, cancel := context.WithTimeout(gctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		client, err := redisinfra.NewClient(gctx, a.cfg.Redis, a.logger)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		a.redis = client
		return nil
	})

	return g.Wait()
}

func (a *Application) eventPublisher() port.EventPublisher {
	if !a.cfg.Kafka.Enabled || len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka disabled, using stub publisher")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(a.cfg.Kafka, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}
	a.kafka = producer
	a.logger.Info("kafka event publisher initialized", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, a.cfg.App, a.logger)
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.close(context.Background())

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.HTTP.ReadTimeout,
		WriteTimeout:      a.cfg.HTTP.WriteTimeout,
		IdleTimeout:       a.cfg.HTTP.IdleTimeout,
	}

	a.logger.Info("starting contacts API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("version", Version),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		a.logger.Info("shutting down contacts API")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *Application) close(ctx context.Context) {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown tracer", zap.Error(err))
		}
	}
}
