package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/config"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/handlers"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
)

// AuthService is the account lifecycle plus access token resolution.
type AuthService interface {
	handlers.AuthUsecase
	middleware.Authenticator
}

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     AuthService
	Contacts handlers.ContactUsecase
	Profiles handlers.ProfileUsecase
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config         *config.AppConfig
	Logger         *zap.Logger
	RateLimiter    *middleware.RateLimiter
	Services       ServiceSet
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	TracerProvider trace.TracerProvider
	Database       DatabaseChecker
	Cache          CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	handlers.Prober
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Tracing(deps.Config.Telemetry.ServiceName, deps.TracerProvider))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.Metrics.Handler())

	healthOptions := make([]handlers.HealthOption, 0, 3)
	if deps.Database != nil {
		healthOptions = append(healthOptions,
			handlers.WithReadinessCheck("database", deps.Database.Ping),
			handlers.WithDatabaseProber(deps.Database),
		)
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))

	api := r.Group("/api")
	api.GET("/health_checker", healthHandler.Database)

	if auth := deps.Services.Auth; auth != nil {
		requireAuth := middleware.RequireAuth(auth)

		handlers.NewAuthHandler(auth, handlers.WithPublicURL(deps.Config.App.PublicURL)).
			RegisterRoutes(api.Group("/auth"))

		if deps.Services.Contacts != nil {
			contactMiddlewares := append([]gin.HandlerFunc{requireAuth}, contactsRateLimit(deps)...)
			handlers.NewContactHandler(deps.Services.Contacts).
				RegisterRoutes(api.Group("/contacts"), contactMiddlewares...)
		}

		if deps.Services.Profiles != nil {
			handlers.NewUserHandler(deps.Services.Profiles, deps.Config.HTTP.MaxUploadBytes).
				RegisterRoutes(api.Group("/users", requireAuth), avatarRateLimit(deps)...)
		}

		r.GET("/admin", requireAuth, middleware.RequireRole(domain.RoleAdmin), handlers.Admin)
	}

	handlers.RegisterSwagger(r)

	return r
}

func contactsRateLimit(deps Dependencies) []gin.HandlerFunc {
	cfg := deps.Config.RateLimit
	return rateLimit(deps, "contacts", cfg.ContactsMaxRequests, cfg.ContactsWindow)
}

func avatarRateLimit(deps Dependencies) []gin.HandlerFunc {
	cfg := deps.Config.RateLimit
	return rateLimit(deps, "avatar", cfg.AvatarMaxRequests, cfg.AvatarWindow)
}

func rateLimit(deps Dependencies, name string, limit int, window time.Duration) []gin.HandlerFunc {
	if deps.RateLimiter == nil || !deps.Config.RateLimit.Enabled || limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = 20 * time.Second
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.PrincipalIdentifier(),
	}
	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
