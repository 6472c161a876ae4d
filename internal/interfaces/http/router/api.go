package router

import (
	"time"

	"github.com/gin-gonic/gin"
	applead "github.com/minicrm/backend/internal/application/lead"
	"github.com/minicrm/backend/internal/application/identity"
	"github.com/minicrm/backend/internal/infrastructure/cache"
	"github.com/minicrm/backend/internal/infrastructure/config"
	"github.com/minicrm/backend/internal/infrastructure/logger"
	"github.com/minicrm/backend/internal/infrastructure/telemetry"
	"github.com/minicrm/backend/internal/interfaces/http/handler"
	"github.com/minicrm/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP API is built on
type Dependencies struct {
	Leads    *applead.Service
	Auth     *identity.AuthService
	Sessions middleware.TokenValidator
	DB       handler.Pinger
	// LoginLimiter throttles login attempts; nil disables throttling
	LoginLimiter cache.RateLimitStore
	// Meter exports HTTP metrics; nil disables them
	Meter  *telemetry.MeterProvider
	Logger *zap.Logger
}

// NewEngine assembles the gin engine with the middleware stack and all routes
func NewEngine(cfg *config.Config, deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order: request ID, tracing, metrics, recovery, access log, security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: deps.Meter,
		Logger:        log,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", handler.NewHealthHandler(deps.DB).Health)
	if cfg.HTTP.SwaggerEnabled {
		mountSwagger(engine)
		log.Info("API docs served at /swagger/index.html")
	}

	leadHandler := handler.NewLeadHandler(deps.Leads)
	authHandler := handler.NewAuthHandler(deps.Auth)

	leadRoutes := NewDomainGroup("leads", "/leads")
	if cfg.Session.Required {
		leadRoutes.Use(middleware.RequireSession(deps.Sessions))
		log.Info("Session token required on lead routes")
	}
	leadRoutes.
		GET("", leadHandler.List).
		POST("", leadHandler.Create).
		PUT("/:id", leadHandler.Update).
		DELETE("/:id", leadHandler.Delete)

	authRoutes := NewDomainGroup("auth", "/auth")
	if deps.LoginLimiter != nil {
		authRoutes.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Store:        deps.LoginLimiter,
			KeyPrefix:    "login:",
			FailuresOnly: true,
			Logger:       log,
		}))
		log.Info("Login rate limiting enabled", zap.Int("failed_attempts", deps.LoginLimiter.Limit()))
	}
	authRoutes.POST("/login", authHandler.Login)

	NewRouter(engine).
		Register(leadRoutes).
		Register(authRoutes).
		Setup()

	return engine
}
