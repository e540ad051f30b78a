package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Hitesh-Saha/FeastAI/config"
	"github.com/Hitesh-Saha/FeastAI/internal/api"
	"github.com/Hitesh-Saha/FeastAI/internal/middleware"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer is built from. Redis is optional.
type Deps struct {
	DB         HealthChecker
	Redis      *redis.Client
	Auth       *service.AuthService
	Generation *service.GenerationService
	Recipes    *service.RecipeService
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	deps   Deps
	log    logrus.FieldLogger
}

// New wires middleware and routes.
func New(cfg *config.Config, deps Deps, log logrus.FieldLogger) *Server {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(log), middleware.Recovery())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.AllowedOrigins))
	}
	router.Use(middleware.Session(deps.Auth))
	router.NoRoute(middleware.NoRoute())

	s := &Server{
		router: router,
		deps:   deps,
		log:    log.WithField("component", "server"),
	}
	router.GET("/health", s.health)

	var generationLimit gin.HandlerFunc
	if deps.Redis != nil && cfg.GenerationRateLimit > 0 {
		generationLimit = middleware.NewGenerationRateLimiter(deps.Redis, cfg.GenerationRateLimit).RateLimitMiddleware()
	}

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(deps.Auth, cfg.Environment.IsProduction()).RegisterRoutes(v1)
	api.NewRecipeHandler(deps.Generation, deps.Recipes, generationLimit).RegisterRoutes(v1)

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation can run up to the model timeout plus image lookups.
		WriteTimeout: cfg.GenerationTimeout + cfg.ImageLookupTimeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	healthy := true
	if err := s.deps.DB.HealthCheck(ctx); err != nil {
		middleware.Logger(c).WithError(err).Warn("database health check failed")
		checks["database"] = "unavailable"
		healthy = false
	}
	if s.deps.Redis != nil {
		checks["redis"] = "ok"
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			middleware.Logger(c).WithError(err).Warn("redis health check failed")
			checks["redis"] = "unavailable"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"success": healthy,
		"status":  state,
		"checks":  checks,
	})
}
