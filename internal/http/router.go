// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/vanzoel/chatguard/docs"
	"github.com/vanzoel/chatguard/internal/auth"
	"github.com/vanzoel/chatguard/internal/config"
	"github.com/vanzoel/chatguard/internal/domain"
	"github.com/vanzoel/chatguard/internal/http/handlers"
	"github.com/vanzoel/chatguard/internal/http/middleware"
	"github.com/vanzoel/chatguard/internal/locks"
	"github.com/vanzoel/chatguard/internal/repo"
)

// lockStoreShim adapts the repository free functions to the locks.Store
// interface expected by the lock engine. This keeps the engine decoupled from
// the concrete repo package while reusing existing functions.
type lockStoreShim struct {
	db *gorm.DB
}

// Replace proxies repo.ReplaceLock.
func (s lockStoreShim) Replace(ctx context.Context, entry *domain.LockEntry) error {
	return repo.ReplaceLock(ctx, s.db, entry)
}

// GetActive proxies repo.GetActiveLock.
func (s lockStoreShim) GetActive(ctx context.Context, chatID, userID int64) (*domain.LockEntry, error) {
	return repo.GetActiveLock(ctx, s.db, chatID, userID)
}

// Deactivate proxies repo.DeactivateLock.
func (s lockStoreShim) Deactivate(ctx context.Context, chatID, userID int64, at time.Time) error {
	return repo.DeactivateLock(ctx, s.db, chatID, userID, at)
}

// CountActive proxies repo.CountActiveLocks.
func (s lockStoreShim) CountActive(ctx context.Context, chatID int64) (int64, error) {
	return repo.CountActiveLocks(ctx, s.db, chatID)
}

// ListActivePage proxies repo.ListActiveLocksPage.
func (s lockStoreShim) ListActivePage(ctx context.Context, chatID int64, offset, limit int) ([]domain.LockEntry, error) {
	return repo.ListActiveLocksPage(ctx, s.db, chatID, offset, limit)
}

// DeactivateChat proxies repo.DeactivateChatLocks.
func (s lockStoreShim) DeactivateChat(ctx context.Context, chatID int64, at time.Time) (int64, error) {
	return repo.DeactivateChatLocks(ctx, s.db, chatID, at)
}

// DeactivateStale proxies repo.DeactivateStaleLocks.
func (s lockStoreShim) DeactivateStale(ctx context.Context, cutoff, at time.Time) (int64, error) {
	return repo.DeactivateStaleLocks(ctx, s.db, cutoff, at)
}

// Stats proxies repo.LockStats.
func (s lockStoreShim) Stats(ctx context.Context) (domain.LockStats, error) {
	return repo.LockStats(ctx, s.db)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression and
// rate limiting, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Structured request logging
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, authSvc *auth.Service, engine *locks.Engine, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress larger list/stat responses
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API documentation
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))
	}

	h := handlers.New(authSvc, engine)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Roles
		api.GET("/chats/:chat_id/roles/:user_id", h.GetRoleInfo)
		api.POST("/cache/clear", h.ClearCache)

		// Locks (chat scope)
		api.POST("/chats/:chat_id/locks", h.CreateLock)
		api.GET("/chats/:chat_id/locks", h.ListLocks)
		api.DELETE("/chats/:chat_id/locks", h.ClearChatLocks)
		api.GET("/chats/:chat_id/locks/:user_id", h.GetLockStatus)
		api.DELETE("/chats/:chat_id/locks/:user_id", h.DeleteLock)

		// Locks (global scope)
		api.GET("/locks/stats", h.LockStats)
		api.POST("/locks/cleanup", h.CleanupLocks)
	}
}

// NewLockEngine builds the lock engine on top of the GORM-backed store.
// Exposed for main, which owns the database handle and the role resolver.
// maxAge is the default stale-lock horizon for cleanups.
func NewLockEngine(db *gorm.DB, roles locks.RoleResolver, maxAge time.Duration) *locks.Engine {
	return locks.NewEngine(lockStoreShim{db: db}, roles, nil, maxAge)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
