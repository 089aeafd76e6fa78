// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, session auth, idempotency, and rate limiting.
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
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-tutor-backend/docs"
	"github.com/tbourn/go-tutor-backend/internal/config"
	"github.com/tbourn/go-tutor-backend/internal/http/handlers"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger + Recovery: structured logs, panics to JSON 500
//  4. Body size limiter
//  5. Gzip compression
//  6. Metrics
//  7. CORS and security headers
//
// Session auth, idempotency validation, and rate limiting are mounted per
// route group: the idempotency lookup and user-keyed rate limiting both need
// the authenticated identity, so they run after RequireSession.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, chat llm.Chat, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging, then panic recovery
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// 4) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 5) Response compression (transcripts compress well)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture. Cookie-based sessions need credentialed CORS, and
	// browsers reject credentialed responses carrying a wildcard origin, so
	// credentials are only allowed with an explicit allowlist.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Idempotency-Replayed"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Idempotency-Replayed"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   int(cfg.Security.HSTSMaxAge.Seconds()),
		NoStore:      false,
		EnablePolicy: !cfg.SwaggerEnabled,
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

	// API documentation (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/llm
	authSvc := &services.AuthService{
		DB:     db,
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
	}
	chatSvc := &services.ChatService{
		DB:  db,
		LLM: chat,
		Policy: services.ModelPolicy{
			QuantModel:   cfg.Models.QuantModel,
			DefaultModel: cfg.Models.DefaultModel,
			Keywords:     cfg.Models.QuantKeywords,
		},
		MaxPromptRunes: cfg.MaxPromptRunes,
		Log:            log.Logger,
	}
	statsSvc := &services.AnalyticsService{
		DB:          db,
		RecentLimit: cfg.RecentLimit,
		LabelLocale: language.English,
	}

	h := handlers.New(authSvc, chatSvc, statsSvc, db, handlers.CookieOptions{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	})

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	idemLookup := func(ctx context.Context, userID, conversationID uint, key string, now time.Time) (bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, userID, conversationID, key, now)
		if err != nil || rec == nil {
			return false, nil
		}
		return true, nil
	}

	api := groupWithPrefix(r, cfg.APIBasePath)

	// Anonymous endpoints (IP-keyed rate limiting)
	public := api.Group("", rl.Handler())
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
	}

	// Authenticated endpoints. The idempotency validator runs between
	// session auth and the rate limiter so replays can bypass the bucket.
	authed := api.Group("",
		middleware.RequireSession(authSvc, cfg.Session.CookieName),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idemLookup),
		rl.Handler(),
	)
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/me", h.Me)

		authed.GET("/topics", h.ListTopics)
		authed.GET("/topics/:id", h.GetTopic)

		authed.POST("/conversations", h.StartConversation)
		authed.GET("/conversations", h.ListConversations)
		authed.GET("/conversations/active/:topicId", h.OpenTopic)
		authed.GET("/conversations/:id", h.GetConversation)

		authed.GET("/conversations/:id/messages", h.ListMessages)
		authed.POST("/conversations/:id/messages", h.PostMessage)

		admin := authed.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/analytics", h.Analytics)
			admin.GET("/conversations", h.RecentConversations)
		}
	}
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
