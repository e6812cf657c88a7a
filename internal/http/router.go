// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
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
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/yesai/go-assistant-backend/internal/chat"
	"github.com/yesai/go-assistant-backend/internal/config"
	"github.com/yesai/go-assistant-backend/internal/domain"
	"github.com/yesai/go-assistant-backend/internal/email"
	"github.com/yesai/go-assistant-backend/internal/http/handlers"
	"github.com/yesai/go-assistant-backend/internal/http/middleware"
	"github.com/yesai/go-assistant-backend/internal/otp"
	"github.com/yesai/go-assistant-backend/internal/repo"
	"github.com/yesai/go-assistant-backend/internal/services"
	"github.com/yesai/go-assistant-backend/internal/session"
)

// messageStoreShim adapts the repository free functions to the
// chat.MessageStore interface expected by the Orchestrator. This keeps the
// chat package decoupled from the concrete repo package while reusing
// existing functions.
type messageStoreShim struct {
	db *gorm.DB
}

// AppendMessage proxies repo.AppendMessage.
func (s messageStoreShim) AppendMessage(ctx context.Context, userID, role, content string) (*domain.ChatMessage, error) {
	return repo.AppendMessage(ctx, s.db, userID, role, content)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned public API under /api/v*.
//
// The model client is injected because its construction needs a context and a
// live API key; everything else is wired here from db and cfg.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. CORS and Security headers
//
// The rate limiter is attached per route group rather than globally: the
// public auth endpoints are keyed by client IP, and the session-gated surface
// is keyed by account because SessionAuth runs ahead of it there.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, model chat.ModelClient, cfg config.Config) {
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

	// 6) Compress responses for clients that accept it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
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
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers. Chat transcripts and tokens are sensitive, so
	// responses are marked no-store.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
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

	// Dependency injection: services ← repo/db/model
	mailer := email.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	passcodes := otp.NewManager(cfg.OTP.TTL, cfg.OTP.MaxAttempts)
	authSvc := services.NewAuthService(db, passcodes, mailer)
	histSvc := services.NewHistoryService(db)
	sessions := session.NewManager(cfg.SessionTTL)

	orch := &chat.Orchestrator{
		Model:   model,
		Store:   messageStoreShim{db: db},
		Timeout: cfg.Gemini.Timeout,
		Log:     log.With().Str("component", "orchestrator").Logger(),
	}

	h := handlers.New(authSvc, histSvc, orch, sessions)

	// Token-bucket rate limiter. One shared bucket map; the key is the
	// account on routes behind SessionAuth and the client IP elsewhere.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Account flows (unauthenticated, IP-keyed limiting)
		auth := api.Group("/auth")
		auth.Use(rl.Handler())
		auth.POST("/signup", h.BeginSignup)
		auth.POST("/signup/verify", h.CompleteSignup)
		auth.POST("/login", h.Login)
		auth.POST("/password/forgot", h.BeginPasswordReset)
		auth.POST("/password/reset", h.CompletePasswordReset)

		// Session-gated surface. SessionAuth runs before the limiter so
		// buckets are keyed by account, not by shared IP.
		authed := api.Group("")
		authed.Use(middleware.SessionAuth(sessions), rl.Handler())

		authed.POST("/auth/logout", h.Logout)

		chatGrp := authed.Group("/chat")
		chatGrp.GET("/history", h.GetHistory)
		chatGrp.POST("/messages", h.SendMessage)
		chatGrp.DELETE("/history", h.ClearHistory)
		chatGrp.POST("/new", h.NewConversation)
		chatGrp.PUT("/research-mode", h.SetResearchMode)
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
