package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/mailings/internal/api/handler"
	mw "github.com/edvin/mailings/internal/api/middleware"
	"github.com/edvin/mailings/internal/config"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/policy"
)

//go:embed docs/openapi.json
var openapiJSON []byte

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	pool        *pgxpool.Pool
	cfg         *config.Config
	auditLogger *mw.AuditLogger
	listCache   *mw.ListCache
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, services *core.Services, cfg *config.Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		pool:        pool,
		cfg:         cfg,
		auditLogger: mw.NewAuditLogger(pool, logger),
		listCache:   mw.NewListCache(time.Duration(cfg.ListCacheTTLSeconds) * time.Second),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// API documentation (no auth required)
	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openapiJSON)
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.Token))
		r.Use(s.auditLogger.Middleware)

		cached := s.listCache.Middleware
		can := func(cap policy.Capability) func(http.Handler) http.Handler {
			return mw.RequireCapability(cap)
		}

		// Profile and tokens
		user := handler.NewUser(s.services.User, s.services.Token)
		r.Get("/me", user.Me)
		r.Put("/me", user.UpdateMe)
		r.Get("/me/tokens", user.ListTokens)
		r.Post("/me/tokens", user.CreateToken)
		r.Delete("/me/tokens/{id}", user.RevokeToken)

		// Dashboard
		dashboard := handler.NewDashboard(s.services.Dashboard)
		r.Get("/dashboard/stats", dashboard.Stats)

		// Cross-entity search
		search := handler.NewSearch(s.services.Search)
		r.Get("/search", search.Search)

		// Audit logs
		audit := handler.NewAudit(s.pool)
		r.With(mw.RequireStaff()).Get("/audit-logs", audit.List)

		// Recipients
		recipient := handler.NewRecipient(s.services.Recipient)
		r.With(can(policy.CapRecipientView), cached).Get("/recipients", recipient.List)
		r.With(can(policy.CapRecipientAdd)).Post("/recipients", recipient.Create)
		r.With(can(policy.CapRecipientView)).Get("/recipients/{id}", recipient.Get)
		r.With(can(policy.CapRecipientChange)).Put("/recipients/{id}", recipient.Update)
		r.With(can(policy.CapRecipientChange)).Patch("/recipients/{id}", recipient.Update)
		r.With(can(policy.CapRecipientDelete)).Delete("/recipients/{id}", recipient.Delete)

		// Messages
		message := handler.NewMessage(s.services.Message)
		r.With(can(policy.CapMessageView), cached).Get("/messages", message.List)
		r.With(can(policy.CapMessageAdd)).Post("/messages", message.Create)
		r.With(can(policy.CapMessageView)).Get("/messages/{id}", message.Get)
		r.With(can(policy.CapMessageChange)).Put("/messages/{id}", message.Update)
		r.With(can(policy.CapMessageChange)).Patch("/messages/{id}", message.Update)
		r.With(can(policy.CapMessageDelete)).Delete("/messages/{id}", message.Delete)

		// Mailings
		mailing := handler.NewMailing(s.services.Mailing, s.services.Dispatch)
		r.With(can(policy.CapMailingView), cached).Get("/mailings", mailing.List)
		r.With(can(policy.CapMailingAdd)).Post("/mailings", mailing.Create)
		r.With(can(policy.CapMailingView)).Get("/mailings/{id}", mailing.Get)
		r.With(can(policy.CapMailingChange)).Put("/mailings/{id}", mailing.Update)
		r.With(can(policy.CapMailingChange)).Patch("/mailings/{id}", mailing.Update)
		r.With(can(policy.CapMailingDelete)).Delete("/mailings/{id}", mailing.Delete)
		r.With(can(policy.CapMailingSend)).Post("/mailings/{id}/send", mailing.Send)

		// Mail attempts (read-only)
		attempt := handler.NewAttempt(s.services.Attempt)
		r.With(can(policy.CapAttemptView), cached).Get("/attempts", attempt.List)
		r.With(can(policy.CapAttemptView)).Get("/attempts/{id}", attempt.Get)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Close flushes the async audit writer.
func (s *Server) Close() {
	s.auditLogger.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Mailings API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
