// Package server assembles the HTTP surface: routes, per-route guards and
// the global middleware chain.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/handler"
	"github.com/aryan0dhankhar/ordertrack/internal/httpx"
	"github.com/aryan0dhankhar/ordertrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/ordertrack/internal/security/audit"
	"github.com/aryan0dhankhar/ordertrack/internal/security/middleware"
	"github.com/aryan0dhankhar/ordertrack/internal/security/ratelimit"
	"github.com/aryan0dhankhar/ordertrack/internal/service"
)

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	Auth      *service.AuthService
	Approvals *service.ApprovalService
	Projects  *service.ProjectService
	Orders    *service.OrderService

	Audit       *audit.Logger
	AuthLimiter *ratelimit.Limiter
	Readiness   map[string]handler.Pinger

	CORSAllowedOrigins []string
	SecureCookies      bool
	Logger             *slog.Logger
}

// NewRouter returns the root handler. Chain: request ID -> tracing ->
// metrics -> CORS -> JSON content type -> mux.
func NewRouter(d Dependencies) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	if d.Audit == nil {
		d.Audit = audit.NewLogger(log)
	}

	authHandler := handler.NewAuthHandler(d.Auth, d.SecureCookies, log)
	adminHandler := handler.NewAdminHandler(d.Approvals, log)
	projectsHandler := handler.NewProjectsHandler(d.Projects, log)
	ordersHandler := handler.NewOrdersHandler(d.Orders, log)
	healthHandler := handler.NewHealthHandler(d.Readiness, log)

	session := middleware.SessionMiddleware(d.Auth, log)
	audited := middleware.AuditMiddleware(d.Audit)
	adminOnly := middleware.RequireRole(domain.RoleAdmin, d.Audit)

	limited := func(h http.HandlerFunc) http.Handler { return h }
	if d.AuthLimiter != nil {
		rl := middleware.RateLimitMiddleware(d.AuthLimiter, log)
		limited = func(h http.HandlerFunc) http.Handler { return rl(h) }
	}
	protected := func(h http.HandlerFunc) http.Handler { return session(audited(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return session(adminOnly(audited(h))) }

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", limited(authHandler.Register))
	mux.Handle("POST /api/auth/login", limited(authHandler.Login))
	mux.Handle("POST /api/auth/logout", audited(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", session(http.HandlerFunc(authHandler.Me)))

	mux.Handle("GET /api/admin/users", admin(adminHandler.ListUsers))
	mux.Handle("PATCH /api/admin/users/{id}/status", admin(adminHandler.SetStatus))

	mux.Handle("GET /api/projects", protected(projectsHandler.List))
	mux.Handle("POST /api/projects", protected(projectsHandler.Create))

	mux.Handle("GET /api/orders", protected(ordersHandler.List))
	mux.Handle("POST /api/orders", protected(ordersHandler.Create))
	mux.Handle("GET /api/orders/{id}", protected(ordersHandler.Get))
	mux.Handle("PATCH /api/orders/{id}", protected(ordersHandler.Update))
	mux.Handle("DELETE /api/orders/{id}", protected(ordersHandler.Delete))

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusNotFound, "Not found")
	})

	var h http.Handler = mux
	h = middleware.ValidateJSONContentType(log)(h)
	h = withCORS(h, d.CORSAllowedOrigins)
	h = metrics.HTTPMetricsMiddleware(h)
	h = otelhttp.NewHandler(h, "ordertrack")
	return withRequestID(h, log)
}
