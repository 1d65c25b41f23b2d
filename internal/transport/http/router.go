// Package httptransport assembles the chi router: middleware chain, public
// auth endpoints, and the authenticated API surface.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brokerage/internal/auth"
	"brokerage/internal/claims"
	"brokerage/internal/clients"
	"brokerage/internal/platform/metrics"
	"brokerage/internal/platform/middleware"
	"brokerage/internal/policies"
	"brokerage/internal/products"
	"brokerage/internal/reports"
	"brokerage/pkg/platform/httputil"
)

// Dependencies carries everything the router mounts. Metrics may be nil in
// tests to avoid registering collectors twice.
type Dependencies struct {
	Logger  *slog.Logger
	Metrics *metrics.HTTP

	Tokens   middleware.TokenValidator
	Sessions middleware.SessionChecker

	Auth     *auth.Handler
	Clients  *clients.Handler
	Products *products.Handler
	Policies *policies.Handler
	Claims   *claims.Handler
	Reports  *reports.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Sessions, deps.Logger))

		deps.Auth.RegisterAuthenticated(r)
		deps.Clients.Register(r)
		deps.Products.Register(r)
		deps.Policies.Register(r)
		deps.Claims.Register(r)
		deps.Reports.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(auth.RoleAdmin), deps.Logger))
			deps.Auth.RegisterAdmin(r)
			deps.Policies.RegisterAdmin(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
