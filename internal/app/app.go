// Package app composes the catalog and auth routers into one HTTP handler.
package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniCatalog/internal/auth"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
	AdminToken     string
}

type Deps struct {
	Stores *Stores
	Tokens *auth.TokenMaker

	SigninLimit *kit.IPRateLimiter
	SignupLimit *kit.IPRateLimiter
}

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	validate := kit.NewValidator()

	products := &catalog.Server{
		Service:     deps.Stores.catalog(),
		Log:         log.Named("catalog"),
		Validate:    validate,
		RequireUser: auth.Authenticate(deps.Tokens, deps.Stores.Users),
	}

	users := &auth.Server{
		Log:         log.Named("auth"),
		Users:       deps.Stores.Users,
		Tokens:      deps.Tokens,
		Validate:    validate,
		SigninLimit: deps.SigninLimit,
		SignupLimit: deps.SignupLimit,
	}

	r := chi.NewRouter()
	setupMiddleware(r, log)
	setupMetrics(r, deps, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Stores))

	r.Mount("/products", products.Routes())
	r.Mount("/user", users.Routes())

	r.With(kit.StaticTokenAuth(httpDeps.AdminToken)).
		Post("/admin/reset", reset(deps.Stores, log))

	return r
}

func setupMiddleware(r *chi.Mux, log *zap.Logger) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log))
}

func setupMetrics(r *chi.Mux, deps Deps, httpDeps HTTPDeps) {
	if httpDeps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(httpDeps.Registry)
	r.Use(metrics.Middleware(httpDeps.Service, kit.ChiRoutePatternOrPath))
	kit.RegisterRecordGauges(httpDeps.Registry, httpDeps.Service, deps.Stores.counts())

	if !httpDeps.MetricsEnabled {
		return
	}

	r.With(kit.StaticTokenAuth(httpDeps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(httpDeps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type readyResp struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
	Reviews  int    `json:"reviews"`
	Users    int    `json:"users"`
	Time     string `json:"time"`
}

func readyz(s *Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, readyResp{
			Status:   "ready",
			Products: s.Products.Len(),
			Reviews:  s.Reviews.Len(),
			Users:    s.Users.Len(),
			Time:     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func reset(s *Stores, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Reset()
		log.Warn("all stores reset", zap.String("request_id", chimw.GetReqID(r.Context())))
		w.WriteHeader(http.StatusNoContent)
	}
}
