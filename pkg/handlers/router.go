package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cheatsheets/pkg/middleware"
)

// RouterConfig wires the handlers into a router
type RouterConfig struct {
	Auth        *AuthHandlers
	API         *APIHandlers
	Verifier    middleware.TokenVerifier
	CORSOrigins []string
	// RequestLog enables chi's request logger
	RequestLog bool
}

// NewRouter mounts the catalog API under /api plus /health and /metrics
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.RequestLog {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", cfg.Auth.RegisterHandler)
		r.Post("/auth/login", cfg.Auth.LoginHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuthAPI(cfg.Verifier))

			r.Get("/auth/me", cfg.Auth.MeHandler)

			r.Get("/cheat-sheets", cfg.API.ListRecordsHandler)
			r.Post("/cheat-sheets", cfg.API.CreateRecordHandler)
			r.Get("/cheat-sheets/{id}", cfg.API.GetRecordHandler)
			r.Put("/cheat-sheets/{id}", cfg.API.UpdateRecordHandler)
			r.Delete("/cheat-sheets/{id}", cfg.API.DeleteRecordHandler)

			r.Get("/categories", cfg.API.ListCategoriesHandler)
			r.Post("/categories", cfg.API.CreateCategoryHandler)
			r.Delete("/categories/{name}", cfg.API.DeleteCategoryHandler)
		})
	})

	return r
}
