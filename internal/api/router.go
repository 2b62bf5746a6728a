package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires all routes. Admin routes are mounted only when a JWT
// secret is configured.
func NewRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/", h.RootHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)
		r.Post("/generate-sql", h.GenerateSQLHandler)
		r.Post("/summarize", h.SummarizeHandler)
		r.Post("/chat", h.ChatHandler)
		r.Post("/query", h.QueryHandler)
		r.Post("/classify-query", h.ClassifyQueryHandler)
		r.Post("/generate-report", h.GenerateReportHandler)

		if h.jwtSecret != "" && h.admin != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Get("/history", h.ListHistoryHandler)
				r.Post("/examples", h.AddExampleHandler)
			})
		}
	})

	return r
}
