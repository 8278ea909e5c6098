package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the delivery API on a chi router. apiMiddleware wraps the
// /v1 routes only, leaving /health open.
func NewRouter(h *Handler, logger *slog.Logger, apiMiddleware ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(AccessLog(logger))

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(apiMiddleware...)
		r.Get("/url", h.URL)
		r.Get("/kenburns", h.KenBurns)
		r.Post("/generate", h.Generate)
		r.Post("/component", h.Component)
	})
	return r
}
