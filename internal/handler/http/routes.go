package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	router.Get("/version", h.getVersion)

	// promhttp negotiates its own compression
	if h.metrics != nil {
		router.Method("GET", "/metrics", h.metrics)
	}

	router.Group(func(r chi.Router) {
		r.Use(withGZip)

		r.Get("/api/cache/status", h.getCacheStatus)
		r.Post("/api/sync/refresh", h.refresh)
		r.Post("/api/sync/refresh/{domain}", h.refreshDomain)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
