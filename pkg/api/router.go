package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwantia/docsync/pkg/log"
)

// NewRouter wires the health probes, the optional metrics endpoint and the
// document API. A nil gatherer disables /metrics.
//
// Routes:
//   - GET /health, GET /health/ready
//   - GET /metrics
//   - GET /api/v1/list, GET /api/v1/search, GET /api/v1/stat/*
//   - GET|PUT|PATCH|DELETE /api/v1/documents/*
//   - POST|DELETE /api/v1/folders/*
//   - POST /api/v1/move, /api/v1/rename, /api/v1/batch-delete
func NewRouter(v Facade, logger log.LoggerService, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(v)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	documents := NewDocumentHandler(v)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Identity)
		// Folder moves run to completion regardless, so only reads and
		// single-document writes are bounded.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/list", documents.List)
			r.Get("/search", documents.Search)
			r.Get("/stat/*", documents.Stat)

			r.Get("/documents/*", documents.Download)
			r.Put("/documents/*", documents.Upload)
			r.Patch("/documents/*", documents.SetFlags)
			r.Delete("/documents/*", documents.Delete)
		})

		r.Post("/folders/*", documents.CreateFolder)
		r.Delete("/folders/*", documents.DeleteFolder)

		r.Post("/move", documents.Move)
		r.Post("/rename", documents.Rename)
		r.Post("/batch-delete", documents.BatchDelete)
	})

	return r
}

func requestLogger(logger log.LoggerService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug("%s %s -> %d (%d bytes, %s) [%s]",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), requestID)
		})
	}
}
