// Package server exposes sessions over HTTP: a JSON API and a single-page HTML form.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical/pdf-assistant/internal/observability"
	"github.com/spherical/pdf-assistant/internal/session"
)

// Options configures the router.
type Options struct {
	Service        string
	Model          string
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(manager *session.Manager, logger *observability.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if opts.Service == "" {
		opts.Service = "pdf-assistant"
	}

	h := &handler{
		manager:        manager,
		logger:         logger,
		model:          opts.Model,
		maxUploadBytes: opts.MaxUploadBytes,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	if opts.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": opts.Service})
	})

	// HTML form workflow
	r.Get("/", h.page)
	r.Post("/upload", h.pageUpload)
	r.Post("/summary", h.pageSummary)
	r.Post("/answer", h.pageAnswer)

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)

		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.deleteSession)
			r.Post("/document", h.uploadDocument)
			r.Post("/summary", h.summarize)
			r.Post("/answer", h.answer)
		})
	})

	return r
}

// requestLogger carries chi's request id into the context for observability.Logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimiddleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(observability.ContextWithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
