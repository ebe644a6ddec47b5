package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sevigo/hybrid-warden/internal/metrics"
	"github.com/sevigo/hybrid-warden/internal/server/handler"
)

// WebhookPath is where GitHub delivers pull request events.
const WebhookPath = "/api/v1/webhook/github"

// requestTimeout bounds the synchronous part of a delivery; reviews run on the worker pool.
const requestTimeout = 30 * time.Second

// NewRouter mounts the health probe, the optional metrics endpoint and the webhook.
// Metrics are not exposed when gatherer is nil.
func NewRouter(webhookHandler *handler.WebhookHandler, gatherer prometheus.Gatherer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/health", health)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger, middleware.NoCache, middleware.Timeout(requestTimeout))
		r.Post(WebhookPath, webhookHandler.Handle)
	})
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
