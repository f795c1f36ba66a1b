// Package http wires the device session and voice pipeline services into a
// chi router.
package http

import (
	"context"
	"net/http"
	"time"

	obsmw "voicebot/internal/observability/middleware"
	"voicebot/internal/pipeline"
	"voicebot/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipelines is the slice of the orchestrator the transport needs.
type Pipelines interface {
	GetOrDefault(ctx context.Context, deviceID int64) (*pipeline.Pipeline, error)
	Cached(deviceID int64) bool
}

func NewRouter(sessions service.SessionService, pipelines Pipelines) http.Handler {
	h := &handlers{sessions: sessions, pipelines: pipelines}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/devices", func(r chi.Router) {
		// public
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)
		r.Post("/validate", h.validate)
		r.Get("/suggest-id", h.suggestID)

		// authenticated
		r.Group(func(r chi.Router) {
			r.Use(RequireDevice(sessions))
			r.Post("/logout", h.logout)
			r.Get("/me", h.me)
			r.Get("/config", h.configInfo)
			r.Put("/config", h.updateConfig)
		})
	})

	r.Route("/v1/voice", func(r chi.Router) {
		r.Use(RequireDevice(sessions))
		r.Post("/transcribe", h.transcribe)
		r.Post("/speak", h.speak)
		r.Post("/extract", h.extract)
		r.Post("/language", h.language)
		r.Post("/respond", h.respond)
	})

	return r
}
