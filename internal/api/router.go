package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helio-health/patient-sync/internal/engine"
	"github.com/helio-health/patient-sync/internal/journal"
	"github.com/helio-health/patient-sync/internal/notify"
	"github.com/helio-health/patient-sync/internal/observer"
	"github.com/helio-health/patient-sync/internal/store"
)

type RouterConfig struct {
	Store      store.Store
	Observer   *observer.Observer
	Engine     *engine.Service
	Dispatcher *notify.Dispatcher
	Journal    *journal.Journal
	Hub        *Hub
	Env        string
	Version    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.Store, cfg.Journal, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/appointments", listAppointmentsHandler(cfg.Store))
		r.Get("/upcoming", upcomingHandler(cfg.Engine))
		r.Post("/refresh", refreshHandler(cfg.Observer))

		r.Get("/notifications", notificationStatusHandler(cfg.Dispatcher))
		r.Post("/notifications/enable", enableNotificationsHandler(cfg.Dispatcher))

		r.Get("/events", listEventsHandler(cfg.Journal))
		if cfg.Hub != nil {
			r.Get("/events/stream", cfg.Hub.ServeHTTP)
		}
	})

	return r
}
