package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/engine"
	"github.com/helio-health/patient-sync/internal/journal"
	"github.com/helio-health/patient-sync/internal/notify"
	"github.com/helio-health/patient-sync/internal/observer"
	"github.com/helio-health/patient-sync/internal/store"
)

// listAppointmentsHandler always performs a fresh read so the response
// reflects writes by other processes, not the agent's cached snapshot.
func listAppointmentsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := st.Load(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_unavailable", err.Error())
			return
		}
		if records == nil {
			records = []appointment.Record{}
		}
		writeJSON(w, http.StatusOK, AppointmentsResponse{
			Appointments: records,
			Count:        len(records),
		})
	}
}

func upcomingHandler(svc *engine.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := svc.Snapshot()
		writeJSON(w, http.StatusOK, UpcomingResponse{
			Count: snap.Count,
			Next:  snap.Next,
		})
	}
}

// refreshHandler is the focus-regain analog: it asks the observer for an
// immediate re-read instead of waiting for the next tick.
func refreshHandler(obs *observer.Observer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obs.Poke()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
	}
}

func notificationStatusHandler(d *notify.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, NotificationStatusResponse{
			Supported:  d.Supported(),
			Permission: d.PermissionStatus(),
		})
	}
}

func enableNotificationsHandler(d *notify.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Enable(r.Context())
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, NotificationStatusResponse{
				Supported:  d.Supported(),
				Permission: d.PermissionStatus(),
			})
		case errors.Is(err, notify.ErrUnsupported):
			writeError(w, http.StatusNotImplemented, "notifications_unsupported", err.Error())
		case errors.Is(err, notify.ErrPermissionDenied):
			writeError(w, http.StatusConflict, "permission_denied", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		}
	}
}

func listEventsHandler(j *journal.Journal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if j == nil {
			writeJSON(w, http.StatusOK, EventsResponse{Events: []journal.Entry{}})
			return
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
				return
			}
			limit = n
		}
		events, err := j.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "journal_unavailable", err.Error())
			return
		}
		if events == nil {
			events = []journal.Entry{}
		}
		writeJSON(w, http.StatusOK, EventsResponse{Events: events, Count: len(events)})
	}
}
