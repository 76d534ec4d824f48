package api

import (
	"encoding/json"
	"net/http"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/journal"
	"github.com/helio-health/patient-sync/internal/notify"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type AppointmentsResponse struct {
	Appointments []appointment.Record `json:"appointments"`
	Count        int                  `json:"count"`
}

type UpcomingResponse struct {
	Count int                 `json:"count"`
	Next  *appointment.Record `json:"next,omitempty"`
}

type NotificationStatusResponse struct {
	Supported  bool              `json:"supported"`
	Permission notify.Permission `json:"permission"`
}

type EventsResponse struct {
	Events []journal.Entry `json:"events"`
	Count  int             `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already gone; nothing useful left to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
