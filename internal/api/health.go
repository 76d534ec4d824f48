package api

import (
	"context"
	"net/http"
	"time"

	"github.com/helio-health/patient-sync/internal/journal"
	"github.com/helio-health/patient-sync/internal/store"
)

type HealthHandler struct {
	store   store.Store
	journal *journal.Journal
	env     string
	version string
}

func NewHealthHandler(st store.Store, j *journal.Journal, env, version string) *HealthHandler {
	return &HealthHandler{
		store:   st,
		journal: j,
		env:     env,
		version: version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	storeCtx, storeCancel := context.WithTimeout(ctx, 1*time.Second)
	_, err := h.store.Load(storeCtx)
	storeCancel()
	if err != nil {
		deps["store"] = "down"
		status = "error"
	} else {
		deps["store"] = "ok"
	}

	if h.journal != nil {
		jCtx, jCancel := context.WithTimeout(ctx, 1*time.Second)
		err = h.journal.Ping(jCtx)
		jCancel()
		if err != nil {
			deps["journal"] = "down"
			if status == "ok" {
				status = "degraded"
			}
		} else {
			deps["journal"] = "ok"
		}
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
