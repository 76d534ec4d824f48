package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/engine"
	"github.com/helio-health/patient-sync/internal/notify"
	"github.com/helio-health/patient-sync/internal/observer"
	"github.com/helio-health/patient-sync/internal/store"
)

const patient = "Gurpreet Singh"

type stubSender struct{}

func (stubSender) Available() bool { return true }

func (stubSender) Send(ctx context.Context, ev notify.Event) error { return nil }

func newTestRouter(st *store.MemoryStore, permission notify.Permission) (http.Handler, *engine.Service, *Hub) {
	hub := NewHub()
	dispatcher := notify.NewDispatcher(notify.StaticPrompter(permission), notify.PermissionDefault, stubSender{})
	svc := engine.NewService(patient, dispatcher, nil, hub)
	router := NewRouter(RouterConfig{
		Store:      st,
		Observer:   observer.New(st, 0),
		Engine:     svc,
		Dispatcher: dispatcher,
		Hub:        hub,
		Env:        "test",
		Version:    "test",
	})
	return router, svc, hub
}

func TestListAppointmentsFreshRead(t *testing.T) {
	st := store.NewMemoryStore(appointment.Record{
		ID:          "a1",
		PatientName: patient,
		Date:        "2026-03-15",
		Time:        "10:00 AM",
		Status:      appointment.StatusScheduled,
	})
	router, _, _ := newTestRouter(st, notify.PermissionGranted)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/appointments", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp AppointmentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Appointments[0].ID != "a1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// A write by another process is visible on the next request.
	st.Set(nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/appointments", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 {
		t.Fatalf("stale read: %+v", resp)
	}
}

func TestUpcomingReflectsEngineSnapshot(t *testing.T) {
	st := store.NewMemoryStore()
	router, svc, _ := newTestRouter(st, notify.PermissionGranted)

	svc.HandleSnapshot(context.Background(), []appointment.Record{{
		ID:          "a1",
		PatientName: patient,
		Date:        time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		Time:        "10:00 AM",
		Status:      appointment.StatusScheduled,
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/upcoming", nil))

	var resp UpcomingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Next == nil || resp.Next.ID != "a1" {
		t.Fatalf("unexpected upcoming: %+v", resp)
	}
}

func TestRefreshAccepted(t *testing.T) {
	router, _, _ := newTestRouter(store.NewMemoryStore(), notify.PermissionGranted)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}

func TestEnableNotificationsDeniedConflict(t *testing.T) {
	// A dispatcher without senders reports unsupported.
	bare := notify.NewDispatcher(notify.StaticPrompter(notify.PermissionGranted), notify.PermissionDefault)
	router := NewRouter(RouterConfig{
		Store:      store.NewMemoryStore(),
		Observer:   observer.New(store.NewMemoryStore(), 0),
		Engine:     engine.NewService(patient, nil, nil, nil),
		Dispatcher: bare,
		Env:        "test",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/notifications/enable", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}

	router2, _, _ := newTestRouter(store.NewMemoryStore(), notify.PermissionDenied)
	rec = httptest.NewRecorder()
	router2.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/notifications/enable", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestReadinessWithMemoryStore(t *testing.T) {
	router, _, _ := newTestRouter(store.NewMemoryStore(), notify.PermissionGranted)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp ReadinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Dependencies["store"] != "ok" {
		t.Fatalf("dependencies: %+v", resp.Dependencies)
	}
}

func TestEventStreamDeliversBroadcast(t *testing.T) {
	router, _, hub := newTestRouter(store.NewMemoryStore(), notify.PermissionGranted)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The hub registers the client during the upgrade handshake, so the
	// connection being established means broadcasts will reach it.
	hub.Broadcast(engine.StreamEvent{Type: "invite", Route: "/video-call"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev engine.StreamEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != "invite" || ev.Route != "/video-call" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
