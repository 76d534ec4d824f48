// Package engine is the per-cycle evaluation behind the sync agent: given
// one snapshot of the appointment document it maintains the upcoming
// aggregate, tracks doctor acceptances, and routes call invitations into
// notifications, the journal, and the event stream the UI navigates on.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/call"
	"github.com/helio-health/patient-sync/internal/journal"
	"github.com/helio-health/patient-sync/internal/notify"
)

// StreamEvent is what the websocket consumers (the portal UI) receive.
// Route carries the navigation target for invitations.
type StreamEvent struct {
	Type       string              `json:"type"` // invite, reset, aggregate, accepted
	Route      string              `json:"route,omitempty"`
	Invitation *call.Invitation    `json:"invitation,omitempty"`
	Snapshot   *SnapshotView       `json:"snapshot,omitempty"`
	Doctor     *appointment.Record `json:"appointment,omitempty"`
}

// SnapshotView is the aggregate in wire form.
type SnapshotView struct {
	Count int                 `json:"count"`
	Next  *appointment.Record `json:"next,omitempty"`
}

type Broadcaster interface {
	Broadcast(ev StreamEvent)
}

type Recorder interface {
	Append(ctx context.Context, e journal.Entry) error
}

type Notifier interface {
	Dispatch(ctx context.Context, ev notify.Event)
}

type Service struct {
	identity string
	handled  *call.HandledSet

	notifier Notifier    // optional
	recorder Recorder    // optional
	streamer Broadcaster // optional

	now func() time.Time

	mu       sync.Mutex
	snapshot appointment.Snapshot
	cycles   int
	accepted map[string]struct{} // doctor ids with an accepted appointment
}

func NewService(identity string, notifier Notifier, recorder Recorder, streamer Broadcaster) *Service {
	return &Service{
		identity: identity,
		handled:  call.NewHandledSet(),
		notifier: notifier,
		recorder: recorder,
		streamer: streamer,
		now:      time.Now,
		accepted: make(map[string]struct{}),
	}
}

// Snapshot returns the aggregate of the most recent cycle.
func (s *Service) Snapshot() appointment.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// HandleSnapshot is registered with the observer; it runs once per
// observation cycle over the cycle's single document snapshot. It only
// reads the document, never writes it.
func (s *Service) HandleSnapshot(ctx context.Context, records []appointment.Record) {
	s.updateAggregate(ctx, records)
	s.updateAcceptances(ctx, records)
	s.detectCall(ctx, records)
}

func (s *Service) updateAggregate(ctx context.Context, records []appointment.Record) {
	snap := appointment.Upcoming(records, s.now())

	s.mu.Lock()
	changed := s.cycles == 0 || snap.Count != s.snapshot.Count
	s.snapshot = snap
	s.cycles++
	s.mu.Unlock()

	if !changed {
		return
	}
	log.Printf("upcoming appointments: count=%d", snap.Count)
	s.broadcast(StreamEvent{
		Type:     "aggregate",
		Snapshot: &SnapshotView{Count: snap.Count, Next: snap.Next},
	})
	s.record(ctx, journal.Entry{
		Kind:  "aggregate",
		Title: fmt.Sprintf("%d upcoming appointments", snap.Count),
	})
}

// updateAcceptances watches for the doctor-side transition to in_progress
// ("doctor has accepted, call may start") and announces each doctor once.
func (s *Service) updateAcceptances(ctx context.Context, records []appointment.Record) {
	for i := range records {
		r := records[i]
		if r.PatientName != s.identity || r.Status != appointment.StatusInProgress {
			continue
		}
		doctorID := r.DoctorID
		if doctorID == "" {
			doctorID = r.DoctorName
		}
		if doctorID == "" {
			continue
		}

		s.mu.Lock()
		_, seen := s.accepted[doctorID]
		if !seen {
			s.accepted[doctorID] = struct{}{}
		}
		s.mu.Unlock()
		if seen {
			continue
		}

		name := r.DoctorName
		if name == "" {
			name = "Your doctor"
		}
		log.Printf("appointment accepted: doctor=%s specialty=%s", name, r.Specialty)
		s.notify(ctx, notify.Event{
			Title:    "Appointment accepted",
			Body:     fmt.Sprintf("%s accepted your consultation request", name),
			Category: notify.CategoryAccepted,
		})
		s.record(ctx, journal.Entry{
			Kind:  "accepted",
			Title: fmt.Sprintf("%s accepted your consultation request", name),
			Body:  r.Specialty,
		})
		rec := r
		s.broadcast(StreamEvent{Type: "accepted", Doctor: &rec})
	}
}

func (s *Service) detectCall(ctx context.Context, records []appointment.Record) {
	ev := call.Detect(records, s.identity, s.handled)
	switch ev.Kind {
	case call.Invite:
		inv := ev.Invitation
		log.Printf("incoming %s call: doctor=%s session=%s", inv.CallType, inv.Doctor.Name, inv.SessionID)
		s.notify(ctx, notify.Event{
			Title:    fmt.Sprintf("Incoming %s call", inv.CallType),
			Body:     fmt.Sprintf("%s (%s) is calling you", inv.Doctor.Name, inv.Doctor.Specialty),
			Category: notify.CategoryIncomingCall,
		})
		s.record(ctx, journal.Entry{
			Kind:      "invite",
			SessionID: inv.SessionID,
			Title:     fmt.Sprintf("Incoming %s call from %s", inv.CallType, inv.Doctor.Name),
		})
		s.broadcast(StreamEvent{
			Type:       "invite",
			Route:      routeFor(inv.CallType),
			Invitation: inv,
		})
	case call.Reset:
		log.Printf("call invitation withdrawn, detection re-armed")
		s.record(ctx, journal.Entry{Kind: "reset", Title: "Call ended or withdrawn"})
		s.broadcast(StreamEvent{Type: "reset"})
	}
}

func routeFor(t appointment.CallType) string {
	if t == appointment.CallAudio {
		return "/audio-call"
	}
	return "/video-call"
}

func (s *Service) notify(ctx context.Context, ev notify.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(ctx, ev)
}

func (s *Service) record(ctx context.Context, e journal.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Append(ctx, e); err != nil {
		log.Printf("journal append failed: %v", err)
	}
}

func (s *Service) broadcast(ev StreamEvent) {
	if s.streamer == nil {
		return
	}
	s.streamer.Broadcast(ev)
}
