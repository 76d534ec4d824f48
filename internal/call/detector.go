// Package call decides when an incoming call invitation should fire.
//
// An invitation is an appointment record carrying both a call type and a
// call session id. Invitations are opened and withdrawn by the doctor-side
// client; this package only watches. The contract is at-most-once per
// session id per process: repeated observation of the same open invitation
// yields exactly one Invite, and a withdrawal re-arms detection so a later
// invitation (even one reusing the session id) fires again.
package call

import (
	"sync"

	"github.com/helio-health/patient-sync/internal/appointment"
)

type Kind int

const (
	// None: nothing to do, either no invitation or one already acted on.
	None Kind = iota
	// Invite: a new invitation was found and must be announced exactly once.
	Invite
	// Reset: every open invitation is gone; detection is re-armed.
	Reset
)

func (k Kind) String() string {
	switch k {
	case Invite:
		return "invite"
	case Reset:
		return "reset"
	default:
		return "none"
	}
}

// Doctor is the synthesized caller descriptor handed to the navigation
// layer. Fields the document omits fall back to the portal's defaults.
type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialty      string `json:"specialty"`
	Qualifications string `json:"qualifications"`
	Languages      string `json:"languages"`
	Experience     int    `json:"experience"`
}

type Patient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Invitation carries everything downstream consumers need to join the
// session: who is calling, who is called, over what medium, and the
// session token.
type Invitation struct {
	Doctor    Doctor               `json:"doctor"`
	Patient   Patient              `json:"patient"`
	CallType  appointment.CallType `json:"callType"`
	SessionID string               `json:"callSessionId"`
}

// Event is the detector's verdict for one observation cycle.
type Event struct {
	Kind       Kind
	Invitation *Invitation // set iff Kind == Invite
}

// HandledSet remembers the session ids this process has already acted on.
// It lives in memory only and must never be persisted or shared: a fresh
// process is supposed to re-detect an invitation it has not seen yet.
type HandledSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewHandledSet() *HandledSet {
	return &HandledSet{ids: make(map[string]struct{})}
}

func (h *HandledSet) Has(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.ids[id]
	return ok
}

func (h *HandledSet) Mark(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids[id] = struct{}{}
}

// Clear drops every entry and reports how many were armed.
func (h *HandledSet) Clear() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.ids)
	h.ids = make(map[string]struct{})
	return n
}

func (h *HandledSet) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ids)
}

// Detect scans one snapshot of the document for an open invitation
// addressed to patientName.
//
// Only the first matching record counts even if several records carry an
// open invitation for the same patient; the portal occasionally produces
// that state and taking the first match is the deliberate, defensive
// reading of it. When no open invitation exists for the patient the
// handled set is cleared; the clear is reported as Reset only if it
// actually disarmed something, so a quiescent document keeps yielding
// None.
func Detect(records []appointment.Record, patientName string, handled *HandledSet) Event {
	var incoming *appointment.Record
	for i := range records {
		if records[i].PatientName == patientName && records[i].OpenInvitation() {
			incoming = &records[i]
			break
		}
	}

	if incoming == nil {
		if handled.Clear() > 0 {
			return Event{Kind: Reset}
		}
		return Event{Kind: None}
	}

	if handled.Has(incoming.CallSession) {
		// Expected steady state while the invitation stays open.
		return Event{Kind: None}
	}
	handled.Mark(incoming.CallSession)

	inv := &Invitation{
		Doctor: Doctor{
			ID:             fallback(incoming.DoctorID, "1"),
			Name:           fallback(incoming.DoctorName, "Doctor"),
			Specialty:      fallback(incoming.Specialty, "General Medicine"),
			Qualifications: "MBBS",
			Languages:      "English, Hindi, Punjabi",
			Experience:     12,
		},
		Patient: Patient{
			ID:   fallback(incoming.PatientID, incoming.ID),
			Name: incoming.PatientName,
		},
		CallType:  incoming.CallType,
		SessionID: incoming.CallSession,
	}
	return Event{Kind: Invite, Invitation: inv}
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
