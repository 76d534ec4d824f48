// Package notify surfaces system-level alerts for notable sync events.
// Notifications are an enhancement: every failure path here degrades to
// "no notification", never to an error the caller must handle to stay
// correct.
package notify

import (
	"context"
	"errors"
	"log"
	"sync"
)

type Permission string

const (
	PermissionDefault     Permission = "default"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
)

type Category string

const (
	CategoryIncomingCall Category = "incoming_call"
	CategoryEmergency    Category = "emergency_request"
	CategoryAccepted     Category = "appointment_accepted"
	CategoryReminder     Category = "appointment_reminder"
)

// Urgent categories must not auto-dismiss and ask the platform for
// persistent on-screen presence.
func (c Category) Urgent() bool {
	return c == CategoryIncomingCall || c == CategoryEmergency
}

// Vibration returns the alert pattern hint for the category, in
// milliseconds.
func (c Category) Vibration() []int {
	if c == CategoryIncomingCall {
		return []int{200, 100, 200}
	}
	return []int{100}
}

type Event struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category Category `json:"category"`
	Urgent   bool     `json:"urgent"`
}

// Sender is one delivery channel (desktop popup, webhook, ...).
type Sender interface {
	// Available probes the platform capability lazily; it must report
	// false rather than fail when the primitive is missing.
	Available() bool
	Send(ctx context.Context, ev Event) error
}

// Subscriber is an optional Sender extension establishing a persistent
// delivery channel once permission is granted. Subscription failure is
// non-fatal and does not revoke the permission.
type Subscriber interface {
	Subscribe(ctx context.Context) error
}

// Prompter asks the external actor (the user) for permission. The request
// happens at most once per dispatcher: a denial is terminal for the
// session and re-asking requires a fresh dispatcher.
type Prompter interface {
	RequestPermission(ctx context.Context) (Permission, error)
}

// StaticPrompter answers every request with a fixed decision, which is how
// a headless agent carries the user's configured choice.
type StaticPrompter Permission

func (p StaticPrompter) RequestPermission(ctx context.Context) (Permission, error) {
	return Permission(p), nil
}

var (
	ErrUnsupported      = errors.New("notifications not supported on this platform")
	ErrPermissionDenied = errors.New("notification permission denied")
)

type Dispatcher struct {
	mu         sync.Mutex
	senders    []Sender
	prompter   Prompter
	permission Permission
}

// NewDispatcher builds a dispatcher around the given delivery channels.
// initial seeds the permission state (PermissionDefault means "not asked
// yet"); anything else is treated as the user's remembered decision.
func NewDispatcher(prompter Prompter, initial Permission, senders ...Sender) *Dispatcher {
	if initial == "" {
		initial = PermissionDefault
	}
	return &Dispatcher{
		senders:    senders,
		prompter:   prompter,
		permission: initial,
	}
}

// Supported reports whether at least one delivery channel is usable.
func (d *Dispatcher) Supported() bool {
	for _, s := range d.senders {
		if s.Available() {
			return true
		}
	}
	return false
}

func (d *Dispatcher) PermissionStatus() Permission {
	if !d.Supported() {
		return PermissionUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// Enable acquires permission and establishes delivery channels. Already
// granted is a no-op success; a previous denial stays terminal; otherwise
// the prompter is consulted once.
func (d *Dispatcher) Enable(ctx context.Context) error {
	if !d.Supported() {
		return ErrUnsupported
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.permission {
	case PermissionGranted:
		return nil
	case PermissionDenied:
		return ErrPermissionDenied
	}

	perm, err := d.prompter.RequestPermission(ctx)
	if err != nil {
		return err
	}
	d.permission = perm
	if perm != PermissionGranted {
		return ErrPermissionDenied
	}

	for _, s := range d.senders {
		sub, ok := s.(Subscriber)
		if !ok || !s.Available() {
			continue
		}
		if err := sub.Subscribe(ctx); err != nil {
			// Channel setup failure does not revoke the grant.
			log.Printf("notification subscribe failed: %v", err)
		}
	}
	return nil
}

// Dispatch delivers the event through every available channel, best
// effort. Without a granted permission it silently does nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	d.mu.Lock()
	granted := d.permission == PermissionGranted
	d.mu.Unlock()
	if !granted {
		return
	}

	ev.Urgent = ev.Urgent || ev.Category.Urgent()
	for _, s := range d.senders {
		if !s.Available() {
			continue
		}
		if err := s.Send(ctx, ev); err != nil {
			log.Printf("notification send failed (%s): %v", ev.Category, err)
		}
	}
}
