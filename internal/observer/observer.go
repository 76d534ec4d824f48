// Package observer turns "the document may have changed" signals into
// handler invocations over one fresh snapshot.
package observer

import (
	"context"
	"log"
	"time"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/store"
)

// Handler runs once per observation cycle. All handlers of a cycle see the
// exact same snapshot: the observer loads once and fans out, so an
// external writer landing mid-cycle cannot split decisions between
// consumers.
type Handler func(ctx context.Context, records []appointment.Record)

type Observer struct {
	store    store.Store
	interval time.Duration
	handlers []Handler
	pokes    chan struct{}
}

// New builds an observer over st. interval is the fallback re-check
// period covering writes whose change signal was missed; zero disables it.
func New(st store.Store, interval time.Duration) *Observer {
	return &Observer{
		store:    st,
		interval: interval,
		pokes:    make(chan struct{}, 1),
	}
}

// Register adds a handler. Not safe to call after Run has started.
func (o *Observer) Register(h Handler) {
	o.handlers = append(o.handlers, h)
}

// Poke requests an extra cycle. It is the focus-regain analog: the UI
// calls it when the user returns, catching writes that bypassed the
// change signal. Poke never blocks; a pending poke absorbs further ones.
func (o *Observer) Poke() {
	select {
	case o.pokes <- struct{}{}:
	default:
	}
}

// Run executes one startup cycle and then loops until ctx is done,
// cycling on store change hints, pokes, and the fallback ticker. The
// observer only ever reads; a load failure degrades that cycle to an
// empty snapshot instead of stopping the loop.
func (o *Observer) Run(ctx context.Context) error {
	var hints <-chan struct{}
	if w, ok := o.store.(store.Watcher); ok {
		var err error
		hints, err = w.Watch(ctx)
		if err != nil {
			// Without a change feed the ticker and pokes still drive
			// cycles; degraded, not fatal.
			log.Printf("change feed unavailable, falling back to polling: %v", err)
			hints = nil
		}
	}

	var tick <-chan time.Time
	if o.interval > 0 {
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	o.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-hints:
			if !ok {
				hints = nil
				continue
			}
			o.cycle(ctx)
		case <-o.pokes:
			o.cycle(ctx)
		case <-tick:
			o.cycle(ctx)
		}
	}
}

func (o *Observer) cycle(ctx context.Context) {
	records, err := o.store.Load(ctx)
	if err != nil {
		log.Printf("document load failed, treating as empty: %v", err)
		records = nil
	}
	for _, h := range o.handlers {
		h(ctx, records)
	}
}
