package observer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/store"
)

type cycleRecorder struct {
	snapshots chan []appointment.Record
}

func newCycleRecorder() *cycleRecorder {
	return &cycleRecorder{snapshots: make(chan []appointment.Record, 16)}
}

func (c *cycleRecorder) handler(ctx context.Context, records []appointment.Record) {
	c.snapshots <- records
}

func (c *cycleRecorder) next(t *testing.T) []appointment.Record {
	t.Helper()
	select {
	case s := <-c.snapshots:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("no cycle observed")
		return nil
	}
}

func TestObserverRunsStartupCycle(t *testing.T) {
	st := store.NewMemoryStore(appointment.Record{ID: "apt-1"})
	obs := New(st, 0)
	rec := newCycleRecorder()
	obs.Register(rec.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go obs.Run(ctx)

	snap := rec.next(t)
	if len(snap) != 1 || snap[0].ID != "apt-1" {
		t.Fatalf("startup cycle snapshot wrong: %+v", snap)
	}
}

func TestObserverRereadsOnSignalAndPoke(t *testing.T) {
	st := store.NewMemoryStore()
	obs := New(st, 0)
	rec := newCycleRecorder()
	obs.Register(rec.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go obs.Run(ctx)

	if snap := rec.next(t); len(snap) != 0 {
		t.Fatalf("expected empty startup snapshot, got %+v", snap)
	}

	// External write plus change signal: the handler must see the fresh
	// state, proving the observer re-read instead of caching.
	st.Set([]appointment.Record{{ID: "apt-2"}})
	st.Signal()
	if snap := rec.next(t); len(snap) != 1 || snap[0].ID != "apt-2" {
		t.Fatalf("signal cycle did not re-read: %+v", snap)
	}

	// A write with no signal (same-context mutation) is picked up by the
	// focus-regain poke.
	st.Set([]appointment.Record{{ID: "apt-2"}, {ID: "apt-3"}})
	obs.Poke()
	if snap := rec.next(t); len(snap) != 2 {
		t.Fatalf("poke cycle did not re-read: %+v", snap)
	}
}

func TestObserverFansOutOneSnapshotPerCycle(t *testing.T) {
	st := store.NewMemoryStore(appointment.Record{ID: "apt-1"})
	obs := New(st, 0)
	a := newCycleRecorder()
	b := newCycleRecorder()
	obs.Register(a.handler)
	obs.Register(b.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go obs.Run(ctx)

	snapA := a.next(t)
	snapB := b.next(t)
	if len(snapA) != len(snapB) || snapA[0].ID != snapB[0].ID {
		t.Fatalf("handlers saw different snapshots: %+v vs %+v", snapA, snapB)
	}
}

func TestObserverDegradesLoadFailureToEmpty(t *testing.T) {
	st := store.NewMemoryStore(appointment.Record{ID: "apt-1"})
	st.FailLoads(errors.New("disk on fire"))
	obs := New(st, 0)
	rec := newCycleRecorder()
	obs.Register(rec.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go obs.Run(ctx)

	if snap := rec.next(t); len(snap) != 0 {
		t.Fatalf("failing load should degrade to empty snapshot, got %+v", snap)
	}
}

func TestObserverTickerDrivesCycles(t *testing.T) {
	st := store.NewMemoryStore()
	obs := New(st, 20*time.Millisecond)
	rec := newCycleRecorder()
	obs.Register(rec.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go obs.Run(ctx)

	rec.next(t) // startup
	rec.next(t) // at least one ticker cycle
}
