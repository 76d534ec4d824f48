// Package store provides read access to the shared appointment document
// plus the change feed other contexts use to signal writes.
package store

import (
	"context"
	"sync"

	"github.com/helio-health/patient-sync/internal/appointment"
)

// Store loads a fresh snapshot of the shared appointment document. A
// missing or unreadable document is not an error at this level; it decodes
// to an empty collection. Implementations used by the sync agent are
// read-only; Save helpers exist on concrete types for the writer tools.
type Store interface {
	Load(ctx context.Context) ([]appointment.Record, error)
}

// Watcher is implemented by stores that can signal "the document may have
// changed". The channel carries hints, not data: a receiver must re-read
// the store, never trust a cached copy. The channel is closed when ctx is
// done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// MemoryStore is an in-process document with a manual change signal. It
// backs tests and doubles for both real backends.
type MemoryStore struct {
	mu      sync.Mutex
	records []appointment.Record
	loadErr error
	signals chan struct{}
}

func NewMemoryStore(records ...appointment.Record) *MemoryStore {
	return &MemoryStore{
		records: records,
		signals: make(chan struct{}, 8),
	}
}

func (m *MemoryStore) Load(ctx context.Context) ([]appointment.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]appointment.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

// Set replaces the document, as an external writer would.
func (m *MemoryStore) Set(records []appointment.Record) {
	m.mu.Lock()
	m.records = records
	m.mu.Unlock()
}

// FailLoads makes subsequent loads return err (nil restores normality).
func (m *MemoryStore) FailLoads(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// Signal emits one change hint, dropping it if nobody is draining.
func (m *MemoryStore) Signal() {
	select {
	case m.signals <- struct{}{}:
	default:
	}
}

func (m *MemoryStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.signals:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
