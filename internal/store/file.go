package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/helio-health/patient-sync/internal/appointment"
)

// FileStore keeps the shared document as one JSON array on disk, the local
// analog of the portal's per-origin key-value entry. Cooperating processes
// on the same device write it atomically (write temp file, rename) and
// readers learn about writes through fsnotify on the parent directory.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string { return f.path }

// Load reads and decodes the document. A missing file is an empty
// document; malformed content decodes to empty at the boundary.
func (f *FileStore) Load(ctx context.Context) ([]appointment.Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return appointment.DecodeDocument(data), nil
}

// Save atomically replaces the document. Writer tools only; the sync agent
// never calls this.
func (f *FileStore) Save(ctx context.Context, records []appointment.Record) error {
	data, err := appointment.EncodeDocument(records)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure document dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".helio-doc-*")
	if err != nil {
		return fmt.Errorf("stage document: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish document: %w", err)
	}
	return nil
}

// Watch emits a hint whenever the document file changes. Events for other
// files in the directory are ignored, which is the "filter to the
// appointments key" rule of the change-signal contract.
func (f *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("ensure document dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		base := filepath.Base(f.path)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(evt.Name) != base {
					continue
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case <-watcher.Errors:
				// Watch errors are non-fatal: the periodic re-check
				// still covers missed writes.
			}
		}
	}()
	return out, nil
}
