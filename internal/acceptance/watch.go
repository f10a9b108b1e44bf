package acceptance

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports writes to the marker file. The parent directory is watched
// so writers that rename a temp file into place are seen as well.
func (m *FileMarker) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(m.path), err)
	}

	name := filepath.Base(m.path)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					notify(out)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

// Watch reports changes to the marker entry made through the same store.
func (m *StoreMarker) Watch(ctx context.Context) (<-chan struct{}, error) {
	changes := m.bucket.Store().Subscribe(ctx)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		for c := range changes {
			if c.Bucket == m.bucket.Bucket() && c.Key == m.name {
				notify(out)
			}
		}
	}()

	return out, nil
}

// notify coalesces bursts of events into one pending signal.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
