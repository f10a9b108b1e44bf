package acceptance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMarker_Watch(t *testing.T) {
	dir := t.TempDir()
	m := NewFileMarker(filepath.Join(dir, ".acceptance"))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := m.Watch(ctx)
	require.NoError(t, err)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0o644))
	select {
	case <-ch:
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	// Rename into place.
	tmp := filepath.Join(dir, "marker.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("true"), 0o644))
	require.NoError(t, os.Rename(tmp, m.Path()))

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no notification for marker rename")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond, "channel must close after cancel")
}

func TestFileMarker_WatchMissingDir(t *testing.T) {
	m := NewFileMarker(filepath.Join(t.TempDir(), "missing", ".acceptance"))
	_, err := m.Watch(context.Background())
	assert.Error(t, err)
}

func TestStoreMarker_Watch(t *testing.T) {
	store := newMemStore(t)
	m, err := NewStoreMarker(store, "gate")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.EnsureBucket("other"))
	require.NoError(t, store.Set("other", "gate", []byte("true")))
	select {
	case <-ch:
		t.Fatal("unexpected notification for another bucket")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, m.Reset(ctx))
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no notification for marker write")
	}
}
