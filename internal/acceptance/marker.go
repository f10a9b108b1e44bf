package acceptance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"grimm.is/confirmd/internal/state"
)

// MarkerPending is the marker content written by Start.
const MarkerPending = "false"

// Marker is the durable rendezvous with the confirming actor.
// Implementations perform one scoped access per call and take no locks;
// the last write before the window elapses wins.
type Marker interface {
	// Reset creates the marker if needed and sets it to MarkerPending.
	Reset(ctx context.Context) error
	// Read returns the raw marker content. A missing marker yields an
	// error for which IsMissing reports true.
	Read(ctx context.Context) (string, error)
	// Remove deletes the marker. Removing a missing marker succeeds.
	Remove(ctx context.Context) error
	String() string
}

// Watcher is implemented by markers that can signal changes while the
// window is open. The channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

var markerNormalizer = strings.NewReplacer("\n", "", "\t", "")

// IsAccepted applies the marker contract: after removing every newline and
// tab the content must equal "true", ignoring case.
func IsAccepted(content string) bool {
	return strings.ToLower(markerNormalizer.Replace(content)) == "true"
}

// IsMissing reports whether err means the marker does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, state.ErrNotFound)
}

// FileMarker keeps the marker in a plain file.
type FileMarker struct {
	path string
	perm fs.FileMode
}

// NewFileMarker returns a marker stored at path.
func NewFileMarker(path string) *FileMarker {
	return &FileMarker{path: path, perm: 0o644}
}

// Path returns the marker file path.
func (m *FileMarker) Path() string {
	return m.path
}

func (m *FileMarker) String() string {
	return m.path
}

// Reset writes MarkerPending, creating the parent directory if needed.
func (m *FileMarker) Reset(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	if err := os.WriteFile(m.path, []byte(MarkerPending), m.perm); err != nil {
		return fmt.Errorf("write marker %s: %w", m.path, err)
	}
	return nil
}

// Read returns the whole file.
func (m *FileMarker) Read(ctx context.Context) (string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", fmt.Errorf("read marker %s: %w", m.path, err)
	}
	return string(data), nil
}

// Remove deletes the file.
func (m *FileMarker) Remove(ctx context.Context) error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove marker %s: %w", m.path, err)
	}
	return nil
}

// StoreMarker keeps the marker as an entry in the state store.
type StoreMarker struct {
	bucket *state.MarkerBucket
	name   string
}

// NewStoreMarker returns a marker stored under name in the acceptance bucket.
func NewStoreMarker(store state.Store, name string) (*StoreMarker, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty marker name", ErrInvalidConfig)
	}
	bucket, err := state.NewMarkerBucket(store)
	if err != nil {
		return nil, fmt.Errorf("open marker bucket: %w", err)
	}
	return &StoreMarker{bucket: bucket, name: name}, nil
}

func (m *StoreMarker) String() string {
	return "state:" + m.bucket.Bucket() + "/" + m.name
}

func (m *StoreMarker) Reset(ctx context.Context) error {
	return m.bucket.Put(m.name, MarkerPending)
}

func (m *StoreMarker) Read(ctx context.Context) (string, error) {
	v, err := m.bucket.Value(m.name)
	if err != nil {
		return "", fmt.Errorf("read marker %s: %w", m, err)
	}
	return v, nil
}

func (m *StoreMarker) Remove(ctx context.Context) error {
	return m.bucket.Drop(m.name)
}
