package state

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// Standard bucket names
const (
	BucketAcceptance = "acceptance"         // Acceptance markers (key = marker name)
	BucketHistory    = "acceptance_history" // Finished acceptance cycles (key = cycle id)
)

// CycleRecord is the outcome of one acceptance cycle.
type CycleRecord struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Duration      int       `json:"duration_seconds"`
	Result        string    `json:"result"`
	MarkerContent string    `json:"marker_content,omitempty"`
	Early         bool      `json:"early,omitempty"`
	Marker        string    `json:"marker,omitempty"`
}

// HistoryBucket provides typed access to acceptance cycle records.
type HistoryBucket struct {
	store  Store
	bucket string
}

// NewHistoryBucket creates a new history bucket accessor.
func NewHistoryBucket(store Store) (*HistoryBucket, error) {
	if err := store.EnsureBucket(BucketHistory); err != nil {
		return nil, err
	}
	return &HistoryBucket{store: store, bucket: BucketHistory}, nil
}

// Record stores a finished cycle.
func (b *HistoryBucket) Record(rec CycleRecord) error {
	return b.store.SetJSON(b.bucket, rec.ID, rec)
}

// Get retrieves a cycle by id.
func (b *HistoryBucket) Get(id string) (*CycleRecord, error) {
	var rec CycleRecord
	if err := b.store.GetJSON(b.bucket, id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the most recent cycles first. A limit <= 0 returns all of them.
func (b *HistoryBucket) List(limit int) ([]CycleRecord, error) {
	all, err := b.store.List(b.bucket)
	if err != nil {
		return nil, err
	}

	records := make([]CycleRecord, 0, len(all))
	for _, data := range all {
		var rec CycleRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// MarkerBucket provides raw access to acceptance marker entries.
type MarkerBucket struct {
	store  Store
	bucket string
}

// NewMarkerBucket creates a new marker bucket accessor.
func NewMarkerBucket(store Store) (*MarkerBucket, error) {
	if err := store.EnsureBucket(BucketAcceptance); err != nil {
		return nil, err
	}
	return &MarkerBucket{store: store, bucket: BucketAcceptance}, nil
}

// Put overwrites the marker value.
func (b *MarkerBucket) Put(name, value string) error {
	return b.store.Set(b.bucket, name, []byte(value))
}

// Value returns the marker value or ErrNotFound.
func (b *MarkerBucket) Value(name string) (string, error) {
	data, err := b.store.Get(b.bucket, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Drop removes the marker. Removing a missing marker is not an error.
func (b *MarkerBucket) Drop(name string) error {
	if err := b.store.Delete(b.bucket, name); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Bucket returns the bucket name, for matching change notifications.
func (b *MarkerBucket) Bucket() string {
	return b.bucket
}

// Store returns the underlying store.
func (b *MarkerBucket) Store() Store {
	return b.store
}
