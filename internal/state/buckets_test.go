package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(DefaultOptions(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHistoryBucket(t *testing.T) {
	store := newTestStore(t)

	history, err := NewHistoryBucket(store)
	require.NoError(t, err)

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i, result := range []string{"accepted", "not accepted", "accepted"} {
		require.NoError(t, history.Record(CycleRecord{
			ID:         string(rune('a' + i)),
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Duration:   30,
			Result:     result,
		}))
	}

	all, err := history.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "most recent first")
	assert.Equal(t, "a", all[2].ID)

	limited, err := history.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	rec, err := history.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "not accepted", rec.Result)

	_, err = history.Get("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryBucket_Reopen(t *testing.T) {
	store := newTestStore(t)

	_, err := NewHistoryBucket(store)
	require.NoError(t, err)
	_, err = NewHistoryBucket(store)
	assert.NoError(t, err, "creating the accessor twice must not fail")
}

func TestMarkerBucket(t *testing.T) {
	store := newTestStore(t)

	markers, err := NewMarkerBucket(store)
	require.NoError(t, err)
	assert.Equal(t, BucketAcceptance, markers.Bucket())

	_, err = markers.Value(".acceptance")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, markers.Put(".acceptance", "false"))
	v, err := markers.Value(".acceptance")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	require.NoError(t, markers.Drop(".acceptance"))
	require.NoError(t, markers.Drop(".acceptance"), "dropping a missing marker is not an error")

	_, err = markers.Value(".acceptance")
	assert.ErrorIs(t, err, ErrNotFound)
}
