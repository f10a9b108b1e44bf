package health

import (
	"context"
	"os"
	"path/filepath"

	"grimm.is/confirmd/internal/acceptance"
)

// MarkerDirCheck verifies that the marker directory accepts writes.
func MarkerDirCheck(markerPath string) CheckFunc {
	dir := filepath.Dir(markerPath)
	return func(ctx context.Context) Check {
		info, err := os.Stat(dir)
		if err != nil {
			return unhealthy("marker directory %s: %v", dir, err)
		}
		if !info.IsDir() {
			return unhealthy("marker directory %s is not a directory", dir)
		}

		f, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			return unhealthy("marker directory %s not writable: %v", dir, err)
		}
		f.Close()
		os.Remove(f.Name())
		return healthy("marker directory %s writable", dir)
	}
}

// BucketLister is the part of the state store the store check needs.
type BucketLister interface {
	ListBuckets() ([]string, error)
}

// StoreCheck verifies that the state store answers queries.
func StoreCheck(store BucketLister) CheckFunc {
	return func(ctx context.Context) Check {
		buckets, err := store.ListBuckets()
		if err != nil {
			return unhealthy("state store: %v", err)
		}
		return healthy("state store operational (%d buckets)", len(buckets))
	}
}

// StateCheck reports the monitor state. A rejected change is degraded so
// dashboards flag it until the next cycle starts.
func StateCheck(current func() acceptance.State) CheckFunc {
	return func(ctx context.Context) Check {
		s := current()
		if s == acceptance.StateNotAccepted {
			return degraded("last change not accepted")
		}
		return healthy("%s", s)
	}
}
