package background

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeClipAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("clip"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("set mtime: %v", err)
	}
	return path
}

func TestPruneEvictsOldestFirst(t *testing.T) {
	dir := t.TempDir()
	cache := NewClipCache(dir, 3)

	oldest := writeClipAged(t, dir, "a.mp4", 5*time.Hour)
	older := writeClipAged(t, dir, "b.mp4", 4*time.Hour)
	writeClipAged(t, dir, "c.mp4", 3*time.Hour)
	writeClipAged(t, dir, "d.mp4", 2*time.Hour)
	newest := writeClipAged(t, dir, "e.mp4", time.Hour)

	cache.Prune(newest)

	remaining := cache.List()
	if len(remaining) != 3 {
		t.Fatalf("cache holds %d clips; want 3", len(remaining))
	}
	for _, gone := range []string{oldest, older} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be evicted", gone)
		}
	}
	if _, err := os.Stat(newest); err != nil {
		t.Fatalf("newest clip evicted: %v", err)
	}
}

func TestPruneNeverEvictsKeptClip(t *testing.T) {
	dir := t.TempDir()
	cache := NewClipCache(dir, 2)

	keep := writeClipAged(t, dir, "keep.mp4", 10*time.Hour)
	writeClipAged(t, dir, "mid.mp4", 5*time.Hour)
	writeClipAged(t, dir, "new.mp4", time.Hour)

	cache.Prune(keep)

	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("kept clip was evicted despite being oldest: %v", err)
	}
	if got := len(cache.List()); got != 2 {
		t.Fatalf("cache holds %d clips; want 2", got)
	}
}

func TestPruneBelowLimitIsNoop(t *testing.T) {
	dir := t.TempDir()
	cache := NewClipCache(dir, 5)

	writeClipAged(t, dir, "only.mp4", time.Hour)
	cache.Prune("")

	if got := len(cache.List()); got != 1 {
		t.Fatalf("cache holds %d clips; want 1", got)
	}
}
