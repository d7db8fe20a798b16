package background

import (
	"os"
	"path/filepath"
	"sort"

	"wisdombot/logx"
)

// ClipCache is the bounded on-disk store of previously downloaded clips.
// Eviction is oldest-modified-first and never touches the clip a run has
// just accepted.
type ClipCache struct {
	dir string
	max int
}

// NewClipCache returns a cache over dir holding at most max clips.
func NewClipCache(dir string, max int) *ClipCache {
	return &ClipCache{dir: dir, max: max}
}

// Dir returns the cache directory, creating it if needed.
func (c *ClipCache) Dir() string {
	_ = os.MkdirAll(c.dir, 0o755)
	return c.dir
}

// List returns the cached clip paths in unspecified order.
func (c *ClipCache) List() []string {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.mp4"))
	if err != nil {
		return nil
	}
	return paths
}

// Prune deletes oldest-modified clips until at most max remain. The keep
// path is never deleted regardless of its age.
func (c *ClipCache) Prune(keep string) {
	paths := c.List()
	if len(paths) <= c.max {
		return
	}

	type entry struct {
		path  string
		mtime int64
	}
	entries := make([]entry, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		entries = append(entries, entry{path: p, mtime: info.ModTime().UnixNano()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].mtime < entries[j].mtime })

	log := logx.WithComponent("clipcache")
	excess := len(entries) - c.max
	for _, e := range entries {
		if excess <= 0 {
			break
		}
		if e.path == keep {
			continue
		}
		if err := os.Remove(e.path); err == nil {
			log.Debug().Str("clip", filepath.Base(e.path)).Msg("evicted old cached clip")
			excess--
		}
	}
}
