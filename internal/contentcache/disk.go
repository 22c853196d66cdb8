package contentcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sopforge/internal/observability"
)

// Disk is a filesystem-backed cache that survives restarts. Each entry is
// one JSON file under dir/<template-type>/<digest>.json. All I/O failures
// degrade to a miss or a no-op.
type Disk struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewDisk creates a disk cache rooted at dir. A non-positive ttl disables
// caching: writes are dropped and every lookup misses.
func NewDisk(dir string, ttl time.Duration, logger *slog.Logger) (*Disk, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir, ttl: ttl, logger: logger}, nil
}

func (d *Disk) Backend() string { return "disk" }

// path maps a cache key ("type:digest") onto the entry file.
func (d *Disk) path(key string) string {
	templateType, digest, ok := strings.Cut(key, ":")
	if !ok {
		return filepath.Join(d.dir, key+".json")
	}
	return filepath.Join(d.dir, templateType, digest+".json")
}

func (d *Disk) Get(ctx context.Context, key string) (string, bool) {
	raw, err := os.ReadFile(d.path(key))
	if err != nil {
		observability.RecordCacheMiss(d.Backend())
		return "", false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Corrupt entry, drop it.
		_ = os.Remove(d.path(key))
		observability.RecordCacheMiss(d.Backend())
		return "", false
	}

	if e.expired(time.Now()) {
		_ = os.Remove(d.path(key))
		observability.RecordCacheMiss(d.Backend())
		return "", false
	}

	observability.RecordCacheHit(d.Backend())
	return e.Content, true
}

func (d *Disk) Set(ctx context.Context, key, content string) {
	if d.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(entry{Content: content, ExpiresAt: time.Now().Add(d.ttl)})
	if err != nil {
		return
	}

	path := d.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		d.logger.Warn("cache write skipped", "key", key, "error", err)
		return
	}

	// Write to a temp file then rename so readers never see partial JSON.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		d.logger.Warn("cache write skipped", "key", key, "error", err)
		return
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		d.logger.Warn("cache write skipped", "key", key, "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		d.logger.Warn("cache write skipped", "key", key, "error", err)
	}
}

func (d *Disk) Clear(ctx context.Context, templateType string) int {
	if templateType != "" {
		return d.clearDir(filepath.Join(d.dir, templateType))
	}

	removed := 0
	dirs, err := os.ReadDir(d.dir)
	if err != nil {
		return 0
	}
	for _, de := range dirs {
		if de.IsDir() {
			removed += d.clearDir(filepath.Join(d.dir, de.Name()))
		}
	}
	return removed
}

func (d *Disk) clearDir(dir string) int {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if os.Remove(filepath.Join(dir, f.Name())) == nil {
			removed++
		}
	}
	return removed
}
