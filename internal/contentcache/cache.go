// Package contentcache caches generated section content keyed by a
// fingerprint of (template type, section name, prompt). Entries expire
// after a TTL and expired entries are evicted lazily on read. Backend
// errors degrade to a cache miss or a no-op: the cache may never fail a
// generation.
package contentcache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Store is a content cache backend.
type Store interface {
	// Get returns the cached content for the key and whether it was found.
	// Expired or unreadable entries report a miss.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores content under the key with the backend's TTL.
	Set(ctx context.Context, key, content string)

	// Clear removes entries whose key was derived from the given template
	// type. An empty templateType clears everything.
	Clear(ctx context.Context, templateType string) int

	// Backend names the backend for logs and metrics.
	Backend() string
}

// Key computes the cache fingerprint for one section generation. The prompt
// is hashed separately first so prompts of any size produce a fixed-width
// key, and the template type prefixes the key so Clear can match by type.
func Key(templateType, sectionName, prompt string) string {
	promptDigest := xxhash.Sum64String(prompt)

	h := xxhash.New()
	_, _ = h.WriteString(templateType)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(sectionName)
	_, _ = h.WriteString("\x00")
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], promptDigest)
	_, _ = h.Write(buf[:])

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return templateType + ":" + hex.EncodeToString(sum[:])
}

// entry is the stored representation shared by the backends.
type entry struct {
	Content   string    `json:"content"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
