package dropdna

import (
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/DropDNA/pkg/models"
)

// CacheKey derives the storage key of a result. Every parameter that
// changes the result is part of the key, so profiles never collide.
func CacheKey(trackID string, params models.DetectionParams) string {
	var b strings.Builder
	b.WriteString(trackID)
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(params.LoudnessOffsetDb, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(params.PreviewLengthMs))
	return b.String()
}

// ResultCache applies expiry on top of a CacheStorage. Storage failures
// are logged and otherwise swallowed: a failed read is a miss and a failed
// write is dropped.
type ResultCache struct {
	store     CacheStorage
	retention time.Duration
	now       func() time.Time
	log       Logger
}

func NewResultCache(store CacheStorage, retention time.Duration, now func() time.Time, log Logger) *ResultCache {
	if now == nil {
		now = time.Now
	}
	return &ResultCache{store: store, retention: retention, now: now, log: log}
}

// Get returns the fresh result stored under key.
func (c *ResultCache) Get(key string) (models.DropResult, bool) {
	entry, ok, err := c.store.Get(key)
	if err != nil {
		c.log.Warnf("cache read failed for %s: %v", key, err)
		return models.DropResult{}, false
	}
	if !ok {
		c.log.Debugf("cache miss: %s", key)
		return models.DropResult{}, false
	}
	if c.Expired(entry) {
		c.log.Debugf("cache entry expired: %s", key)
		return models.DropResult{}, false
	}
	c.log.Debugf("cache hit: %s", key)
	return entry.Result, true
}

func (c *ResultCache) Put(entry models.CacheEntry) {
	if err := c.store.Put(entry); err != nil {
		c.log.Warnf("cache write failed for %s: %v", entry.Key, err)
	}
}

// Expired reports whether entry is older than the retention window.
func (c *ResultCache) Expired(entry models.CacheEntry) bool {
	age := c.now().UnixMilli() - entry.Result.ComputedAtEpochMs
	return age > c.retention.Milliseconds()
}

// Entries lists stored entries, newest first, including expired ones.
func (c *ResultCache) Entries() ([]CachedResult, error) {
	entries, err := c.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]CachedResult, len(entries))
	for i, e := range entries {
		out[i] = CachedResult{CacheEntry: e, Expired: c.Expired(e)}
	}
	return out, nil
}

func (c *ResultCache) Forget(trackID string) (int, error) {
	return c.store.DeleteTrack(trackID)
}

func (c *ResultCache) Clear() (int, error) {
	return c.store.Clear()
}
