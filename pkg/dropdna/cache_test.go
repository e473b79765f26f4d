package dropdna

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/DropDNA/pkg/logger"
	"github.com/himanishpuri/DropDNA/pkg/models"
)

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name   string
		params models.DetectionParams
		want   string
	}{
		{"defaults", models.DefaultParams(), "abc|3|20000"},
		{"fractional offset", models.DetectionParams{LoudnessOffsetDb: 2.5, PreviewLengthMs: 15000}, "abc|2.5|15000"},
		{"negative offset", models.DetectionParams{LoudnessOffsetDb: -1, PreviewLengthMs: 20000}, "abc|-1|20000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CacheKey("abc", tt.params))
		})
	}

	assert.NotEqual(t,
		CacheKey("abc", models.DetectionParams{LoudnessOffsetDb: 3, PreviewLengthMs: 20000}),
		CacheKey("abc", models.DetectionParams{LoudnessOffsetDb: 3, PreviewLengthMs: 20001}))
	assert.NotEqual(t,
		CacheKey("abc", models.DetectionParams{LoudnessOffsetDb: 3, PreviewLengthMs: 20000}),
		CacheKey("abc", models.DetectionParams{LoudnessOffsetDb: 3.5, PreviewLengthMs: 20000}))
}

func TestResultCacheExpiry(t *testing.T) {
	store, err := NewJSONStorage("")
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewResultCache(store, DefaultRetention, func() time.Time { return now }, logger.NewNop())

	fresh := models.CacheEntry{Key: "a|3|20000", Result: models.DropResult{TrackID: "a", ComputedAtEpochMs: now.UnixMilli()}}
	stale := models.CacheEntry{Key: "b|3|20000", Result: models.DropResult{TrackID: "b", ComputedAtEpochMs: now.Add(-DefaultRetention - time.Millisecond).UnixMilli()}}
	edge := models.CacheEntry{Key: "c|3|20000", Result: models.DropResult{TrackID: "c", ComputedAtEpochMs: now.Add(-DefaultRetention).UnixMilli()}}

	for _, e := range []models.CacheEntry{fresh, stale, edge} {
		c.Put(e)
	}

	_, ok := c.Get(fresh.Key)
	assert.True(t, ok)
	_, ok = c.Get(stale.Key)
	assert.False(t, ok)
	_, ok = c.Get(edge.Key)
	assert.True(t, ok)
	_, ok = c.Get("missing")
	assert.False(t, ok)

	// Expired entries stay stored until overwritten.
	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	expired := map[string]bool{}
	for _, e := range entries {
		expired[e.Key] = e.Expired
	}
	assert.Equal(t, map[string]bool{"a|3|20000": false, "b|3|20000": true, "c|3|20000": false}, expired)
}

func TestResultCacheSwallowsStorageErrors(t *testing.T) {
	c := NewResultCache(&brokenStorage{}, DefaultRetention, nil, logger.NewNop())

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		c.Put(models.CacheEntry{Key: "k", Result: models.DropResult{Confidence: math.Pi}})
	})
}
