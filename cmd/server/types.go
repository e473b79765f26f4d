package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/himanishpuri/DropDNA/pkg/dropdna"
	"github.com/himanishpuri/DropDNA/pkg/models"
)

// MaxDurationMs rejects durations no real track has (24 hours).
const MaxDurationMs = 24 * 60 * 60 * 1000

// DropQuery holds the query parameters of the drop endpoints.
type DropQuery struct {
	DurationMs int
	Params     models.DetectionParams
}

// parseDropQuery reads duration_ms (required), loudness_offset_db and
// preview_length_ms, falling back to defaults for the optional ones.
func parseDropQuery(q url.Values, defaults models.DetectionParams) (DropQuery, error) {
	out := DropQuery{Params: defaults}

	raw := q.Get("duration_ms")
	if raw == "" {
		return out, errors.New("duration_ms is required")
	}
	d, err := strconv.Atoi(raw)
	if err != nil || d <= 0 {
		return out, fmt.Errorf("duration_ms must be a positive integer, got %q", raw)
	}
	if d > MaxDurationMs {
		return out, fmt.Errorf("duration_ms too large: %d (maximum: %d)", d, MaxDurationMs)
	}
	out.DurationMs = d

	if raw := q.Get("loudness_offset_db"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return out, fmt.Errorf("loudness_offset_db must be a number, got %q", raw)
		}
		out.Params.LoudnessOffsetDb = v
	}
	if raw := q.Get("preview_length_ms"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return out, fmt.Errorf("preview_length_ms must be a positive integer, got %q", raw)
		}
		out.Params.PreviewLengthMs = v
	}
	return out, nil
}

// PlaybackDTO is the seek offset and stop deadline for the player.
type PlaybackDTO struct {
	StartMs int `json:"start_ms"`
	StopMs  int `json:"stop_ms"`
}

// DropResponse is the response for GET /api/drops/{trackId}
type DropResponse struct {
	models.DropResult
	Playback PlaybackDTO `json:"playback"`
}

func newDropResponse(r models.DropResult) DropResponse {
	return DropResponse{
		DropResult: r,
		Playback:   PlaybackDTO{StartMs: r.DropStartMs, StopMs: r.StopMs()},
	}
}

// ListCacheResponse is the response for GET /api/cache
type ListCacheResponse struct {
	Entries []dropdna.CachedResult `json:"entries"`
	Count   int                    `json:"count"`
}

// DeleteCacheResponse is the response for DELETE /api/cache and /api/cache/{trackId}
type DeleteCacheResponse struct {
	Message string `json:"message"`
	TrackID string `json:"track_id,omitempty"`
	Removed int    `json:"removed"`
}

// MetricsResponse provides server health and cache metrics
type MetricsResponse struct {
	Status        string         `json:"status"`
	CacheBackend  string         `json:"cache_backend"`
	CachePath     string         `json:"cache_path,omitempty"`
	CachedResults int            `json:"cached_results"`
	ExpiredCount  int            `json:"expired_results"`
	Methods       map[string]int `json:"methods"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
