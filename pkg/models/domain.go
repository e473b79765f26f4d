package models

import "math"

// Method identifies which strategy produced a drop timestamp.
type Method string

const (
	MethodSections       Method = "sections"
	MethodSegments       Method = "segments"
	MethodLoudestSegment Method = "loudestSegment"
	MethodFallback       Method = "fallback"
	MethodErrorFallback  Method = "error-fallback"
)

const (
	DefaultLoudnessOffsetDb = 3.0
	DefaultPreviewLengthMs  = 20000
)

// TrackRef identifies the track a drop is requested for.
type TrackRef struct {
	ID         string // Opaque provider track ID
	DurationMs int    // Track duration in milliseconds
}

// DetectionParams are the caller-tunable knobs that partition the cache.
type DetectionParams struct {
	LoudnessOffsetDb float64 // Added to the median segment loudness to form the threshold
	PreviewLengthMs  int     // How long the playback sink should play from the drop
}

// DefaultParams returns the parameters used when the caller supplies none.
func DefaultParams() DetectionParams {
	return DetectionParams{
		LoudnessOffsetDb: DefaultLoudnessOffsetDb,
		PreviewLengthMs:  DefaultPreviewLengthMs,
	}
}

// DropResult is the published outcome of one detection.
type DropResult struct {
	TrackID           string  `json:"track_id"`
	DropStartMs       int     `json:"drop_start_ms"`
	Confidence        float64 `json:"confidence"`
	Method            Method  `json:"method"`
	PreviewLengthMs   int     `json:"preview_length_ms"`
	ComputedAtEpochMs int64   `json:"computed_at_epoch_ms"`
}

// StopMs is the playback deadline handed to the sink alongside DropStartMs.
func (r DropResult) StopMs() int {
	return r.DropStartMs + r.PreviewLengthMs
}

// Sanitize replaces a non-finite offset or a non-positive preview length
// with the corresponding value from defaults.
func (p DetectionParams) Sanitize(defaults DetectionParams) DetectionParams {
	if math.IsNaN(p.LoudnessOffsetDb) || math.IsInf(p.LoudnessOffsetDb, 0) {
		p.LoudnessOffsetDb = defaults.LoudnessOffsetDb
	}
	if p.PreviewLengthMs <= 0 {
		p.PreviewLengthMs = defaults.PreviewLengthMs
	}
	return p
}
