// Package analysis holds the typed form of a vendor audio-analysis document:
// the track summary plus ordered sections, segments and bars.
package analysis

// Summary is the whole-track part of the analysis.
type Summary struct {
	DurationSec float64
	TempoBpm    float64
	LoudnessDb  float64
}

// Section is a coarse structural span (verse/chorus scale).
//
// Valid is false when a required field was missing or mistyped in the
// provider response. Invalid sections keep their position in the slice so
// chronological neighbours are preserved, but never become candidates.
type Section struct {
	StartSec        float64
	DurationSec     float64
	LoudnessDb      float64
	TempoConfidence float64
	TempoBpm        float64
	Valid           bool
}

// Segment is a fine-grained slice with peak loudness and timbre.
type Segment struct {
	StartSec      float64
	LoudnessMaxDb float64
	Timbre        []float64
	Valid         bool
}

// Bar is a measure boundary. Only the beat snapper reads bars.
type Bar struct {
	StartSec   float64
	Confidence float64
	Valid      bool
}

// FeatureSet is the full analysis for one track. It is not modified after
// Decode returns.
type FeatureSet struct {
	Track    Summary
	Sections []Section
	Segments []Segment
	Bars     []Bar
}
