package detect

import (
	"math"

	"github.com/himanishpuri/DropDNA/internal/model"
	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
	"github.com/himanishpuri/DropDNA/pkg/models"
)

// Outcome is the engine's answer for one track.
type Outcome struct {
	StartMs    int
	Confidence float64
	Method     models.Method
	RawScore   float64 // Zero for fixed-confidence strategies
	Threshold  float64 // Dynamic threshold used by the scanners
}

// Run walks the strategy chain over fs and returns the first result.
// A nil fs behaves like an analysis with no sections and no segments.
func Run(fs *analysis.FeatureSet, durationMs int, loudnessOffsetDb float64) Outcome {
	if durationMs < 0 {
		durationMs = 0
	}
	if fs == nil {
		fs = &analysis.FeatureSet{}
	}

	w := SearchWindow(durationMs)
	threshold := DynamicThreshold(fs.Segments, loudnessOffsetDb)

	cand := ScanSections(fs.Sections, w, threshold)
	if cand == nil {
		cand = ScanSegments(fs.Segments, w, threshold)
	}
	if cand != nil {
		return Outcome{
			StartMs:    toMs(Snap(cand.StartSec, fs.Bars), durationMs),
			Confidence: Squash(cand.RawScore),
			Method:     methodOf(cand.SourceMethod),
			RawScore:   cand.RawScore,
			Threshold:  threshold,
		}
	}

	if cand = LoudestSegment(fs.Segments, w); cand != nil {
		return Outcome{
			StartMs:    toMs(Snap(cand.StartSec, fs.Bars), durationMs),
			Confidence: LoudestSegmentConfidence,
			Method:     models.MethodLoudestSegment,
			Threshold:  threshold,
		}
	}

	return Outcome{
		StartMs:    fallbackStartMs(durationMs),
		Confidence: FallbackConfidence,
		Method:     models.MethodFallback,
		Threshold:  threshold,
	}
}

// ErrorFallback is the result used when the analysis could not be fetched.
func ErrorFallback(durationMs int) Outcome {
	if durationMs < 0 {
		durationMs = 0
	}
	return Outcome{
		StartMs:    errorFallbackStartMs(durationMs),
		Confidence: ErrorFallbackConfidence,
		Method:     models.MethodErrorFallback,
	}
}

func toMs(sec float64, durationMs int) int {
	ms := math.Floor(sec * 1000)
	if ms < 0 || math.IsNaN(ms) {
		return 0
	}
	if ms > float64(durationMs) {
		return durationMs
	}
	return int(ms)
}

func methodOf(src model.SourceMethod) models.Method {
	switch src {
	case model.SourceSections:
		return models.MethodSections
	case model.SourceSegments:
		return models.MethodSegments
	default:
		return models.MethodLoudestSegment
	}
}
