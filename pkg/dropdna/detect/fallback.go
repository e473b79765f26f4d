package detect

import (
	"github.com/samber/lo"

	"github.com/himanishpuri/DropDNA/internal/model"
	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

const (
	LoudestSegmentConfidence = 0.6
	FallbackConfidence       = 0.2
	ErrorFallbackConfidence  = 0.3
)

// LoudestSegment returns the valid segment with the highest peak loudness
// strictly inside the window, earliest first on ties, or nil. No threshold
// applies.
func LoudestSegment(segments []analysis.Segment, w Window) *model.DropCandidate {
	inside := lo.Filter(segments, func(s analysis.Segment, _ int) bool {
		return s.Valid && w.StrictlyContains(s.StartSec)
	})
	if len(inside) == 0 {
		return nil
	}

	loudest := inside[0]
	for _, s := range inside[1:] {
		if s.LoudnessMaxDb > loudest.LoudnessMaxDb {
			loudest = s
		}
	}

	return &model.DropCandidate{
		StartSec:     loudest.StartSec,
		RawScore:     loudest.LoudnessMaxDb,
		SourceMethod: model.SourceLoudestSegment,
	}
}

// fallbackStartMs is 30% into the track.
func fallbackStartMs(durationMs int) int {
	return durationMs * 3 / 10
}

// errorFallbackStartMs is 20% into the track.
func errorFallbackStartMs(durationMs int) int {
	return durationMs / 5
}
