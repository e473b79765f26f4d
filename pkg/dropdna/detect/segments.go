package detect

import (
	"math"

	"github.com/himanishpuri/DropDNA/internal/model"
	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

const (
	segmentJumpScale = 3.0
	segmentJumpDb    = 3.0
	segmentJumpBonus = 2.0
	timbreScale      = 0.01
)

// ScanSegments returns the highest scoring segment inside the window whose
// peak loudness reaches threshold, or nil.
//
// The jump term compares against the previous segment that also qualified;
// the first qualifying segment has no jump. Equal scores keep the earlier
// segment.
func ScanSegments(segments []analysis.Segment, w Window, threshold float64) *model.DropCandidate {
	var best *model.DropCandidate
	var prev *analysis.Segment

	for i := range segments {
		seg := &segments[i]
		if !seg.Valid || !w.Contains(seg.StartSec) || seg.LoudnessMaxDb < threshold {
			continue
		}

		jump := 0.0
		if prev != nil {
			jump = math.Max(0, seg.LoudnessMaxDb-prev.LoudnessMaxDb)
		}
		prev = seg

		score := jump*segmentJumpScale + normalizeLoudness(seg.LoudnessMaxDb) + timbreBonus(seg.Timbre)
		if jump > segmentJumpDb {
			score += segmentJumpBonus
		}

		if best == nil || score > best.RawScore {
			best = &model.DropCandidate{
				StartSec:     seg.StartSec,
				RawScore:     score,
				SourceMethod: model.SourceSegments,
			}
		}
	}

	return best
}

// timbreBonus rewards loud (coefficient 0) and bright (coefficient 1) timbre.
func timbreBonus(timbre []float64) float64 {
	bonus := 0.0
	for i := 0; i < len(timbre) && i < 2; i++ {
		bonus += math.Abs(timbre[i]) * timbreScale
	}
	return bonus
}
