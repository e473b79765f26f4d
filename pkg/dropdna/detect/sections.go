package detect

import (
	"github.com/himanishpuri/DropDNA/internal/model"
	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

const (
	loudnessFloorDb      = 60.0
	loudnessDivisor      = 10.0
	tempoConfidenceScale = 2.0
	sectionJumpDb        = 2.0
	sectionJumpBonus     = 3.0
	positionalBonus      = 1.5
	steadyTempoAbove     = 0.7
	steadyTempoBonus     = 1.0
)

// normalizeLoudness maps dB (roughly -60..0) onto 0..6.
func normalizeLoudness(db float64) float64 {
	return (db + loudnessFloorDb) / loudnessDivisor
}

// ScanSections returns the highest scoring section inside the window whose
// loudness reaches threshold, or nil.
//
// The first section is never a candidate since it has no predecessor to
// jump from. Equal scores keep the earlier section.
func ScanSections(sections []analysis.Section, w Window, threshold float64) *model.DropCandidate {
	var best *model.DropCandidate

	for i := 1; i < len(sections); i++ {
		sec := sections[i]
		if !sec.Valid || !w.Contains(sec.StartSec) || sec.LoudnessDb < threshold {
			continue
		}

		score := normalizeLoudness(sec.LoudnessDb) + sec.TempoConfidence*tempoConfidenceScale

		prev := sections[i-1]
		if prev.Valid && sec.LoudnessDb-prev.LoudnessDb > sectionJumpDb {
			score += sectionJumpBonus
		}
		if w.inMiddle(sec.StartSec) {
			score += positionalBonus
		}
		if sec.TempoConfidence > steadyTempoAbove {
			score += steadyTempoBonus
		}

		if best == nil || score > best.RawScore {
			best = &model.DropCandidate{
				StartSec:     sec.StartSec,
				RawScore:     score,
				SourceMethod: model.SourceSections,
			}
		}
	}

	return best
}
