package detect

import (
	"math"

	"github.com/samber/lo"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

// MinBarConfidence is the confidence a bar needs to be snapped to.
const MinBarConfidence = 0.5

// Snap moves rawStartSec onto the closest bar with confidence of at least
// MinBarConfidence. Without such a bar rawStartSec is returned unchanged.
// The result is never negative.
func Snap(rawStartSec float64, bars []analysis.Bar) float64 {
	confident := lo.Filter(bars, func(b analysis.Bar, _ int) bool {
		return b.Valid && b.Confidence >= MinBarConfidence
	})

	snapped := rawStartSec
	bestDist := math.Inf(1)
	for _, b := range confident {
		if d := math.Abs(b.StartSec - rawStartSec); d < bestDist {
			bestDist = d
			snapped = b.StartSec
		}
	}

	return math.Max(0, snapped)
}
