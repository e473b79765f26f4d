package detect

import "math"

const (
	// squashSteepness and squashMidpoint spread raw scores of 0..20 across
	// (0,1); a score of 8 maps to 0.5.
	squashSteepness = 0.4
	squashMidpoint  = 8.0
)

// Squash maps an unbounded raw score into (0,1) with a logistic curve.
func Squash(rawScore float64) float64 {
	if math.IsNaN(rawScore) {
		return 0
	}
	return 1 / (1 + math.Exp(-squashSteepness*(rawScore-squashMidpoint)))
}
