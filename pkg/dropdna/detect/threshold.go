package detect

import (
	"sort"

	"github.com/samber/lo"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

// Median returns the median of values, averaging the two middle elements for
// an even count. The median of nothing is 0.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// DynamicThreshold is the loudness cutoff for a track: the median peak
// loudness over all valid segments of the analysis (not just the search
// window) plus offsetDb.
func DynamicThreshold(segments []analysis.Segment, offsetDb float64) float64 {
	loudness := lo.FilterMap(segments, func(s analysis.Segment, _ int) (float64, bool) {
		return s.LoudnessMaxDb, s.Valid
	})
	return Median(loudness) + offsetDb
}
