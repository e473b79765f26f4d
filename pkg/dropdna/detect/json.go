package detect

import (
	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

// RunJSON decodes a raw analysis document and runs the strategy chain over
// it. Only an undecodable document is an error.
func RunJSON(data []byte, durationMs int, loudnessOffsetDb float64) (Outcome, *analysis.FeatureSet, error) {
	fs, err := analysis.Decode(data)
	if err != nil {
		return Outcome{}, nil, err
	}
	return Run(fs, durationMs, loudnessOffsetDb), fs, nil
}
