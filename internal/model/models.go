package model

// SourceMethod tags which scanner produced a candidate.
type SourceMethod string

const (
	SourceSections       SourceMethod = "sections"
	SourceSegments       SourceMethod = "segments"
	SourceLoudestSegment SourceMethod = "loudestSegment"
)

// DropCandidate is a scored timestamp produced inside one detection run.
type DropCandidate struct {
	StartSec     float64
	RawScore     float64
	SourceMethod SourceMethod
}
