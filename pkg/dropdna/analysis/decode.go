package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformed is returned when the document as a whole cannot be read.
var ErrMalformed = errors.New("malformed analysis document")

type rawDocument struct {
	Track    json.RawMessage   `json:"track"`
	Sections []json.RawMessage `json:"sections"`
	Segments []json.RawMessage `json:"segments"`
	Bars     []json.RawMessage `json:"bars"`
}

type rawSummary struct {
	Duration *float64 `json:"duration"`
	Tempo    *float64 `json:"tempo"`
	Loudness *float64 `json:"loudness"`
}

type rawSection struct {
	Start           *float64 `json:"start"`
	Duration        *float64 `json:"duration"`
	Loudness        *float64 `json:"loudness"`
	Tempo           *float64 `json:"tempo"`
	TempoConfidence *float64 `json:"tempo_confidence"`
}

type rawSegment struct {
	Start       *float64  `json:"start"`
	LoudnessMax *float64  `json:"loudness_max"`
	Timbre      []float64 `json:"timbre"`
}

type rawBar struct {
	Start      *float64 `json:"start"`
	Confidence *float64 `json:"confidence"`
}

// Decode parses a provider response into a FeatureSet.
//
// Only a document that is not a JSON object fails. Individual sections,
// segments and bars are decoded one by one; an item with a missing or
// mistyped required field is kept with Valid=false.
func Decode(data []byte) (*FeatureSet, error) {
	// null unmarshals into a struct without error.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: document is null", ErrMalformed)
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	fs := &FeatureSet{
		Sections: make([]Section, 0, len(doc.Sections)),
		Segments: make([]Segment, 0, len(doc.Segments)),
		Bars:     make([]Bar, 0, len(doc.Bars)),
	}

	if len(doc.Track) > 0 {
		var s rawSummary
		if err := json.Unmarshal(doc.Track, &s); err == nil {
			fs.Track = Summary{
				DurationSec: deref(s.Duration),
				TempoBpm:    deref(s.Tempo),
				LoudnessDb:  deref(s.Loudness),
			}
		}
	}

	for _, item := range doc.Sections {
		fs.Sections = append(fs.Sections, decodeSection(item))
	}
	for _, item := range doc.Segments {
		fs.Segments = append(fs.Segments, decodeSegment(item))
	}
	for _, item := range doc.Bars {
		fs.Bars = append(fs.Bars, decodeBar(item))
	}

	return fs, nil
}

func decodeSection(item json.RawMessage) Section {
	var r rawSection
	if err := json.Unmarshal(item, &r); err != nil {
		return Section{}
	}
	sec := Section{
		StartSec:        deref(r.Start),
		DurationSec:     deref(r.Duration),
		LoudnessDb:      deref(r.Loudness),
		TempoBpm:        deref(r.Tempo),
		TempoConfidence: deref(r.TempoConfidence),
	}
	sec.Valid = r.Start != nil && r.Loudness != nil && r.TempoConfidence != nil &&
		sec.StartSec >= 0 && sec.TempoConfidence >= 0 && sec.TempoConfidence <= 1
	return sec
}

func decodeSegment(item json.RawMessage) Segment {
	var r rawSegment
	if err := json.Unmarshal(item, &r); err != nil {
		return Segment{}
	}
	seg := Segment{
		StartSec:      deref(r.Start),
		LoudnessMaxDb: deref(r.LoudnessMax),
		Timbre:        r.Timbre,
	}
	seg.Valid = r.Start != nil && r.LoudnessMax != nil && seg.StartSec >= 0
	return seg
}

func decodeBar(item json.RawMessage) Bar {
	var r rawBar
	if err := json.Unmarshal(item, &r); err != nil {
		return Bar{}
	}
	bar := Bar{
		StartSec:   deref(r.Start),
		Confidence: deref(r.Confidence),
	}
	bar.Valid = r.Start != nil && r.Confidence != nil && bar.StartSec >= 0
	return bar
}

func deref(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}
