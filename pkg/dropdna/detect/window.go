package detect

const (
	// LongTrackMs is the duration from which the wider search window applies.
	LongTrackMs = 240000

	windowStartRatio    = 0.15
	windowEndRatioShort = 0.70
	windowEndRatioLong  = 0.80
	positionalRatioLow  = 0.2
	positionalRatioHigh = 0.8
)

// Window is the span of the track, in milliseconds, where drops are searched.
type Window struct {
	StartMs float64
	EndMs   float64
}

// SearchWindow returns the window for a track of the given duration. Drops in
// longer tracks tend to come later, so tracks of four minutes or more get a
// window reaching to 80% instead of 70%.
func SearchWindow(durationMs int) Window {
	if durationMs < 0 {
		durationMs = 0
	}
	d := float64(durationMs)
	end := windowEndRatioShort
	if durationMs >= LongTrackMs {
		end = windowEndRatioLong
	}
	return Window{StartMs: d * windowStartRatio, EndMs: d * end}
}

// Contains reports whether a start time in seconds lies inside the window,
// bounds included.
func (w Window) Contains(startSec float64) bool {
	ms := startSec * 1000
	return ms >= w.StartMs && ms <= w.EndMs
}

// StrictlyContains is Contains with both bounds excluded.
func (w Window) StrictlyContains(startSec float64) bool {
	ms := startSec * 1000
	return ms > w.StartMs && ms < w.EndMs
}

// Ratio is the relative position of a start time inside the window, 0 at the
// start bound and 1 at the end bound. A zero-width window yields 0.
func (w Window) Ratio(startSec float64) float64 {
	width := w.EndMs - w.StartMs
	if width <= 0 {
		return 0
	}
	return (startSec*1000 - w.StartMs) / width
}

func (w Window) inMiddle(startSec float64) bool {
	r := w.Ratio(startSec)
	return r > positionalRatioLow && r < positionalRatioHigh
}
