package chart

import (
	"gioui.org/f32"
)

// Epsilon is the smallest span treated as non-degenerate. Spans below it are
// replaced with a unit span.
const Epsilon float32 = 1.1920929e-07

// Scale is the affine transform from (day, value) space to pixels for one
// plot area. MinX and MinY are the effective lower bounds, which differ from
// the data minimum when a degenerate span has been centred.
type Scale struct {
	Area  Rect
	MinX  float64
	SpanX float32
	MinY  float32
	SpanY float32
}

// Compute derives the scale of series within area. The boolean result is
// false when the series has nothing to map: it is empty, or its first day
// has a negative ordinal.
//
// A zero-variance series is given a unit value span with the data in the
// vertical middle; a single-day series is handled the same way
// horizontally.
func Compute(series DataSeries, area Rect) (Scale, bool) {
	if series.Empty() {
		return Scale{}, false
	}
	firstDay := Ordinal(series.First().Day)
	if firstDay < 0 {
		return Scale{}, false
	}
	lastDay := Ordinal(series.Last().Day)

	s := Scale{Area: area}

	minY, maxY := series.ValueRange()
	s.MinY, s.SpanY = minY, maxY-minY
	if s.SpanY < Epsilon {
		s.MinY, s.SpanY = minY-0.5, 1
	}

	s.MinX, s.SpanX = float64(firstDay), float32(lastDay-firstDay)
	if s.SpanX < Epsilon {
		s.MinX, s.SpanX = float64(firstDay)-0.5, 1
	}
	return s, true
}

// X maps an ordinal day to a horizontal pixel position.
func (s Scale) X(ordinal float64) float32 {
	ratio := (ordinal - s.MinX) / float64(s.SpanX)
	return s.Area.X + float32(ratio)*s.Area.Width
}

// Y maps a value to a vertical pixel position. Larger values are higher on
// screen, so they map to smaller pixel coordinates.
func (s Scale) Y(value float32) float32 {
	return s.Area.Y + s.Area.Height - ((value-s.MinY)/s.SpanY)*s.Area.Height
}

// Map converts a sample to its screen position.
func (s Scale) Map(p DataPoint) f32.Point {
	return f32.Pt(s.X(float64(Ordinal(p.Day))), s.Y(p.Value))
}

// DayAt returns the ordinal domain position at ratio in [0,1] across the
// horizontal span.
func (s Scale) DayAt(ratio float32) float64 {
	return s.MinX + float64(ratio)*float64(s.SpanX)
}

// ValueAt returns the value at ratio in [0,1] across the vertical span.
func (s Scale) ValueAt(ratio float32) float32 {
	return s.MinY + ratio*s.SpanY
}
