package chart

import (
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"gioui.org/f32"
)

const (
	// DefaultLabels is the number of intervals between tick labels on
	// either axis.
	DefaultLabels = 5
	// DefaultFontSize is the label text size in pixels.
	DefaultFontSize = 12
	// labelGap separates a label from the edge of the plot area.
	labelGap = 4
)

// TextWidth estimates the rendered width of text, treating every glyph as
// half as wide as the font is tall.
func TextWidth(text string, fontSize float32) float32 {
	return float32(utf8.RuneCountInString(text)) * (fontSize / 2)
}

// tick is one labelled axis position: its text and its pixel coordinate
// along the axis.
type tick struct {
	text string
	pos  float32
}

// xTicks rounds each tick to its nearest day. Ticks rounding to a day
// outside the data are dropped, and of several ticks rounding to the same
// day only the one closest to it is kept.
func xTicks(s Scale, density int) []tick {
	density = atLeast(density, 1)
	firstDay := math.Ceil(s.MinX)
	lastDay := math.Floor(s.MinX + float64(s.SpanX))
	ticks := make([]tick, 0, density+1)
	var lastDist float64
	for i := 0; i <= density; i++ {
		ratio := float32(i) / float32(density)
		at := s.DayAt(ratio)
		day := round(at)
		if day < firstDay || day > lastDay {
			continue
		}
		t := tick{
			text: DayFromOrdinal(int(day)).Format(time.DateOnly),
			pos:  s.Area.X + ratio*s.Area.Width,
		}
		dist := math.Abs(at - day)
		if n := len(ticks); n > 0 && ticks[n-1].text == t.text {
			if dist < lastDist {
				ticks[n-1], lastDist = t, dist
			}
			continue
		}
		ticks = append(ticks, t)
		lastDist = dist
	}
	return ticks
}

func yTicks(s Scale, density int) []tick {
	density = atLeast(density, 1)
	ticks := make([]tick, 0, density+1)
	for i := 0; i <= density; i++ {
		ratio := float32(i) / float32(density)
		ticks = append(ticks, tick{
			text: strconv.FormatFloat(float64(s.ValueAt(ratio)), 'f', 1, 32),
			pos:  s.Area.Y + s.Area.Height - ratio*s.Area.Height,
		})
	}
	return ticks
}

// XLabels returns the date labels of the horizontal axis, each centred
// beneath its tick. Short series get fewer labels than density+1, since
// no date is labelled twice. It returns nil when ok is false.
func XLabels(s Scale, ok bool, density int, fontSize float32) []Label {
	if !ok {
		return nil
	}
	ticks := xTicks(s, density)
	labels := make([]Label, 0, len(ticks))
	y := s.Area.Y + s.Area.Height + labelGap
	for _, t := range ticks {
		labels = append(labels, Label{
			Text:   t.text,
			Anchor: f32.Pt(t.pos-TextWidth(t.text, fontSize)/2, y),
			Size:   fontSize,
		})
	}
	return labels
}

// YLabels returns the value labels of the vertical axis, right-aligned
// against the left edge of the plot area and vertically centred on their
// ticks. It returns nil when ok is false.
func YLabels(s Scale, ok bool, density int, fontSize float32) []Label {
	if !ok {
		return nil
	}
	ticks := yTicks(s, density)
	labels := make([]Label, 0, len(ticks))
	for _, t := range ticks {
		labels = append(labels, Label{
			Text:   t.text,
			Anchor: f32.Pt(s.Area.X-labelGap-TextWidth(t.text, fontSize), t.pos-fontSize/2),
			Size:   fontSize,
		})
	}
	return labels
}
