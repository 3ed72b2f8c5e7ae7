package chart

import "gioui.org/f32"

const (
	// DefaultGridX is the number of intervals between vertical gridlines.
	DefaultGridX = 5
	// DefaultGridY is the number of intervals between horizontal gridlines.
	DefaultGridY = 20
)

// GridLines returns evenly spaced gridlines covering area: xDensity+1
// vertical lines followed by yDensity+1 horizontal lines, both including the
// area's edges. The lines depend only on the area, never on the data.
func GridLines(area Rect, xDensity, yDensity int) []Segment {
	xDensity = atLeast(xDensity, 1)
	yDensity = atLeast(yDensity, 1)
	lines := make([]Segment, 0, xDensity+yDensity+2)
	top, bottom := area.Y, area.Y+area.Height
	for i := 0; i <= xDensity; i++ {
		x := area.X + area.Width*float32(i)/float32(xDensity)
		lines = append(lines, Segment{From: f32.Pt(x, top), To: f32.Pt(x, bottom)})
	}
	left, right := area.X, area.X+area.Width
	for i := 0; i <= yDensity; i++ {
		y := area.Y + area.Height*float32(i)/float32(yDensity)
		lines = append(lines, Segment{From: f32.Pt(left, y), To: f32.Pt(right, y)})
	}
	return lines
}
