package chart

import (
	"image/color"
	"time"

	"gioui.org/f32"
	"github.com/sirupsen/logrus"
)

const (
	// LineWidth is the stroke width of gridlines and axes.
	LineWidth = 1
	// DataWidth is the stroke width of the data line.
	DataWidth = 3
	// gridAlpha is the opacity of gridlines relative to the theme color.
	gridAlpha = 50
)

// Options controls the density and text size of a rendered chart. Zero
// fields take their defaults.
type Options struct {
	GridX, GridY     int
	LabelsX, LabelsY int
	FontSize         float32
}

func (o Options) withDefaults() Options {
	if o.GridX <= 0 {
		o.GridX = DefaultGridX
	}
	if o.GridY <= 0 {
		o.GridY = DefaultGridY
	}
	if o.LabelsX <= 0 {
		o.LabelsX = DefaultLabels
	}
	if o.LabelsY <= 0 {
		o.LabelsY = DefaultLabels
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	return o
}

// Renderer turns a series into drawing primitives. The zero value is ready
// to use with default options.
type Renderer struct {
	Options
	// Log receives warnings about series that cannot be drawn. A nil Log uses
	// the logrus standard logger.
	Log logrus.FieldLogger
}

func (r *Renderer) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// Render lays out series within area. Primitives are ordered back to front:
// gridlines, the x axis and its labels, the y axis and its labels, then the
// data line. An empty series, or one starting at a negative ordinal,
// yields only the gridlines and the two axis lines.
func (r *Renderer) Render(series DataSeries, area Rect, fg color.NRGBA) []Primitive {
	opts := r.Options.withDefaults()

	scale, ok := Compute(series, area)
	if !ok && !series.Empty() {
		r.log().WithFields(logrus.Fields{
			"first_day": series.First().Day.Format(time.DateOnly),
			"samples":   series.Len(),
		}).Warn("series starts at a negative ordinal day, skipping data")
	}

	grid := GridLines(area, opts.GridX, opts.GridY)
	xLabels := XLabels(scale, ok, opts.LabelsX, opts.FontSize)
	yLabels := YLabels(scale, ok, opts.LabelsY, opts.FontSize)

	prims := make([]Primitive, 0, len(grid)+len(xLabels)+len(yLabels)+3)

	gridColor := fg
	gridColor.A = uint8(uint16(fg.A) * gridAlpha / 255)
	for _, seg := range grid {
		prims = append(prims, GridLine{Segment: seg, Color: gridColor, Width: LineWidth})
	}

	bottomLeft := f32.Pt(area.X, area.Y+area.Height)
	prims = append(prims, AxisLine{
		Segment: Segment{From: bottomLeft, To: area.Max()},
		Color:   fg,
		Width:   LineWidth,
	})
	for _, l := range xLabels {
		l.Color = fg
		prims = append(prims, l)
	}

	prims = append(prims, AxisLine{
		Segment: Segment{From: bottomLeft, To: area.Min()},
		Color:   fg,
		Width:   LineWidth,
	})
	for _, l := range yLabels {
		l.Color = fg
		prims = append(prims, l)
	}

	if !ok {
		return prims
	}
	points := make([]f32.Point, 0, series.Len())
	for i := 0; i < series.Len(); i++ {
		points = append(points, scale.Map(series.At(i)))
	}
	return append(prims, Polyline{
		Points: points,
		Color:  fg,
		Width:  DataWidth,
		Cap:    RoundCap,
	})
}
