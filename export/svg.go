package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"time"

	"git.sr.ht/~whereswaldon/chomp/chart"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// MinSVGPoints is the fewest points SVG can plot.
const MinSVGPoints = 2

// SVG writes series as a standalone SVG line chart.
func SVG(w io.Writer, series chart.DataSeries, size image.Point, c color.NRGBA) error {
	if series.Len() < MinSVGPoints {
		return fmt.Errorf("need at least %d weights, got %d", MinSVGPoints, series.Len())
	}
	points := series.Points()
	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Day
		yValues[i] = float64(p.Value)
	}

	stroke := drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
	graph := gochart.Chart{
		Width:  size.X,
		Height: size.Y,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: gochart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return gochart.TimeFromFloat64(t).Format(time.DateOnly)
				}
				return ""
			},
		},
		YAxis: gochart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.FormatFloat(f, 'f', 1, 64)
				}
				return ""
			},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name: "Weight",
				Style: gochart.Style{
					StrokeColor: stroke,
					StrokeWidth: chart.DataWidth,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}
	if err := graph.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}
