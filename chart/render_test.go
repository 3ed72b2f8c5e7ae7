package chart

import (
	"image"
	"image/color"
	"math"
	"reflect"
	"testing"
	"time"

	"gioui.org/f32"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var fg = color.NRGBA{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff}

const tolerance = 1e-3

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func nearPt(a, b f32.Point) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func quietRenderer() (*Renderer, *test.Hook) {
	log, hook := test.NewNullLogger()
	return &Renderer{Log: log}, hook
}

// split sorts primitives by kind, preserving order within each kind.
func split(prims []Primitive) (grid []GridLine, axes []AxisLine, labels []Label, lines []Polyline) {
	for _, p := range prims {
		switch p := p.(type) {
		case GridLine:
			grid = append(grid, p)
		case AxisLine:
			axes = append(axes, p)
		case Label:
			labels = append(labels, p)
		case Polyline:
			lines = append(lines, p)
		}
	}
	return grid, axes, labels, lines
}

func TestSinglePointIsCentred(t *testing.T) {
	area := Rect{X: 10, Y: 20, Width: 200, Height: 100}
	r, _ := quietRenderer()
	prims := r.Render(FromSamples([]DataPoint{{Day: date(2025, time.May, 1), Value: 80}}), area, fg)
	_, _, _, lines := split(prims)
	if len(lines) != 1 {
		t.Fatalf("expected one polyline, got %d", len(lines))
	}
	if len(lines[0].Points) != 1 {
		t.Fatalf("expected one vertex, got %d", len(lines[0].Points))
	}
	if got := lines[0].Points[0]; !nearPt(got, area.Center()) {
		t.Errorf("expected single point at the centre %v, got %v", area.Center(), got)
	}
}

func TestMonotonicX(t *testing.T) {
	var points []DataPoint
	start := date(2024, time.December, 1)
	for _, offset := range []int{9, 3, 0, 27, 3, 14, 1, 60, 31, 2} {
		points = append(points, DataPoint{Day: start.AddDate(0, 0, offset), Value: float32(offset%7) + 70})
	}
	r, _ := quietRenderer()
	_, _, _, lines := split(r.Render(FromSamples(points), Rect{Width: 640, Height: 480}, fg))
	if len(lines) != 1 {
		t.Fatalf("expected one polyline, got %d", len(lines))
	}
	pts := lines[0].Points
	if len(pts) != len(points) {
		t.Fatalf("expected %d vertices, got %d", len(points), len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].X < pts[i-1].X {
			t.Errorf("vertex %d at x=%v is left of vertex %d at x=%v", i, pts[i].X, i-1, pts[i-1].X)
		}
	}
}

func TestRenderScenario(t *testing.T) {
	series := FromSamples([]DataPoint{
		{Day: date(2025, time.January, 30), Value: 79.2},
		{Day: date(2025, time.January, 1), Value: 82.5},
	})
	area := Rect{Width: 100, Height: 100}
	r, _ := quietRenderer()
	grid, axes, labels, lines := split(r.Render(series, area, fg))

	if len(grid) != (DefaultGridX+1)+(DefaultGridY+1) {
		t.Errorf("expected %d gridlines, got %d", (DefaultGridX+1)+(DefaultGridY+1), len(grid))
	}
	if len(axes) != 2 {
		t.Errorf("expected 2 axis lines, got %d", len(axes))
	}
	if len(lines) != 1 {
		t.Fatalf("expected one polyline, got %d", len(lines))
	}
	line := lines[0]
	if !nearPt(line.Points[0], f32.Pt(0, 0)) {
		t.Errorf("expected first point at (0,0), got %v", line.Points[0])
	}
	if !nearPt(line.Points[1], f32.Pt(100, 100)) {
		t.Errorf("expected last point at (100,100), got %v", line.Points[1])
	}
	if line.Cap != RoundCap {
		t.Errorf("expected round caps, got %v", line.Cap)
	}
	if line.Width <= grid[0].Width || line.Width <= axes[0].Width {
		t.Errorf("expected data stroke %v wider than grid %v and axes %v", line.Width, grid[0].Width, axes[0].Width)
	}

	if len(labels) != 2*(DefaultLabels+1) {
		t.Fatalf("expected %d labels, got %d", 2*(DefaultLabels+1), len(labels))
	}
	xLabels := labels[:DefaultLabels+1]
	yLabels := labels[DefaultLabels+1:]
	if xLabels[0].Text != "2025-01-01" {
		t.Errorf("expected first date label 2025-01-01, got %q", xLabels[0].Text)
	}
	if xLabels[DefaultLabels].Text != "2025-01-30" {
		t.Errorf("expected last date label 2025-01-30, got %q", xLabels[DefaultLabels].Text)
	}
	if yLabels[0].Text != "79.2" {
		t.Errorf("expected lowest value label 79.2, got %q", yLabels[0].Text)
	}
	if yLabels[DefaultLabels].Text != "82.5" {
		t.Errorf("expected highest value label 82.5, got %q", yLabels[DefaultLabels].Text)
	}
	// The first date label is centred under the left edge, below the area.
	wantAnchor := f32.Pt(-TextWidth("2025-01-01", DefaultFontSize)/2, 100+labelGap)
	if !nearPt(xLabels[0].Anchor, wantAnchor) {
		t.Errorf("expected first date label at %v, got %v", wantAnchor, xLabels[0].Anchor)
	}
	for _, l := range labels {
		if l.Color != fg {
			t.Errorf("expected label %q in %v, got %v", l.Text, fg, l.Color)
		}
	}
}

func TestRenderOrder(t *testing.T) {
	series := FromSamples([]DataPoint{
		{Day: date(2025, time.January, 1), Value: 1},
		{Day: date(2025, time.January, 2), Value: 2},
	})
	r, _ := quietRenderer()
	prims := r.Render(series, Rect{Width: 100, Height: 100}, fg)
	var kinds []string
	for _, p := range prims {
		var k string
		switch p := p.(type) {
		case GridLine:
			k = "grid"
		case AxisLine:
			if p.From.X == p.To.X {
				k = "yaxis"
			} else {
				k = "xaxis"
			}
		case Label:
			k = "label"
		case Polyline:
			k = "line"
		}
		if len(kinds) == 0 || kinds[len(kinds)-1] != k {
			kinds = append(kinds, k)
		}
	}
	expected := []string{"grid", "xaxis", "label", "yaxis", "label", "line"}
	if !reflect.DeepEqual(kinds, expected) {
		t.Errorf("expected draw order %v, got %v", expected, kinds)
	}
}

func TestRenderEmpty(t *testing.T) {
	r, hook := quietRenderer()
	grid, axes, labels, lines := split(r.Render(FromSamples(nil), Rect{Width: 100, Height: 100}, fg))
	if len(grid) == 0 || len(axes) != 2 {
		t.Errorf("expected the grid and axis skeleton, got %d gridlines and %d axes", len(grid), len(axes))
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %d", len(labels))
	}
	if len(lines) != 0 {
		t.Errorf("expected no polyline, got %d", len(lines))
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("expected no log output for an empty series, got %d entries", len(hook.AllEntries()))
	}
}

func TestRenderBeforeEpoch(t *testing.T) {
	r, hook := quietRenderer()
	series := FromSamples([]DataPoint{
		{Day: date(-20, time.January, 1), Value: 60},
		{Day: date(2025, time.January, 1), Value: 70},
	})
	_, axes, labels, lines := split(r.Render(series, Rect{Width: 100, Height: 100}, fg))
	if len(axes) != 2 || len(labels) != 0 || len(lines) != 0 {
		t.Errorf("expected only the skeleton, got %d axes, %d labels, %d polylines", len(axes), len(labels), len(lines))
	}
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a warning to be logged")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected a warning, got %v", entry.Level)
	}
}

func TestRenderIsPure(t *testing.T) {
	series := FromSamples([]DataPoint{
		{Day: date(2025, time.February, 1), Value: 81},
		{Day: date(2025, time.February, 5), Value: 80.4},
		{Day: date(2025, time.February, 3), Value: 80.9},
	})
	area := AreaFor(image.Pt(800, 600), DefaultMargin)
	r, _ := quietRenderer()
	a := r.Render(series, area, fg)
	b := r.Render(series, area, fg)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical primitives from identical inputs")
	}
}

func TestRenderOptions(t *testing.T) {
	series := FromSamples([]DataPoint{
		{Day: date(2025, time.February, 1), Value: 81},
		{Day: date(2025, time.February, 5), Value: 80.4},
	})
	log, _ := test.NewNullLogger()
	r := Renderer{Options: Options{GridX: 2, GridY: 3, LabelsX: 4, LabelsY: 1, FontSize: 20}, Log: log}
	grid, _, labels, _ := split(r.Render(series, Rect{Width: 100, Height: 100}, fg))
	if len(grid) != 3+4 {
		t.Errorf("expected 7 gridlines, got %d", len(grid))
	}
	if len(labels) != 5+2 {
		t.Errorf("expected 7 labels, got %d", len(labels))
	}
	for _, l := range labels {
		if l.Size != 20 {
			t.Errorf("expected label size 20, got %v", l.Size)
		}
	}
}
