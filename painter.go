package main

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"gioui.org/x/stroke"
	"git.sr.ht/~whereswaldon/chomp/chart"
)

// paintChart draws prims, whose coordinates are in Dp, scaled to the window's
// pixel density.
func paintChart(gtx C, th *material.Theme, prims []chart.Primitive) {
	scale := gtx.Metric.PxPerDp
	defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(scale, scale))).Push(gtx.Ops).Pop()
	// Label sizes are already in chart units.
	gtx.Metric = unit.Metric{PxPerDp: 1, PxPerSp: 1}
	for _, p := range prims {
		switch p := p.(type) {
		case chart.GridLine:
			strokeSegment(gtx.Ops, p.Segment, p.Width, p.Color)
		case chart.AxisLine:
			strokeSegment(gtx.Ops, p.Segment, p.Width, p.Color)
		case chart.Polyline:
			strokePolyline(gtx.Ops, p)
		case chart.Label:
			paintLabel(gtx, th, p)
		}
	}
}

func strokeSegment(ops *op.Ops, seg chart.Segment, width float32, c color.NRGBA) {
	var path stroke.Path
	path.Segments = []stroke.Segment{
		stroke.MoveTo(seg.From),
		stroke.LineTo(seg.To),
	}
	paint.FillShape(ops, c, stroke.Stroke{
		Path:  path,
		Width: width,
		Cap:   stroke.FlatCap,
	}.Op(ops))
}

func strokePolyline(ops *op.Ops, line chart.Polyline) {
	switch len(line.Points) {
	case 0:
		return
	case 1:
		// A lone sample has no segment to stroke, so draw its cap.
		r := line.Width / 2
		pt := line.Points[0]
		paint.FillShape(ops, line.Color, clip.Ellipse{
			Min: image.Pt(int(pt.X-r), int(pt.Y-r)),
			Max: image.Pt(int(pt.X+r+.5), int(pt.Y+r+.5)),
		}.Op(ops))
		return
	}
	var path stroke.Path
	path.Segments = make([]stroke.Segment, 0, len(line.Points))
	path.Segments = append(path.Segments, stroke.MoveTo(line.Points[0]))
	for _, pt := range line.Points[1:] {
		path.Segments = append(path.Segments, stroke.LineTo(pt))
	}
	lineCap := stroke.FlatCap
	if line.Cap == chart.RoundCap {
		lineCap = stroke.RoundCap
	}
	paint.FillShape(ops, line.Color, stroke.Stroke{
		Path:  path,
		Width: line.Width,
		Cap:   lineCap,
		Join:  stroke.RoundJoin,
	}.Op(ops))
}

func paintLabel(gtx C, th *material.Theme, l chart.Label) {
	defer op.Affine(f32.Affine2D{}.Offset(l.Anchor)).Push(gtx.Ops).Pop()
	gtx.Constraints = layout.Constraints{Max: image.Pt(1<<16, 1<<16)}
	lbl := material.Label(th, unit.Sp(l.Size), l.Text)
	lbl.Color = l.Color
	lbl.MaxLines = 1
	lbl.Layout(gtx)
}
