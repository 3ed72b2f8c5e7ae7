package chart

import (
	"image"
	"math"

	"gioui.org/f32"
	"golang.org/x/exp/constraints"
)

// DefaultMargin is the space, in pixels, reserved on every side of the
// drawing surface for tick labels.
const DefaultMargin = 50

// Rect is an axis-aligned rectangle in pixel space.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// Min returns the top-left corner.
func (r Rect) Min() f32.Point {
	return f32.Pt(r.X, r.Y)
}

// Max returns the bottom-right corner.
func (r Rect) Max() f32.Point {
	return f32.Pt(r.X+r.Width, r.Y+r.Height)
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() f32.Point {
	return f32.Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

// AreaFor insets a surface of the given size by margin on every side. The
// result never has negative extents, even for surfaces smaller than twice the
// margin.
func AreaFor(size image.Point, margin int) Rect {
	m := float32(margin)
	return Rect{
		X:      m,
		Y:      m,
		Width:  max(float32(size.X)-2*m, 0),
		Height: max(float32(size.Y)-2*m, 0),
	}
}

// Segment is a straight line between two screen points.
type Segment struct {
	From, To f32.Point
}

func round[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Round(float64(a)))
}

// atLeast clamps a density to a minimum of one interval.
func atLeast[T constraints.Integer](a, lower T) T {
	return max(a, lower)
}
