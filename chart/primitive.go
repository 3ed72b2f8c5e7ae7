package chart

import (
	"image/color"

	"gioui.org/f32"
)

// Primitive is one drawing instruction produced by the Renderer. The
// concrete types are GridLine, AxisLine, Label and Polyline.
type Primitive interface {
	isPrimitive()
}

// Cap is the shape drawn at the open ends of a stroke.
type Cap uint8

const (
	FlatCap Cap = iota
	RoundCap
)

func (c Cap) String() string {
	switch c {
	case FlatCap:
		return "flat"
	case RoundCap:
		return "round"
	default:
		return "unknown"
	}
}

// GridLine is a background gridline.
type GridLine struct {
	Segment
	Color color.NRGBA
	Width float32
}

// AxisLine is the line of the horizontal or vertical axis.
type AxisLine struct {
	Segment
	Color color.NRGBA
	Width float32
}

// Label is a piece of text whose top-left corner is at Anchor.
type Label struct {
	Text   string
	Anchor f32.Point
	Color  color.NRGBA
	Size   float32
}

// Polyline is a single stroked path through Points.
type Polyline struct {
	Points []f32.Point
	Color  color.NRGBA
	Width  float32
	Cap    Cap
}

func (GridLine) isPrimitive() {}
func (AxisLine) isPrimitive() {}
func (Label) isPrimitive()    {}
func (Polyline) isPrimitive() {}
