package chart

import (
	"image"
	"image/color"
)

// Cache memoizes the most recent Render result together with the surface
// size it was computed for. A Cache belongs to a single rendering host and is
// not safe for concurrent use.
//
// The host must call Invalidate whenever the series or the theme color
// changes; the cache only notices size changes on its own.
type Cache struct {
	Renderer Renderer

	valid bool
	size  image.Point
	prims []Primitive
}

// Invalidate forces the next GetOrCompute to render again.
func (c *Cache) Invalidate() {
	c.valid = false
}

// GetOrCompute returns the stored primitives if they were computed for size
// and the cache has not been invalidated since, and renders them afresh
// otherwise.
func (c *Cache) GetOrCompute(series DataSeries, size image.Point, area Rect, fg color.NRGBA) []Primitive {
	if c.valid && c.size == size {
		return c.prims
	}
	c.prims = c.Renderer.Render(series, area, fg)
	c.size = size
	c.valid = true
	return c.prims
}
