// Package export writes weight charts to image files for use outside the
// application.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"gioui.org/f32"
	"git.sr.ht/~whereswaldon/chomp/chart"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// capSegments is the number of edges approximating a round cap.
const capSegments = 16

// Rasterize paints prims onto a new image of the given size filled with
// background. It paints the same primitives the application draws on screen,
// in order.
func Rasterize(prims []chart.Primitive, size image.Point, background color.NRGBA) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	if size.X <= 0 || size.Y <= 0 {
		return img
	}
	z := vector.NewRasterizer(size.X, size.Y)
	faces := map[float32]font.Face{}
	defer func() {
		for _, face := range faces {
			face.Close()
		}
	}()
	for _, p := range prims {
		switch p := p.(type) {
		case chart.GridLine:
			fillPath(z, img, p.Color, func() {
				segment(z, p.From, p.To, p.Width)
			})
		case chart.AxisLine:
			fillPath(z, img, p.Color, func() {
				segment(z, p.From, p.To, p.Width)
			})
		case chart.Polyline:
			fillPath(z, img, p.Color, func() {
				polyline(z, p)
			})
		case chart.Label:
			face, ok := faces[p.Size]
			if !ok {
				face = labelFace(p.Size)
				faces[p.Size] = face
			}
			label(img, face, p)
		}
	}
	return img
}

// PNG encodes Rasterize's result as a PNG image.
func PNG(w io.Writer, prims []chart.Primitive, size image.Point, background color.NRGBA) error {
	if err := png.Encode(w, Rasterize(prims, size, background)); err != nil {
		return fmt.Errorf("failed encoding png: %w", err)
	}
	return nil
}

func fillPath(z *vector.Rasterizer, dst draw.Image, c color.NRGBA, path func()) {
	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	path()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// segment adds a rectangle of the given width centred on from-to. Every
// shape is wound the same way so overlapping shapes do not cancel.
func segment(z *vector.Rasterizer, from, to f32.Point, width float32) {
	d := to.Sub(from)
	length := float32(math.Hypot(float64(d.X), float64(d.Y)))
	if length == 0 {
		return
	}
	half := width / 2
	n := f32.Pt(-d.Y/length*half, d.X/length*half)
	z.MoveTo(from.X+n.X, from.Y+n.Y)
	z.LineTo(to.X+n.X, to.Y+n.Y)
	z.LineTo(to.X-n.X, to.Y-n.Y)
	z.LineTo(from.X-n.X, from.Y-n.Y)
	z.ClosePath()
}

func disc(z *vector.Rasterizer, center f32.Point, radius float32) {
	for i := 0; i <= capSegments; i++ {
		angle := -2 * math.Pi * float64(i) / capSegments
		x := center.X + radius*float32(math.Cos(angle))
		y := center.Y + radius*float32(math.Sin(angle))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

func polyline(z *vector.Rasterizer, p chart.Polyline) {
	for i := 1; i < len(p.Points); i++ {
		segment(z, p.Points[i-1], p.Points[i], p.Width)
	}
	if p.Cap != chart.RoundCap {
		return
	}
	// Discs at every vertex give round caps at the ends and round joins
	// between segments.
	for _, pt := range p.Points {
		disc(z, pt, p.Width/2)
	}
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// labelFace returns the Go Regular face at size pixels, the font the
// application draws labels in. It falls back to a fixed bitmap face if the
// font cannot be loaded.
func labelFace(size float32) font.Face {
	f, err := goRegular()
	if err == nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// label draws l centred within the box the layout reserved for it, whose
// width is chart.TextWidth, so that labels stay centred under their ticks
// whatever the glyph widths.
func label(dst draw.Image, face font.Face, l chart.Label) {
	reserved := fixed.Int26_6(math.Round(float64(chart.TextWidth(l.Text, l.Size)) * 64))
	width := font.MeasureString(face, l.Text)
	left := fixed.Int26_6(math.Round(float64(l.Anchor.X)*64)) + (reserved-width)/2
	// Center the line box, ascent plus descent, within a box as tall as
	// the font size.
	m := face.Metrics()
	top := fixed.Int26_6(math.Round(float64(l.Anchor.Y)*64)) + (fixed.I(int(math.Round(float64(l.Size))))-m.Ascent-m.Descent)/2
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(l.Color),
		Face: face,
		Dot:  fixed.Point26_6{X: left, Y: top + m.Ascent},
	}
	d.DrawString(l.Text)
}
