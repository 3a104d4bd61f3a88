// Package geom holds the screen/canvas geometry shared by the editor:
// the pan/zoom view transform, rectangles, and connection curves.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Default view bounds, zoom step and grid spacing.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 3.0
	DefaultZoomStep = 0.075
	DefaultGrid     = 20.0 // canvas units between grid lines
)

// View maps between screen space and the infinite logical canvas.
// Offset is the screen position of the canvas origin.
type View struct {
	Scale    float64
	Offset   v2.Vec
	MinScale float64
	MaxScale float64
	ZoomStep float64 // multiplicative step per wheel notch, e.g. 0.075
}

// NewView returns an identity view with the given bounds. Non-positive
// arguments fall back to the package defaults.
func NewView(minScale, maxScale, step float64) *View {
	if minScale <= 0 {
		minScale = DefaultMinScale
	}
	if maxScale < minScale {
		maxScale = math.Max(DefaultMaxScale, minScale)
	}
	if step <= 0 {
		step = DefaultZoomStep
	}
	return &View{
		Scale:    1,
		MinScale: minScale,
		MaxScale: maxScale,
		ZoomStep: step,
	}
}

// ScreenToCanvas converts a screen point to canvas coordinates.
func (v *View) ScreenToCanvas(p v2.Vec) v2.Vec {
	return p.Sub(v.Offset).DivScalar(v.Scale)
}

// CanvasToScreen converts a canvas point to screen coordinates.
func (v *View) CanvasToScreen(p v2.Vec) v2.Vec {
	return p.MulScalar(v.Scale).Add(v.Offset)
}

// RectToScreen converts a canvas rectangle to screen space.
func (v *View) RectToScreen(r Rect) Rect {
	return Rect{Min: v.CanvasToScreen(r.Min), Max: v.CanvasToScreen(r.Max)}
}

// ZoomAt scales the view by one step around the screen point p. A positive
// dir zooms in, a negative dir zooms out. The canvas point under p is the
// same before and after. Reports whether the scale changed.
func (v *View) ZoomAt(p v2.Vec, dir int) bool {
	if dir == 0 {
		return false
	}
	factor := 1 + v.ZoomStep
	if dir < 0 {
		factor = 1 - v.ZoomStep
	}
	return v.SetScaleAt(p, v.Scale*factor)
}

// SetScaleAt sets the scale (clamped to bounds) keeping the canvas point
// under the screen point p fixed.
func (v *View) SetScaleAt(p v2.Vec, scale float64) bool {
	scale = clamp(scale, v.MinScale, v.MaxScale)
	if scale == v.Scale {
		return false
	}
	anchor := v.ScreenToCanvas(p)
	v.Scale = scale
	v.Offset = p.Sub(anchor.MulScalar(scale))
	return true
}

// Pan moves the canvas origin by a raw screen delta.
func (v *View) Pan(delta v2.Vec) {
	v.Offset = v.Offset.Add(delta)
}

// Reset restores the identity transform.
func (v *View) Reset() {
	v.Scale = 1
	v.Offset = v2.Vec{}
}

// FitTo adjusts scale and offset so that the canvas rectangle r fills a
// viewport of the given screen size, leaving padding pixels on each side.
func (v *View) FitTo(r Rect, viewport v2.Vec, padding float64) {
	w, h := r.Width(), r.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	s := math.Min((viewport.X-2*padding)/w, (viewport.Y-2*padding)/h)
	if s <= 0 {
		s = 1
	}
	v.Scale = clamp(s, v.MinScale, v.MaxScale)
	center := r.Center()
	v.Offset = viewport.MulScalar(0.5).Sub(center.MulScalar(v.Scale))
}

// Grid returns the on-screen spacing of a background grid whose canvas
// spacing is base, and the screen position of the first grid line on each
// axis (always in [0, spacing)).
func (v *View) Grid(base float64) (spacing float64, phase v2.Vec) {
	spacing = base * v.Scale
	if spacing <= 0 {
		return 0, v2.Vec{}
	}
	return spacing, v2.Vec{X: posMod(v.Offset.X, spacing), Y: posMod(v.Offset.Y, spacing)}
}

func posMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
