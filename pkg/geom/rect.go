package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Rect is an axis-aligned rectangle with Min <= Max.
type Rect struct {
	Min, Max v2.Vec
}

// RectAt returns the rectangle with top-left corner p and the given size.
func RectAt(p v2.Vec, w, h float64) Rect {
	return Rect{Min: p, Max: v2.Vec{X: p.X + w, Y: p.Y + h}}
}

// RectAround returns the square of half-size r centered on c.
func RectAround(c v2.Vec, r float64) Rect {
	return Rect{
		Min: v2.Vec{X: c.X - r, Y: c.Y - r},
		Max: v2.Vec{X: c.X + r, Y: c.Y + r},
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() v2.Vec {
	return r.Min.Add(r.Max).MulScalar(0.5)
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p v2.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: v2.Vec{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: v2.Vec{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}
