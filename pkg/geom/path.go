package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// PathConfig tunes connection curves.
type PathConfig struct {
	Factor            float64 // control offset as a fraction of endpoint distance
	MinOffset         float64
	MaxOffset         float64
	BackwardTolerance float64 // output may sit this far right of the input and still count as forward
	HitWidth          float64 // half-width of the invisible hit-test stroke
}

// DefaultPathConfig returns the standard curve settings.
func DefaultPathConfig() PathConfig {
	return PathConfig{
		Factor:            0.4,
		MinOffset:         30,
		MaxOffset:         150,
		BackwardTolerance: 10,
		HitWidth:          6,
	}
}

// Path is a cubic Bezier from an output socket to an input socket.
type Path struct {
	Start, C1, C2, End v2.Vec
	Backward           bool // output lies right of the input
	Dashed             bool // preview while drawing a connection
}

// ConnectionPath computes the curve between an output endpoint and an input
// endpoint, both in canvas space.
func ConnectionPath(start, end v2.Vec, cfg PathConfig) Path {
	off := clamp(end.Sub(start).Length()*cfg.Factor, cfg.MinOffset, cfg.MaxOffset)
	p := Path{Start: start, End: end}
	if start.X <= end.X+cfg.BackwardTolerance {
		p.C1 = v2.Vec{X: start.X + off, Y: start.Y}
		p.C2 = v2.Vec{X: end.X - off, Y: end.Y}
		return p
	}
	// Output is right of the input: leave each socket on its natural side
	// and bow vertically so the curve does not fold back over the nodes.
	p.Backward = true
	bow := off * 0.5
	if end.Y < start.Y {
		bow = -bow
	}
	p.C1 = v2.Vec{X: start.X + off, Y: start.Y + bow}
	p.C2 = v2.Vec{X: end.X - off, Y: end.Y - bow}
	return p
}

// PreviewPath is the dashed curve drawn from the origin socket to the live
// pointer. When the drag started on an input socket the curve is drawn
// from the pointer to the socket so it keeps the output->input shape.
func PreviewPath(origin, pointer v2.Vec, fromOutput bool, cfg PathConfig) Path {
	var p Path
	if fromOutput {
		p = ConnectionPath(origin, pointer, cfg)
	} else {
		p = ConnectionPath(pointer, origin, cfg)
	}
	p.Dashed = true
	return p
}

// At evaluates the curve at t in [0,1].
func (p Path) At(t float64) v2.Vec {
	u := 1 - t
	a := p.Start.MulScalar(u * u * u)
	b := p.C1.MulScalar(3 * u * u * t)
	c := p.C2.MulScalar(3 * u * t * t)
	d := p.End.MulScalar(t * t * t)
	return a.Add(b).Add(c).Add(d)
}

// Tangent returns the (unnormalized) derivative at t.
func (p Path) Tangent(t float64) v2.Vec {
	u := 1 - t
	a := p.C1.Sub(p.Start).MulScalar(3 * u * u)
	b := p.C2.Sub(p.C1).MulScalar(6 * u * t)
	c := p.End.Sub(p.C2).MulScalar(3 * t * t)
	return a.Add(b).Add(c)
}

// Arrow returns the three corners of an arrowhead of the given size placed
// at the middle of the curve and pointing along it.
func (p Path) Arrow(size float64) [3]v2.Vec {
	tip := p.At(0.5)
	dir := p.Tangent(0.5)
	l := dir.Length()
	if l == 0 {
		dir = v2.Vec{X: 1}
	} else {
		dir = dir.DivScalar(l)
	}
	normal := v2.Vec{X: -dir.Y, Y: dir.X}
	back := tip.Sub(dir.MulScalar(size))
	return [3]v2.Vec{
		tip,
		back.Add(normal.MulScalar(size * 0.5)),
		back.Sub(normal.MulScalar(size * 0.5)),
	}
}

const hitSamples = 32

// Distance approximates the distance from q to the curve by sampling.
func (p Path) Distance(q v2.Vec) float64 {
	best := math.Inf(1)
	prev := p.Start
	for i := 1; i <= hitSamples; i++ {
		cur := p.At(float64(i) / hitSamples)
		if d := segmentDistance(q, prev, cur); d < best {
			best = d
		}
		prev = cur
	}
	return best
}

// Hit reports whether q lies within width of the curve.
func (p Path) Hit(q v2.Vec, width float64) bool {
	return p.Distance(q) <= width
}

// SVG renders the curve as an SVG path "d" attribute.
func (p Path) SVG() string {
	return fmt.Sprintf("M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f",
		p.Start.X, p.Start.Y, p.C1.X, p.C1.Y, p.C2.X, p.C2.Y, p.End.X, p.End.Y)
}

func segmentDistance(q, a, b v2.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return q.Sub(a).Length()
	}
	t := clamp((q.Sub(a).X*ab.X+q.Sub(a).Y*ab.Y)/l2, 0, 1)
	return q.Sub(a.Add(ab.MulScalar(t))).Length()
}
