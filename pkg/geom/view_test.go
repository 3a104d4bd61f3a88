package geom

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenToCanvasRoundTrip(t *testing.T) {
	v := NewView(0, 0, 0)
	v.Scale = 1.7
	v.Offset = v2.Vec{X: 40, Y: -12}

	p := v2.Vec{X: 300, Y: 125}
	c := v.ScreenToCanvas(p)
	assert.InDelta(t, (300-40)/1.7, c.X, 1e-9)
	assert.InDelta(t, (125+12)/1.7, c.Y, 1e-9)

	back := v.CanvasToScreen(c)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestZoomAtKeepsPointAnchored(t *testing.T) {
	points := []v2.Vec{{X: 0, Y: 0}, {X: 512, Y: 384}, {X: -40, Y: 900}, {X: 13.5, Y: 7.25}}
	for _, p := range points {
		for _, dir := range []int{1, -1} {
			v := NewView(0.1, 3, 0.075)
			v.Offset = v2.Vec{X: 120, Y: 80}
			for i := 0; i < 20; i++ {
				before := v.ScreenToCanvas(p)
				v.ZoomAt(p, dir)
				after := v.ScreenToCanvas(p)
				require.InDelta(t, before.X, after.X, 1e-6, "point %v dir %d step %d", p, dir, i)
				require.InDelta(t, before.Y, after.Y, 1e-6, "point %v dir %d step %d", p, dir, i)
			}
		}
	}
}

func TestZoomClampsToBounds(t *testing.T) {
	v := NewView(0.5, 2, 0.075)
	for i := 0; i < 100; i++ {
		v.ZoomAt(v2.Vec{X: 10, Y: 10}, 1)
	}
	assert.Equal(t, 2.0, v.Scale)
	assert.False(t, v.ZoomAt(v2.Vec{X: 10, Y: 10}, 1), "zoom past max must report no change")

	for i := 0; i < 100; i++ {
		v.ZoomAt(v2.Vec{X: 10, Y: 10}, -1)
	}
	assert.Equal(t, 0.5, v.Scale)
}

func TestZoomStepSize(t *testing.T) {
	v := NewView(0.1, 3, 0.075)
	v.ZoomAt(v2.Vec{}, 1)
	assert.InDelta(t, 1.075, v.Scale, 1e-12)
	v.ZoomAt(v2.Vec{}, 0)
	assert.InDelta(t, 1.075, v.Scale, 1e-12)
}

func TestPanIsUnscaled(t *testing.T) {
	v := NewView(0, 0, 0)
	v.Scale = 2
	v.Pan(v2.Vec{X: 10, Y: -5})
	v.Pan(v2.Vec{X: 1, Y: 1})
	assert.Equal(t, v2.Vec{X: 11, Y: -4}, v.Offset)
}

func TestFitTo(t *testing.T) {
	v := NewView(0.1, 3, 0.075)
	r := Rect{Min: v2.Vec{X: 0, Y: 0}, Max: v2.Vec{X: 400, Y: 200}}
	v.FitTo(r, v2.Vec{X: 820, Y: 620}, 10)
	assert.InDelta(t, 2.0, v.Scale, 1e-9)
	c := v.CanvasToScreen(r.Center())
	assert.InDelta(t, 410, c.X, 1e-9)
	assert.InDelta(t, 310, c.Y, 1e-9)
}

func TestGrid(t *testing.T) {
	v := NewView(0, 0, 0)
	v.Scale = 0.5
	v.Offset = v2.Vec{X: -7, Y: 23}
	spacing, phase := v.Grid(20)
	assert.Equal(t, 10.0, spacing)
	assert.InDelta(t, 3, phase.X, 1e-9)
	assert.InDelta(t, 3, phase.Y, 1e-9)
}

func TestNewViewDefaults(t *testing.T) {
	v := NewView(-1, -1, 0)
	assert.Equal(t, DefaultMinScale, v.MinScale)
	assert.Equal(t, DefaultMaxScale, v.MaxScale)
	assert.Equal(t, DefaultZoomStep, v.ZoomStep)
	assert.Equal(t, 1.0, v.Scale)
}
