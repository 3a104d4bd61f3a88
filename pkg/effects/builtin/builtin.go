// Package builtin provides lightweight effect strategies that animate
// scene objects directly. Renderers with real shaders register their own
// factories instead.
package builtin

import (
	"math"
	"math/rand/v2"

	v3 "github.com/deadsy/sdfx/vec/v3"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/chazu/sceneweave/pkg/effects"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
)

// Registry returns factories for every effect kind.
func Registry() effects.Registry {
	return effects.Registry{
		effects.Water:     NewWater,
		effects.Particles: NewParticles,
		effects.Trail:     NewTrail,
		effects.Glow:      NewGlow,
	}
}

type params struct {
	intensity float64
	speed     float64
	color     colorful.Color
	count     int
	length    int
}

func readParams(p graph.Properties) params {
	return params{
		intensity: p.Number("intensity"),
		speed:     p.Number("speed"),
		color:     p.Color("color"),
		count:     int(p.Number("count")),
		length:    int(p.Number("length")),
	}
}

// ----------------------------------------------------------------------------
// Water
// ----------------------------------------------------------------------------

// Water bobs the target up and down around its resting height. A height
// written by someone else between ticks becomes the new resting height.
type Water struct {
	target scene.Object
	base   float64 // resting Y
	last   float64 // Y written by the previous tick
	p      params
	phase  float64
}

// NewWater is the Water factory.
func NewWater(target scene.Object, props graph.Properties) effects.Effect {
	y := target.Spatial().Position.Y
	return &Water{target: target, base: y, last: y, p: readParams(props)}
}

// Amplitude is the bob height in world units.
func (w *Water) Amplitude() float64 { return 0.1 * w.p.intensity }

func (w *Water) rebase() {
	if y := w.target.Spatial().Position.Y; y != w.last {
		w.base = y
	}
}

func (w *Water) Update(dt float64) {
	w.rebase()
	w.phase += dt * w.p.speed
	w.last = w.base + math.Sin(w.phase)*w.Amplitude()
	w.target.Spatial().Position.Y = w.last
}

func (w *Water) SetProperties(props graph.Properties) {
	w.rebase()
	w.p = readParams(props)
}

func (w *Water) Cleanup() {
	w.rebase()
	w.target.Spatial().Position.Y = w.base
}

// ----------------------------------------------------------------------------
// Particles
// ----------------------------------------------------------------------------

type particle struct {
	pos, vel v3.Vec
	life     float64
}

// Particles emits a fixed budget of short-lived particles from the target.
type Particles struct {
	target scene.Object
	p      params
	rng    *rand.Rand
	live   []particle
}

// NewParticles is the Particles factory.
func NewParticles(target scene.Object, props graph.Properties) effects.Effect {
	id := uint64(target.ID())
	return &Particles{
		target: target,
		p:      readParams(props),
		rng:    rand.New(rand.NewPCG(id, id^0x9e3779b97f4a7c15)),
	}
}

// Count returns the number of live particles.
func (e *Particles) Count() int { return len(e.live) }

func (e *Particles) Update(dt float64) {
	kept := e.live[:0]
	for _, pt := range e.live {
		pt.life -= dt
		if pt.life <= 0 {
			continue
		}
		pt.pos.X += pt.vel.X * dt
		pt.pos.Y += pt.vel.Y * dt
		pt.pos.Z += pt.vel.Z * dt
		kept = append(kept, pt)
	}
	e.live = kept
	origin := e.target.Spatial().Position
	for len(e.live) < e.p.count {
		e.live = append(e.live, particle{
			pos: origin,
			vel: v3.Vec{
				X: (e.rng.Float64() - 0.5) * e.p.speed,
				Y: e.rng.Float64() * e.p.speed * e.p.intensity,
				Z: (e.rng.Float64() - 0.5) * e.p.speed,
			},
			life: 0.5 + e.rng.Float64(),
		})
	}
}

func (e *Particles) SetProperties(props graph.Properties) {
	e.p = readParams(props)
	if len(e.live) > e.p.count {
		e.live = e.live[:e.p.count]
	}
}

func (e *Particles) Cleanup() { e.live = nil }

// ----------------------------------------------------------------------------
// Trail
// ----------------------------------------------------------------------------

// Trail records the target's recent positions.
type Trail struct {
	target  scene.Object
	p       params
	history []v3.Vec
}

// NewTrail is the Trail factory.
func NewTrail(target scene.Object, props graph.Properties) effects.Effect {
	return &Trail{target: target, p: readParams(props)}
}

// Points returns the recorded positions, oldest first.
func (e *Trail) Points() []v3.Vec { return e.history }

func (e *Trail) Update(float64) {
	e.history = append(e.history, e.target.Spatial().Position)
	e.trim()
}

func (e *Trail) SetProperties(props graph.Properties) {
	e.p = readParams(props)
	e.trim()
}

func (e *Trail) trim() {
	if n := len(e.history) - max(e.p.length, 1); n > 0 {
		e.history = e.history[n:]
	}
}

func (e *Trail) Cleanup() { e.history = nil }

// ----------------------------------------------------------------------------
// Glow
// ----------------------------------------------------------------------------

// Glow pulses the target material's emissive colour.
type Glow struct {
	target   scene.Object
	p        params
	original colorful.Color
	phase    float64
}

// NewGlow is the Glow factory. Objects without a material are left alone.
func NewGlow(target scene.Object, props graph.Properties) effects.Effect {
	g := &Glow{target: target, p: readParams(props)}
	if m := target.Material(); m != nil {
		g.original = m.Emissive
	}
	return g
}

func (g *Glow) Update(dt float64) {
	m := g.target.Material()
	if m == nil {
		return
	}
	g.phase += dt * g.p.speed
	level := math.Min(1, g.p.intensity*(0.5+0.5*math.Sin(g.phase)))
	m.Emissive = g.original.BlendRgb(g.p.color, level).Clamped()
}

func (g *Glow) SetProperties(props graph.Properties) { g.p = readParams(props) }

func (g *Glow) Cleanup() {
	if m := g.target.Material(); m != nil {
		m.Emissive = g.original
	}
}
