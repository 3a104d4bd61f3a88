package builtin

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/sceneweave/pkg/effects"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
)

func effectProps(t *testing.T, kind string, set map[string]graph.Value) graph.Properties {
	t.Helper()
	s := graph.NewStore()
	n, err := s.AddNode(graph.TypeEffect, v2.Vec{})
	require.NoError(t, err)
	_, err = s.SetProperty(n.Handle, "type", graph.Choice(kind))
	require.NoError(t, err)
	for k, v := range set {
		_, err = s.SetProperty(n.Handle, k, v)
		require.NoError(t, err)
	}
	return n.Props
}

func TestRegistryCoversEveryKind(t *testing.T) {
	reg := Registry()
	for _, k := range effects.Kinds() {
		assert.NotNil(t, reg[k], k.String())
	}
}

func TestWaterBobsAndRestores(t *testing.T) {
	obj := scene.NewMesh("pool")
	obj.Spatial().Position = v3.Vec{X: 1, Y: 2, Z: 3}
	w := NewWater(obj, effectProps(t, "water", nil)).(*Water)

	w.Update(1)
	assert.NotEqual(t, 2.0, obj.Spatial().Position.Y)
	assert.InDelta(t, 2, obj.Spatial().Position.Y, w.Amplitude()+1e-9)

	w.Cleanup()
	assert.Equal(t, v3.Vec{X: 1, Y: 2, Z: 3}, obj.Spatial().Position)
}

func TestWaterFollowsMovedTarget(t *testing.T) {
	obj := scene.NewMesh("pool")
	obj.Spatial().Position = v3.Vec{X: 1, Y: 2, Z: 3}
	w := NewWater(obj, effectProps(t, "water", nil)).(*Water)
	w.Update(1)

	// A transform edit lands between ticks.
	obj.Spatial().Position = v3.Vec{X: 5, Y: 10, Z: 3}
	w.Update(0.5)
	assert.InDelta(t, 10, obj.Spatial().Position.Y, w.Amplitude()+1e-9)

	w.Cleanup()
	assert.Equal(t, v3.Vec{X: 5, Y: 10, Z: 3}, obj.Spatial().Position)
}

func TestParticlesBudget(t *testing.T) {
	obj := scene.NewMesh("emitter")
	p := NewParticles(obj, effectProps(t, "particles", map[string]graph.Value{"count": graph.Number(50)})).(*Particles)

	p.Update(0.016)
	assert.Equal(t, 50, p.Count())
	for range 100 {
		p.Update(0.05)
		assert.LessOrEqual(t, p.Count(), 50)
	}

	p.SetProperties(effectProps(t, "particles", map[string]graph.Value{"count": graph.Number(10)}))
	assert.Equal(t, 10, p.Count())

	p.Cleanup()
	assert.Equal(t, 0, p.Count())
}

func TestTrailHistory(t *testing.T) {
	obj := scene.NewMesh("comet")
	tr := NewTrail(obj, effectProps(t, "trail", map[string]graph.Value{"length": graph.Number(3)})).(*Trail)

	for i := range 5 {
		obj.Spatial().Position = v3.Vec{X: float64(i)}
		tr.Update(0.1)
	}
	require.Len(t, tr.Points(), 3)
	assert.Equal(t, 2.0, tr.Points()[0].X)
	assert.Equal(t, 4.0, tr.Points()[2].X)

	tr.Cleanup()
	assert.Empty(t, tr.Points())
}

func TestGlowPulsesAndRestores(t *testing.T) {
	obj := scene.NewMesh("lamp")
	before := obj.Material().Emissive
	g := NewGlow(obj, effectProps(t, "glow", map[string]graph.Value{"color": graph.MustHex("#ff0000")}))

	g.Update(0.5)
	assert.NotEqual(t, before, obj.Material().Emissive)

	g.Cleanup()
	assert.Equal(t, before, obj.Material().Emissive)
}

func TestGlowWithoutMaterial(t *testing.T) {
	light := scene.NewLight("sun", scene.LightDirectional)
	g := NewGlow(light, effectProps(t, "glow", nil))
	g.Update(1)
	g.Cleanup()
	assert.Nil(t, light.Material())
}
