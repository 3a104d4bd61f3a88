package dataflow

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/sceneweave/pkg/effects"
	"github.com/chazu/sceneweave/pkg/effects/builtin"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
)

type harness struct {
	store *graph.Store
	fx    *effects.Manager
	mesh  *scene.MemTerrain
	eval  *Evaluator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: graph.NewStore(),
		fx:    effects.NewManager(builtin.Registry(), nil),
		mesh:  scene.NewMemTerrain(scene.TerrainConfig{Width: 100, Length: 100, Resolution: 2}),
	}
	h.eval = New(h.store, h.fx, h.mesh, nil)
	return h
}

func (h *harness) add(t *testing.T, typ graph.Type) *graph.Node {
	t.Helper()
	n, err := h.store.AddNode(typ, v2.Vec{})
	require.NoError(t, err)
	return n
}

func (h *harness) set(t *testing.T, n *graph.Node, name string, v graph.Value) {
	t.Helper()
	_, err := h.store.SetProperty(n.Handle, name, v)
	require.NoError(t, err)
}

func (h *harness) connect(t *testing.T, from, to *graph.Node) {
	t.Helper()
	_, err := h.store.Connect(graph.Socket{Node: from.Handle, Dir: graph.Output}, graph.Socket{Node: to.Handle, Dir: graph.Input})
	require.NoError(t, err)
}

func TestMaterialToObject(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	obj.Linked = scene.NewMesh("cube")
	mat := h.add(t, graph.TypeMaterial)
	h.set(t, mat, "color", graph.MustHex("#ff0000"))
	h.set(t, mat, "metalness", graph.Number(0.9))
	h.connect(t, mat, obj)

	require.NoError(t, h.eval.Propagate(mat.Handle))
	m := obj.Linked.Material()
	assert.Equal(t, "#ff0000", m.Color.Hex())
	assert.Equal(t, 0.9, m.Metalness)
}

func TestTransformToObject(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	obj.Linked = scene.NewMesh("cube")
	xf := h.add(t, graph.TypeTransform)
	h.set(t, xf, "position", graph.Vec3{X: 1, Y: 2, Z: 3})
	h.set(t, xf, "rotation", graph.Vec3{X: 90, Y: 180, Z: 0})
	h.set(t, xf, "scale", graph.Vec3{X: 2, Y: 2, Z: 2})
	h.connect(t, xf, obj)

	require.NoError(t, h.eval.Propagate(xf.Handle))
	sp := obj.Linked.Spatial()
	assert.Equal(t, v3.Vec{X: 1, Y: 2, Z: 3}, sp.Position)
	assert.InDelta(t, math.Pi/2, sp.Rotation.X, 1e-12)
	assert.InDelta(t, math.Pi, sp.Rotation.Y, 1e-12)
	assert.Equal(t, v3.Vec{X: 2, Y: 2, Z: 2}, sp.Scale)
}

func TestLightToObject(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	obj.Linked = scene.NewLight("lamp", scene.LightPoint)
	light := h.add(t, graph.TypeLight)
	h.set(t, light, "kind", graph.Choice("spot"))
	h.set(t, light, "intensity", graph.Number(3))
	h.set(t, light, "castShadow", graph.Bool(true))
	h.set(t, light, "angle", graph.Number(45))
	h.set(t, light, "penumbra", graph.Number(0.2))
	h.connect(t, light, obj)

	require.NoError(t, h.eval.Propagate(light.Handle))
	l := obj.Linked.Light()
	assert.Equal(t, scene.LightSpot, l.Kind)
	assert.Equal(t, 3.0, l.Intensity)
	assert.True(t, l.CastShadow)
	assert.InDelta(t, math.Pi/4, l.Angle, 1e-12)
	assert.Equal(t, 0.2, l.Penumbra)
}

func TestMismatchedEdgesIgnored(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	obj.Linked = scene.NewLight("lamp", scene.LightPoint)
	phys := h.add(t, graph.TypePhysics)
	mat := h.add(t, graph.TypeMaterial)
	h.connect(t, phys, obj)
	h.connect(t, mat, obj)

	require.NoError(t, h.eval.Propagate(phys.Handle))
	require.NoError(t, h.eval.Propagate(mat.Handle), "material on a light has no effect")
	assert.Nil(t, obj.Linked.Material())
}

func TestPropagateIdempotent(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	cube := scene.NewMesh("cube")
	obj.Linked = cube
	xf := h.add(t, graph.TypeTransform)
	h.set(t, xf, "rotation", graph.Vec3{X: 30, Y: 60, Z: 90})
	mat := h.add(t, graph.TypeMaterial)
	h.set(t, mat, "color", graph.MustHex("#336699"))
	fx := h.add(t, graph.TypeEffect)
	h.connect(t, xf, obj)
	h.connect(t, mat, obj)
	h.connect(t, obj, fx)

	pass := func() {
		for _, n := range []*graph.Node{xf, mat, obj} {
			require.NoError(t, h.eval.Propagate(n.Handle))
		}
	}
	pass()
	spatial, material, entries := *cube.Spatial(), *cube.Material(), h.fx.Entries()
	pass()
	assert.Equal(t, spatial, *cube.Spatial())
	assert.Equal(t, material, *cube.Material())
	assert.Equal(t, entries, h.fx.Entries())
	assert.Equal(t, 1, h.fx.Len())
}

func TestObjectToEffect(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	obj.Linked = scene.NewMesh("cube")
	fx := h.add(t, graph.TypeEffect)
	h.set(t, fx, "type", graph.Choice("trail"))
	h.connect(t, obj, fx)

	require.NoError(t, h.eval.Propagate(obj.Handle))
	e, ok := h.fx.Get(obj.Linked.ID())
	require.True(t, ok)
	assert.Equal(t, effects.Trail, e.Kind)
	assert.Equal(t, fx.Handle, e.Source)

	// Editing the effect node swaps the strategy on the same target.
	h.set(t, fx, "type", graph.Choice("glow"))
	require.NoError(t, h.eval.PropagateEdit(fx.Handle))
	e, _ = h.fx.Get(obj.Linked.ID())
	assert.Equal(t, effects.Glow, e.Kind)
	assert.Equal(t, 1, h.fx.Len())
}

func TestUnlinkedObjectDoesNothing(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	fx := h.add(t, graph.TypeEffect)
	h.connect(t, obj, fx)
	require.NoError(t, h.eval.Propagate(obj.Handle))
	assert.Equal(t, 0, h.fx.Len())
}

func TestObjectVisibilityEdit(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	obj.Linked = scene.NewMesh("cube")
	h.set(t, obj, "visible", graph.Bool(false))
	require.NoError(t, h.eval.PropagateEdit(obj.Handle))
	assert.False(t, obj.Linked.Spatial().Visible)
}

func TestRefreshAppliesIncoming(t *testing.T) {
	h := newHarness(t)
	obj := h.add(t, graph.TypeObject)
	mat := h.add(t, graph.TypeMaterial)
	h.set(t, mat, "color", graph.MustHex("#00ff00"))
	h.connect(t, mat, obj)

	obj.Linked = scene.NewMesh("late")
	require.NoError(t, h.eval.Refresh(obj.Handle))
	assert.Equal(t, "#00ff00", obj.Linked.Material().Color.Hex())
}

func TestPropagateMissingNode(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.eval.Propagate(5), graph.ErrNoNode)
}
