package graph

import (
	"errors"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNode(t *testing.T, s *Store, typ Type) *Node {
	t.Helper()
	n, err := s.AddNode(typ, v2.Vec{})
	require.NoError(t, err)
	return n
}

func out(h Handle) Socket { return Socket{Node: h, Dir: Output} }
func in(h Handle) Socket  { return Socket{Node: h, Dir: Input} }

func TestAddNodeDefaults(t *testing.T) {
	s := NewStore()
	n, err := s.AddNode(TypeMaterial, v2.Vec{X: 10, Y: 20})
	require.NoError(t, err)

	assert.Equal(t, Handle(1), n.Handle)
	assert.Equal(t, v2.Vec{X: 10, Y: 20}, n.Position)
	assert.Equal(t, "standard", n.Props.Choice("model"))
	assert.Equal(t, "#ffffff", n.Props.Color("color").Hex())
	assert.InDelta(t, 0.5, n.Props.Number("metalness"), 1e-9)
	assert.Nil(t, n.Linked)
}

func TestAddNodeUnknownType(t *testing.T) {
	s := NewStore()
	n, err := s.AddNode(Type(99), v2.Vec{})
	assert.Nil(t, n)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Equal(t, 0, s.Len())
}

func TestHandlesNeverReused(t *testing.T) {
	s := NewStore()
	a := addNode(t, s, TypeObject)
	_, err := s.RemoveNode(a.Handle)
	require.NoError(t, err)
	b := addNode(t, s, TypeObject)
	assert.NotEqual(t, a.Handle, b.Handle)
}

func TestDefaultsAreIndependent(t *testing.T) {
	s := NewStore()
	a := addNode(t, s, TypeTransform)
	b := addNode(t, s, TypeTransform)
	_, err := s.SetProperty(a.Handle, "scale", Vec3{X: 2, Y: 2, Z: 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Props.Vec3("scale").X)
}

func TestConnectionValidity(t *testing.T) {
	for _, a := range []Socket{in(1), out(1), in(2), out(2)} {
		for _, b := range []Socket{in(1), out(1), in(2), out(2)} {
			want := a.Node != b.Node && a.Dir != b.Dir
			assert.Equal(t, want, IsValidTarget(a, b), "%s %s", a, b)
		}
	}
}

func TestCanonicalFromEitherEnd(t *testing.T) {
	from, to := Canonical(out(1), in(2))
	assert.Equal(t, out(1), from)
	assert.Equal(t, in(2), to)

	from, to = Canonical(in(2), out(1))
	assert.Equal(t, out(1), from)
	assert.Equal(t, in(2), to)
}

func TestConnectFromInputOrigin(t *testing.T) {
	s := NewStore()
	obj := addNode(t, s, TypeObject)
	mat := addNode(t, s, TypeMaterial)

	c, err := s.Connect(in(obj.Handle), out(mat.Handle))
	require.NoError(t, err)
	assert.Equal(t, ConnKey{From: mat.Handle, To: obj.Handle}, c.Key())
}

func TestConnectOutputToOutputRefused(t *testing.T) {
	s := NewStore()
	a := addNode(t, s, TypeMaterial)
	b := addNode(t, s, TypeTransform)

	_, err := s.Connect(out(a.Handle), out(b.Handle))
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Equal(t, 0, s.ConnectionCount())
}

func TestConnectRefusals(t *testing.T) {
	s := NewStore()
	obj := addNode(t, s, TypeObject)
	mat := addNode(t, s, TypeMaterial)
	sink := addNode(t, s, TypeTerrainOutput)

	_, err := s.Connect(out(obj.Handle), in(obj.Handle))
	assert.ErrorIs(t, err, ErrInvalidTarget, "self loop")

	_, err = s.Connect(out(sink.Handle), in(obj.Handle))
	assert.ErrorIs(t, err, ErrInvalidTarget, "terrainOutput has no output socket")

	_, err = s.Connect(out(obj.Handle), in(mat.Handle))
	assert.ErrorIs(t, err, ErrInvalidTarget, "material has no input socket")

	_, err = s.Connect(out(mat.Handle), in(42))
	assert.ErrorIs(t, err, ErrNoNode)

	_, err = s.Connect(out(mat.Handle), in(obj.Handle))
	require.NoError(t, err)
	_, err = s.Connect(in(obj.Handle), out(mat.Handle))
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.Equal(t, 1, s.ConnectionCount())
}

func TestAdjacency(t *testing.T) {
	s := NewStore()
	mat := addNode(t, s, TypeMaterial)
	xf := addNode(t, s, TypeTransform)
	obj := addNode(t, s, TypeObject)
	fx := addNode(t, s, TypeEffect)

	for _, p := range [][2]Handle{{mat.Handle, obj.Handle}, {xf.Handle, obj.Handle}, {obj.Handle, fx.Handle}} {
		_, err := s.Connect(out(p[0]), in(p[1]))
		require.NoError(t, err)
	}

	assert.Len(t, s.Incoming(obj.Handle), 2)
	assert.Len(t, s.Outgoing(obj.Handle), 1)
	assert.Len(t, s.Incident(obj.Handle), 3)
	assert.Empty(t, s.Incoming(mat.Handle))
	assert.Equal(t, fx.Handle, s.Outgoing(obj.Handle)[0].To.Node)
}

func TestRemoveConnectionScenario(t *testing.T) {
	s := NewStore()
	a := addNode(t, s, TypeMaterial)
	b := addNode(t, s, TypeObject)

	c, err := s.Connect(out(a.Handle), in(b.Handle))
	require.NoError(t, err)
	assert.True(t, s.IsConnected(out(a.Handle)))
	assert.True(t, s.IsConnected(in(b.Handle)))

	_, err = s.RemoveConnection(c.Key())
	require.NoError(t, err)
	assert.Equal(t, 0, s.ConnectionCount())
	assert.False(t, s.IsConnected(out(a.Handle)))
	assert.False(t, s.IsConnected(in(b.Handle)))

	_, err = s.RemoveConnection(c.Key())
	assert.ErrorIs(t, err, ErrNoConnection)
}

func TestRemoveNodeRefusesDanglingEdges(t *testing.T) {
	s := NewStore()
	a := addNode(t, s, TypeMaterial)
	b := addNode(t, s, TypeObject)
	c, err := s.Connect(out(a.Handle), in(b.Handle))
	require.NoError(t, err)

	_, err = s.RemoveNode(b.Handle)
	assert.ErrorIs(t, err, ErrDangling)
	assert.Equal(t, 2, s.Len())

	_, err = s.RemoveConnection(c.Key())
	require.NoError(t, err)
	_, err = s.RemoveNode(b.Handle)
	require.NoError(t, err)

	for _, c := range s.Connections() {
		assert.False(t, c.Touches(b.Handle))
	}
	_, err = s.RemoveNode(b.Handle)
	assert.True(t, errors.Is(err, ErrNoNode))
}

func TestSelection(t *testing.T) {
	s := NewStore()
	a := addNode(t, s, TypeMaterial)
	b := addNode(t, s, TypeObject)
	c := addNode(t, s, TypeLight)
	ab, err := s.Connect(out(a.Handle), in(b.Handle))
	require.NoError(t, err)
	cb, err := s.Connect(out(c.Handle), in(b.Handle))
	require.NoError(t, err)

	require.NoError(t, s.SelectNode(a.Handle))
	require.NoError(t, s.SelectNode(b.Handle))
	assert.Equal(t, b.Handle, s.SelectedNode(), "node selection is exclusive")

	require.NoError(t, s.SelectConnection(ab.Key(), false))
	assert.Equal(t, NoHandle, s.SelectedNode())
	require.NoError(t, s.SelectConnection(cb.Key(), true))
	assert.Equal(t, []ConnKey{ab.Key(), cb.Key()}, s.SelectedConnections())
	assert.True(t, ab.Selected)

	require.NoError(t, s.SelectConnection(ab.Key(), true))
	assert.Equal(t, []ConnKey{cb.Key()}, s.SelectedConnections(), "shift toggles")
	assert.False(t, ab.Selected)

	_, err = s.RemoveConnection(cb.Key())
	require.NoError(t, err)
	assert.Empty(t, s.SelectedConnections())

	require.NoError(t, s.SelectNode(a.Handle))
	_, err = s.RemoveConnection(ab.Key())
	require.NoError(t, err)
	_, err = s.RemoveNode(a.Handle)
	require.NoError(t, err)
	assert.False(t, s.HasSelection())

	assert.ErrorIs(t, s.SelectNode(a.Handle), ErrNoNode)
}

func TestMoveNode(t *testing.T) {
	s := NewStore()
	n := addNode(t, s, TypeObject)
	require.NoError(t, s.MoveNode(n.Handle, v2.Vec{X: 5, Y: -3}))
	assert.Equal(t, v2.Vec{X: 5, Y: -3}, n.Position)
	assert.ErrorIs(t, s.MoveNode(77, v2.Vec{}), ErrNoNode)
}
