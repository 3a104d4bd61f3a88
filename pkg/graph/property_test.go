package graph

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, typ := range Types() {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	got, err := ParseType("terrain-input")
	require.NoError(t, err)
	assert.Equal(t, TypeTerrainInput, got)

	got, err = ParseType("HYDRAULIC_EROSION")
	require.NoError(t, err)
	assert.Equal(t, TypeHydraulicErosion, got)

	_, err = ParseType("teapot")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "teapot")
}

func TestEveryTypeHasASocket(t *testing.T) {
	for _, typ := range Types() {
		schema := Lookup(typ)
		assert.Equal(t, typ, schema.Type)
		assert.True(t, schema.Inputs || schema.Outputs, typ.String())
	}
	assert.False(t, Lookup(TypeTerrainInput).Inputs)
	assert.False(t, Lookup(TypeTerrainOutput).Outputs)
}

func TestDefaultsMatchFieldKinds(t *testing.T) {
	for _, typ := range Types() {
		for _, f := range Lookup(typ).Fields {
			require.NotNil(t, f.Default, "%s.%s", typ, f.Name)
			assert.Equal(t, f.Kind, f.Default.Kind(), "%s.%s", typ, f.Name)
		}
	}
}

func TestSetPropertyClampsAndChecks(t *testing.T) {
	s := NewStore()
	n, err := s.AddNode(TypeMaterial, v2.Vec{})
	require.NoError(t, err)

	v, err := s.SetProperty(n.Handle, "metalness", Number(4))
	require.NoError(t, err)
	assert.Equal(t, Number(1), v)
	assert.Equal(t, 1.0, n.Props.Number("metalness"))

	_, err = s.SetProperty(n.Handle, "metalness", Bool(true))
	assert.ErrorIs(t, err, ErrPropertyType)

	_, err = s.SetProperty(n.Handle, "model", Choice("lambert"))
	assert.ErrorIs(t, err, ErrPropertyType)

	_, err = s.SetProperty(n.Handle, "model", Choice("Phong"))
	require.NoError(t, err)
	assert.Equal(t, "phong", n.Props.Choice("model"))

	_, err = s.SetProperty(n.Handle, "wobble", Number(1))
	assert.ErrorIs(t, err, ErrNoProperty)

	_, err = s.SetProperty(99, "color", MustHex("#000000"))
	assert.ErrorIs(t, err, ErrNoNode)
}

func TestFieldParse(t *testing.T) {
	schema := Lookup(TypeTransform)
	f, ok := schema.Field("rotation")
	require.True(t, ok)
	v, err := f.Parse("0, 90, 180")
	require.NoError(t, err)
	assert.Equal(t, Vec3{X: 0, Y: 90, Z: 180}, v)

	_, err = f.Parse("1,2")
	assert.Error(t, err)

	c, _ := Lookup(TypeMaterial).Field("color")
	v, err = c.Parse("#FF0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", v.String())

	_, err = c.Parse("red")
	assert.Error(t, err)

	b, _ := Lookup(TypeLight).Field("castShadow")
	v, err = b.Parse("true")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

func TestVisibilityPredicates(t *testing.T) {
	s := NewStore()
	mat, _ := s.AddNode(TypeMaterial, v2.Vec{})
	names := func(n *Node) []string {
		var out []string
		for _, f := range n.VisibleFields() {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, []string{"model", "color", "metalness", "roughness"}, names(mat))
	_, err := s.SetProperty(mat.Handle, "model", Choice("phong"))
	require.NoError(t, err)
	assert.Equal(t, []string{"model", "color", "shininess"}, names(mat))

	light, _ := s.AddNode(TypeLight, v2.Vec{})
	assert.NotContains(t, names(light), "angle")
	_, err = s.SetProperty(light.Handle, "kind", Choice("spot"))
	require.NoError(t, err)
	assert.Contains(t, names(light), "angle")
	assert.Contains(t, names(light), "penumbra")
}

func TestPropertiesCloneIsSnapshot(t *testing.T) {
	p := Lookup(TypeTerrace).Defaults()
	q := p.Clone()
	q["levels"] = Number(9)
	assert.Equal(t, 5.0, p.Number("levels"))
}
