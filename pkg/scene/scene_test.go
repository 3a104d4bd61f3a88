package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAddLookupRemove(t *testing.T) {
	m := NewMemory()
	group := NewMesh("group")
	child := NewMesh("child")
	m.Add(group, 0)
	m.Add(child, group.ID())

	assert.Equal(t, 2, m.Len())
	assert.Same(t, child, m.Lookup("child"))
	assert.Nil(t, m.Lookup("missing"))
	assert.Equal(t, group.ID(), child.Parent())
	assert.Len(t, m.Children(group.ID()), 1)

	m.Remove(group.ID())
	assert.Equal(t, 0, m.Len(), "removing a parent removes its children")
}

func TestObjectDefaults(t *testing.T) {
	cube := NewMesh("cube")
	require.NotNil(t, cube.Material())
	assert.Nil(t, cube.Light())
	assert.True(t, cube.Spatial().Visible)
	assert.Equal(t, 1.0, cube.Spatial().Scale.X)

	spot := NewLight("spot", LightSpot)
	require.NotNil(t, spot.Light())
	assert.Nil(t, spot.Material())
	assert.Equal(t, "spot", spot.Light().Kind.String())
	assert.NotEqual(t, cube.ID(), spot.ID())

	assert.Equal(t, ShapeBox, cube.Shape())
	assert.Equal(t, ShapeNone, spot.Shape())
	assert.Equal(t, "sphere", NewDefaultScene().Lookup("sphere").(Shaped).Shape().String())
}

func TestDefaultScene(t *testing.T) {
	m := NewDefaultScene()
	assert.Equal(t, 4, m.Len())
	assert.NotNil(t, m.Lookup("cube"))
	assert.NotNil(t, m.Lookup("spot").Light())
}

func TestMemTerrainGrid(t *testing.T) {
	tr := NewMemTerrain(TerrainConfig{Width: 10, Length: 20, Resolution: 2})
	cfg, err := tr.Config()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Vertices())
	assert.Len(t, tr.Positions(), 27)

	p := tr.Positions()
	assert.Equal(t, -5.0, p[0])
	assert.Equal(t, -10.0, p[2])
	assert.Equal(t, 5.0, p[len(p)-3])
	assert.Equal(t, 10.0, p[len(p)-1])

	n := tr.Normal(4)
	assert.InDelta(t, 1.0, n.Y, 1e-9, "flat terrain normals point up")
}

func TestMemTerrainHeightsAndCommit(t *testing.T) {
	tr := NewMemTerrain(TerrainConfig{Width: 2, Length: 2, Resolution: 2})
	h := []float64{0, 0, 0, 0, 1, 0, 0, 0, 0}
	tr.SetHeights(h)
	tr.Commit()
	assert.Equal(t, h, tr.Heights())
	assert.Equal(t, 1, tr.Commits())

	// Neighbour left of the peak tilts toward -X.
	assert.Less(t, tr.Normal(3).X, 0.0)
}

func TestMemTerrainMissingConfig(t *testing.T) {
	tr := NewMemTerrain(TerrainConfig{})
	_, err := tr.Config()
	assert.ErrorIs(t, err, ErrNoConfig)
	assert.Empty(t, tr.Positions())
}
