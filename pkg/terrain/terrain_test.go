package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/sceneweave/pkg/scene"
)

var grid = scene.TerrainConfig{Width: 100, Length: 100, Resolution: 2}

func withHeights(h ...float64) *Data {
	d := New(grid)
	copy(d.Heights, h)
	return d
}

func TestReadWriteRoundTrip(t *testing.T) {
	mesh := scene.NewMemTerrain(grid)
	d, err := Read(mesh)
	require.NoError(t, err)
	assert.Len(t, d.Heights, 9)
	assert.Equal(t, 2, d.Resolution)

	d.Heights[4] = 3.5
	require.NoError(t, d.Write(mesh))
	assert.Equal(t, 1, mesh.Commits())
	assert.Equal(t, 3.5, mesh.Heights()[4])

	again, err := Read(mesh)
	require.NoError(t, err)
	assert.True(t, again.Equal(d))
}

func TestReadMissingConfig(t *testing.T) {
	_, err := Read(scene.NewMemTerrain(scene.TerrainConfig{}))
	assert.ErrorIs(t, err, scene.ErrNoConfig)
}

func TestWriteSizeMismatch(t *testing.T) {
	mesh := scene.NewMemTerrain(grid)
	d := New(scene.TerrainConfig{Width: 1, Length: 1, Resolution: 4})
	assert.Error(t, d.Write(mesh))
	assert.Equal(t, 0, mesh.Commits())
}

func TestCloneIsIndependent(t *testing.T) {
	d := withHeights(1, 2, 3)
	c := d.Clone()
	c.Heights[0] = 99
	assert.Equal(t, 1.0, d.Heights[0])
	assert.Equal(t, d.Resolution, c.Resolution)
}

func TestHeightNoiseDeterministic(t *testing.T) {
	p := NoiseParams{Seed: 1, Scale: 25, Strength: 2, Octaves: 4, Persistence: 0.5, Lacunarity: 2}
	a := HeightNoise(New(grid), p)
	b := HeightNoise(New(grid), p)
	assert.Equal(t, a.Heights, b.Heights)

	lo, hi := a.Range()
	assert.True(t, lo != 0 || hi != 0, "noise must change flat terrain")

	p.Seed = 2
	c := HeightNoise(New(grid), p)
	assert.NotEqual(t, a.Heights, c.Heights)
}

func TestHeightNoiseDegenerate(t *testing.T) {
	d := HeightNoise(New(grid), NoiseParams{Seed: 1, Scale: 0, Strength: 2, Octaves: 4})
	assert.Equal(t, make([]float64, 9), d.Heights)
}

func TestTerrace(t *testing.T) {
	d := Terrace(withHeights(0, 0.1, 0.4, 0.6, 1, 1, 1, 1, 1), 2, 0)
	assert.InDeltaSlice(t, []float64{0, 0, 0.5, 0.5, 1, 1, 1, 1, 1}, d.Heights, 1e-9)

	d = Terrace(withHeights(0, 0.1, 0.4, 0.6, 1, 1, 1, 1, 1), 2, 1)
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.4, 0.6, 1, 1, 1, 1, 1}, d.Heights, 1e-9)

	d = Terrace(withHeights(0, 0.3, 1), 2, 0.5)
	assert.InDelta(t, 0.4, d.Heights[1], 1e-9)
}

func TestTerraceFlatIsNoop(t *testing.T) {
	d := withHeights(2, 2, 2, 2, 2, 2, 2, 2, 2)
	Terrace(d, 5, 0)
	for _, h := range d.Heights {
		assert.Equal(t, 2.0, h)
	}
}

func TestHydraulicErosion(t *testing.T) {
	spike := func() *Data { return withHeights(0, 0, 0, 0, 9, 0, 0, 0, 0) }
	p := ErosionParams{Iterations: 1000, Strength: 1, Seed: 7}

	a := HydraulicErosion(spike(), p)
	b := HydraulicErosion(spike(), p)
	assert.Equal(t, a.Heights, b.Heights, "seeded erosion is repeatable")
	assert.InDelta(t, 1.0, a.Heights[4], 1e-9, "center averages the pre-pass 3x3")
	assert.InDelta(t, 9.0/4, a.Heights[0], 1e-9)

	none := HydraulicErosion(spike(), ErosionParams{Iterations: 1000, Strength: 0, Seed: 7})
	assert.Equal(t, spike().Heights, none.Heights)

	half := HydraulicErosion(spike(), ErosionParams{Iterations: 1000, Strength: 0.5, Seed: 7})
	assert.InDelta(t, 5.0, half.Heights[4], 1e-9)
}
