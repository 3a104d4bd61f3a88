package scene

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MemTerrain is an in-memory heightfield mesh laid out on the XZ plane,
// centered on the origin, with heights in Y.
type MemTerrain struct {
	cfg       TerrainConfig
	positions []float64
	normals   []float64
	commits   int
}

var _ TerrainMesh = (*MemTerrain)(nil)

// NewMemTerrain builds a flat grid for cfg. A config with a non-positive
// resolution yields a terrain whose Config reports ErrNoConfig.
func NewMemTerrain(cfg TerrainConfig) *MemTerrain {
	t := &MemTerrain{cfg: cfg}
	if cfg.Resolution <= 0 {
		return t
	}
	n := cfg.Resolution + 1
	t.positions = make([]float64, 0, n*n*3)
	for row := 0; row < n; row++ {
		z := -cfg.Length/2 + float64(row)/float64(cfg.Resolution)*cfg.Length
		for col := 0; col < n; col++ {
			x := -cfg.Width/2 + float64(col)/float64(cfg.Resolution)*cfg.Width
			t.positions = append(t.positions, x, 0, z)
		}
	}
	t.computeNormals()
	return t
}

// Config returns the grid configuration.
func (t *MemTerrain) Config() (TerrainConfig, error) {
	if t.cfg.Resolution <= 0 {
		return TerrainConfig{}, ErrNoConfig
	}
	return t.cfg, nil
}

// Positions returns the live vertex array.
func (t *MemTerrain) Positions() []float64 {
	return t.positions
}

// Commit recomputes vertex normals.
func (t *MemTerrain) Commit() {
	t.computeNormals()
	t.commits++
}

// Commits returns how many times Commit was called.
func (t *MemTerrain) Commits() int {
	return t.commits
}

// Heights returns a copy of the vertex Y coordinates in row-major order.
func (t *MemTerrain) Heights() []float64 {
	out := make([]float64, len(t.positions)/3)
	for i := range out {
		out[i] = t.positions[i*3+1]
	}
	return out
}

// SetHeights overwrites vertex Y coordinates; extra values are ignored.
func (t *MemTerrain) SetHeights(h []float64) {
	for i := 0; i < len(h) && i*3+1 < len(t.positions); i++ {
		t.positions[i*3+1] = h[i]
	}
}

// Normal returns the vertex normal at grid index i.
func (t *MemTerrain) Normal(i int) v3.Vec {
	return v3.Vec{X: t.normals[i*3], Y: t.normals[i*3+1], Z: t.normals[i*3+2]}
}

func (t *MemTerrain) vertex(row, col int) v3.Vec {
	n := t.cfg.Resolution + 1
	row = clampIndex(row, n)
	col = clampIndex(col, n)
	i := (row*n + col) * 3
	return v3.Vec{X: t.positions[i], Y: t.positions[i+1], Z: t.positions[i+2]}
}

// computeNormals uses central differences across neighbouring vertices.
func (t *MemTerrain) computeNormals() {
	n := t.cfg.Resolution + 1
	if len(t.normals) != len(t.positions) {
		t.normals = make([]float64, len(t.positions))
	}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			dx := t.vertex(row, col+1).Sub(t.vertex(row, col-1))
			dz := t.vertex(row+1, col).Sub(t.vertex(row-1, col))
			nrm := dz.Cross(dx).Normalize()
			i := (row*n + col) * 3
			t.normals[i], t.normals[i+1], t.normals[i+2] = nrm.X, nrm.Y, nrm.Z
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
