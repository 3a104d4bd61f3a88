// Package terrain holds heightmap values and the pure transforms applied
// to them by the terrain pipeline.
package terrain

import (
	"fmt"
	"slices"

	"github.com/chazu/sceneweave/pkg/scene"
)

// Data is a heightmap over a (Resolution+1)^2 grid, row-major.
// It is a value: transforms operate on a Clone, never on their input.
type Data struct {
	Width      float64
	Length     float64
	Resolution int
	Heights    []float64
}

// New returns flat terrain for cfg.
func New(cfg scene.TerrainConfig) *Data {
	return &Data{
		Width:      cfg.Width,
		Length:     cfg.Length,
		Resolution: cfg.Resolution,
		Heights:    make([]float64, cfg.Vertices()),
	}
}

// Read copies the current vertex heights out of a terrain mesh.
func Read(mesh scene.TerrainMesh) (*Data, error) {
	cfg, err := mesh.Config()
	if err != nil {
		return nil, fmt.Errorf("terrain: read: %w", err)
	}
	d := New(cfg)
	pos := mesh.Positions()
	if len(pos) < 3*len(d.Heights) {
		return nil, fmt.Errorf("terrain: read: %d positions for %d vertices", len(pos)/3, len(d.Heights))
	}
	for i := range d.Heights {
		d.Heights[i] = pos[3*i+1]
	}
	return d, nil
}

// Write stores the heights into the mesh vertex Y coordinates and commits.
// The grid sizes must agree; nothing is written otherwise.
func (d *Data) Write(mesh scene.TerrainMesh) error {
	pos := mesh.Positions()
	if len(pos) != 3*len(d.Heights) {
		return fmt.Errorf("terrain: write: mesh has %d vertices, data has %d", len(pos)/3, len(d.Heights))
	}
	for i, h := range d.Heights {
		pos[3*i+1] = h
	}
	mesh.Commit()
	return nil
}

// Clone returns an independent copy.
func (d *Data) Clone() *Data {
	c := *d
	c.Heights = slices.Clone(d.Heights)
	return &c
}

// Size is the number of vertices per row.
func (d *Data) Size() int { return d.Resolution + 1 }

// At returns the height at grid cell (row, col).
func (d *Data) At(row, col int) float64 {
	return d.Heights[row*d.Size()+col]
}

// Range returns the minimum and maximum height.
func (d *Data) Range() (lo, hi float64) {
	if len(d.Heights) == 0 {
		return 0, 0
	}
	return slices.Min(d.Heights), slices.Max(d.Heights)
}

// Equal reports whether two heightmaps have the same grid and heights.
func (d *Data) Equal(o *Data) bool {
	return d.Width == o.Width && d.Length == o.Length &&
		d.Resolution == o.Resolution && slices.Equal(d.Heights, o.Heights)
}
