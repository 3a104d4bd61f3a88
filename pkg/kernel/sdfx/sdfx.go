// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sceneweave/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 48

// minScale keeps Place invertible when a transform scales an axis to zero.
const minScale = 1e-3

// ErrInvalidSolid is returned by ToMesh for solids sdfx could not build.
var ErrInvalidSolid = errors.New("sdfx: invalid solid")

// solid wraps an sdf.SDF3 to implement kernel.Solid. A nil s records a
// primitive sdfx refused.
type solid struct {
	s   sdf.SDF3
	err error
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max v3.Vec) {
	if s.s == nil {
		return v3.Vec{}, v3.Vec{}
	}
	bb := s.s.BoundingBox()
	return bb.Min, bb.Max
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct {
	// Cells is the marching cubes resolution along the longest axis.
	Cells int
}

// New returns a Kernel meshing at DefaultMeshCells.
func New() *Kernel {
	return &Kernel{Cells: DefaultMeshCells}
}

func wrap(s sdf.SDF3, err error) kernel.Solid {
	if err != nil {
		return &solid{err: fmt.Errorf("%w: %v", ErrInvalidSolid, err)}
	}
	return &solid{s: s}
}

// Box creates a box with the given dimensions centered on the origin.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	return wrap(sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0))
}

// Sphere creates a sphere of the given radius.
func (k *Kernel) Sphere(radius float64) kernel.Solid {
	return wrap(sdf.Sphere3D(radius))
}

// Cylinder creates a cylinder along Z with the given height and radius.
func (k *Kernel) Cylinder(height, radius float64) kernel.Solid {
	return wrap(sdf.Cylinder3D(height, radius, 0))
}

// Place scales, rotates and translates s. Scale components below minScale
// are clamped to it.
func (k *Kernel) Place(s kernel.Solid, position, rotation, scale v3.Vec) kernel.Solid {
	in := s.(*solid)
	if in.s == nil {
		return in
	}
	scale = v3.Vec{X: max(scale.X, minScale), Y: max(scale.Y, minScale), Z: max(scale.Z, minScale)}

	m := sdf.Translate3d(position).
		Mul(sdf.RotateZ(rotation.Z)).
		Mul(sdf.RotateY(rotation.Y)).
		Mul(sdf.RotateX(rotation.X)).
		Mul(sdf.Scale3d(scale))
	return &solid{s: sdf.Transform3D(in.s, m)}
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	in := s.(*solid)
	if in.s == nil {
		return nil, in.err
	}

	cells := k.Cells
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(in.s, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Flat shading: every corner takes the face normal.
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
