// Package kernel defines the geometry kernel the scene preview meshes
// objects with. The sdfx subpackage is the implementation; the interface
// keeps the preview independent of it.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max v3.Vec)
}

// Kernel is the abstract geometry kernel interface. Primitives are centered
// on the origin.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64) Solid

	// Place scales, rotates (Euler angles in radians, applied X then Y
	// then Z) and then translates s.
	Place(s Solid, position, rotation, scale v3.Vec) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
