// Package tessellate walks a scene and produces triangle meshes for the
// preview using a geometry kernel: one mesh per visible shaped object and
// one for the terrain heightfield.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sceneweave/pkg/kernel"
	"github.com/chazu/sceneweave/pkg/scene"
)

// TerrainName is the Name of the mesh built by Terrain.
const TerrainName = "terrain"

// defaultColor is used for objects without a material.
const defaultColor = "#cccccc"

// parented is implemented by scene objects nested under another object.
type parented interface {
	Parent() scene.ObjectID
}

// transformStack holds an object's spatials from the object itself up to
// the scene root.
type transformStack []*scene.Spatial

// visible reports whether every level of the stack is visible.
func (ts transformStack) visible() bool {
	for _, s := range ts {
		if !s.Visible {
			return false
		}
	}
	return true
}

// place applies the stack to s, innermost first.
func (ts transformStack) place(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for _, sp := range ts {
		s = k.Place(s, sp.Position, sp.Rotation, sp.Scale)
	}
	return s
}

// Scene meshes every visible object in sc that has a preview shape. Lights
// and shapeless objects are skipped. Objects that fail to mesh are
// reported together; the others are still returned.
func Scene(sc scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	objs := sc.Objects()
	byID := make(map[scene.ObjectID]scene.Object, len(objs))
	for _, o := range objs {
		byID[o.ID()] = o
	}

	var (
		meshes []*kernel.Mesh
		errs   []error
	)
	for _, o := range objs {
		ts, err := stackFor(o, byID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m, err := object(o, ts, k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	return meshes, errors.Join(errs...)
}

// Object meshes a single object in its own space, ignoring parents. It
// returns nil when the object has nothing to draw.
func Object(o scene.Object, k kernel.Kernel) (*kernel.Mesh, error) {
	return object(o, transformStack{o.Spatial()}, k)
}

func object(o scene.Object, ts transformStack, k kernel.Kernel) (*kernel.Mesh, error) {
	shaped, ok := o.(scene.Shaped)
	if !ok || o.Light() != nil || !ts.visible() {
		return nil, nil
	}

	var s kernel.Solid
	switch shaped.Shape() {
	case scene.ShapeBox:
		s = k.Box(1, 1, 1)
	case scene.ShapeSphere:
		s = k.Sphere(0.5)
	case scene.ShapeCylinder:
		// The kernel's cylinder runs along Z; scene cylinders stand on Y.
		s = k.Place(k.Cylinder(1, 0.5), v3.Vec{}, v3.Vec{X: math.Pi / 2}, v3.Vec{X: 1, Y: 1, Z: 1})
	default:
		return nil, nil
	}

	mesh, err := k.ToMesh(ts.place(k, s))
	if err != nil {
		return nil, fmt.Errorf("tessellate: %s: %w", o.Name(), err)
	}
	mesh.Name = o.Name()
	mesh.Color = defaultColor
	if mat := o.Material(); mat != nil {
		mesh.Color = mat.Color.Clamped().Hex()
	}
	return mesh, nil
}

// stackFor collects o's spatial and those of its ancestors.
func stackFor(o scene.Object, byID map[scene.ObjectID]scene.Object) (transformStack, error) {
	ts := transformStack{o.Spatial()}
	cur := o
	for {
		p, ok := cur.(parented)
		if !ok || p.Parent() == 0 {
			return ts, nil
		}
		parent, ok := byID[p.Parent()]
		if !ok {
			return ts, nil
		}
		if len(ts) > len(byID) {
			return nil, fmt.Errorf("tessellate: %s: parent cycle", o.Name())
		}
		ts = append(ts, parent.Spatial())
		cur = parent
	}
}

// Terrain builds a smooth-shaded mesh from the heightfield, two triangles
// per grid cell wound so normals face +Y.
func Terrain(t scene.TerrainMesh) (*kernel.Mesh, error) {
	cfg, err := t.Config()
	if err != nil {
		return nil, fmt.Errorf("tessellate: terrain: %w", err)
	}
	pos := t.Positions()
	if len(pos) != cfg.Vertices()*3 {
		return nil, fmt.Errorf("tessellate: terrain: %d positions for %d vertices", len(pos)/3, cfg.Vertices())
	}

	n := cfg.Resolution + 1
	vertex := func(row, col int) v3.Vec {
		row = min(max(row, 0), n-1)
		col = min(max(col, 0), n-1)
		i := (row*n + col) * 3
		return v3.Vec{X: pos[i], Y: pos[i+1], Z: pos[i+2]}
	}

	m := &kernel.Mesh{
		Vertices: make([]float32, len(pos)),
		Normals:  make([]float32, len(pos)),
		Indices:  make([]uint32, 0, cfg.Resolution*cfg.Resolution*6),
		Name:     TerrainName,
		Color:    "#6b8f47",
	}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			i := (row*n + col) * 3
			dx := vertex(row, col+1).Sub(vertex(row, col-1))
			dz := vertex(row+1, col).Sub(vertex(row-1, col))
			nrm := dz.Cross(dx).Normalize()
			m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2] = float32(pos[i]), float32(pos[i+1]), float32(pos[i+2])
			m.Normals[i], m.Normals[i+1], m.Normals[i+2] = float32(nrm.X), float32(nrm.Y), float32(nrm.Z)
		}
	}
	for row := 0; row < cfg.Resolution; row++ {
		for col := 0; col < cfg.Resolution; col++ {
			a := uint32(row*n + col)
			b := a + uint32(n)
			c := a + 1
			d := b + 1
			m.Indices = append(m.Indices, a, b, c, c, b, d)
		}
	}
	return m, nil
}
