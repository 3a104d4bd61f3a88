package scene

import (
	"sort"
	"sync/atomic"

	v3 "github.com/deadsy/sdfx/vec/v3"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var objectCounter uint64

func nextObjectID() ObjectID {
	return ObjectID(atomic.AddUint64(&objectCounter, 1))
}

// MemObject is an in-memory Object.
type MemObject struct {
	id       ObjectID
	name     string
	parent   ObjectID
	spatial  Spatial
	material *Material
	light    *Light
	shape    Shape
}

var _ Object = (*MemObject)(nil)

// NewMesh returns a visible unit-scale box with a default grey material.
func NewMesh(name string) *MemObject {
	return NewShape(name, ShapeBox)
}

// NewShape is NewMesh with an explicit preview shape.
func NewShape(name string, shape Shape) *MemObject {
	return &MemObject{
		id:      nextObjectID(),
		name:    name,
		spatial: defaultSpatial(),
		shape:   shape,
		material: &Material{
			Color:     colorful.Color{R: 0.5, G: 0.5, B: 0.5},
			Metalness: 0.5,
			Roughness: 0.5,
			Shininess: 30,
		},
	}
}

// NewLight returns a light object of the given kind.
func NewLight(name string, kind LightKind) *MemObject {
	return &MemObject{
		id:      nextObjectID(),
		name:    name,
		spatial: defaultSpatial(),
		light: &Light{
			Kind:      kind,
			Color:     colorful.Color{R: 1, G: 1, B: 1},
			Intensity: 1,
		},
	}
}

func defaultSpatial() Spatial {
	return Spatial{Scale: v3.Vec{X: 1, Y: 1, Z: 1}, Visible: true}
}

func (o *MemObject) ID() ObjectID        { return o.id }
func (o *MemObject) Name() string        { return o.name }
func (o *MemObject) Spatial() *Spatial   { return &o.spatial }
func (o *MemObject) Material() *Material { return o.material }
func (o *MemObject) Light() *Light       { return o.light }
func (o *MemObject) Shape() Shape        { return o.shape }

// Parent returns the id of the parent object, or 0 at the scene root.
func (o *MemObject) Parent() ObjectID { return o.parent }

// Memory is an in-memory Scene. It is not safe for concurrent use.
type Memory struct {
	objects map[ObjectID]Object
	parents map[ObjectID]ObjectID
}

var _ Scene = (*Memory)(nil)

// NewMemory returns an empty scene.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[ObjectID]Object),
		parents: make(map[ObjectID]ObjectID),
	}
}

// Add attaches obj under parent (0 for the root).
func (m *Memory) Add(obj Object, parent ObjectID) {
	m.objects[obj.ID()] = obj
	m.parents[obj.ID()] = parent
	if mo, ok := obj.(*MemObject); ok {
		mo.parent = parent
	}
}

// Remove detaches the object and its descendants.
func (m *Memory) Remove(id ObjectID) {
	for child, parent := range m.parents {
		if parent == id {
			m.Remove(child)
		}
	}
	delete(m.objects, id)
	delete(m.parents, id)
}

// Lookup returns the object with the lowest id carrying name, or nil.
func (m *Memory) Lookup(name string) Object {
	for _, o := range m.Objects() {
		if o.Name() == name {
			return o
		}
	}
	return nil
}

// Objects returns all objects ordered by id.
func (m *Memory) Objects() []Object {
	out := make([]Object, 0, len(m.objects))
	for _, o := range m.objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Children returns the direct children of id ordered by id.
func (m *Memory) Children(id ObjectID) []Object {
	var out []Object
	for _, o := range m.Objects() {
		if m.parents[o.ID()] == id {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of objects in the scene.
func (m *Memory) Len() int {
	return len(m.objects)
}

// NewDefaultScene returns a scene with a cube, a sphere, a point light and
// a spot light, the same starter content the editor opens with.
func NewDefaultScene() *Memory {
	m := NewMemory()
	m.Add(NewMesh("cube"), 0)
	m.Add(NewShape("sphere", ShapeSphere), 0)
	m.Add(NewLight("point", LightPoint), 0)
	m.Add(NewLight("spot", LightSpot), 0)
	return m
}
