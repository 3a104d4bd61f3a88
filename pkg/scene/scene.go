// Package scene defines the rendering collaborators the node-graph engine
// drives: 3D objects with transform, material and light state, and the
// terrain mesh. Implementations wrap a real renderer; Memory and MemTerrain
// are in-process implementations for tools and tests.
package scene

import (
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrNoConfig is returned by a terrain mesh that has no grid configuration.
var ErrNoConfig = errors.New("scene: terrain has no configuration")

// ObjectID identifies a 3D object for the lifetime of the scene.
type ObjectID uint64

// Spatial is the transform and visibility of an object. Rotation is in
// radians. The renderer reads it every frame; the engine mutates it in place.
type Spatial struct {
	Position v3.Vec
	Rotation v3.Vec
	Scale    v3.Vec
	Visible  bool
}

// Material holds the surface parameters the engine may write.
type Material struct {
	Color     colorful.Color
	Emissive  colorful.Color
	Metalness float64
	Roughness float64
	Shininess float64
}

// LightKind distinguishes light types.
type LightKind int

const (
	LightPoint LightKind = iota
	LightSpot
	LightDirectional
	LightAmbient
)

func (k LightKind) String() string {
	switch k {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	case LightAmbient:
		return "ambient"
	default:
		return "unknown"
	}
}

// Light holds light parameters. Angle is in radians.
type Light struct {
	Kind       LightKind
	Color      colorful.Color
	Intensity  float64
	CastShadow bool
	Distance   float64
	Angle      float64
	Penumbra   float64
}

// Object is an opaque handle to a renderer object.
type Object interface {
	ID() ObjectID
	Name() string
	Spatial() *Spatial
	// Material returns nil when the object has no material.
	Material() *Material
	// Light returns nil unless the object is a light.
	Light() *Light
}

// Scene is the renderer's object collection.
type Scene interface {
	// Lookup returns the first object with the given name, or nil.
	Lookup(name string) Object
	Objects() []Object
	Add(obj Object, parent ObjectID)
	Remove(id ObjectID)
}

// Shape is the primitive a preview renders for an object.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeBox
	ShapeSphere
	ShapeCylinder
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	default:
		return "none"
	}
}

// Shaped is implemented by objects that know their preview primitive.
type Shaped interface {
	Shape() Shape
}

// TerrainConfig describes the terrain grid.
type TerrainConfig struct {
	Width      float64 `json:"width" yaml:"width"`
	Length     float64 `json:"length" yaml:"length"`
	Resolution int     `json:"resolution" yaml:"resolution"`
}

// Vertices returns the number of grid vertices, (Resolution+1)^2.
func (c TerrainConfig) Vertices() int {
	n := c.Resolution + 1
	return n * n
}

// TerrainMesh is the renderer's heightfield mesh.
type TerrainMesh interface {
	Config() (TerrainConfig, error)
	// Positions returns the flat XYZ vertex array, row-major over the grid.
	// Callers may mutate it in place and must then call Commit.
	Positions() []float64
	// Commit recomputes normals and uploads the geometry.
	Commit()
}
