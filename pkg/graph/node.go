package graph

import (
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/sceneweave/pkg/scene"
)

// Handle identifies a node for its whole lifetime. Handles are never
// reused; NoHandle is returned when a node could not be created.
type Handle uint64

// NoHandle is the "no node" sentinel.
const NoHandle Handle = 0

// Type enumerates the node catalog.
type Type int

const (
	TypeObject Type = iota + 1
	TypePhysics
	TypeEffect
	TypeMaterial
	TypeTransform
	TypeLight
	TypeTerrainInput
	TypeTerrainOutput
	TypeHeightNoise
	TypeTerrace
	TypeHydraulicErosion
)

var typeNames = map[Type]string{
	TypeObject:           "object",
	TypePhysics:          "physics",
	TypeEffect:           "effect",
	TypeMaterial:         "material",
	TypeTransform:        "transform",
	TypeLight:            "light",
	TypeTerrainInput:     "terrainInput",
	TypeTerrainOutput:    "terrainOutput",
	TypeHeightNoise:      "heightNoise",
	TypeTerrace:          "terrace",
	TypeHydraulicErosion: "hydraulicErosion",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether t is in the catalog.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// IsTerrain reports whether t takes part in the terrain pipeline.
func (t Type) IsTerrain() bool {
	switch t {
	case TypeTerrainInput, TypeTerrainOutput, TypeHeightNoise, TypeTerrace, TypeHydraulicErosion:
		return true
	}
	return false
}

// IsTerrainTransform reports whether t is a heightmap transform.
func (t Type) IsTerrainTransform() bool {
	switch t {
	case TypeHeightNoise, TypeTerrace, TypeHydraulicErosion:
		return true
	}
	return false
}

// ParseType resolves a catalog name. Matching ignores case and the
// separators used by script and CLI callers ("terrain-input").
func ParseType(name string) (Type, error) {
	key := normalizeName(name)
	for t, s := range typeNames {
		if normalizeName(s) == key {
			return t, nil
		}
	}
	return 0, &UnknownTypeError{Name: name}
}

// Types returns the catalog in declaration order.
func Types() []Type {
	out := make([]Type, 0, len(typeNames))
	for t := TypeObject; t <= TypeHydraulicErosion; t++ {
		out = append(out, t)
	}
	return out
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// Node is one record in the store.
type Node struct {
	Handle   Handle
	Type     Type
	Props    Properties
	Position v2.Vec // canvas space, top-left corner
	// Linked is the scene object this node drives. The node never owns it.
	Linked scene.Object
}

// Field returns the schema field for name.
func (n *Node) Field(name string) (Field, bool) {
	return Lookup(n.Type).Field(name)
}

// VisibleFields returns the fields whose visibility predicate holds for
// the node's current values.
func (n *Node) VisibleFields() []Field {
	var out []Field
	for _, f := range Lookup(n.Type).Fields {
		if f.Visible == nil || f.Visible(n.Props) {
			out = append(out, f)
		}
	}
	return out
}
