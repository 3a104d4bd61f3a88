// Package effects manages the live visual effect attached to each scene
// object. Effect behaviour itself is supplied by strategies registered
// per Kind.
package effects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
)

// Kind is the closed set of effect strategies.
type Kind int

const (
	Water Kind = iota + 1
	Particles
	Trail
	Glow
)

var kindNames = map[Kind]string{
	Water:     "water",
	Particles: "particles",
	Trail:     "trail",
	Glow:      "glow",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Kinds returns every effect kind.
func Kinds() []Kind {
	return []Kind{Water, Particles, Trail, Glow}
}

// ErrUnknownKind is returned for an effect type string outside the set.
var ErrUnknownKind = errors.New("effects: unknown effect kind")

// ParseKind resolves an effect type string, ignoring case.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Effect is a live effect instance bound to one target object.
type Effect interface {
	Update(dt float64)
	SetProperties(props graph.Properties)
	// Cleanup releases the instance and restores the target.
	Cleanup()
}

// Factory constructs an effect for target with the node's properties.
type Factory func(target scene.Object, props graph.Properties) Effect

// Registry maps each kind to its constructor.
type Registry map[Kind]Factory
