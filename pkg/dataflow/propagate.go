package dataflow

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
)

// Propagate applies node h to the sinks of its outgoing connections.
// Effect sinks receive the source's linked object; object sinks receive
// material, transform and light values. Other pairings are ignored.
func (e *Evaluator) Propagate(h graph.Handle) error {
	src, ok := e.store.Node(h)
	if !ok {
		return fmt.Errorf("dataflow: propagate %d: %w", h, graph.ErrNoNode)
	}
	var errs []error
	for _, c := range e.store.Outgoing(h) {
		sink, ok := e.store.Node(c.To.Node)
		if !ok {
			continue
		}
		if err := e.apply(src, sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PropagateEdit is run after a property of h changed. Besides the
// outgoing pass it refreshes an edited effect on every object feeding it
// and applies an object node's own visibility.
func (e *Evaluator) PropagateEdit(h graph.Handle) error {
	n, ok := e.store.Node(h)
	if !ok {
		return fmt.Errorf("dataflow: propagate %d: %w", h, graph.ErrNoNode)
	}
	errs := []error{e.Propagate(h)}
	switch n.Type {
	case graph.TypeEffect:
		for _, c := range e.store.Incoming(h) {
			if src, ok := e.store.Node(c.From.Node); ok {
				errs = append(errs, e.apply(src, n))
			}
		}
	case graph.TypeObject:
		if n.Linked != nil {
			n.Linked.Spatial().Visible = n.Props.Bool("visible")
		}
	}
	return errors.Join(errs...)
}

// Refresh re-applies every source feeding h, used when h's linked object
// changes.
func (e *Evaluator) Refresh(h graph.Handle) error {
	n, ok := e.store.Node(h)
	if !ok {
		return fmt.Errorf("dataflow: refresh %d: %w", h, graph.ErrNoNode)
	}
	var errs []error
	for _, c := range e.store.Incoming(h) {
		if src, ok := e.store.Node(c.From.Node); ok {
			errs = append(errs, e.apply(src, n))
		}
	}
	errs = append(errs, e.PropagateEdit(h))
	return errors.Join(errs...)
}

func (e *Evaluator) apply(src, sink *graph.Node) error {
	switch sink.Type {
	case graph.TypeEffect:
		if src.Linked == nil || e.effects == nil {
			return nil
		}
		return e.effects.Apply(sink, src.Linked)
	case graph.TypeObject:
		if sink.Linked == nil {
			return nil
		}
		switch src.Type {
		case graph.TypeMaterial:
			ApplyMaterial(src.Props, sink.Linked)
		case graph.TypeTransform:
			ApplyTransform(src.Props, sink.Linked)
		case graph.TypeLight:
			ApplyLight(src.Props, sink.Linked)
		}
	}
	return nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// ApplyTransform writes position, rotation (degrees) and scale.
func ApplyTransform(p graph.Properties, obj scene.Object) {
	sp := obj.Spatial()
	sp.Position = p.Vec3("position")
	rot := p.Vec3("rotation")
	sp.Rotation.X = radians(rot.X)
	sp.Rotation.Y = radians(rot.Y)
	sp.Rotation.Z = radians(rot.Z)
	sp.Scale = p.Vec3("scale")
}

// ApplyMaterial writes the surface parameters. Objects without a
// material are left untouched.
func ApplyMaterial(p graph.Properties, obj scene.Object) {
	m := obj.Material()
	if m == nil {
		return
	}
	m.Color = p.Color("color")
	switch p.Choice("model") {
	case "phong":
		m.Shininess = p.Number("shininess")
	default:
		m.Metalness = p.Number("metalness")
		m.Roughness = p.Number("roughness")
	}
}

var lightKinds = map[string]scene.LightKind{
	"point":       scene.LightPoint,
	"spot":        scene.LightSpot,
	"directional": scene.LightDirectional,
	"ambient":     scene.LightAmbient,
}

// ApplyLight writes light parameters (angle in degrees). Objects that are
// not lights are left untouched.
func ApplyLight(p graph.Properties, obj scene.Object) {
	l := obj.Light()
	if l == nil {
		return
	}
	if k, ok := lightKinds[p.Choice("kind")]; ok {
		l.Kind = k
	}
	l.Color = p.Color("color")
	l.Intensity = p.Number("intensity")
	l.CastShadow = p.Bool("castShadow")
	l.Distance = p.Number("distance")
	l.Angle = radians(p.Number("angle"))
	l.Penumbra = p.Number("penumbra")
}
