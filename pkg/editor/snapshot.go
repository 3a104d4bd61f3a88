package editor

import (
	"github.com/chazu/sceneweave/pkg/graph"
)

// Snapshot is a serializable summary of the editor state.
type Snapshot struct {
	Nodes       []NodeSnapshot   `json:"nodes" yaml:"nodes"`
	Connections []ConnSnapshot   `json:"connections" yaml:"connections"`
	View        ViewSnapshot     `json:"view" yaml:"view"`
	Effects     []EffectSnapshot `json:"effects" yaml:"effects"`
	Selected    graph.Handle     `json:"selected,omitempty" yaml:"selected,omitempty"`
	Mode        string           `json:"mode" yaml:"mode"`
	Findings    []string         `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// NodeSnapshot describes one node.
type NodeSnapshot struct {
	Handle graph.Handle      `json:"handle" yaml:"handle"`
	Type   string            `json:"type" yaml:"type"`
	X      float64           `json:"x" yaml:"x"`
	Y      float64           `json:"y" yaml:"y"`
	Linked string            `json:"linked,omitempty" yaml:"linked,omitempty"`
	Props  map[string]string `json:"props,omitempty" yaml:"props,omitempty"`
}

// ConnSnapshot describes one connection and its current curve.
type ConnSnapshot struct {
	From     graph.Handle `json:"from" yaml:"from"`
	To       graph.Handle `json:"to" yaml:"to"`
	Path     string       `json:"path" yaml:"path"`
	Selected bool         `json:"selected,omitempty" yaml:"selected,omitempty"`
	Hovered  bool         `json:"hovered,omitempty" yaml:"hovered,omitempty"`
}

// ViewSnapshot is the canvas transform and the background grid it
// implies, in screen pixels.
type ViewSnapshot struct {
	Scale       float64 `json:"scale" yaml:"scale"`
	OffsetX     float64 `json:"offsetX" yaml:"offsetX"`
	OffsetY     float64 `json:"offsetY" yaml:"offsetY"`
	GridSpacing float64 `json:"gridSpacing" yaml:"gridSpacing"`
	GridX       float64 `json:"gridX" yaml:"gridX"`
	GridY       float64 `json:"gridY" yaml:"gridY"`
}

// EffectSnapshot describes one live effect.
type EffectSnapshot struct {
	Target string       `json:"target" yaml:"target"`
	Kind   string       `json:"kind" yaml:"kind"`
	Source graph.Handle `json:"source" yaml:"source"`
}

// Snapshot captures the current state.
func (e *Editor) Snapshot() Snapshot {
	spacing, phase := e.view.Grid(e.grid)
	s := Snapshot{
		View: ViewSnapshot{
			Scale:       e.view.Scale,
			OffsetX:     e.view.Offset.X,
			OffsetY:     e.view.Offset.Y,
			GridSpacing: spacing,
			GridX:       phase.X,
			GridY:       phase.Y,
		},
		Selected: e.store.SelectedNode(),
		Mode:     e.ix.mode.String(),
	}
	for _, n := range e.store.Nodes() {
		ns := NodeSnapshot{
			Handle: n.Handle,
			Type:   n.Type.String(),
			X:      n.Position.X,
			Y:      n.Position.Y,
			Props:  make(map[string]string),
		}
		if n.Linked != nil {
			ns.Linked = n.Linked.Name()
		}
		for _, f := range n.VisibleFields() {
			if v, ok := n.Props[f.Name]; ok {
				ns.Props[f.Name] = v.String()
			}
		}
		s.Nodes = append(s.Nodes, ns)
	}
	for _, c := range e.store.Connections() {
		s.Connections = append(s.Connections, ConnSnapshot{
			From:     c.From.Node,
			To:       c.To.Node,
			Path:     c.Path.SVG(),
			Selected: c.Selected,
			Hovered:  c.Hovered,
		})
	}
	for _, en := range e.effects.Entries() {
		s.Effects = append(s.Effects, EffectSnapshot{
			Target: en.Target.Name(),
			Kind:   en.Kind.String(),
			Source: en.Source,
		})
	}
	for _, f := range e.Validate() {
		s.Findings = append(s.Findings, f.Error())
	}
	return s
}
