package effects

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
)

// Entry is the effect currently attached to one target.
type Entry struct {
	Kind     Kind
	Instance Effect
	Target   scene.Object
	Source   graph.Handle // effect node that created the entry
}

// Manager holds at most one live effect per target object.
// It is not safe for concurrent use.
type Manager struct {
	registry Registry
	entries  map[scene.ObjectID]*Entry
	log      *slog.Logger
}

// NewManager returns an empty manager. A nil logger uses slog.Default.
func NewManager(registry Registry, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		registry: registry,
		entries:  make(map[scene.ObjectID]*Entry),
		log:      log,
	}
}

// Apply attaches the effect described by node to target. An existing
// entry of the same kind only receives the new properties; an entry of a
// different kind is cleaned up and replaced.
func (m *Manager) Apply(node *graph.Node, target scene.Object) error {
	if target == nil {
		return nil
	}
	kind, err := ParseKind(node.Props.Choice("type"))
	if err != nil {
		return fmt.Errorf("effects: apply node %d: %w", node.Handle, err)
	}
	id := target.ID()
	if e, ok := m.entries[id]; ok {
		if e.Kind == kind {
			e.Instance.SetProperties(node.Props.Clone())
			e.Source = node.Handle
			return nil
		}
		m.log.Debug("effect replaced", "target", target.Name(), "old", e.Kind, "new", kind)
		e.Instance.Cleanup()
		delete(m.entries, id)
	}
	factory, ok := m.registry[kind]
	if !ok {
		return fmt.Errorf("effects: apply node %d: no strategy for %s", node.Handle, kind)
	}
	m.entries[id] = &Entry{
		Kind:     kind,
		Instance: factory(target, node.Props.Clone()),
		Target:   target,
		Source:   node.Handle,
	}
	m.log.Debug("effect attached", "target", target.Name(), "kind", kind, "node", node.Handle)
	return nil
}

// Remove cleans up the effect on target, if any.
func (m *Manager) Remove(target scene.ObjectID) bool {
	e, ok := m.entries[target]
	if !ok {
		return false
	}
	e.Instance.Cleanup()
	delete(m.entries, target)
	m.log.Debug("effect removed", "target", e.Target.Name(), "kind", e.Kind)
	return true
}

// RemoveBySource cleans up every effect created by the given node and
// returns how many were removed.
func (m *Manager) RemoveBySource(h graph.Handle) int {
	n := 0
	for _, id := range m.ids() {
		if m.entries[id].Source == h && m.Remove(id) {
			n++
		}
	}
	return n
}

// Update advances every live effect.
func (m *Manager) Update(dt float64) {
	for _, id := range m.ids() {
		m.entries[id].Instance.Update(dt)
	}
}

// Get returns the entry for target.
func (m *Manager) Get(target scene.ObjectID) (*Entry, bool) {
	e, ok := m.entries[target]
	return e, ok
}

// Entries returns the live entries ordered by target id.
func (m *Manager) Entries() []*Entry {
	ids := m.ids()
	out := make([]*Entry, len(ids))
	for i, id := range ids {
		out[i] = m.entries[id]
	}
	return out
}

// Len returns the number of live effects.
func (m *Manager) Len() int { return len(m.entries) }

// Clear cleans up every effect.
func (m *Manager) Clear() {
	for _, id := range m.ids() {
		m.Remove(id)
	}
}

func (m *Manager) ids() []scene.ObjectID {
	ids := slices.Collect(maps.Keys(m.entries))
	slices.SortFunc(ids, cmp.Compare[scene.ObjectID])
	return ids
}
