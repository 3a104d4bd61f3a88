package editor

import (
	"fmt"

	"github.com/chazu/sceneweave/pkg/graph"
)

// EventKind classifies editor notifications.
type EventKind int

const (
	EventNodeAdded EventKind = iota + 1
	EventNodeRemoved
	EventNodeMoved
	EventPropertyChanged
	EventConnectionAdded
	EventConnectionRemoved
	EventSelectionChanged
	EventHoverChanged
	EventViewChanged
	EventTerrainUpdated
	EventPreviewChanged
)

var eventNames = map[EventKind]string{
	EventNodeAdded:         "nodeAdded",
	EventNodeRemoved:       "nodeRemoved",
	EventNodeMoved:         "nodeMoved",
	EventPropertyChanged:   "propertyChanged",
	EventConnectionAdded:   "connectionAdded",
	EventConnectionRemoved: "connectionRemoved",
	EventSelectionChanged:  "selectionChanged",
	EventHoverChanged:      "hoverChanged",
	EventViewChanged:       "viewChanged",
	EventTerrainUpdated:    "terrainUpdated",
	EventPreviewChanged:    "previewChanged",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// MarshalText encodes the kind by name for JSON and YAML hosts.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *EventKind) UnmarshalText(text []byte) error {
	for kind, name := range eventNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("editor: unknown event kind %q", text)
}

// Event is a change notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind     `json:"kind" yaml:"kind"`
	Node     graph.Handle  `json:"node,omitempty" yaml:"node,omitempty"`
	Conn     graph.ConnKey `json:"conn,omitzero" yaml:"conn,omitempty"`
	Property string        `json:"property,omitempty" yaml:"property,omitempty"`
}

// Subscribe registers fn for every event and returns a function that
// removes it. Handlers run synchronously on the caller's goroutine and
// must not call back into the editor.
func (e *Editor) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.nextSub++
	id := e.nextSub
	e.subs[id] = fn
	return func() { delete(e.subs, id) }
}

func (e *Editor) emit(ev Event) {
	for _, id := range e.subIDs() {
		e.subs[id](ev)
	}
}
