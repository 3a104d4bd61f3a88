package editor

import (
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/sceneweave/pkg/geom"
	"github.com/chazu/sceneweave/pkg/graph"
)

// Mode is the interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDraggingNode
	ModeDrawingConnection
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeDraggingNode:
		return "dragging"
	case ModeDrawingConnection:
		return "drawing"
	default:
		return "idle"
	}
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers struct {
	Alt   bool
	Shift bool
	Ctrl  bool
}

// PointerEvent is a pointer action in screen coordinates. Hosts that
// resolve the element under the pointer themselves set Target; otherwise
// the editor hit-tests Pos against its layout.
type PointerEvent struct {
	Pos    v2.Vec
	Button Button
	Mods   Modifiers
	Target *graph.Hit
}

type interaction struct {
	mode    Mode
	last    v2.Vec
	drag    graph.Handle
	origin  graph.Socket
	preview *geom.Path
	hover   *graph.ConnKey
}

func (ix *interaction) reset() {
	*ix = interaction{hover: ix.hover}
}

// Mode returns the current interaction state.
func (e *Editor) Mode() Mode { return e.ix.mode }

// Preview returns the dashed in-progress connection, or nil.
func (e *Editor) Preview() *geom.Path { return e.ix.preview }

func (e *Editor) hit(ev PointerEvent) graph.Hit {
	if ev.Target != nil {
		return *ev.Target
	}
	return e.layout.HitTest(e.store, ev.Pos)
}

// PointerDown starts panning, dragging or drawing depending on the button
// and what lies under the pointer.
func (e *Editor) PointerDown(ev PointerEvent) {
	e.ix.last = ev.Pos
	if ev.Button == ButtonMiddle || (ev.Button == ButtonLeft && ev.Mods.Alt) {
		e.ix.mode = ModePanning
		return
	}
	if ev.Button != ButtonLeft {
		return
	}
	h := e.hit(ev)
	switch h.Kind {
	case graph.HitSocket:
		if _, ok := e.store.Node(h.Socket.Node); !ok {
			return
		}
		e.ix.mode = ModeDrawingConnection
		e.ix.origin = h.Socket
		e.updatePreview(ev.Pos)
	case graph.HitNode:
		if err := e.store.SelectNode(h.Node); err != nil {
			return
		}
		e.emit(Event{Kind: EventSelectionChanged, Node: h.Node})
		e.ix.mode = ModeDraggingNode
		e.ix.drag = h.Node
	case graph.HitConnection:
		if err := e.store.SelectConnection(h.Conn, ev.Mods.Shift); err == nil {
			e.emit(Event{Kind: EventSelectionChanged, Conn: h.Conn})
		}
	default:
		if !ev.Mods.Shift && e.store.HasSelection() {
			e.store.ClearSelection()
			e.emit(Event{Kind: EventSelectionChanged})
		}
	}
}

// PointerMove advances the active gesture, or tracks connection hover
// when idle.
func (e *Editor) PointerMove(ev PointerEvent) {
	delta := ev.Pos.Sub(e.ix.last)
	e.ix.last = ev.Pos
	switch e.ix.mode {
	case ModePanning:
		e.Pan(delta)
	case ModeDraggingNode:
		if err := e.store.MoveNode(e.ix.drag, delta.DivScalar(e.view.Scale)); err != nil {
			e.ix.reset()
			return
		}
		e.layout.RecomputeIncident(e.store, e.ix.drag)
		e.emit(Event{Kind: EventNodeMoved, Node: e.ix.drag})
	case ModeDrawingConnection:
		e.updatePreview(ev.Pos)
	default:
		e.trackHover(e.hit(ev))
	}
}

// PointerUp ends any gesture. Hosts route pointer-up here even when it
// happens outside the canvas.
func (e *Editor) PointerUp(ev PointerEvent) {
	if e.ix.mode == ModeDrawingConnection {
		origin := e.ix.origin
		e.ix.preview = nil
		e.emit(Event{Kind: EventPreviewChanged})
		if h := e.hit(ev); h.Kind == graph.HitSocket && graph.IsValidTarget(origin, h.Socket) {
			_, _ = e.Connect(origin, h.Socket)
		}
	}
	e.ix.reset()
}

// DoubleClick deletes the connection under the pointer after confirmation.
func (e *Editor) DoubleClick(ev PointerEvent) bool {
	h := e.hit(ev)
	if h.Kind != graph.HitConnection {
		return false
	}
	return e.ConfirmDeleteConnection(h.Conn)
}

// Wheel zooms around the pointer; a negative deltaY zooms in.
func (e *Editor) Wheel(pos v2.Vec, deltaY float64) {
	dir := 0
	switch {
	case deltaY < 0:
		dir = 1
	case deltaY > 0:
		dir = -1
	}
	if dir != 0 && e.view.ZoomAt(pos, dir) {
		e.viewChanged()
	}
}

// Pan moves the canvas by a screen-space delta.
func (e *Editor) Pan(delta v2.Vec) {
	if delta == (v2.Vec{}) {
		return
	}
	e.view.Pan(delta)
	e.viewChanged()
}

// FitView scales and pans so every node fits the viewport.
func (e *Editor) FitView(viewport v2.Vec, padding float64) {
	r, ok := e.layout.Bounds(e.store)
	if !ok {
		return
	}
	e.view.FitTo(r, viewport, padding)
	e.viewChanged()
}

func (e *Editor) viewChanged() {
	e.layout.RecomputeAll(e.store)
	if e.ix.mode == ModeDrawingConnection {
		e.updatePreview(e.ix.last)
	}
	e.emit(Event{Kind: EventViewChanged})
}

// KeyDown handles Delete/Backspace (delete selection) and Escape (cancel
// drawing, clear selection). It reports whether the key was handled.
func (e *Editor) KeyDown(key string) bool {
	switch key {
	case "Delete", "Backspace":
		e.deleteSelection()
		return true
	case "Escape":
		if e.ix.mode == ModeDrawingConnection {
			e.ix.reset()
			e.emit(Event{Kind: EventPreviewChanged})
		}
		if e.store.HasSelection() {
			e.store.ClearSelection()
			e.emit(Event{Kind: EventSelectionChanged})
		}
		return true
	}
	return false
}

// deleteSelection snapshots the selection before mutating it.
func (e *Editor) deleteSelection() {
	node := e.store.SelectedNode()
	conns := e.store.SelectedConnections()
	for _, k := range conns {
		if _, ok := e.store.Connection(k); ok {
			_ = e.DeleteConnection(k)
		}
	}
	if node != graph.NoHandle {
		_ = e.DeleteNode(node)
	}
}

func (e *Editor) updatePreview(pointer v2.Vec) {
	start, err := e.layout.EndpointOf(e.store, e.ix.origin)
	if err != nil {
		e.ix.reset()
		return
	}
	p := geom.PreviewPath(start, e.view.ScreenToCanvas(pointer), e.ix.origin.Dir == graph.Output, e.layout.Path)
	e.ix.preview = &p
	e.emit(Event{Kind: EventPreviewChanged})
}

func (e *Editor) trackHover(h graph.Hit) {
	var next *graph.ConnKey
	if h.Kind == graph.HitConnection {
		k := h.Conn
		next = &k
	}
	prev := e.ix.hover
	if (prev == nil && next == nil) || (prev != nil && next != nil && *prev == *next) {
		return
	}
	if prev != nil {
		if c, ok := e.store.Connection(*prev); ok {
			c.Hovered = false
		}
	}
	if next != nil {
		if c, ok := e.store.Connection(*next); ok {
			c.Hovered = true
		}
	}
	e.ix.hover = next
	e.emit(Event{Kind: EventHoverChanged})
}
