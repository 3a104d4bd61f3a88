// Package editor is the node-graph editing engine: it owns the graph
// store, view and layout, runs the dataflow passes after every mutation,
// and resolves pointer and keyboard input through a small state machine.
//
// An Editor is single-threaded. Hosts serialize every call.
package editor

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/sceneweave/pkg/dataflow"
	"github.com/chazu/sceneweave/pkg/effects"
	"github.com/chazu/sceneweave/pkg/geom"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
	"github.com/chazu/sceneweave/pkg/terrain"
)

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(title, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(title, message string) bool

func (f ConfirmFunc) Confirm(title, message string) bool { return f(title, message) }

// Deps are the collaborators an editor drives.
type Deps struct {
	Scene   scene.Scene       // may be nil; used to resolve linked objects by name
	Terrain scene.TerrainMesh // may be nil
	Effects effects.Registry
	// Confirm gates interactive deletions. Nil approves everything.
	Confirm Confirmer
	Logger  *slog.Logger
}

// Options tunes the canvas.
type Options struct {
	MinScale     float64
	MaxScale     float64
	ZoomStep     float64
	Grid         float64 // background grid spacing in canvas units
	Path         geom.PathConfig
	NodeWidth    float64
	NodeHeight   float64
	SocketRadius float64
}

// DefaultOptions returns the standard canvas settings.
func DefaultOptions() Options {
	return Options{
		MinScale:     geom.DefaultMinScale,
		MaxScale:     geom.DefaultMaxScale,
		ZoomStep:     geom.DefaultZoomStep,
		Grid:         geom.DefaultGrid,
		Path:         geom.DefaultPathConfig(),
		NodeWidth:    graph.DefaultNodeWidth,
		NodeHeight:   graph.DefaultNodeHeight,
		SocketRadius: graph.DefaultSocketRadius,
	}
}

// Editor is the graph editing engine.
type Editor struct {
	store   *graph.Store
	view    *geom.View
	layout  *graph.Layout
	effects *effects.Manager
	eval    *dataflow.Evaluator
	scene   scene.Scene
	confirm Confirmer
	log     *slog.Logger
	grid    float64

	terrain *terrain.Data // last pass written to the mesh

	subs    map[int]func(Event)
	nextSub int

	ix interaction
}

// New builds an editor over deps.
func New(deps Deps, opts Options) *Editor {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	store := graph.NewStore()
	view := geom.NewView(opts.MinScale, opts.MaxScale, opts.ZoomStep)
	layout := graph.NewLayout(view)
	layout.Path = opts.Path
	if opts.NodeWidth > 0 {
		layout.NodeWidth = opts.NodeWidth
	}
	if opts.NodeHeight > 0 {
		layout.NodeHeight = opts.NodeHeight
	}
	if opts.SocketRadius > 0 {
		layout.SocketRadius = opts.SocketRadius
	}
	fx := effects.NewManager(deps.Effects, log.With("component", "effects"))
	grid := opts.Grid
	if grid <= 0 {
		grid = geom.DefaultGrid
	}
	return &Editor{
		store:   store,
		view:    view,
		layout:  layout,
		effects: fx,
		eval:    dataflow.New(store, fx, deps.Terrain, log.With("component", "dataflow")),
		scene:   deps.Scene,
		confirm: deps.Confirm,
		log:     log,
		grid:    grid,
		subs:    make(map[int]func(Event)),
	}
}

func (e *Editor) Store() *graph.Store            { return e.store }
func (e *Editor) View() *geom.View               { return e.view }
func (e *Editor) Layout() *graph.Layout          { return e.layout }
func (e *Editor) Effects() *effects.Manager      { return e.effects }
func (e *Editor) Evaluator() *dataflow.Evaluator { return e.eval }

// Terrain returns the heightmap last written by the terrain pass, or nil.
func (e *Editor) Terrain() *terrain.Data { return e.terrain }

// ----------------------------------------------------------------------------
// Nodes
// ----------------------------------------------------------------------------

// AddNode creates a node by catalog name at canvas position (x, y).
// Unknown types are logged and refused with graph.NoHandle.
func (e *Editor) AddNode(typeName string, x, y float64) graph.Handle {
	t, err := graph.ParseType(typeName)
	if err != nil {
		e.log.Warn("add node refused", "type", typeName, "err", err)
		return graph.NoHandle
	}
	h, err := e.AddNodeOf(t, v2.Vec{X: x, Y: y})
	if err != nil {
		e.log.Warn("add node refused", "type", typeName, "err", err)
		return graph.NoHandle
	}
	return h
}

// AddNodeOf creates a node of type t at a canvas position.
func (e *Editor) AddNodeOf(t graph.Type, pos v2.Vec) (graph.Handle, error) {
	n, err := e.store.AddNode(t, pos)
	if err != nil {
		return graph.NoHandle, err
	}
	e.log.Debug("node added", "node", n.Handle, "type", t)
	e.emit(Event{Kind: EventNodeAdded, Node: n.Handle})
	return n.Handle, nil
}

// DeleteNode removes a node: its connections first, then any effect it
// drives or that targets its object, then the selection and the record.
func (e *Editor) DeleteNode(h graph.Handle) error {
	n, ok := e.store.Node(h)
	if !ok {
		err := fmt.Errorf("editor: delete node %d: %w", h, graph.ErrNoNode)
		e.log.Warn("delete node refused", "err", err)
		return err
	}
	terrainTouched := n.Type.IsTerrain()
	for _, c := range e.store.Incident(h) {
		touched, err := e.removeConnection(c.Key(), h)
		if err != nil {
			return err
		}
		terrainTouched = terrainTouched || touched
	}
	if n.Linked != nil {
		e.effects.Remove(n.Linked.ID())
	}
	e.effects.RemoveBySource(h)
	wasSelected := e.store.SelectedNode() == h
	if _, err := e.store.RemoveNode(h); err != nil {
		e.log.Error("delete node", "node", h, "err", err)
		return err
	}
	if e.ix.drag == h {
		e.ix.reset()
	}
	e.log.Debug("node removed", "node", h, "type", n.Type)
	if wasSelected {
		e.emit(Event{Kind: EventSelectionChanged})
	}
	e.emit(Event{Kind: EventNodeRemoved, Node: h})
	if terrainTouched {
		e.EvaluateTerrain()
	}
	return nil
}

// SetProperty stores a typed value and re-runs the dataflow from the node.
func (e *Editor) SetProperty(h graph.Handle, name string, v graph.Value) error {
	if _, err := e.store.SetProperty(h, name, v); err != nil {
		e.log.Warn("set property refused", "node", h, "property", name, "err", err)
		return err
	}
	n, _ := e.store.Node(h)
	if n.Type == graph.TypeObject && name == "name" && e.scene != nil {
		obj := e.scene.Lookup(n.Props.Text("name"))
		if n.Linked != nil && (obj == nil || obj.ID() != n.Linked.ID()) {
			e.effects.Remove(n.Linked.ID())
		}
		n.Linked = obj
		// Refresh covers the edit pass as well.
		if err := e.eval.Refresh(h); err != nil {
			e.log.Warn("refresh", "node", h, "err", err)
		}
	} else if err := e.eval.PropagateEdit(h); err != nil {
		e.log.Warn("propagate", "node", h, "err", err)
	}
	e.emit(Event{Kind: EventPropertyChanged, Node: h, Property: name})
	if n.Type.IsTerrain() {
		e.EvaluateTerrain()
	}
	return nil
}

// SetPropertyString parses raw as the field's declared kind and stores it.
// This is the hook property widgets call on every input event.
func (e *Editor) SetPropertyString(h graph.Handle, name, raw string) error {
	n, ok := e.store.Node(h)
	if !ok {
		return fmt.Errorf("editor: set %d.%s: %w", h, name, graph.ErrNoNode)
	}
	f, ok := n.Field(name)
	if !ok {
		err := fmt.Errorf("editor: set %s.%s: %w", n.Type, name, graph.ErrNoProperty)
		e.log.Warn("set property refused", "err", err)
		return err
	}
	v, err := f.Parse(raw)
	if err != nil {
		e.log.Warn("set property refused", "node", h, "property", name, "err", err)
		return fmt.Errorf("editor: %w: %w", graph.ErrPropertyType, err)
	}
	return e.SetProperty(h, name, v)
}

// LinkObject points node h at a scene object (nil unlinks) and re-applies
// everything feeding the node.
func (e *Editor) LinkObject(h graph.Handle, obj scene.Object) error {
	n, ok := e.store.Node(h)
	if !ok {
		return fmt.Errorf("editor: link %d: %w", h, graph.ErrNoNode)
	}
	if n.Linked != nil && (obj == nil || obj.ID() != n.Linked.ID()) {
		e.effects.Remove(n.Linked.ID())
	}
	n.Linked = obj
	if err := e.eval.Refresh(h); err != nil {
		e.log.Warn("refresh", "node", h, "err", err)
	}
	e.emit(Event{Kind: EventPropertyChanged, Node: h, Property: "linked"})
	return nil
}

// LinkObjectByName resolves name in the scene and links it.
func (e *Editor) LinkObjectByName(h graph.Handle, name string) error {
	if e.scene == nil {
		return fmt.Errorf("editor: link %q: no scene", name)
	}
	obj := e.scene.Lookup(name)
	if obj == nil {
		return fmt.Errorf("editor: link %q: no such object", name)
	}
	return e.LinkObject(h, obj)
}

// ----------------------------------------------------------------------------
// Connections
// ----------------------------------------------------------------------------

// Connect joins two sockets in either order and propagates from the new
// connection's source.
func (e *Editor) Connect(a, b graph.Socket) (graph.ConnKey, error) {
	c, err := e.store.Connect(a, b)
	if err != nil {
		e.log.Warn("connect refused", "from", a, "to", b, "err", err)
		return graph.ConnKey{}, err
	}
	_ = e.layout.RecomputePath(e.store, c)
	e.emit(Event{Kind: EventConnectionAdded, Conn: c.Key()})
	if err := e.eval.Propagate(c.From.Node); err != nil {
		e.log.Warn("propagate", "node", c.From.Node, "err", err)
	}
	if e.touchesTerrain(c) {
		e.EvaluateTerrain()
	}
	return c.Key(), nil
}

// DeleteConnection removes a connection without confirmation.
func (e *Editor) DeleteConnection(k graph.ConnKey) error {
	touched, err := e.removeConnection(k, graph.NoHandle)
	if err != nil {
		e.log.Warn("delete connection refused", "err", err)
		return err
	}
	if touched {
		e.EvaluateTerrain()
	}
	return nil
}

// ConfirmDeleteConnection asks the Confirmer before removing k. It
// reports whether the connection was removed.
func (e *Editor) ConfirmDeleteConnection(k graph.ConnKey) bool {
	if _, ok := e.store.Connection(k); !ok {
		return false
	}
	if e.confirm != nil && !e.confirm.Confirm("Delete connection", "Delete this connection?") {
		return false
	}
	return e.DeleteConnection(k) == nil
}

// removeConnection drops k, releases the effect it fed, and re-runs
// propagation from its source unless the source is being deleted. It
// reports whether the connection belonged to the terrain sub-graph.
func (e *Editor) removeConnection(k graph.ConnKey, deleting graph.Handle) (bool, error) {
	wasSelected := slices.Contains(e.store.SelectedConnections(), k)
	c, err := e.store.RemoveConnection(k)
	if err != nil {
		return false, err
	}
	src, _ := e.store.Node(c.From.Node)
	sink, _ := e.store.Node(c.To.Node)
	if sink != nil && sink.Type == graph.TypeEffect && src != nil && src.Linked != nil {
		if entry, ok := e.effects.Get(src.Linked.ID()); ok && entry.Source == sink.Handle {
			e.effects.Remove(src.Linked.ID())
		}
	}
	if wasSelected {
		e.emit(Event{Kind: EventSelectionChanged})
	}
	e.emit(Event{Kind: EventConnectionRemoved, Conn: k})
	if src != nil && src.Handle != deleting {
		if err := e.eval.Propagate(src.Handle); err != nil {
			e.log.Warn("propagate", "node", src.Handle, "err", err)
		}
	}
	return e.touchesTerrain(c), nil
}

func (e *Editor) touchesTerrain(c *graph.Connection) bool {
	for _, h := range []graph.Handle{c.From.Node, c.To.Node} {
		if n, ok := e.store.Node(h); ok && n.Type.IsTerrain() {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Dataflow
// ----------------------------------------------------------------------------

// EvaluateTerrain runs the terrain pass. Failures are logged and leave
// the mesh unchanged.
func (e *Editor) EvaluateTerrain() *terrain.Data {
	d, err := e.eval.EvaluateTerrain()
	switch {
	case errors.Is(err, dataflow.ErrFanIn):
		// A chain still being wired.
		e.log.Debug("terrain pass skipped", "err", err)
		return nil
	case err != nil:
		e.log.Error("terrain pass aborted", "err", err)
		return nil
	}
	if d != nil {
		e.terrain = d
		e.emit(Event{Kind: EventTerrainUpdated})
	}
	return d
}

// Update advances live effects by dt seconds.
func (e *Editor) Update(dt float64) {
	e.effects.Update(dt)
}

// Validate returns the structural findings for the current graph.
func (e *Editor) Validate() []graph.ValidationError {
	return graph.Validate(e.store)
}

// Reset removes every node and effect and restores the view.
func (e *Editor) Reset() error {
	var errs []error
	for _, n := range e.store.Nodes() {
		errs = append(errs, e.DeleteNode(n.Handle))
	}
	e.effects.Clear()
	restored, err := e.eval.RestoreTerrain()
	errs = append(errs, err)
	e.terrain = nil
	if restored {
		e.emit(Event{Kind: EventTerrainUpdated})
	}
	e.view.Reset()
	e.ix.reset()
	e.emit(Event{Kind: EventViewChanged})
	return errors.Join(errs...)
}

func (e *Editor) subIDs() []int {
	ids := slices.Collect(maps.Keys(e.subs))
	slices.SortFunc(ids, cmp.Compare[int])
	return ids
}
