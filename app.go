package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/sceneweave/pkg/config"
	"github.com/chazu/sceneweave/pkg/editor"
	"github.com/chazu/sceneweave/pkg/engine"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/kernel"
	"github.com/chazu/sceneweave/pkg/tessellate"
)

// EditorEvent is the runtime event name carrying editor.Event payloads.
const EditorEvent = "editor:event"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bindings run on their own goroutines, so every call takes mu.
type App struct {
	ctx context.Context
	log *slog.Logger

	mu     sync.Mutex
	ws     *config.Workspace
	ed     *editor.Editor
	engine *engine.Engine
	kernel kernel.Kernel

	// emit and ask are bound to the Wails runtime at startup.
	emit func(name string, data any)
	ask  func(title, message string) bool
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Handles  []graph.Handle  `json:"handles"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Snapshot editor.Snapshot `json:"snapshot"`
}

// PreviewResult is the tessellated scene for the 3D preview.
type PreviewResult struct {
	Meshes []*kernel.Mesh `json:"meshes"`
	Errors []string       `json:"errors"`
}

// PointerInput is a pointer event in screen coordinates.
type PointerInput struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button int     `json:"button"`
	Alt    bool    `json:"alt"`
	Shift  bool    `json:"shift"`
	Ctrl   bool    `json:"ctrl"`
}

func (p PointerInput) event() editor.PointerEvent {
	return editor.PointerEvent{
		Pos:    v2.Vec{X: p.X, Y: p.Y},
		Button: editor.Button(p.Button),
		Mods:   editor.Modifiers{Alt: p.Alt, Shift: p.Shift, Ctrl: p.Ctrl},
	}
}

// NewApp creates an App from the user's config file.
func NewApp() *App {
	cfg, err := config.Load("")
	log := config.NewLogger(os.Stderr, cfg.LogLevel())
	if err != nil {
		log.Warn("config ignored", "err", err)
	}
	return NewAppWith(cfg, log)
}

// NewAppWith creates an App with an editor and engine built from cfg.
func NewAppWith(cfg *config.Config, log *slog.Logger) *App {
	a := &App{
		log:  log,
		emit: func(string, any) {},
	}
	a.ws = cfg.NewWorkspace(log, editor.ConfirmFunc(a.confirm))
	a.ed = a.ws.Editor
	a.engine = cfg.NewEngine(log)
	a.kernel = cfg.NewKernel()
	a.ed.Subscribe(func(ev editor.Event) {
		a.emit(EditorEvent, ev)
	})
	return a
}

// startup is called by Wails on app startup. The context is saved
// so events and dialogs can reach the runtime.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.emit = func(name string, data any) {
		runtime.EventsEmit(ctx, name, data)
	}
	a.ask = func(title, message string) bool {
		answer, err := runtime.MessageDialog(ctx, runtime.MessageDialogOptions{
			Type:          runtime.QuestionDialog,
			Title:         title,
			Message:       message,
			Buttons:       []string{"Yes", "No"},
			DefaultButton: "No",
			CancelButton:  "No",
		})
		if err != nil {
			a.log.Error("confirm dialog failed", "err", err)
			return false
		}
		return answer == "Yes"
	}
}

// confirm answers the editor's deletion prompt. Without a runtime there
// is nobody to ask and the deletion goes ahead.
func (a *App) confirm(title, message string) bool {
	if a.ask == nil {
		return true
	}
	return a.ask(title, message)
}

// Evaluate runs a graph script against the editor and returns the new
// handles, any errors and the resulting graph.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := EvalResult{
		Handles:  []graph.Handle{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	handles, evalErrs, err := a.engine.Run(source, a.ed)
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if err != nil {
		// Fatal (panic, timeout) or apply errors; the graph may be partial.
		a.log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	}
	result.Handles = append(result.Handles, handles...)

	for _, f := range a.ed.Validate() {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: f.Error()})
	}
	result.Snapshot = a.ed.Snapshot()
	return result
}

// Preview meshes the scene objects and the terrain.
func (a *App) Preview() PreviewResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := PreviewResult{Meshes: []*kernel.Mesh{}, Errors: []string{}}
	meshes, err := tessellate.Scene(a.ws.Scene, a.kernel)
	if err != nil {
		a.log.Warn("preview incomplete", "err", err)
		result.Errors = append(result.Errors, err.Error())
	}
	result.Meshes = append(result.Meshes, meshes...)

	terr, err := tessellate.Terrain(a.ws.Terrain)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Meshes = append(result.Meshes, terr)
	return result
}

// Snapshot returns the current graph.
func (a *App) Snapshot() editor.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.Snapshot()
}

// NodeTypes lists the node types the palette can offer.
func (a *App) NodeTypes() []string {
	var names []string
	for _, t := range graph.Types() {
		names = append(names, t.String())
	}
	return names
}

func (a *App) AddNode(typeName string, x, y float64) (graph.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.ed.AddNode(typeName, x, y)
	if h == graph.NoHandle {
		return h, fmt.Errorf("add %q: %w", typeName, graph.ErrUnknownType)
	}
	return h, nil
}

func (a *App) DeleteNode(h graph.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.DeleteNode(h)
}

func (a *App) SetProperty(h graph.Handle, name, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.SetPropertyString(h, name, value)
}

func (a *App) LinkObject(h graph.Handle, object string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.LinkObjectByName(h, object)
}

func (a *App) Connect(from, to graph.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.ed.Connect(graph.Socket{Node: from, Dir: graph.Output}, graph.Socket{Node: to, Dir: graph.Input})
	return err
}

func (a *App) DeleteConnection(from, to graph.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.DeleteConnection(graph.ConnKey{From: from, To: to})
}

func (a *App) PointerDown(p PointerInput) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ed.PointerDown(p.event())
}

func (a *App) PointerMove(p PointerInput) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ed.PointerMove(p.event())
}

func (a *App) PointerUp(p PointerInput) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ed.PointerUp(p.event())
}

// DoubleClick reports whether a connection was deleted. The user is asked
// first through a native dialog.
func (a *App) DoubleClick(p PointerInput) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.DoubleClick(p.event())
}

func (a *App) Wheel(x, y, deltaY float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ed.Wheel(v2.Vec{X: x, Y: y}, deltaY)
}

func (a *App) Pan(dx, dy float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ed.Pan(v2.Vec{X: dx, Y: dy})
}

func (a *App) FitView(width, height, padding float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ed.FitView(v2.Vec{X: width, Y: height}, padding)
}

func (a *App) KeyDown(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.KeyDown(key)
}

// Tick advances live effects; the frontend calls it once per frame.
func (a *App) Tick(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ed.Update(dt)
}

func (a *App) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ed.Reset()
}
