// Package live serves the graph editor to browsers over a websocket. Each
// connection owns one editor; commands arrive as JSON text frames and the
// editor's events stream back the same way.
package live

import (
	"errors"
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/sceneweave/pkg/editor"
	"github.com/chazu/sceneweave/pkg/engine"
	"github.com/chazu/sceneweave/pkg/graph"
)

// ErrUnknownOp is returned for commands the session does not understand.
var ErrUnknownOp = errors.New("live: unknown op")

// Command is a client request. Only the fields relevant to Op are read.
type Command struct {
	Op string `json:"op"`
	ID int    `json:"id,omitempty"` // echoed in the reply

	// addNode
	Type string `json:"type,omitempty"`

	// pointer, wheel, pan: screen coordinates or delta
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Button int     `json:"button,omitempty"`
	Alt    bool    `json:"alt,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`

	// node, property and connection ops
	Node   graph.Handle `json:"node,omitempty"`
	From   graph.Handle `json:"from,omitempty"`
	To     graph.Handle `json:"to,omitempty"`
	Name   string       `json:"name,omitempty"`
	Value  string       `json:"value,omitempty"`
	Object string       `json:"object,omitempty"`

	Key     string  `json:"key,omitempty"`
	Source  string  `json:"source,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Padding float64 `json:"padding,omitempty"`
	DT      float64 `json:"dt,omitempty"`

	// Confirm answers the deletion prompt for doubleClick.
	Confirm bool `json:"confirm,omitempty"`
}

// Message types sent to the client.
const (
	MsgEvent    = "event"
	MsgReply    = "reply"
	MsgSnapshot = "snapshot"
)

// Message is a server frame.
type Message struct {
	Type     string             `json:"type"`
	ID       int                `json:"id,omitempty"`
	OK       bool               `json:"ok"`
	Error    string             `json:"error,omitempty"`
	Handle   graph.Handle       `json:"handle,omitempty"`
	Handles  []graph.Handle     `json:"handles,omitempty"`
	Errors   []engine.EvalError `json:"errors,omitempty"`
	Event    *editor.Event      `json:"event,omitempty"`
	Snapshot *editor.Snapshot   `json:"snapshot,omitempty"`
}

// dispatcher runs commands against one editor. It is not safe for
// concurrent use; a session drives it from its read loop.
type dispatcher struct {
	ed      *editor.Editor
	eng     *engine.Engine
	confirm bool
	pending []Message
}

// newDispatcher wires an editor built by newEditor to answer deletion
// prompts from the current command.
func newDispatcher(newEditor func(editor.Confirmer) *editor.Editor, eng *engine.Engine) *dispatcher {
	d := &dispatcher{eng: eng}
	d.ed = newEditor(editor.ConfirmFunc(func(string, string) bool { return d.confirm }))
	d.ed.Subscribe(func(ev editor.Event) {
		d.pending = append(d.pending, Message{Type: MsgEvent, OK: true, Event: &ev})
	})
	return d
}

// Handle runs cmd and returns the events it produced followed by the reply.
func (d *dispatcher) Handle(cmd Command) []Message {
	d.pending = nil
	d.confirm = cmd.Confirm
	reply := Message{Type: MsgReply, ID: cmd.ID, OK: true}
	if err := d.run(cmd, &reply); err != nil {
		reply.OK = false
		reply.Error = err.Error()
	}
	d.confirm = false
	out := append(d.pending, reply)
	d.pending = nil
	return out
}

func (d *dispatcher) run(cmd Command, reply *Message) error {
	ed := d.ed
	pos := v2.Vec{X: cmd.X, Y: cmd.Y}
	ptr := editor.PointerEvent{
		Pos:    pos,
		Button: editor.Button(cmd.Button),
		Mods:   editor.Modifiers{Alt: cmd.Alt, Shift: cmd.Shift, Ctrl: cmd.Ctrl},
	}

	switch cmd.Op {
	case "addNode":
		h := ed.AddNode(cmd.Type, cmd.X, cmd.Y)
		if h == graph.NoHandle {
			return fmt.Errorf("live: add %q: %w", cmd.Type, graph.ErrUnknownType)
		}
		reply.Handle = h
	case "deleteNode":
		return ed.DeleteNode(cmd.Node)
	case "setProperty":
		return ed.SetPropertyString(cmd.Node, cmd.Name, cmd.Value)
	case "link":
		return ed.LinkObjectByName(cmd.Node, cmd.Object)
	case "connect":
		_, err := ed.Connect(
			graph.Socket{Node: cmd.From, Dir: graph.Output},
			graph.Socket{Node: cmd.To, Dir: graph.Input},
		)
		return err
	case "deleteConnection":
		return ed.DeleteConnection(graph.ConnKey{From: cmd.From, To: cmd.To})
	case "pointerDown":
		ed.PointerDown(ptr)
	case "pointerMove":
		ed.PointerMove(ptr)
	case "pointerUp":
		ed.PointerUp(ptr)
	case "doubleClick":
		reply.OK = ed.DoubleClick(ptr)
	case "wheel":
		ed.Wheel(pos, cmd.DeltaY)
	case "pan":
		ed.Pan(pos)
	case "fit":
		ed.FitView(v2.Vec{X: cmd.Width, Y: cmd.Height}, cmd.Padding)
	case "key":
		reply.OK = ed.KeyDown(cmd.Key)
	case "update":
		ed.Update(cmd.DT)
	case "script":
		handles, evalErrs, err := d.eng.Run(cmd.Source, ed)
		reply.Handles = handles
		reply.Errors = evalErrs
		if err != nil {
			return err
		}
		if len(evalErrs) > 0 {
			return fmt.Errorf("live: script: %d errors", len(evalErrs))
		}
	case "snapshot":
		snap := ed.Snapshot()
		reply.Snapshot = &snap
	case "reset":
		return ed.Reset()
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, cmd.Op)
	}
	return nil
}
