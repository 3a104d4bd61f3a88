// Package tui is a terminal front end for the graph editor. Terminal cells
// map to a fixed-size block of editor screen space, so the editor's own
// hit testing and interaction state machine run unchanged under mouse
// input.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/sceneweave/pkg/editor"
	"github.com/chazu/sceneweave/pkg/graph"
)

// Editor screen units per terminal cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

const doubleClickWindow = 400 * time.Millisecond

// footerRows is the status line plus the help line.
const footerRows = 2

// Model is the bubbletea model driving one editor.
type Model struct {
	ed   *editor.Editor
	keys keyMap
	help help.Model

	width, height int
	pointer       v2.Vec
	types         []graph.Type
	typeIdx       int

	// double-click detection and the pending delete prompt
	lastPress    time.Time
	lastPressPos v2.Vec
	prompt       *editor.PointerEvent
	armed        bool

	status string
	now    func() time.Time
}

// New builds a model around an editor created by newEditor. The editor's
// deletion Confirmer answers from the model's y/n prompt.
func New(newEditor func(editor.Confirmer) *editor.Editor) *Model {
	m := &Model{
		keys:   defaultKeys(),
		help:   help.New(),
		types:  graph.Types(),
		now:    time.Now,
		status: "ready",
	}
	m.ed = newEditor(editor.ConfirmFunc(func(string, string) bool { return m.armed }))
	m.ed.Subscribe(func(ev editor.Event) {
		switch ev.Kind {
		case editor.EventNodeAdded, editor.EventNodeRemoved, editor.EventConnectionAdded,
			editor.EventConnectionRemoved, editor.EventTerrainUpdated:
			m.status = ev.Kind.String()
		}
	})
	return m
}

// Editor returns the editor the model drives.
func (m *Model) Editor() *editor.Editor { return m.ed }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		return m, m.key(msg)
	}
	return m, nil
}

// cellCenter maps a terminal cell to the editor screen point at its center.
func cellCenter(col, row int) v2.Vec {
	return v2.Vec{
		X: float64(col*CellWidth) + CellWidth/2,
		Y: float64(row*CellHeight) + CellHeight/2,
	}
}

func (m *Model) mouse(msg tea.MouseMsg) {
	pos := cellCenter(msg.X, msg.Y)
	m.pointer = pos
	ev := editor.PointerEvent{
		Pos:  pos,
		Mods: editor.Modifiers{Alt: msg.Alt, Shift: msg.Shift, Ctrl: msg.Ctrl},
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.ed.Wheel(pos, -1)
			return
		case tea.MouseButtonWheelDown:
			m.ed.Wheel(pos, 1)
			return
		case tea.MouseButtonMiddle:
			ev.Button = editor.ButtonMiddle
		case tea.MouseButtonRight:
			ev.Button = editor.ButtonRight
		case tea.MouseButtonLeft:
			ev.Button = editor.ButtonLeft
			if m.isDoubleClick(pos) {
				m.doubleClick(ev)
				return
			}
		default:
			return
		}
		m.ed.PointerDown(ev)
	case tea.MouseActionMotion:
		m.ed.PointerMove(ev)
	case tea.MouseActionRelease:
		m.ed.PointerUp(ev)
	}
}

func (m *Model) isDoubleClick(pos v2.Vec) bool {
	now := m.now()
	double := pos == m.lastPressPos && now.Sub(m.lastPress) <= doubleClickWindow
	if double {
		m.lastPress = time.Time{}
	} else {
		m.lastPress, m.lastPressPos = now, pos
	}
	return double
}

// doubleClick opens the delete prompt when a connection is under the pointer.
func (m *Model) doubleClick(ev editor.PointerEvent) {
	h := m.ed.Layout().HitTest(m.ed.Store(), ev.Pos)
	if h.Kind != graph.HitConnection {
		return
	}
	m.prompt = &ev
	m.status = fmt.Sprintf("delete connection %d → %d? (y/n)", h.Conn.From, h.Conn.To)
}

func (m *Model) answer(yes bool) {
	ev := *m.prompt
	m.prompt = nil
	if !yes {
		m.status = "kept"
		return
	}
	m.armed = true
	m.ed.DoubleClick(ev)
	m.armed = false
}

func (m *Model) canvasSize() v2.Vec {
	rows := max(m.height-footerRows, 1)
	return v2.Vec{X: float64(m.width * CellWidth), Y: float64(rows * CellHeight)}
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	if m.prompt != nil {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.answer(true)
		case key.Matches(msg, m.keys.No):
			m.answer(false)
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Add):
		c := m.ed.View().ScreenToCanvas(m.pointer)
		t := m.types[m.typeIdx]
		if h := m.ed.AddNode(t.String(), c.X, c.Y); h == graph.NoHandle {
			m.status = "cannot add " + t.String()
		}
	case key.Matches(msg, m.keys.Type):
		step := 1
		if msg.String() == "shift+tab" {
			step = len(m.types) - 1
		}
		m.typeIdx = (m.typeIdx + step) % len(m.types)
	case key.Matches(msg, m.keys.Delete):
		m.ed.KeyDown("Delete")
	case key.Matches(msg, m.keys.Cancel):
		m.ed.KeyDown("Escape")
	case key.Matches(msg, m.keys.Fit):
		m.ed.FitView(m.canvasSize(), 2*CellWidth)
	case key.Matches(msg, m.keys.ZoomIn):
		m.ed.Wheel(m.canvasSize().MulScalar(0.5), -1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.ed.Wheel(m.canvasSize().MulScalar(0.5), 1)
	case key.Matches(msg, m.keys.Pan):
		var d v2.Vec
		switch msg.String() {
		case "up":
			d.Y = 2 * CellHeight
		case "down":
			d.Y = -2 * CellHeight
		case "left":
			d.X = 4 * CellWidth
		case "right":
			d.X = -4 * CellWidth
		}
		m.ed.Pan(d)
	}
	return nil
}
