package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/sceneweave/pkg/geom"
	"github.com/chazu/sceneweave/pkg/graph"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3C3C5A")).
			Padding(0, 1)
	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1F24")).
			Background(lipgloss.Color("#7A8CFF")).
			Padding(0, 1)
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC00")).
			Bold(true)
)

// pathSamples is how many points a connection is plotted with.
const pathSamples = 96

type borders struct{ h, v, tl, tr, bl, br rune }

var (
	plainBorder    = borders{'─', '│', '┌', '┐', '└', '┘'}
	selectedBorder = borders{'═', '║', '╔', '╗', '╚', '╝'}
)

type canvas struct {
	cells      [][]rune
	rows, cols int
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{rows: rows, cols: cols, cells: make([][]rune, rows)}
	for r := range c.cells {
		c.cells[r] = []rune(strings.Repeat(" ", cols))
	}
	return c
}

func (c *canvas) set(col, row int, ch rune) {
	if row >= 0 && row < c.rows && col >= 0 && col < c.cols {
		c.cells[row][col] = ch
	}
}

func (c *canvas) text(col, row int, s string, limit int) {
	for i, r := range []rune(s) {
		if i >= limit {
			return
		}
		c.set(col+i, row, r)
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.rows)
	for i, row := range c.cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

func cellOf(p v2.Vec) (col, row int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}
	rows := max(m.height-footerRows, 1)
	c := newCanvas(m.width, rows)
	m.drawConnections(c)
	m.drawNodes(c)

	status := statusStyle.Render(m.status)
	if m.prompt != nil {
		status = promptStyle.Render(m.status)
	}
	mode := statusStyle.Render(fmt.Sprintf("%s  %.0f%%", m.ed.Mode(), m.ed.View().Scale*100))
	bar := lipgloss.JoinHorizontal(lipgloss.Top, typeStyle.Render("+ "+m.types[m.typeIdx].String()), mode, status)

	return lipgloss.JoinVertical(lipgloss.Left, c.String(), bar, m.help.View(m.keys))
}

func (m *Model) plot(c *canvas, p geom.Path, ch rune) {
	view := m.ed.View()
	for i := 0; i <= pathSamples; i++ {
		col, row := cellOf(view.CanvasToScreen(p.At(float64(i) / pathSamples)))
		c.set(col, row, ch)
	}
}

func (m *Model) drawConnections(c *canvas) {
	for _, conn := range m.ed.Store().Connections() {
		ch := '·'
		switch {
		case conn.Selected:
			ch = '●'
		case conn.Hovered:
			ch = '•'
		}
		m.plot(c, conn.Path, ch)
	}
	if p := m.ed.Preview(); p != nil {
		m.plot(c, *p, '∙')
	}
}

func (m *Model) drawNodes(c *canvas) {
	store, layout, view := m.ed.Store(), m.ed.Layout(), m.ed.View()
	sel := store.SelectedNode()
	for _, n := range store.Nodes() {
		r := view.RectToScreen(layout.NodeRect(n))
		c0, r0 := cellOf(r.Min)
		c1, r1 := cellOf(r.Max)
		c1 = max(c1, c0+2)
		r1 = max(r1, r0+2)

		b := plainBorder
		if n.Handle == sel {
			b = selectedBorder
		}
		for col := c0 + 1; col < c1; col++ {
			c.set(col, r0, b.h)
			c.set(col, r1, b.h)
		}
		for row := r0 + 1; row < r1; row++ {
			c.set(c0, row, b.v)
			c.set(c1, row, b.v)
			for col := c0 + 1; col < c1; col++ {
				c.set(col, row, ' ')
			}
		}
		c.set(c0, r0, b.tl)
		c.set(c1, r0, b.tr)
		c.set(c0, r1, b.bl)
		c.set(c1, r1, b.br)

		width := c1 - c0 - 1
		c.text(c0+1, r0+1, fmt.Sprintf("%s #%d", n.Type, n.Handle), width)
		if n.Linked != nil && r0+2 < r1 {
			c.text(c0+1, r0+2, "→ "+n.Linked.Name(), width)
		}

		schema := graph.Lookup(n.Type)
		if schema.Has(graph.Input) {
			_, sr := cellOf(layout.SocketRect(n, graph.Input).Center())
			c.set(c0, sr, '○')
		}
		if schema.Has(graph.Output) {
			_, sr := cellOf(layout.SocketRect(n, graph.Output).Center())
			c.set(c1, sr, '●')
		}
	}
}
