package graph

import (
	"fmt"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/sceneweave/pkg/geom"
)

// Default node box in canvas units.
const (
	DefaultNodeWidth    = 160
	DefaultNodeHeight   = 80
	DefaultSocketRadius = 7
)

// Layout places nodes and sockets on the canvas and maps pointer
// positions back to graph elements.
type Layout struct {
	View         *geom.View
	Path         geom.PathConfig
	NodeWidth    float64
	NodeHeight   float64
	SocketRadius float64
}

// NewLayout returns a layout with default sizes over view.
func NewLayout(view *geom.View) *Layout {
	return &Layout{
		View:         view,
		Path:         geom.DefaultPathConfig(),
		NodeWidth:    DefaultNodeWidth,
		NodeHeight:   DefaultNodeHeight,
		SocketRadius: DefaultSocketRadius,
	}
}

// NodeRect is the node's body in canvas space.
func (l *Layout) NodeRect(n *Node) geom.Rect {
	return geom.RectAt(n.Position, l.NodeWidth, l.NodeHeight)
}

// SocketRect is the socket's bounding box in screen space.
func (l *Layout) SocketRect(n *Node, d Direction) geom.Rect {
	c := v2.Vec{X: n.Position.X, Y: n.Position.Y + l.NodeHeight/2}
	if d == Output {
		c.X += l.NodeWidth
	}
	return geom.RectAround(l.View.CanvasToScreen(c), l.SocketRadius*l.View.Scale)
}

// EndpointOf returns the canvas-space center of a socket.
func (l *Layout) EndpointOf(s *Store, sock Socket) (v2.Vec, error) {
	n, ok := s.Node(sock.Node)
	if !ok {
		return v2.Vec{}, fmt.Errorf("graph: endpoint %s: %w", sock, ErrNoNode)
	}
	return l.View.ScreenToCanvas(l.SocketRect(n, sock.Dir).Center()), nil
}

// RecomputePath refreshes a connection's curve from its current endpoints.
func (l *Layout) RecomputePath(s *Store, c *Connection) error {
	start, err := l.EndpointOf(s, c.From)
	if err != nil {
		return err
	}
	end, err := l.EndpointOf(s, c.To)
	if err != nil {
		return err
	}
	c.Path = geom.ConnectionPath(start, end, l.Path)
	return nil
}

// RecomputeAll refreshes every connection path.
func (l *Layout) RecomputeAll(s *Store) {
	for _, c := range s.Connections() {
		_ = l.RecomputePath(s, c)
	}
}

// RecomputeIncident refreshes the paths touching h.
func (l *Layout) RecomputeIncident(s *Store, h Handle) {
	for _, c := range s.Incident(h) {
		_ = l.RecomputePath(s, c)
	}
}

// Bounds returns the canvas rectangle covering every node, or false for
// an empty store.
func (l *Layout) Bounds(s *Store) (geom.Rect, bool) {
	nodes := s.Nodes()
	if len(nodes) == 0 {
		return geom.Rect{}, false
	}
	r := l.NodeRect(nodes[0])
	for _, n := range nodes[1:] {
		r = r.Union(l.NodeRect(n))
	}
	return r, true
}

// HitKind classifies what lies under the pointer.
type HitKind int

const (
	HitBackground HitKind = iota
	HitNode
	HitSocket
	HitConnection
)

func (k HitKind) String() string {
	switch k {
	case HitNode:
		return "node"
	case HitSocket:
		return "socket"
	case HitConnection:
		return "connection"
	default:
		return "background"
	}
}

// Hit is the result of a hit test.
type Hit struct {
	Kind   HitKind
	Node   Handle
	Socket Socket
	Conn   ConnKey
}

// HitTest resolves a screen point. Sockets win over node bodies, bodies
// over connections; among nodes the most recently created is on top.
func (l *Layout) HitTest(s *Store, screen v2.Vec) Hit {
	nodes := s.Nodes()
	slices.Reverse(nodes)
	for _, n := range nodes {
		schema := Lookup(n.Type)
		for _, d := range []Direction{Output, Input} {
			if schema.Has(d) && l.SocketRect(n, d).Contains(screen) {
				return Hit{Kind: HitSocket, Node: n.Handle, Socket: Socket{Node: n.Handle, Dir: d}}
			}
		}
	}
	q := l.View.ScreenToCanvas(screen)
	for _, n := range nodes {
		if l.NodeRect(n).Contains(q) {
			return Hit{Kind: HitNode, Node: n.Handle}
		}
	}
	width := l.Path.HitWidth / l.View.Scale
	for _, c := range s.Connections() {
		if c.Path.Hit(q, width) {
			return Hit{Kind: HitConnection, Conn: c.Key()}
		}
	}
	return Hit{Kind: HitBackground}
}
