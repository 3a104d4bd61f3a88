package graph

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Store is the authoritative node and connection collection plus the
// current selection. It is not safe for concurrent use.
type Store struct {
	nodes map[Handle]*Node
	conns map[ConnKey]*Connection
	next  Handle

	selNode  Handle
	selConns map[ConnKey]bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[Handle]*Node),
		conns:    make(map[ConnKey]*Connection),
		selConns: make(map[ConnKey]bool),
	}
}

// ----------------------------------------------------------------------------
// Nodes
// ----------------------------------------------------------------------------

// AddNode creates a node of type t at a canvas position with the type's
// default properties.
func (s *Store) AddNode(t Type, pos v2.Vec) (*Node, error) {
	if !t.Valid() {
		return nil, &UnknownTypeError{Name: t.String()}
	}
	s.next++
	n := &Node{
		Handle:   s.next,
		Type:     t,
		Props:    Lookup(t).Defaults(),
		Position: pos,
	}
	s.nodes[n.Handle] = n
	return n, nil
}

// Node returns the record for h.
func (s *Store) Node(h Handle) (*Node, bool) {
	n, ok := s.nodes[h]
	return n, ok
}

// Nodes returns every node ordered by handle.
func (s *Store) Nodes() []*Node {
	out := slices.Collect(maps.Values(s.nodes))
	slices.SortFunc(out, func(a, b *Node) int { return cmp.Compare(a.Handle, b.Handle) })
	return out
}

// NodesOf returns the nodes of type t ordered by handle.
func (s *Store) NodesOf(t Type) []*Node {
	var out []*Node
	for _, n := range s.Nodes() {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the node count.
func (s *Store) Len() int { return len(s.nodes) }

// MoveNode offsets a node's canvas position.
func (s *Store) MoveNode(h Handle, delta v2.Vec) error {
	n, ok := s.nodes[h]
	if !ok {
		return fmt.Errorf("graph: move %d: %w", h, ErrNoNode)
	}
	n.Position = n.Position.Add(delta)
	return nil
}

// SetProperty validates v against the node's schema and stores it. Numbers
// outside the field's range are clamped. It returns the stored value.
func (s *Store) SetProperty(h Handle, name string, v Value) (Value, error) {
	n, ok := s.nodes[h]
	if !ok {
		return nil, fmt.Errorf("graph: set %d.%s: %w", h, name, ErrNoNode)
	}
	f, ok := n.Field(name)
	if !ok {
		return nil, fmt.Errorf("graph: set %s.%s: %w", n.Type, name, ErrNoProperty)
	}
	v, err := f.normalize(v)
	if err != nil {
		return nil, err
	}
	n.Props[name] = v
	return v, nil
}

// RemoveNode deletes the record for h. Incident connections must already
// be gone; the store refuses to leave dangling edges behind.
func (s *Store) RemoveNode(h Handle) (*Node, error) {
	n, ok := s.nodes[h]
	if !ok {
		return nil, fmt.Errorf("graph: remove %d: %w", h, ErrNoNode)
	}
	if len(s.Incident(h)) > 0 {
		return nil, fmt.Errorf("graph: remove %d: %w", h, ErrDangling)
	}
	if s.selNode == h {
		s.selNode = NoHandle
	}
	delete(s.nodes, h)
	return n, nil
}

// ----------------------------------------------------------------------------
// Connections
// ----------------------------------------------------------------------------

// Connect joins two sockets. The pair is put in (output, input) order
// based on which end is the output.
func (s *Store) Connect(origin, target Socket) (*Connection, error) {
	if !IsValidTarget(origin, target) {
		return nil, fmt.Errorf("graph: connect %s -> %s: %w", origin, target, ErrInvalidTarget)
	}
	from, to := Canonical(origin, target)
	src, ok := s.nodes[from.Node]
	if !ok {
		return nil, fmt.Errorf("graph: connect from %d: %w", from.Node, ErrNoNode)
	}
	dst, ok := s.nodes[to.Node]
	if !ok {
		return nil, fmt.Errorf("graph: connect to %d: %w", to.Node, ErrNoNode)
	}
	if !Lookup(src.Type).Outputs || !Lookup(dst.Type).Inputs {
		return nil, fmt.Errorf("graph: connect %s -> %s: %w", src.Type, dst.Type, ErrInvalidTarget)
	}
	key := ConnKey{From: from.Node, To: to.Node}
	if _, dup := s.conns[key]; dup {
		return nil, fmt.Errorf("graph: connect %d -> %d: %w", key.From, key.To, ErrDuplicate)
	}
	c := &Connection{From: from, To: to}
	s.conns[key] = c
	return c, nil
}

// Connection returns the connection with the given key.
func (s *Store) Connection(k ConnKey) (*Connection, bool) {
	c, ok := s.conns[k]
	return c, ok
}

// Connections returns every connection in key order.
func (s *Store) Connections() []*Connection {
	return s.collect(func(*Connection) bool { return true })
}

// ConnectionCount returns the number of connections.
func (s *Store) ConnectionCount() int { return len(s.conns) }

// Outgoing returns connections whose source is h.
func (s *Store) Outgoing(h Handle) []*Connection {
	return s.collect(func(c *Connection) bool { return c.From.Node == h })
}

// Incoming returns connections whose sink is h.
func (s *Store) Incoming(h Handle) []*Connection {
	return s.collect(func(c *Connection) bool { return c.To.Node == h })
}

// Incident returns every connection touching h.
func (s *Store) Incident(h Handle) []*Connection {
	return s.collect(func(c *Connection) bool { return c.Touches(h) })
}

// IsConnected reports whether any connection uses the socket.
func (s *Store) IsConnected(sock Socket) bool {
	for _, c := range s.conns {
		if c.From == sock || c.To == sock {
			return true
		}
	}
	return false
}

// RemoveConnection deletes a connection and drops it from the selection.
func (s *Store) RemoveConnection(k ConnKey) (*Connection, error) {
	c, ok := s.conns[k]
	if !ok {
		return nil, fmt.Errorf("graph: remove connection %d -> %d: %w", k.From, k.To, ErrNoConnection)
	}
	delete(s.conns, k)
	delete(s.selConns, k)
	c.Selected = false
	c.Hovered = false
	return c, nil
}

func (s *Store) collect(keep func(*Connection) bool) []*Connection {
	var out []*Connection
	for _, c := range s.conns {
		if keep(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *Connection) int { return compareKeys(a.Key(), b.Key()) })
	return out
}

// ----------------------------------------------------------------------------
// Selection
// ----------------------------------------------------------------------------

// SelectNode makes h the only selected node and clears the connection
// selection. NoHandle clears the node selection.
func (s *Store) SelectNode(h Handle) error {
	if h != NoHandle {
		if _, ok := s.nodes[h]; !ok {
			return fmt.Errorf("graph: select %d: %w", h, ErrNoNode)
		}
	}
	s.clearConnSelection()
	s.selNode = h
	return nil
}

// SelectConnection selects a connection. With additive set the connection
// is toggled and the rest of the selection kept; otherwise it replaces
// the whole selection.
func (s *Store) SelectConnection(k ConnKey, additive bool) error {
	c, ok := s.conns[k]
	if !ok {
		return fmt.Errorf("graph: select connection %d -> %d: %w", k.From, k.To, ErrNoConnection)
	}
	if additive {
		c.Selected = !c.Selected
		if c.Selected {
			s.selConns[k] = true
		} else {
			delete(s.selConns, k)
		}
		return nil
	}
	s.clearConnSelection()
	s.selNode = NoHandle
	c.Selected = true
	s.selConns[k] = true
	return nil
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	s.selNode = NoHandle
	s.clearConnSelection()
}

// SelectedNode returns the selected node or NoHandle.
func (s *Store) SelectedNode() Handle { return s.selNode }

// SelectedConnections returns a snapshot of the selected connection keys.
func (s *Store) SelectedConnections() []ConnKey {
	out := slices.Collect(maps.Keys(s.selConns))
	slices.SortFunc(out, compareKeys)
	return out
}

// HasSelection reports whether anything is selected.
func (s *Store) HasSelection() bool {
	return s.selNode != NoHandle || len(s.selConns) > 0
}

func (s *Store) clearConnSelection() {
	for k := range s.selConns {
		if c, ok := s.conns[k]; ok {
			c.Selected = false
		}
	}
	clear(s.selConns)
}
