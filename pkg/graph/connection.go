package graph

import (
	"cmp"

	"github.com/chazu/sceneweave/pkg/geom"
)

// ConnKey is the identity of a connection: the (output node, input node)
// pair. Each node has one socket per direction, so the node pair fully
// determines the sockets.
type ConnKey struct {
	From Handle
	To   Handle
}

func compareKeys(a, b ConnKey) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	return cmp.Compare(a.To, b.To)
}

// Connection is a directed edge from an output socket to an input socket.
// Path and the hover/select flags are presentation state; the dataflow
// never reads them.
type Connection struct {
	From     Socket
	To       Socket
	Path     geom.Path
	Hovered  bool
	Selected bool
}

// Key returns the connection's identity.
func (c *Connection) Key() ConnKey {
	return ConnKey{From: c.From.Node, To: c.To.Node}
}

// Touches reports whether h is either endpoint.
func (c *Connection) Touches(h Handle) bool {
	return c.From.Node == h || c.To.Node == h
}
