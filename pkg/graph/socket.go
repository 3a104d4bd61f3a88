package graph

import "fmt"

// Direction is the side of a node a socket sits on.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Socket is an attachment point. It is derived from its node and never
// stored on its own.
type Socket struct {
	Node Handle
	Dir  Direction
}

func (s Socket) String() string {
	return fmt.Sprintf("%d.%s", s.Node, s.Dir)
}

// IsValidTarget reports whether a connection may join a and b: distinct
// sockets on distinct nodes, exactly one of them an output.
func IsValidTarget(a, b Socket) bool {
	return a != b && a.Node != b.Node && a.Dir != b.Dir
}

// Canonical orders a valid pair as (output, input) regardless of which
// end the drag started from.
func Canonical(origin, target Socket) (from, to Socket) {
	if origin.Dir == Output {
		return origin, target
	}
	return target, origin
}
