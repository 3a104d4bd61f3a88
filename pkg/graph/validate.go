package graph

import "fmt"

// ValidationSeverity indicates whether a finding blocks terrain evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Node     Handle // NoHandle for graph-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Node == NoHandle {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %d: %s", e.Severity, e.Node, e.Message)
}

// Validate runs the structural checks over the store and returns every
// finding. It never mutates the store.
func Validate(s *Store) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateAcyclic(s)...)
	errs = append(errs, validateTerrain(s)...)
	errs = append(errs, validateLinks(s)...)
	return errs
}

// HasErrors reports whether any finding is blocking.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FindCycle returns a node on a directed cycle reachable by following
// connections forward, or NoHandle.
//
// DFS with 3-color marking: white = unvisited, gray = on the current
// path, black = fully explored. Reaching a gray node closes a cycle.
func FindCycle(s *Store) Handle {
	const (
		white = iota
		gray
		black
	)
	color := make(map[Handle]int)

	var visit func(h Handle) Handle
	visit = func(h Handle) Handle {
		switch color[h] {
		case black:
			return NoHandle
		case gray:
			return h
		}
		color[h] = gray
		for _, c := range s.Outgoing(h) {
			if found := visit(c.To.Node); found != NoHandle {
				return found
			}
		}
		color[h] = black
		return NoHandle
	}

	for _, n := range s.Nodes() {
		if color[n.Handle] == white {
			if found := visit(n.Handle); found != NoHandle {
				return found
			}
		}
	}
	return NoHandle
}

// validateReferences checks that every connection resolves to present
// nodes.
func validateReferences(s *Store) []ValidationError {
	var errs []ValidationError
	for _, c := range s.Connections() {
		for _, h := range []Handle{c.From.Node, c.To.Node} {
			if _, ok := s.Node(h); !ok {
				errs = append(errs, ValidationError{
					Message:  fmt.Sprintf("connection %d -> %d references missing node %d", c.From.Node, c.To.Node, h),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func validateAcyclic(s *Store) []ValidationError {
	h := FindCycle(s)
	if h == NoHandle {
		return nil
	}
	n, _ := s.Node(h)
	sev := SeverityWarning
	if n != nil && n.Type.IsTerrain() {
		sev = SeverityError
	}
	return []ValidationError{{
		Node:     h,
		Message:  "node is part of a cycle",
		Severity: sev,
	}}
}

// validateTerrain checks the terrain sub-graph shape: one sink, and
// exactly one upstream for every transform and the sink.
func validateTerrain(s *Store) []ValidationError {
	var errs []ValidationError
	if outs := s.NodesOf(TypeTerrainOutput); len(outs) > 1 {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("%d terrainOutput nodes, want at most 1", len(outs)),
			Severity: SeverityError,
		})
	}
	for _, n := range s.Nodes() {
		if !n.Type.IsTerrainTransform() && n.Type != TypeTerrainOutput {
			continue
		}
		if in := len(s.Incoming(n.Handle)); in != 1 {
			errs = append(errs, ValidationError{
				Node:     n.Handle,
				Message:  fmt.Sprintf("%s has %d inputs, want 1", n.Type, in),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateLinks warns about object nodes that drive nothing.
func validateLinks(s *Store) []ValidationError {
	var errs []ValidationError
	for _, n := range s.NodesOf(TypeObject) {
		if n.Linked == nil {
			errs = append(errs, ValidationError{
				Node:     n.Handle,
				Message:  "object node is not linked to a scene object",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
