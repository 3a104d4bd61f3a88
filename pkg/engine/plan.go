package engine

import (
	"errors"
	"fmt"

	"github.com/chazu/sceneweave/pkg/graph"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// OpKind identifies a recorded operation.
type OpKind int

const (
	OpNode OpKind = iota + 1
	OpSet
	OpLink
	OpConnect
)

var opNames = [...]string{
	OpNode:    "node",
	OpSet:     "prop",
	OpLink:    "link",
	OpConnect: "connect",
}

func (k OpKind) String() string {
	if k > 0 && int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one recorded script operation. Node and Target are plan-local node
// indexes, not store handles.
type Op struct {
	Kind     OpKind
	Node     int
	Type     string // OpNode
	Pos      v2.Vec // OpNode
	Property string // OpSet
	Value    string // OpSet, raw widget form
	Object   string // OpLink
	Target   int    // OpConnect: Node's output feeds Target's input
}

// Plan is the ordered list of operations a script recorded.
type Plan struct {
	Ops   []Op
	nodes int
}

// Nodes returns how many nodes the plan creates.
func (p *Plan) Nodes() int {
	if p == nil {
		return 0
	}
	return p.nodes
}

func (p *Plan) addNode(typ string, pos v2.Vec) int {
	idx := p.nodes
	p.nodes++
	p.Ops = append(p.Ops, Op{Kind: OpNode, Node: idx, Type: typ, Pos: pos})
	return idx
}

func (p *Plan) set(node int, prop, raw string) {
	p.Ops = append(p.Ops, Op{Kind: OpSet, Node: node, Property: prop, Value: raw})
}

func (p *Plan) link(node int, object string) {
	p.Ops = append(p.Ops, Op{Kind: OpLink, Node: node, Object: object})
}

func (p *Plan) connect(from, to int) {
	p.Ops = append(p.Ops, Op{Kind: OpConnect, Node: from, Target: to})
}

// Target is what a plan is applied to. *editor.Editor satisfies it.
type Target interface {
	AddNode(typeName string, x, y float64) graph.Handle
	SetPropertyString(h graph.Handle, name, raw string) error
	LinkObjectByName(h graph.Handle, name string) error
	Connect(a, b graph.Socket) (graph.ConnKey, error)
}

// Apply replays the plan against t. Failed operations do not stop the
// replay; their errors are joined. Operations on a node that could not
// be created fail too. The returned slice maps plan node index to store
// handle, graph.NoHandle for nodes that were refused.
func (p *Plan) Apply(t Target) ([]graph.Handle, error) {
	handles := make([]graph.Handle, p.Nodes())
	var errs []error
	resolve := func(i int, idx int) (graph.Handle, bool) {
		if idx < 0 || idx >= len(handles) || handles[idx] == graph.NoHandle {
			errs = append(errs, fmt.Errorf("engine: op %d: node %d was not created", i, idx))
			return graph.NoHandle, false
		}
		return handles[idx], true
	}

	for i, op := range p.Ops {
		switch op.Kind {
		case OpNode:
			h := t.AddNode(op.Type, op.Pos.X, op.Pos.Y)
			if h == graph.NoHandle {
				errs = append(errs, fmt.Errorf("engine: op %d: node %q: %w", i, op.Type, graph.ErrUnknownType))
			}
			handles[op.Node] = h
		case OpSet:
			h, ok := resolve(i, op.Node)
			if !ok {
				continue
			}
			if err := t.SetPropertyString(h, op.Property, op.Value); err != nil {
				errs = append(errs, fmt.Errorf("engine: op %d: %w", i, err))
			}
		case OpLink:
			h, ok := resolve(i, op.Node)
			if !ok {
				continue
			}
			if err := t.LinkObjectByName(h, op.Object); err != nil {
				errs = append(errs, fmt.Errorf("engine: op %d: %w", i, err))
			}
		case OpConnect:
			from, ok := resolve(i, op.Node)
			if !ok {
				continue
			}
			to, ok := resolve(i, op.Target)
			if !ok {
				continue
			}
			a := graph.Socket{Node: from, Dir: graph.Output}
			b := graph.Socket{Node: to, Dir: graph.Input}
			if _, err := t.Connect(a, b); err != nil {
				errs = append(errs, fmt.Errorf("engine: op %d: connect %s -> %s: %w", i, a, b, err))
			}
		}
	}
	return handles, errors.Join(errs...)
}
