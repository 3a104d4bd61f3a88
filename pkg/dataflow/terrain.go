package dataflow

import (
	"fmt"

	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/terrain"
)

// EvaluateTerrain resolves the terrain sub-graph from its terrainOutput
// node back to the terrain input and writes the result to the mesh in a
// single step. A graph without terrainOutput is a no-op. On any error the
// mesh is left untouched.
func (e *Evaluator) EvaluateTerrain() (*terrain.Data, error) {
	outs := e.store.NodesOf(graph.TypeTerrainOutput)
	switch {
	case len(outs) == 0:
		return nil, nil
	case len(outs) > 1:
		return nil, fmt.Errorf("dataflow: terrain: %w (%d)", ErrMultipleOutputs, len(outs))
	}
	if e.terrain == nil {
		return nil, fmt.Errorf("dataflow: terrain: %w", ErrNoTerrain)
	}

	w := walk{e: e, color: make(map[graph.Handle]int)}
	data, err := w.process(outs[0])
	if err != nil {
		return nil, err
	}
	if data == nil {
		e.log.Debug("terrain pass produced nothing", "output", outs[0].Handle)
		return nil, nil
	}
	if err := data.Write(e.terrain); err != nil {
		return nil, fmt.Errorf("dataflow: terrain: %w", err)
	}
	e.log.Debug("terrain written", "vertices", len(data.Heights))
	return data, nil
}

// source returns a copy of the source heightmap. The mesh is read on the
// first pass only, so re-running the pipeline on unchanged properties
// leaves the mesh unchanged.
func (e *Evaluator) source() (*terrain.Data, error) {
	if e.base == nil {
		d, err := terrain.Read(e.terrain)
		if err != nil {
			return nil, err
		}
		e.base = d
	}
	return e.base.Clone(), nil
}

// RestoreTerrain writes the captured source heights back to the mesh and
// forgets them. It reports whether anything was written.
func (e *Evaluator) RestoreTerrain() (bool, error) {
	if e.base == nil || e.terrain == nil {
		return false, nil
	}
	if err := e.base.Write(e.terrain); err != nil {
		return false, fmt.Errorf("dataflow: restore terrain: %w", err)
	}
	e.base = nil
	return true, nil
}

// Process resolves node h alone, without writing to the mesh.
func (e *Evaluator) Process(h graph.Handle) (*terrain.Data, error) {
	n, ok := e.store.Node(h)
	if !ok {
		return nil, fmt.Errorf("dataflow: process %d: %w", h, graph.ErrNoNode)
	}
	w := walk{e: e, color: make(map[graph.Handle]int)}
	return w.process(n)
}

const (
	white = iota
	gray
	black
)

// walk is one post-order resolution. Gray marks nodes on the current
// path; meeting one again means the terrain graph loops.
type walk struct {
	e     *Evaluator
	color map[graph.Handle]int
}

func (w *walk) process(n *graph.Node) (*terrain.Data, error) {
	if w.color[n.Handle] == gray {
		return nil, fmt.Errorf("dataflow: node %d: %w", n.Handle, ErrCycle)
	}
	w.color[n.Handle] = gray
	defer func() { w.color[n.Handle] = black }()

	switch {
	case n.Type == graph.TypeTerrainInput:
		if w.e.terrain == nil {
			return nil, fmt.Errorf("dataflow: node %d: %w", n.Handle, ErrNoTerrain)
		}
		d, err := w.e.source()
		if err != nil {
			return nil, fmt.Errorf("dataflow: node %d: %w", n.Handle, err)
		}
		return d, nil
	case n.Type == graph.TypeTerrainOutput, n.Type.IsTerrainTransform():
	default:
		// Not part of the terrain pipeline: yields nothing.
		return nil, nil
	}

	in := w.e.store.Incoming(n.Handle)
	if len(in) != 1 {
		return nil, fmt.Errorf("dataflow: %s %d has %d inputs: %w", n.Type, n.Handle, len(in), ErrFanIn)
	}
	up, ok := w.e.store.Node(in[0].From.Node)
	if !ok {
		return nil, fmt.Errorf("dataflow: node %d: %w", in[0].From.Node, graph.ErrNoNode)
	}
	data, err := w.process(up)
	if err != nil || data == nil {
		return nil, err
	}
	if n.Type == graph.TypeTerrainOutput {
		return data, nil
	}
	return Transform(n, data), nil
}

// Transform applies a terrain transform node to a clone of in and returns
// the clone. in is never modified.
func Transform(n *graph.Node, in *terrain.Data) *terrain.Data {
	out := in.Clone()
	p := n.Props
	switch n.Type {
	case graph.TypeHeightNoise:
		return terrain.HeightNoise(out, terrain.NoiseParams{
			Seed:        int64(p.Number("seed")),
			Scale:       p.Number("scale"),
			Strength:    p.Number("strength"),
			Octaves:     int(p.Number("octaves")),
			Persistence: p.Number("persistence"),
			Lacunarity:  p.Number("lacunarity"),
		})
	case graph.TypeTerrace:
		return terrain.Terrace(out, int(p.Number("levels")), p.Number("smoothing"))
	case graph.TypeHydraulicErosion:
		return terrain.HydraulicErosion(out, terrain.ErosionParams{
			Iterations: int(p.Number("iterations")),
			Strength:   p.Number("strength"),
			Seed:       uint64(p.Number("seed")),
		})
	}
	return out
}
