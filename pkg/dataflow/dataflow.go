// Package dataflow turns graph state into scene mutations. Propagate
// pushes a node's values along its outgoing connections; EvaluateTerrain
// folds the terrain sub-graph into a heightmap and writes it to the mesh.
package dataflow

import (
	"errors"
	"log/slog"

	"github.com/chazu/sceneweave/pkg/effects"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
	"github.com/chazu/sceneweave/pkg/terrain"
)

var (
	ErrNoTerrain       = errors.New("dataflow: no terrain mesh")
	ErrCycle           = errors.New("dataflow: cycle in terrain graph")
	ErrFanIn           = errors.New("dataflow: terrain node needs exactly one input")
	ErrMultipleOutputs = errors.New("dataflow: more than one terrainOutput node")
)

// Evaluator runs both passes against one store. It is not safe for
// concurrent use.
type Evaluator struct {
	store   *graph.Store
	effects *effects.Manager
	terrain scene.TerrainMesh
	log     *slog.Logger

	// base is the mesh as first read by a terrainInput node. Later passes
	// start from it instead of from their own output.
	base *terrain.Data
}

// New returns an evaluator. terrain may be nil, in which case the terrain
// pass reports ErrNoTerrain whenever the graph has a terrainOutput node.
func New(store *graph.Store, fx *effects.Manager, terrain scene.TerrainMesh, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{store: store, effects: fx, terrain: terrain, log: log}
}

// SetTerrain swaps the terrain mesh and forgets the captured source.
func (e *Evaluator) SetTerrain(t scene.TerrainMesh) {
	e.terrain = t
	e.base = nil
}
