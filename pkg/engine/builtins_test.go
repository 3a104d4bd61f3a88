package engine

import (
	"log/slog"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/sceneweave/pkg/effects/builtin"
	"github.com/chazu/sceneweave/pkg/editor"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/scene"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(node "material" :color "#fff")`,
			expect: `(node "material" "__kw_color" "#fff")`,
		},
		{
			name:   "multiple keywords",
			input:  `(node "terrace" :x 400 :y 200)`,
			expect: `(node "terrace" "__kw_x" 400 "__kw_y" 200)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def height-noise (node "heightNoise"))`,
			expect: `(def height_noise (node "heightNoise"))`,
		},
		{
			name:   "kebab-case inside string preserved",
			input:  `(node "height-noise")`,
			expect: `(node "height-noise")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:cast-shadow`,
			expect: `"__kw_cast-shadow"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, preprocessSource(tt.input))
		})
	}
}

func TestPropName(t *testing.T) {
	assert.Equal(t, "castShadow", propName("cast-shadow"))
	assert.Equal(t, "castShadow", propName("cast_shadow"))
	assert.Equal(t, "castShadow", propName("castShadow"))
	assert.Equal(t, "color", propName("color"))
	assert.Equal(t, "ab", propName("-ab"))
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func TestNodeRecordsPlan(t *testing.T) {
	eng := NewEngine(slog.New(slog.DiscardHandler))

	source := `
; a red material
(def mat (node "material" :x 10 :y 20 :model :phong :color "#ff0000" :shininess 80))
(def obj (node "object" :x 300 :y 20))
(link obj "cube")
(connect mat obj)
`
	p, evalErrs, err := eng.Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, p)
	assert.Equal(t, 2, p.Nodes())

	require.Len(t, p.Ops, 7)
	assert.Equal(t, Op{Kind: OpNode, Node: 0, Type: "material", Pos: p.Ops[0].Pos}, p.Ops[0])
	assert.InDelta(t, 10, p.Ops[0].Pos.X, 1e-9)
	assert.InDelta(t, 20, p.Ops[0].Pos.Y, 1e-9)
	assert.Equal(t, Op{Kind: OpSet, Node: 0, Property: "model", Value: "phong"}, p.Ops[1])
	assert.Equal(t, Op{Kind: OpSet, Node: 0, Property: "color", Value: "#ff0000"}, p.Ops[2])
	assert.Equal(t, Op{Kind: OpSet, Node: 0, Property: "shininess", Value: "80"}, p.Ops[3])
	assert.Equal(t, OpNode, p.Ops[4].Kind)
	assert.Equal(t, Op{Kind: OpLink, Node: 1, Object: "cube"}, p.Ops[5])
	assert.Equal(t, Op{Kind: OpConnect, Node: 0, Target: 1}, p.Ops[6])
}

func TestConnectChains(t *testing.T) {
	eng := NewEngine(slog.New(slog.DiscardHandler))

	p, evalErrs, err := eng.Evaluate(`
(def src (node "terrainInput"))
(def noise (node "heightNoise" :seed 7))
(def sink (node "terrainOutput"))
(connect src noise sink)
`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)

	var conns []Op
	for _, op := range p.Ops {
		if op.Kind == OpConnect {
			conns = append(conns, op)
		}
	}
	assert.Equal(t, []Op{
		{Kind: OpConnect, Node: 0, Target: 1},
		{Kind: OpConnect, Node: 1, Target: 2},
	}, conns)
}

func TestVec3AndBoolValues(t *testing.T) {
	eng := NewEngine(slog.New(slog.DiscardHandler))

	p, evalErrs, err := eng.Evaluate(`
(def tr (node "transform" :position (vec3 1 2.5 -3)))
(def li (node "light" :cast-shadow true))
`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	assert.Contains(t, p.Ops, Op{Kind: OpSet, Node: 0, Property: "position", Value: "1,2.5,-3"})
	assert.Contains(t, p.Ops, Op{Kind: OpSet, Node: 1, Property: "castShadow", Value: "true"})
}

func TestBuiltinArgumentErrors(t *testing.T) {
	eng := NewEngine(slog.New(slog.DiscardHandler))

	for _, src := range []string{
		`(node)`,
		`(node "material" :x "left")`,
		`(link 1 "cube")`,
		`(connect (node "material"))`,
		`(vec3 1 2)`,
		`(prop (node "material"))`,
	} {
		p, evalErrs, err := eng.Evaluate(src)
		require.NoError(t, err, src)
		assert.Nil(t, p, src)
		assert.NotEmpty(t, evalErrs, src)
	}
}

// ---------------------------------------------------------------------------
// Plan application
// ---------------------------------------------------------------------------

func newEditor(t *testing.T) (*editor.Editor, *scene.Memory) {
	t.Helper()
	sc := scene.NewDefaultScene()
	ed := editor.New(editor.Deps{
		Scene:   sc,
		Terrain: scene.NewMemTerrain(scene.TerrainConfig{Width: 10, Length: 10, Resolution: 4}),
		Effects: builtin.Registry(),
		Logger:  slog.New(slog.DiscardHandler),
	}, editor.DefaultOptions())
	return ed, sc
}

func TestRunAppliesToEditor(t *testing.T) {
	eng := NewEngine(slog.New(slog.DiscardHandler))
	ed, sc := newEditor(t)

	handles, evalErrs, err := eng.Run(`
(def mat (node "material" :color "#ff0000" :metalness 0.9))
(def obj (node "object" :x 300))
(link obj "cube")
(connect mat obj)
`, ed)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.Len(t, handles, 2)
	assert.Equal(t, 2, ed.Store().Len())
	assert.Equal(t, 1, ed.Store().ConnectionCount())

	cube := sc.Lookup("cube")
	require.NotNil(t, cube)
	assert.Equal(t, "#ff0000", cube.Material().Color.Hex())
	assert.InDelta(t, 0.9, cube.Material().Metalness, 1e-9)
}

func TestRunEvalErrorLeavesEditorUntouched(t *testing.T) {
	eng := NewEngine(slog.New(slog.DiscardHandler))
	ed, _ := newEditor(t)

	handles, evalErrs, err := eng.Run(`(node "material") (+ 1`, ed)
	require.NoError(t, err)
	assert.Nil(t, handles)
	assert.NotEmpty(t, evalErrs)
	assert.Equal(t, 0, ed.Store().Len())
}

func p2(x, y float64) v2.Vec { return v2.Vec{X: x, Y: y} }

func TestApplyJoinsErrors(t *testing.T) {
	ed, _ := newEditor(t)

	p := &Plan{}
	bad := p.addNode("volcano", p2(0, 0))
	mat := p.addNode("material", p2(0, 0))
	p.set(bad, "color", "#000000")
	p.set(mat, "color", "not a colour")
	p.set(mat, "metalness", "0.25")
	p.link(mat, "nothing-here")

	handles, err := p.Apply(ed)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrUnknownType)
	assert.ErrorIs(t, err, graph.ErrPropertyType)
	assert.Contains(t, err.Error(), "node 0 was not created")
	assert.Contains(t, err.Error(), "no such object")

	require.Len(t, handles, 2)
	assert.Equal(t, graph.NoHandle, handles[bad])
	n, ok := ed.Store().Node(handles[mat])
	require.True(t, ok)
	assert.InDelta(t, 0.25, n.Props.Number("metalness"), 1e-9, "later ops still apply")
}

func TestApplyRefusedConnection(t *testing.T) {
	ed, _ := newEditor(t)

	p := &Plan{}
	a := p.addNode("material", p2(0, 0))
	b := p.addNode("light", p2(200, 0))
	p.connect(a, b)

	_, err := p.Apply(ed)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrInvalidTarget)
	assert.Equal(t, 0, ed.Store().ConnectionCount())
}
