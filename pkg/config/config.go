// Package config loads sceneweave settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chazu/sceneweave/pkg/editor"
	"github.com/chazu/sceneweave/pkg/effects/builtin"
	"github.com/chazu/sceneweave/pkg/engine"
	"github.com/chazu/sceneweave/pkg/geom"
	"github.com/chazu/sceneweave/pkg/graph"
	"github.com/chazu/sceneweave/pkg/kernel/sdfx"
	"github.com/chazu/sceneweave/pkg/scene"
)

// Config holds sceneweave configuration.
type Config struct {
	View    ViewConfig    `toml:"view"`
	Path    PathConfig    `toml:"path"`
	Layout  LayoutConfig  `toml:"layout"`
	Engine  EngineConfig  `toml:"engine"`
	Log     LogConfig     `toml:"log"`
	Terrain TerrainConfig `toml:"terrain"`
	Preview PreviewConfig `toml:"preview"`
}

// ViewConfig bounds the canvas zoom.
type ViewConfig struct {
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`
	ZoomStep float64 `toml:"zoom_step"`
	Grid     float64 `toml:"grid"` // canvas grid spacing
}

// PathConfig tunes connection curves.
type PathConfig struct {
	Factor            float64 `toml:"factor"`
	MinOffset         float64 `toml:"min_offset"`
	MaxOffset         float64 `toml:"max_offset"`
	BackwardTolerance float64 `toml:"backward_tolerance"`
	HitWidth          float64 `toml:"hit_width"`
}

// LayoutConfig sizes node boxes and sockets.
type LayoutConfig struct {
	NodeWidth    float64 `toml:"node_width"`
	NodeHeight   float64 `toml:"node_height"`
	SocketRadius float64 `toml:"socket_radius"`
}

// EngineConfig controls graph script evaluation.
type EngineConfig struct {
	Timeout Duration `toml:"timeout"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// TerrainConfig sizes the in-memory terrain used by the CLI hosts.
type TerrainConfig struct {
	Width      float64 `toml:"width"`
	Length     float64 `toml:"length"`
	Resolution int     `toml:"resolution"`
}

// PreviewConfig controls 3D preview meshing.
type PreviewConfig struct {
	MeshCells int `toml:"mesh_cells"` // marching cubes resolution
}

// Duration is a time.Duration written as a string ("5s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	p := geom.DefaultPathConfig()
	return &Config{
		View: ViewConfig{
			MinScale: geom.DefaultMinScale,
			MaxScale: geom.DefaultMaxScale,
			ZoomStep: geom.DefaultZoomStep,
			Grid:     geom.DefaultGrid,
		},
		Path: PathConfig{
			Factor:            p.Factor,
			MinOffset:         p.MinOffset,
			MaxOffset:         p.MaxOffset,
			BackwardTolerance: p.BackwardTolerance,
			HitWidth:          p.HitWidth,
		},
		Layout: LayoutConfig{
			NodeWidth:    graph.DefaultNodeWidth,
			NodeHeight:   graph.DefaultNodeHeight,
			SocketRadius: graph.DefaultSocketRadius,
		},
		Engine:  EngineConfig{Timeout: Duration{engine.EvalTimeout}},
		Log:     LogConfig{Level: "info"},
		Terrain: TerrainConfig{Width: 100, Length: 100, Resolution: 64},
		Preview: PreviewConfig{MeshCells: sdfx.DefaultMeshCells},
	}
}

// Dir returns the sceneweave config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sceneweave")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path over the defaults. An empty path means
// Path(). A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EditorOptions maps the canvas sections onto editor options.
func (c *Config) EditorOptions() editor.Options {
	return editor.Options{
		MinScale: c.View.MinScale,
		MaxScale: c.View.MaxScale,
		ZoomStep: c.View.ZoomStep,
		Grid:     c.View.Grid,
		Path: geom.PathConfig{
			Factor:            c.Path.Factor,
			MinOffset:         c.Path.MinOffset,
			MaxOffset:         c.Path.MaxOffset,
			BackwardTolerance: c.Path.BackwardTolerance,
			HitWidth:          c.Path.HitWidth,
		},
		NodeWidth:    c.Layout.NodeWidth,
		NodeHeight:   c.Layout.NodeHeight,
		SocketRadius: c.Layout.SocketRadius,
	}
}

// Workspace is an editor together with the scene and terrain it drives.
type Workspace struct {
	Scene   *scene.Memory
	Terrain *scene.MemTerrain
	Editor  *editor.Editor
}

// NewWorkspace builds an editor over a fresh default scene, an in-memory
// terrain sized by c and the built-in effects.
func (c *Config) NewWorkspace(log *slog.Logger, confirm editor.Confirmer) *Workspace {
	w := &Workspace{
		Scene:   scene.NewDefaultScene(),
		Terrain: scene.NewMemTerrain(c.TerrainMesh()),
	}
	w.Editor = editor.New(editor.Deps{
		Scene:   w.Scene,
		Terrain: w.Terrain,
		Effects: builtin.Registry(),
		Confirm: confirm,
		Logger:  log,
	}, c.EditorOptions())
	return w
}

// NewEditor returns a constructor for workspace editors, for hosts that
// only talk to the editor.
func (c *Config) NewEditor(log *slog.Logger) func(editor.Confirmer) *editor.Editor {
	return func(confirm editor.Confirmer) *editor.Editor {
		return c.NewWorkspace(log, confirm).Editor
	}
}

// NewKernel returns the preview geometry kernel.
func (c *Config) NewKernel() *sdfx.Kernel {
	return &sdfx.Kernel{Cells: c.Preview.MeshCells}
}

// NewEngine returns a script engine using the configured timeout.
func (c *Config) NewEngine(log *slog.Logger) *engine.Engine {
	e := engine.NewEngine(log)
	e.Timeout = c.Engine.Timeout.Duration
	return e
}

// TerrainMesh returns the terrain grid configuration.
func (c *Config) TerrainMesh() scene.TerrainConfig {
	return scene.TerrainConfig{
		Width:      c.Terrain.Width,
		Length:     c.Terrain.Length,
		Resolution: c.Terrain.Resolution,
	}
}

// LogLevel parses Log.Level. Unknown names fall back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
