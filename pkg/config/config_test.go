package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/sceneweave/pkg/editor"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, editor.DefaultOptions(), cfg.EditorOptions())
	assert.Equal(t, 5*time.Second, cfg.Engine.Timeout.Duration)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
	assert.Equal(t, 64, cfg.TerrainMesh().Resolution)
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	assert.Equal(t, "/tmp/test-xdg/sceneweave", Dir())
	assert.Equal(t, "/tmp/test-xdg/sceneweave/config.toml", Path())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "sceneweave"), Dir())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[view]
max_scale = 4.5
grid = 32

[path]
hit_width = 9

[engine]
timeout = "250ms"

[log]
level = "DEBUG"

[terrain]
resolution = 16
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.5, cfg.View.MaxScale)
	assert.Equal(t, Default().View.MinScale, cfg.View.MinScale, "unset keys keep defaults")
	assert.Equal(t, 32.0, cfg.EditorOptions().Grid)
	assert.Equal(t, 9.0, cfg.EditorOptions().Path.HitWidth)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.Timeout.Duration)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, 16, cfg.TerrainMesh().Resolution)
	assert.Equal(t, 100.0, cfg.TerrainMesh().Width)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\ntimeout = \"soon\"\n"), 0o644))

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Layout.NodeWidth = 200
	cfg.Engine.Timeout = Duration{2 * time.Second}
	require.NoError(t, Save(cfg, ""))

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
		"":        slog.LevelInfo,
	} {
		c := &Config{Log: LogConfig{Level: in}}
		assert.Equal(t, want, c.LogLevel(), in)
	}
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(true, true, true, slog.LevelWarn))
	assert.Equal(t, slog.LevelInfo, LevelFromFlags(false, true, true, slog.LevelWarn))
	assert.Equal(t, slog.LevelError, LevelFromFlags(false, false, true, slog.LevelWarn))
	assert.Equal(t, slog.LevelWarn, LevelFromFlags(false, false, false, slog.LevelWarn))
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf strings.Builder
	log := NewLogger(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Warn("shown", "node", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown node=3")
}

func TestNewEditor(t *testing.T) {
	cfg := Default()
	cfg.Layout.NodeWidth = 240
	asked := 0
	ed := cfg.NewEditor(slog.New(slog.DiscardHandler))(editor.ConfirmFunc(func(string, string) bool {
		asked++
		return false
	}))
	assert.Equal(t, 240.0, ed.Layout().NodeWidth)

	h := ed.AddNode("object", 0, 0)
	require.NoError(t, ed.LinkObjectByName(h, "sphere"), "default scene is populated")
}

func TestNewWorkspaceSharesScene(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Resolution = 4
	w := cfg.NewWorkspace(slog.New(slog.DiscardHandler), nil)

	h := w.Editor.AddNode("object", 0, 0)
	require.NoError(t, w.Editor.LinkObjectByName(h, "cube"))
	n, ok := w.Editor.Store().Node(h)
	require.True(t, ok)
	assert.Same(t, w.Scene.Lookup("cube"), n.Linked)
	assert.Len(t, w.Terrain.Heights(), 25)
}

func TestNewKernel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Preview.MeshCells, cfg.NewKernel().Cells)
}

func TestNewEngineTimeout(t *testing.T) {
	cfg := Default()
	cfg.Engine.Timeout = Duration{time.Second}
	assert.Equal(t, time.Second, cfg.NewEngine(slog.New(slog.DiscardHandler)).Timeout)
}
