package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chazu/sceneweave/internal/ui"
	"github.com/chazu/sceneweave/pkg/config"
	"github.com/chazu/sceneweave/pkg/editor"
	"github.com/chazu/sceneweave/pkg/engine"
	"github.com/chazu/sceneweave/pkg/tessellate"
)

// errScript marks a run whose script reported evaluation errors.
var errScript = errors.New("script failed")

const watchDebounce = 100 * time.Millisecond

func evalCmd(a *app) *cobra.Command {
	var (
		watch bool
		opts  evalOptions
	)
	cmd := &cobra.Command{
		Use:   "eval <script.lisp>",
		Short: "Build a graph from a script and print the result",
		Long: `Evaluate a graph script against a fresh editor over the default scene
and print the resulting graph. With --watch the script is re-evaluated
whenever the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "text" && opts.format != "yaml" {
				return fmt.Errorf("unknown format %q (want text or yaml)", opts.format)
			}
			out := cmd.OutOrStdout()
			if !watch {
				return a.evalFile(cmd.Context(), out, args[0], opts)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			run := func() error { return a.evalFile(ctx, out, args[0], opts) }
			return a.watchFile(ctx, out, args[0], run)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-evaluate when the script changes")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text or yaml")
	cmd.Flags().BoolVarP(&opts.preview, "preview", "p", false, "tessellate the scene and list its meshes")
	return cmd
}

type evalOptions struct {
	format  string
	preview bool
}

// evalFile runs the script at path on a new workspace and prints the graph.
func (a *app) evalFile(ctx context.Context, w io.Writer, path string, opts evalOptions) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ws := a.cfg.NewWorkspace(a.log, nil)
	ed := ws.Editor
	_, evalErrs, err := a.cfg.NewEngine(a.log).RunContext(ctx, string(src), ed)
	if len(evalErrs) > 0 {
		printEvalErrors(w, path, evalErrs)
		return errScript
	}
	if err != nil {
		ui.Bad.Fprintf(w, "%s: %v\n", path, err)
		return err
	}
	if opts.format == "yaml" {
		if err := writeSnapshot(w, ed.Snapshot(), opts.format); err != nil {
			return err
		}
		if opts.preview {
			return a.writePreviewYAML(w, ws)
		}
		return nil
	}

	if d := ed.Terrain(); d != nil {
		lo, hi := heightRange(d.Heights)
		ui.Info.Fprintf(w, "terrain %gx%g @%d, heights %.3f..%.3f\n", d.Width, d.Length, d.Resolution, lo, hi)
	}
	if err := writeSnapshot(w, ed.Snapshot(), opts.format); err != nil {
		return err
	}
	if opts.preview {
		return a.writePreview(w, ws)
	}
	return nil
}

// meshInfo is one row of the preview listing.
type meshInfo struct {
	Name      string `yaml:"name"`
	Vertices  int    `yaml:"vertices"`
	Triangles int    `yaml:"triangles"`
	Color     string `yaml:"color"`
}

// previewMeshes tessellates the workspace scene and terrain.
func (a *app) previewMeshes(ws *config.Workspace) ([]meshInfo, error) {
	meshes, meshErr := tessellate.Scene(ws.Scene, a.cfg.NewKernel())
	if terr, err := tessellate.Terrain(ws.Terrain); err == nil {
		meshes = append(meshes, terr)
	} else {
		meshErr = errors.Join(meshErr, err)
	}
	out := make([]meshInfo, 0, len(meshes))
	for _, m := range meshes {
		out = append(out, meshInfo{Name: m.Name, Vertices: m.VertexCount(), Triangles: m.TriangleCount(), Color: m.Color})
	}
	return out, meshErr
}

// writePreview lists the preview meshes as a table.
func (a *app) writePreview(w io.Writer, ws *config.Workspace) error {
	meshes, meshErr := a.previewMeshes(ws)
	rows := make([][]string, 0, len(meshes))
	for _, m := range meshes {
		rows = append(rows, []string{m.Name, strconv.Itoa(m.Vertices), strconv.Itoa(m.Triangles), m.Color})
	}
	fmt.Fprintln(w)
	ui.Table(w, []string{"MESH", "VERTICES", "TRIANGLES", "COLOR"}, rows)
	if meshErr != nil {
		ui.Bad.Fprintf(w, "%s %v\n", ui.StatusIcon(false), meshErr)
	}
	return meshErr
}

// writePreviewYAML appends the preview meshes as a second YAML document.
func (a *app) writePreviewYAML(w io.Writer, ws *config.Workspace) error {
	meshes, meshErr := a.previewMeshes(ws)
	doc := struct {
		Meshes []meshInfo `yaml:"meshes"`
		Errors []string   `yaml:"errors,omitempty"`
	}{Meshes: meshes}
	if meshErr != nil {
		doc.Errors = strings.Split(meshErr.Error(), "\n")
	}
	fmt.Fprintln(w, "---")
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return meshErr
}

// watchFile runs fn once, then again after every write to path until ctx
// is done. The parent directory is watched so editors that replace the
// file on save are still seen.
func (a *app) watchFile(ctx context.Context, w io.Writer, path string, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	rerun := func() {
		if err := fn(); err != nil && !errors.Is(err, errScript) {
			a.log.Error("eval failed", "file", path, "err", err)
		}
		ui.Subtle.Fprintf(w, "watching %s (ctrl+c to stop)\n", path)
	}
	rerun()

	debounce := time.NewTimer(0)
	<-debounce.C
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			debounce.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", "err", err)
		case <-debounce.C:
			a.log.Debug("script changed", "file", path)
			rerun()
		}
	}
}

func printEvalErrors(w io.Writer, path string, errs []engine.EvalError) {
	for _, e := range errs {
		if e.Line > 0 {
			ui.Bad.Fprintf(w, "%s:%d:%d: %s\n", path, e.Line, e.Col, e.Message)
			continue
		}
		ui.Bad.Fprintf(w, "%s: %s\n", path, e.Message)
	}
}

func writeSnapshot(w io.Writer, snap editor.Snapshot, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	}

	ui.Info.Fprintf(w, "%d nodes, %d connections\n\n", len(snap.Nodes), len(snap.Connections))

	var rows [][]string
	for _, n := range snap.Nodes {
		rows = append(rows, []string{
			strconv.Itoa(int(n.Handle)), n.Type, n.Linked, formatProps(n.Props),
		})
	}
	ui.Table(w, []string{"ID", "TYPE", "LINKED", "PROPERTIES"}, rows)

	if len(snap.Connections) > 0 {
		fmt.Fprintln(w)
		rows = rows[:0]
		for _, c := range snap.Connections {
			rows = append(rows, []string{strconv.Itoa(int(c.From)), strconv.Itoa(int(c.To))})
		}
		ui.Table(w, []string{"FROM", "TO"}, rows)
	}

	for _, f := range snap.Findings {
		ui.Warn.Fprintf(w, "%s %s\n", ui.StatusIcon(false), f)
	}
	return nil
}

func heightRange(hs []float64) (lo, hi float64) {
	for i, h := range hs {
		if i == 0 || h < lo {
			lo = h
		}
		if i == 0 || h > hi {
			hi = h
		}
	}
	return lo, hi
}

func formatProps(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + props[k]
	}
	return strings.Join(parts, " ")
}
