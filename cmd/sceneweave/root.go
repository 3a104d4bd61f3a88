package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/sceneweave/internal/ui"
	"github.com/chazu/sceneweave/pkg/config"
)

var version = "0.3.0"

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfgPath string
	vv, v   bool
	quiet   bool

	cfg *config.Config
	log *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "sceneweave",
		Short: "node graphs for live 3D scenes",
		Long: ui.Brand.Sprint("sceneweave") + ": wire materials, lights, effects and terrain as node graphs\n" +
			ui.Subtle.Sprint("Evaluate graph scripts, serve the browser editor, or edit in the terminal"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	cmd.SetVersionTemplate("sceneweave {{ .Version }}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default "+config.Path()+")")
	pf.BoolVar(&a.vv, "vv", false, "debug logging")
	pf.BoolVarP(&a.v, "verbose", "v", false, "info logging")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "errors only")

	cmd.AddCommand(
		versionCmd(),
		evalCmd(a),
		serveCmd(a),
		tuiCmd(a),
	)
	return cmd
}

// setup loads the config and installs the default logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		ui.Bad.Fprintf(os.Stderr, "sceneweave: %v\n", err)
		return err
	}
	a.cfg = cfg
	a.log = config.NewLogger(os.Stderr, config.LevelFromFlags(a.vv, a.v, a.quiet, cfg.LogLevel()))
	slog.SetDefault(a.log)
	return nil
}
