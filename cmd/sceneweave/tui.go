package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chazu/sceneweave/pkg/tui"
)

func tuiCmd(a *app) *cobra.Command {
	var script string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a graph in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keep log output off the alt screen.
			a.log = discardLogger()
			m := tui.New(a.cfg.NewEditor(a.log))
			if script != "" {
				if err := a.preload(m, script); err != nil {
					return err
				}
			}
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&script, "script", "s", "", "graph script to load before editing")
	return cmd
}

// preload runs a script against the model's editor before the program
// takes over the terminal.
func (a *app) preload(m *tui.Model, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, evalErrs, err := a.cfg.NewEngine(a.log).Run(string(src), m.Editor())
	if len(evalErrs) > 0 {
		printEvalErrors(os.Stderr, path, evalErrs)
		return errScript
	}
	return err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
