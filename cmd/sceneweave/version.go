package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/chazu/sceneweave/internal/ui"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Brand.Sprint("sceneweave"), version, ui.Subtle.Sprintf("(%s %s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH))
		},
	}
}
