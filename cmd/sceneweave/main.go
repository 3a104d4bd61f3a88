// Command sceneweave evaluates, serves and edits sceneweave node graphs.
package main

import (
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
