// Command lumina runs the manuscript engine: an HTTP API for the editor
// plus a few offline commands for inspecting and exporting the active book.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
