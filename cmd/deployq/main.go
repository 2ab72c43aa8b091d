// Command deployq is the CLI front end for the deployment queue
// coordinator: enqueueing, waiting out a cell's exclusion window,
// reporting lifecycle transitions, and inspecting queue state.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
