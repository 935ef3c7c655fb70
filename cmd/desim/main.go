// Command desim is a thin front end over the engine: it optionally
// loads an EngineConfig from a YAML file (--config, re-read on change
// with --watch), runs one of the built-in scenarios, and prints a
// summary. It is not part of the engine's core contract (spec.md §1) —
// purely an external convenience wrapper (SPEC_FULL.md §4.8).
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
