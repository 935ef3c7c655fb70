package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "desim",
		Short: "Discrete-event simulation engine",
		Long: `desim drives virtual-time clocks, processes, and conditional
events. This CLI is a wrapper around the engine for running the
built-in example scenarios; it is not part of the engine's public API.`,
	}

	root.AddCommand(versionCmd())
	root.AddCommand(runCmd())
	return root
}
