package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endurox-dev/exgo/pkg/atmi"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print bridge and middleware versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "exgo %s\n", atmi.Version)
		fmt.Fprintf(out, "Enduro/X %s (native bindings linked: %t)\n", atmi.MiddlewareVersion(), atmi.NativeBuilt())
		return nil
	},
}
