package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endurox-dev/exgo/pkg/atmi/xadrv"
)

var xaCmd = &cobra.Command{
	Use:   "xa",
	Short: "XA resource-manager driver tools",
}

var xaProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Resolve the XA switch the way a transaction manager would",
	Long: "Resolve the XA switch from the process image or NDRX_XA_RMLIB, " +
		"run the driver initializer and report the outcome.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := xadrv.LoadConfig(); err != nil {
			return err
		}
		r := xadrv.Default(xadrv.WithLogger(logger))
		defer func() { _ = r.Shutdown() }()

		b, err := r.Resolve()
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", r.State())
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "switch:  %#x\n", b.Switch)
		fmt.Fprintf(out, "source:  %s\n", b.Source)
		fmt.Fprintf(out, "role:    %s\n", b.Role)
		fmt.Fprintf(out, "runtime: owned=%t\n", b.OwnsRuntime)
		return nil
	},
}

func init() {
	xaCmd.AddCommand(xaProbeCmd)
}
