package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endurox-dev/exgo/pkg/atmi"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the native error catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the error type names known to the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range atmi.DefaultCatalog().TypeNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var catalogVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every native error code has a catalog entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := atmi.DefaultCatalog()
		err := cat.Verify(atmi.DefaultNative())
		if err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d types\n", len(cat.TypeNames()))
			return nil
		}

		missing := mismatches(err)
		for _, m := range missing {
			fmt.Fprintf(cmd.OutOrStdout(), "missing %s (%s code %d)\n", m.TypeName, m.Domain, m.Code)
		}
		logger.Error(context.Background(), "error catalog out of sync", "missing", len(missing))
		return fmt.Errorf("catalog verification failed: %d missing types", len(missing))
	},
}

func mismatches(err error) []*atmi.CatalogMismatch {
	var out []*atmi.CatalogMismatch
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, mismatches(e)...)
		}
		return out
	}
	var m *atmi.CatalogMismatch
	if errors.As(err, &m) {
		out = append(out, m)
	}
	return out
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogVerifyCmd)
}
