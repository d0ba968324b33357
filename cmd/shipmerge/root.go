package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipmerge",
		Short: "Merge and cross-validate shipment document extractions",
		Long: `shipmerge reconciles the per-document extraction results of one
cross-border shipment into a single record with validation findings.

Merge thresholds and the optional company registry are read from SHIPMERGE_*
environment variables, the same way the server reads them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMergeCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "shipmerge %s (%s)\n", version, commit)
			return err
		},
	}
}
