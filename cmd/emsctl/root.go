package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "emsctl",
		Short:         "Site energy simulator: solar, thermal demand and a greedy battery",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "scenario YAML file (defaults apply when omitted)")
	root.AddCommand(newSimulateCmd(), newSweepCmd(), newPresetsCmd())
	return root
}
