package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"site-ems/internal/config"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List battery presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			presets, skipped, err := config.ListBatteryPresets(dir)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCAPACITY_KWH\tINITIAL_KWH")
			for _, p := range presets {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\n", p.ID, p.Battery.Name, p.Battery.CapacityKWh, p.Battery.InitialLevelKWh)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for path, err := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", path, err)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "examples/batteries", "battery preset directory")
	return cmd
}
