package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/cargoload/pkg/engine/strategy"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List loading strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStrategies(cmd.OutOrStdout())
	},
}

func printStrategies(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%-10s %-8s %-10s %s\n", "KEY", "DEFAULT", "GRID", "DESCRIPTION"); err != nil {
		return err
	}
	for _, s := range strategy.All() {
		def := ""
		if s.Key == strategy.Default {
			def = "*"
		}
		grid := "regular"
		if s.Tuning.Dense {
			grid = "dense"
		}
		if _, err := fmt.Fprintf(w, "%-10s %-8s %-10s %s (%s, points %s)\n", s.Key, def, grid, s.Name, s.Label, s.Tuning.Order); err != nil {
			return err
		}
	}
	return nil
}
