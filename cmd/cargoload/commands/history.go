package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/cargoload/pkg/engine/history"
)

var historyLast int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs and per-strategy statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := historyClient(cmd.Context())
		if err != nil {
			return err
		}
		snaps, err := client.LoadWindow(cmd.Context(), historyLast)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), snaps)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLast, "last", "n", 20, "Number of runs to show")
}

func printHistory(w io.Writer, snaps []history.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s %-10s %7s %7s %9s %12s %7s\n", "TIME", "STRATEGY", "ITEMS", "LOADED", "UNLOADED", "VALUE", "FILL")
	for _, s := range snaps {
		fmt.Fprintf(w, "%-20s %-10s %7d %7d %9d %12.2f %6.1f%%\n",
			time.Unix(s.Timestamp, 0).UTC().Format("2006-01-02 15:04:05"),
			s.Strategy, s.TotalCount, s.PlacedCount, s.UnplacedCount, s.TotalValue, s.FillRatio*100)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s %5s %10s %12s %14s\n", "STRATEGY", "RUNS", "MEAN FILL", "BEST VALUE", "MEAN UNLOADED")
	for _, st := range history.Summarize(snaps) {
		fmt.Fprintf(w, "%-10s %5d %9.1f%% %12.2f %14.2f\n", st.Strategy, st.Runs, st.MeanFill*100, st.BestValue, st.MeanUnplaced)
	}
}
