package commands

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/manifest"
	ui "github.com/DrSkyle/cargoload/pkg/tui"
)

var (
	viewStrategy string
	viewBox      containerFlags
)

var viewCmd = &cobra.Command{
	Use:   "view <manifest>",
	Short: "Plan a load and browse it interactively (TUI)",
	Long: `Runs the planner and opens a terminal browser over the result.

Keys: ↑/↓ move, enter details, l cycle layer filter, v level summary, q quit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		box, err := viewBox.resolve(cmd, job.Container)
		if err != nil {
			return err
		}
		key := pickStrategy(cmd, viewStrategy, job)

		// Logs would tear the TUI.
		e, err := newEngine(cmd.Context(), io.Discard)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		ctx := cmd.Context()
		model := ui.NewLoadingModel(func() (*engine.Result, error) {
			return e.Run(ctx, job.Items, box, key)
		})
		final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		return final.(ui.Model).Err()
	},
}

func init() {
	viewCmd.Flags().StringVarP(&viewStrategy, "strategy", "s", "", "Strategy key")
	viewBox.register(viewCmd)
}
