package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/engine/report"
	"github.com/DrSkyle/cargoload/pkg/manifest"
	"github.com/DrSkyle/cargoload/pkg/storage"
	ui "github.com/DrSkyle/cargoload/pkg/tui"
)

var (
	runStrategy string
	runOut      string
	runFormats  []string
	runBox      containerFlags
)

var runCmd = &cobra.Command{
	Use:   "run <manifest>",
	Short: "Plan a load and export the result",
	Long: `Loads items from a manifest (.xlsx, .csv, .yaml, .hcl), places them
into the container and writes the requested reports.

Formats: table, csv, json, xlsx, html. Every format except table is written
to --out, which may be a local directory or s3://bucket/prefix.

Example:
  cargoload run items.xlsx -L 12 -W 2.4 -H 2.6 --strategy valuemax
  cargoload run job.hcl --format table,xlsx --out ./plans`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		box, err := runBox.resolve(cmd, job.Container)
		if err != nil {
			return err
		}

		e, err := newEngine(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		res, runErr := e.Run(cmd.Context(), job.Items, box, pickStrategy(cmd, runStrategy, job))
		if res == nil {
			return runErr
		}

		formats := runFormats
		if !cmd.Flags().Changed("format") {
			formats = cfg.Output.Formats
		}
		out := runOut
		if !cmd.Flags().Changed("out") {
			out = cfg.Output.Dir
		}

		if err := writeReports(cmd, e, res, formats, out); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "Strategy key (id, quantity, volume, value, valuemax)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Output directory or s3://bucket/prefix")
	runCmd.Flags().StringSliceVarP(&runFormats, "format", "f", nil, "Comma-separated output formats")
	runBox.register(runCmd)
}

func writeReports(cmd *cobra.Command, e *engine.Engine, res *engine.Result, formats []string, out string) error {
	var files []string
	for _, f := range formats {
		switch f = strings.ToLower(strings.TrimSpace(f)); f {
		case "":
		case "table":
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderTable(res))
		default:
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil
	}

	if !strings.HasPrefix(out, "s3://") {
		paths, err := report.GenerateAll(res, out, files)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "[SUCCESS] %s\n", p)
		}
		return nil
	}

	tmp, err := os.MkdirTemp("", "cargoload-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	if _, err := report.GenerateAll(res, tmp, files); err != nil {
		return err
	}
	store, prefix, err := storage.Open(cmd.Context(), out)
	if err != nil {
		return err
	}
	n, err := e.UploadArtifacts(cmd.Context(), tmp, store, prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[SUCCESS] Uploaded %d report(s) to %s\n", n, out)
	return nil
}
