package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DrSkyle/cargoload/pkg/config"
	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/version"
)

var (
	cfgFile  string
	verbose  bool
	jsonLogs bool
	cfg      = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "cargoload",
	Short: "Cylinder container loading planner",
	Long: `CargoLoad - Container Loading Planner

Place cylindrical items into a rectangular container.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, engine.ErrPartialLoad) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.cargoload.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().Bool("strict", false, "Fail when any item is left unloaded")
	rootCmd.PersistentFlags().String("rules", "", "YAML file of admission rules")
	rootCmd.PersistentFlags().Bool("no-telemetry", false, "Disable tracing")
	rootCmd.PersistentFlags().String("otel-endpoint", "", "OTLP HTTP endpoint for traces")

	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	_ = viper.BindPFlag("rules_file", rootCmd.PersistentFlags().Lookup("rules"))
	_ = viper.BindPFlag("telemetry.disabled", rootCmd.PersistentFlags().Lookup("no-telemetry"))
	_ = viper.BindPFlag("telemetry.endpoint", rootCmd.PersistentFlags().Lookup("otel-endpoint"))

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd.OutOrStdout(), cmd)
	})

	rootCmd.AddCommand(runCmd, strategiesCmd, serveCmd, historyCmd, viewCmd)
}

// loadConfig layers defaults, the config file, CARGOLOAD_* env vars and flags into cfg.
func loadConfig(cmd *cobra.Command) error {
	v := viper.GetViper()
	setDefaults(v, config.Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".cargoload.yaml"))
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CARGOLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if cfgFile != "" || !missing {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("rules_file", d.RulesFile)

	v.SetDefault("search.grid_factor", d.Search.GridFactor)
	v.SetDefault("search.dense_grid_factor", d.Search.DenseGridFactor)
	v.SetDefault("search.refined_factor", d.Search.RefinedFactor)
	v.SetDefault("search.dense_refined_factor", d.Search.DenseRefinedFactor)
	v.SetDefault("search.min_step", d.Search.MinStep)
	v.SetDefault("search.max_z_step", d.Search.MaxZStep)

	v.SetDefault("optimizer.max_iterations", d.Optimizer.MaxIterations)
	v.SetDefault("optimizer.max_evaluations", d.Optimizer.MaxEvaluations)
	v.SetDefault("optimizer.backfill_slack", d.Optimizer.BackfillSlack)
	v.SetDefault("optimizer.parallel", d.Optimizer.Parallel)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.result_prefix", d.Server.ResultPrefix)
	v.SetDefault("server.store", d.Server.Store)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.formats", d.Output.Formats)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.url", d.History.URL)
	v.SetDefault("history.path", d.History.Path)

	v.SetDefault("telemetry.disabled", d.Telemetry.Disabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func renderHelp(w io.Writer, cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("CARGOLOAD %s", version.Current)))
	fmt.Fprintln(w, "Cylinder container loading planner.")

	fmt.Fprintln(w, titleStyle.Render("USAGE"))
	fmt.Fprintf(w, "  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(w, titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(w, "  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, titleStyle.Render("EXAMPLES"))
	fmt.Fprintln(w, "  cargoload run items.xlsx -L 12 -W 2.4 -H 2.6      # Table output")
	fmt.Fprintln(w, "  cargoload run job.hcl --format csv,html --out s3://bucket/plans")
	fmt.Fprintln(w, "  cargoload view job.yaml                            # Interactive browser")
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "[]" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(w, flagStyle.Render(output))
	})
	fmt.Fprintln(w)
}
