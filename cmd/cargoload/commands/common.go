package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/engine/history"
	"github.com/DrSkyle/cargoload/pkg/engine/policy"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
	"github.com/DrSkyle/cargoload/pkg/manifest"
)

// newEngine builds an engine from the loaded configuration, logging to w.
func newEngine(ctx context.Context, w io.Writer) (*engine.Engine, error) {
	logger := newLogger(w)

	ec := engine.DefaultConfig()
	ec.Search = cfg.Search
	ec.Optimizer = cfg.Optimizer
	ec.Strict = cfg.Strict
	ec.SkipTelemetry = cfg.Telemetry.Disabled
	ec.OtelEndpoint = cfg.Telemetry.Endpoint
	ec.Logger = logger

	if cfg.RulesFile != "" {
		rules, err := policy.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		ec.Rules = rules
	}

	opts := []engine.Option{engine.WithConfig(ec)}
	if cfg.History.Enabled {
		client, err := historyClient(ctx)
		if err != nil {
			logger.Warn("History disabled", "error", err)
		} else {
			opts = append(opts, engine.WithHistory(client))
		}
	}
	return engine.New(ctx, opts...)
}

func historyClient(ctx context.Context) (*history.Client, error) {
	if strings.HasPrefix(cfg.History.URL, "s3://") {
		backend, err := history.NewS3Backend(ctx, cfg.History.URL)
		if err != nil {
			return nil, err
		}
		return history.NewClient(backend), nil
	}
	if cfg.History.Path != "" {
		return history.NewClient(history.NewLocalBackend(cfg.History.Path)), nil
	}
	return history.NewClient(nil), nil
}

// containerFlags holds --length/--width/--height.
type containerFlags struct {
	length, width, height float64
}

func (f *containerFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.length, "length", "L", 0, "Container length")
	cmd.Flags().Float64VarP(&f.width, "width", "W", 0, "Container width")
	cmd.Flags().Float64VarP(&f.height, "height", "H", 0, "Container height")
}

// resolve overlays flags that were set onto the manifest container.
func (f *containerFlags) resolve(cmd *cobra.Command, fromJob *tetris.Container) (tetris.Container, error) {
	var box tetris.Container
	if fromJob != nil {
		box = *fromJob
	}
	if cmd.Flags().Changed("length") {
		box.Length = f.length
	}
	if cmd.Flags().Changed("width") {
		box.Width = f.width
	}
	if cmd.Flags().Changed("height") {
		box.Height = f.height
	}
	if err := box.Validate(); err != nil {
		return box, fmt.Errorf("%w (set --length, --width and --height or a container block in the manifest)", err)
	}
	return box, nil
}

// pickStrategy prefers the flag, then the manifest, then configuration.
func pickStrategy(cmd *cobra.Command, flagValue string, job *manifest.Job) string {
	if cmd.Flags().Changed("strategy") {
		return flagValue
	}
	if job.Strategy != "" {
		return job.Strategy
	}
	return cfg.Strategy
}
