package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/cargoload/pkg/config"
	"github.com/DrSkyle/cargoload/pkg/engine/history"
	"github.com/DrSkyle/cargoload/pkg/engine/policy"
	"github.com/DrSkyle/cargoload/pkg/engine/solver"
	"github.com/DrSkyle/cargoload/pkg/engine/strategy"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
	"github.com/DrSkyle/cargoload/pkg/telemetry"
	"github.com/DrSkyle/cargoload/pkg/version"
)

// ErrPartialLoad is returned in strict mode when at least one item stays outside the container.
var ErrPartialLoad = errors.New("load completed with unplaced items")

// Config holds engine settings.
type Config struct {
	Search    config.SearchConfig
	Optimizer config.OptimizerConfig

	// Strict turns a non-zero unplaced count into ErrPartialLoad.
	Strict bool

	// Rules are compiled into the admission policy when no policy is set explicitly.
	Rules []policy.Rule

	// Telemetry config.
	OtelEndpoint  string
	SkipTelemetry bool // Set true if embedding in an app that already has OTEL

	// Seed fixes the color sequence. Zero picks a random seed.
	Seed uint64

	Logger *slog.Logger
}

// DefaultConfig returns a config with the standard search parameters.
func DefaultConfig() Config {
	return Config{
		Search:    config.DefaultSearchConfig(),
		Optimizer: config.DefaultOptimizerConfig(),
	}
}

// Engine runs loading jobs. It is safe for concurrent use; each Run owns its
// items and working layout.
type Engine struct {
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Packer    *tetris.Packer
	Optimizer *solver.Optimizer
	Policy    *policy.CELEngine
	History   *history.Client
	Metrics   *telemetry.RunMetrics

	config   Config
	shutdown telemetry.ShutdownFunc

	mu  sync.Mutex
	rng *rand.Rand
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the Engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		Tracer: telemetry.Tracer("cargoload/engine"),
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if !e.config.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, e.config.OtelEndpoint)
		if err != nil {
			e.Logger.Warn("Telemetry failed", "error", err)
		} else {
			e.shutdown = shutdown
		}
	}

	metrics, err := telemetry.NewRunMetrics(nil, "cargoload/engine")
	if err != nil {
		e.Logger.Warn("Metrics disabled", "error", err)
	}
	e.Metrics = metrics

	e.Packer = tetris.NewPacker(searchParams(e.config.Search))
	e.Optimizer = solver.NewOptimizer(e.Packer, e.config.Optimizer)
	e.Optimizer.Logger = e.Logger

	if e.Policy == nil && len(e.config.Rules) > 0 {
		p, err := policy.NewCELEngine()
		if err != nil {
			return nil, err
		}
		if err := p.Compile(e.config.Rules); err != nil {
			return nil, fmt.Errorf("invalid admission rules: %w", err)
		}
		p.Logger = e.Logger
		e.Policy = p
	}

	seed := e.config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	e.rng = rand.New(rand.NewPCG(seed, seed>>1|1))

	return e, nil
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithConfig sets raw config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
		if cfg.Logger != nil {
			e.Logger = cfg.Logger
		}
	}
}

// WithPolicy sets a compiled admission policy.
func WithPolicy(p *policy.CELEngine) Option {
	return func(e *Engine) {
		e.Policy = p
	}
}

// WithHistory records a snapshot of every run.
func WithHistory(c *history.Client) Option {
	return func(e *Engine) {
		e.History = c
	}
}

// Close flushes telemetry.
func (e *Engine) Close(ctx context.Context) error {
	if e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

// Run loads items into box using the strategy named by key. Unknown keys
// fall back to the volume strategy. Every item ends either placed or at the
// unplaced sentinel; a partial load is reported in the result, not as an
// error, unless the engine is in strict mode.
func (e *Engine) Run(ctx context.Context, items []*tetris.Cylinder, box tetris.Container, key string) (res *Result, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Run")
	defer span.End()

	defer e.recoverPanic(span, &err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := box.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(items))
	for _, c := range items {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", tetris.ErrInvalidItem, c.ID)
		}
		seen[c.ID] = true
	}

	start := time.Now()
	s := strategy.Lookup(key)
	if _, ok := strategy.Resolve(key); !ok {
		e.Logger.Warn("Unknown strategy, using default", "requested", key, "strategy", s.Key)
	}
	span.SetAttributes(
		attribute.String("strategy", string(s.Key)),
		attribute.Int("items", len(items)),
	)

	admitted, excluded := items, []*tetris.Cylinder(nil)
	if e.Policy != nil && e.Policy.Len() > 0 {
		admitted, excluded = e.Policy.Admit(ctx, items, e.Logger)
	}
	for _, c := range excluded {
		c.MarkUnplaced()
	}
	e.paint(items)

	source := string(s.Key)
	if s.Key == strategy.ValueMax {
		plan, err := e.Optimizer.Solve(ctx, admitted, box)
		if err != nil {
			return nil, err
		}
		source = plan.Source
		s.Sort(admitted)
	} else {
		s.Sort(admitted)
		e.Packer.Pack(admitted, box, s.Tuning)
	}

	ordered := make([]*tetris.Cylinder, 0, len(items))
	ordered = append(ordered, admitted...)
	ordered = append(ordered, excluded...)
	res = newResult(ordered, box, s, source, time.Since(start))
	res.ExcludedCount = len(excluded)

	if res.UnplacedCount > 0 {
		e.Logger.Warn("Items could not be loaded", "strategy", s.Name, "unplaced", res.UnplacedCount, "total", res.TotalCount)
	}
	e.Logger.Info("Loading complete",
		"strategy", s.Key,
		"source", source,
		"placed", res.PlacedCount,
		"unplaced", res.UnplacedCount,
		"total_value", res.TotalValue,
		"fill_ratio", res.FillRatio,
	)

	span.SetAttributes(
		attribute.Int("placed", res.PlacedCount),
		attribute.Int("unplaced", res.UnplacedCount),
		attribute.Float64("total_value", res.TotalValue),
	)
	e.Metrics.Record(ctx, string(s.Key), res.PlacedCount, res.UnplacedCount, float64(res.Duration.Microseconds())/1000)

	if e.History != nil {
		if err := e.History.Append(ctx, res.Snapshot(time.Now())); err != nil {
			e.Logger.Warn("Failed to record history", "error", err)
		}
	}

	if e.config.Strict && res.UnplacedCount > 0 {
		span.SetStatus(codes.Error, "partial load")
		return res, fmt.Errorf("%w: %d of %d items", ErrPartialLoad, res.UnplacedCount, res.TotalCount)
	}
	return res, nil
}

// paint assigns every item a random #RRGGBB color tag.
func (e *Engine) paint(items []*tetris.Cylinder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range items {
		c.Color = fmt.Sprintf("#%02X%02X%02X", e.rng.IntN(256), e.rng.IntN(256), e.rng.IntN(256))
	}
}

// recoverPanic converts a panic inside Run into an error.
func (e *Engine) recoverPanic(span trace.Span, err *error) {
	if r := recover(); r != nil {
		stack := debug.Stack()
		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "panic")
		e.Logger.Error("Engine panic", "error", r, "stack", string(stack))
		*err = fmt.Errorf("engine panic: %v", r)
	}
}

func searchParams(c config.SearchConfig) tetris.SearchParams {
	p := tetris.DefaultSearchParams()
	if c.GridFactor > 0 {
		p.GridFactor = c.GridFactor
	}
	if c.DenseGridFactor > 0 {
		p.DenseGridFactor = c.DenseGridFactor
	}
	if c.RefinedFactor > 0 {
		p.RefinedFactor = c.RefinedFactor
	}
	if c.DenseRefinedFactor > 0 {
		p.DenseRefinedFactor = c.DenseRefinedFactor
	}
	if c.MinStep > 0 {
		p.MinStep = c.MinStep
	}
	if c.MaxZStep > 0 {
		p.MaxZStep = c.MaxZStep
	}
	return p
}
