package solver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/DrSkyle/cargoload/pkg/config"
	"github.com/DrSkyle/cargoload/pkg/engine/strategy"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// Plan is one evaluated loading order.
type Plan struct {
	// Source names the ordering that produced the plan.
	Source     string
	Order      []int
	Tuning     tetris.Tuning
	Layout     *tetris.Layout
	TotalValue float64
}

// candidate is a loading order waiting to be evaluated.
type candidate struct {
	name   string
	order  []int
	tuning tetris.Tuning
}

func (c candidate) signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%t/%d:", c.tuning.Dense, c.tuning.Order)
	for _, id := range c.order {
		b.WriteString(strconv.Itoa(id))
		b.WriteByte(',')
	}
	return b.String()
}

// Optimizer searches for the loading order with the highest total placed value.
type Optimizer struct {
	Packer *tetris.Packer
	Logger *slog.Logger
	Tracer trace.Tracer

	MaxIterations  int
	MaxEvaluations int
	BackfillSlack  float64
	Parallel       bool
}

func NewOptimizer(p *tetris.Packer, cfg config.OptimizerConfig) *Optimizer {
	return &Optimizer{
		Packer:         p,
		Logger:         slog.Default(),
		Tracer:         otel.Tracer("cargoload/solver"),
		MaxIterations:  cfg.MaxIterations,
		MaxEvaluations: cfg.MaxEvaluations,
		BackfillSlack:  cfg.BackfillSlack,
		Parallel:       cfg.Parallel,
	}
}

// Solve assigns positions to items so that the total value of loaded items is
// as high as the search finds. Every item ends either placed or at the
// unplaced sentinel. Items are expected in input order; Solve derives every
// ordering it tries from that order.
func (opt *Optimizer) Solve(ctx context.Context, items []*tetris.Cylinder, box tetris.Container) (*Plan, error) {
	ctx, span := opt.Tracer.Start(ctx, "Optimizer.Solve")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(items)))

	byID := make(map[int]*tetris.Cylinder, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	seeds := opt.seeds(items)
	plans, err := opt.evaluateAll(ctx, seeds, box, byID)
	if err != nil {
		return nil, err
	}

	// Strictly greater wins; ties keep the earlier plan.
	best := plans[0]
	for _, p := range plans[1:] {
		if p.TotalValue > best.TotalValue {
			best = p
		}
	}
	opt.Logger.Debug("Seed orderings evaluated", "best", best.Source, "value", best.TotalValue)

	improved, stats, err := opt.localSearch(ctx, best, box, byID)
	if err != nil {
		return nil, err
	}
	if improved.TotalValue > best.TotalValue {
		opt.Logger.Debug("Local search improved plan", "from", best.TotalValue, "to", improved.TotalValue,
			"evaluations", stats.evaluations, "backfills", stats.backfills)
		best = improved
	}

	final := opt.apply(items, best, box)
	span.SetAttributes(
		attribute.String("source", final.Source),
		attribute.Float64("total_value", final.TotalValue),
		attribute.Int("placed", len(final.Layout.Placed)),
	)
	return final, nil
}

// seeds builds the fixed candidate orderings: the density, volume and
// quantity strategies with their own tuning, then explicit value-descending
// and density-descending orders searched with the density tuning.
func (opt *Optimizer) seeds(items []*tetris.Cylinder) []candidate {
	var out []candidate
	for _, key := range []strategy.Key{strategy.ValueMax, strategy.Volume, strategy.Quantity} {
		s := strategy.Lookup(string(key))
		sorted := append([]*tetris.Cylinder(nil), items...)
		s.Sort(sorted)
		out = append(out, candidate{name: string(key), order: idsOf(sorted), tuning: s.Tuning})
	}

	tuning := strategy.Lookup(string(strategy.ValueMax)).Tuning

	byValue := append([]*tetris.Cylinder(nil), items...)
	sort.SliceStable(byValue, func(i, j int) bool { return byValue[i].Value > byValue[j].Value })
	out = append(out, candidate{name: "value-desc", order: idsOf(byValue), tuning: tuning})

	byDensity := append([]*tetris.Cylinder(nil), items...)
	sort.SliceStable(byDensity, func(i, j int) bool { return byDensity[i].Density() > byDensity[j].Density() })
	out = append(out, candidate{name: "density-desc", order: idsOf(byDensity), tuning: tuning})

	return out
}

// evaluateAll runs every candidate on fresh copies. Results keep candidate
// order so the reduction is deterministic regardless of scheduling.
func (opt *Optimizer) evaluateAll(ctx context.Context, cands []candidate, box tetris.Container, byID map[int]*tetris.Cylinder) ([]*Plan, error) {
	plans := make([]*Plan, len(cands))

	// Identical orders with identical tuning produce identical plans.
	first := make(map[string]int, len(cands))
	var unique []int
	for i, c := range cands {
		if _, dup := first[c.signature()]; !dup {
			first[c.signature()] = i
			unique = append(unique, i)
		}
	}

	if opt.Parallel && len(unique) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, i := range unique {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				plans[i] = opt.evaluate(gctx, cands[i], box, byID)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, i := range unique {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			plans[i] = opt.evaluate(ctx, cands[i], box, byID)
		}
	}

	for i, c := range cands {
		if plans[i] == nil {
			src := plans[first[c.signature()]]
			cp := *src
			cp.Source = c.name
			plans[i] = &cp
		}
	}
	return plans, nil
}

// evaluate packs fresh unplaced copies of the items in the candidate order.
func (opt *Optimizer) evaluate(ctx context.Context, c candidate, box tetris.Container, byID map[int]*tetris.Cylinder) *Plan {
	_, span := opt.Tracer.Start(ctx, "Optimizer.evaluate", trace.WithAttributes(attribute.String("candidate", c.name)))
	defer span.End()

	copies := make([]*tetris.Cylinder, len(c.order))
	for i, id := range c.order {
		copies[i] = byID[id].Fresh()
	}
	layout := opt.Packer.Pack(copies, box, c.tuning)
	plan := &Plan{
		Source:     c.name,
		Order:      c.order,
		Tuning:     c.tuning,
		Layout:     layout,
		TotalValue: layout.TotalValue(),
	}
	span.SetAttributes(attribute.Float64("total_value", plan.TotalValue))
	opt.Logger.Debug("Candidate evaluated", "candidate", c.name, "value", plan.TotalValue, "placed", len(layout.Placed))
	return plan
}

// apply copies the plan's positions onto the original items, marks the rest
// unplaced, then gives each unplaced item one refined attempt against the
// restored layout. It only ever adds placements.
func (opt *Optimizer) apply(items []*tetris.Cylinder, plan *Plan, box tetris.Container) *Plan {
	positions := make(map[int]*tetris.Cylinder, len(plan.Layout.Placed))
	for _, p := range plan.Layout.Placed {
		positions[p.ID] = p
	}

	byID := make(map[int]*tetris.Cylinder, len(items))
	for _, it := range items {
		byID[it.ID] = it
		if p, ok := positions[it.ID]; ok {
			it.X, it.Y, it.Z = p.X, p.Y, p.Z
		} else {
			it.MarkUnplaced()
		}
	}

	layout := tetris.NewLayout(box, opt.Packer.Params)
	for _, p := range plan.Layout.Placed {
		layout.Placed = append(layout.Placed, byID[p.ID])
	}

	s := strategy.Lookup(string(strategy.ValueMax))
	pending := make([]*tetris.Cylinder, 0, len(items))
	for _, it := range items {
		if !it.Placed() {
			pending = append(pending, it)
		}
	}
	s.Sort(pending)
	for _, it := range pending {
		layout.Refine(it, s.Tuning)
	}

	return &Plan{
		Source:     plan.Source,
		Order:      plan.Order,
		Tuning:     plan.Tuning,
		Layout:     layout,
		TotalValue: layout.TotalValue(),
	}
}

func idsOf(items []*tetris.Cylinder) []int {
	ids := make([]int, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}
	return ids
}
