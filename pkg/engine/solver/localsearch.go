package solver

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// searchStats counts the re-packs a local search spent per move kind.
type searchStats struct {
	iterations  int
	evaluations int
	swaps       int
	backfills   int
}

// localSearch hill-climbs over loading orders starting from start. Each
// iteration first tries, during the first half of the iteration budget, to
// replace the lowest-density loaded item with a greedy backfill of denser
// unloaded items, then sweeps pairwise swaps. Every move is re-packed before
// it is judged, and only strict improvements are accepted.
func (opt *Optimizer) localSearch(ctx context.Context, start *Plan, box tetris.Container, byID map[int]*tetris.Cylinder) (*Plan, searchStats, error) {
	ctx, span := opt.Tracer.Start(ctx, "Optimizer.localSearch")
	defer span.End()

	current := start
	var stats searchStats

	// try re-packs order and reports false once the evaluation budget is spent.
	try := func(order []int) (*Plan, bool) {
		if stats.evaluations >= opt.MaxEvaluations {
			return nil, false
		}
		stats.evaluations++
		return opt.evaluate(ctx, candidate{name: "local-search", order: order, tuning: current.Tuning}, box, byID), true
	}

search:
	for stats.iterations < opt.MaxIterations {
		stats.iterations++
		improved := false

		if stats.iterations <= (opt.MaxIterations+1)/2 {
			if order := opt.backfill(current, byID); order != nil {
				p, ok := try(order)
				if !ok {
					break search
				}
				stats.backfills++
				if p.TotalValue > current.TotalValue {
					current = p
					improved = true
				}
			}
		}

		n := len(current.Order)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if err := ctx.Err(); err != nil {
					return nil, stats, err
				}
				a, b := byID[current.Order[i]], byID[current.Order[j]]
				if interchangeable(a, b) {
					continue
				}
				order := append([]int(nil), current.Order...)
				order[i], order[j] = order[j], order[i]
				p, ok := try(order)
				if !ok {
					break search
				}
				stats.swaps++
				if p.TotalValue > current.TotalValue {
					current = p
					improved = true
				}
			}
		}

		if !improved {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("iterations", stats.iterations),
		attribute.Int("evaluations", stats.evaluations),
		attribute.Int("swaps", stats.swaps),
		attribute.Int("backfills", stats.backfills),
		attribute.Float64("total_value", current.TotalValue),
	)
	return current, stats, nil
}

// backfill proposes an order that drops the lowest-density loaded item and
// promotes the densest unloaded items whose combined volume stays within
// BackfillSlack times the freed volume. It returns nil when the promoted
// items are worth no more than the dropped one.
func (opt *Optimizer) backfill(plan *Plan, byID map[int]*tetris.Cylinder) []int {
	if len(plan.Layout.Placed) == 0 {
		return nil
	}

	loaded := make(map[int]bool, len(plan.Layout.Placed))
	for _, p := range plan.Layout.Placed {
		loaded[p.ID] = true
	}

	var kept, waiting []*tetris.Cylinder
	for _, id := range plan.Order {
		if loaded[id] {
			kept = append(kept, byID[id])
		} else {
			waiting = append(waiting, byID[id])
		}
	}
	if len(waiting) == 0 {
		return nil
	}

	lowest := 0
	for i, c := range kept {
		if c.Density() < kept[lowest].Density() {
			lowest = i
		}
	}
	removed := kept[lowest]
	kept = append(kept[:lowest:lowest], kept[lowest+1:]...)

	ranked := append([]*tetris.Cylinder(nil), waiting...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Density() > ranked[j].Density() })

	budget := removed.Volume() * opt.BackfillSlack
	used, gained := 0.0, 0.0
	promoted := make(map[int]bool)
	var added []*tetris.Cylinder
	for _, c := range ranked {
		if used+c.Volume() <= budget {
			used += c.Volume()
			gained += c.Value
			promoted[c.ID] = true
			added = append(added, c)
		}
	}
	if gained <= removed.Value {
		return nil
	}

	order := make([]int, 0, len(plan.Order))
	order = append(order, idsOf(kept)...)
	order = append(order, idsOf(added)...)
	for _, c := range waiting {
		if !promoted[c.ID] {
			order = append(order, c.ID)
		}
	}
	return append(order, removed.ID)
}

// interchangeable reports whether swapping a and b cannot change the outcome.
func interchangeable(a, b *tetris.Cylinder) bool {
	return a.Radius == b.Radius && a.Height == b.Height && a.Value == b.Value
}
