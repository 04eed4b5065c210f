package engine

import (
	"sort"
	"time"

	"github.com/DrSkyle/cargoload/pkg/engine/history"
	"github.com/DrSkyle/cargoload/pkg/engine/strategy"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// Result is the outcome of one loading run.
type Result struct {
	Items     []*tetris.Cylinder `json:"cylinders"`
	Container tetris.Container   `json:"container"`

	StrategyKey string `json:"strategyKey"`
	Strategy    string `json:"strategy"`
	// Source names the ordering the optimizer settled on. Equals StrategyKey otherwise.
	Source string `json:"source,omitempty"`

	TotalCount    int     `json:"totalCount"`
	PlacedCount   int     `json:"placedCount"`
	UnplacedCount int     `json:"unplacedCount"`
	ExcludedCount int     `json:"excludedCount"`
	TotalValue    float64 `json:"totalValue"`
	UsedVolume    float64 `json:"usedVolume"`
	FillRatio     float64 `json:"fillRatio"`

	Duration time.Duration `json:"-"`
}

func newResult(items []*tetris.Cylinder, box tetris.Container, s strategy.Strategy, source string, d time.Duration) *Result {
	r := &Result{
		Items:       items,
		Container:   box,
		StrategyKey: string(s.Key),
		Strategy:    s.Name,
		Source:      source,
		TotalCount:  len(items),
		Duration:    d,
	}
	for _, c := range items {
		if c.Placed() {
			r.PlacedCount++
			r.TotalValue += c.Value
			r.UsedVolume += c.Volume()
		} else {
			r.UnplacedCount++
		}
	}
	if v := box.Volume(); v > 0 {
		r.FillRatio = r.UsedVolume / v
	}
	return r
}

// Placed returns the loaded items in result order.
func (r *Result) Placed() []*tetris.Cylinder {
	var out []*tetris.Cylinder
	for _, c := range r.Items {
		if c.Placed() {
			out = append(out, c)
		}
	}
	return out
}

// Unplaced returns the items left outside the container.
func (r *Result) Unplaced() []*tetris.Cylinder {
	var out []*tetris.Cylinder
	for _, c := range r.Items {
		if !c.Placed() {
			out = append(out, c)
		}
	}
	return out
}

// Levels returns the distinct base heights of loaded items, ascending.
func (r *Result) Levels() []float64 {
	seen := make(map[float64]bool)
	var levels []float64
	for _, c := range r.Items {
		if c.Placed() && !seen[c.Z] {
			seen[c.Z] = true
			levels = append(levels, c.Z)
		}
	}
	sort.Float64s(levels)
	return levels
}

// AtLevel returns the loaded items whose base sits at z.
func (r *Result) AtLevel(z float64) []*tetris.Cylinder {
	var out []*tetris.Cylinder
	for _, c := range r.Items {
		if c.Placed() && c.Z == z {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot summarizes the result for the history ledger.
func (r *Result) Snapshot(at time.Time) history.Snapshot {
	return history.Snapshot{
		Timestamp:     at.Unix(),
		Strategy:      r.StrategyKey,
		Source:        r.Source,
		TotalCount:    r.TotalCount,
		PlacedCount:   r.PlacedCount,
		UnplacedCount: r.UnplacedCount,
		TotalValue:    r.TotalValue,
		FillRatio:     r.FillRatio,
		DurationMs:    float64(r.Duration.Microseconds()) / 1000,
	}
}
