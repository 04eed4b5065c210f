package tetris

import (
	"math"
	"sort"
)

// SearchParams controls grid resolution for both placement passes.
type SearchParams struct {
	GridFactor         float64 // first pass, regular grid
	DenseGridFactor    float64 // first pass, Tuning.Dense
	RefinedFactor      float64 // refined pass, regular grid
	DenseRefinedFactor float64 // refined pass, Tuning.Dense
	MinStep            float64
	MaxZStep           float64
}

// DefaultSearchParams returns the standard grid resolution.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		GridFactor:         20,
		DenseGridFactor:    40,
		RefinedFactor:      50,
		DenseRefinedFactor: 80,
		MinStep:            0.05,
		MaxZStep:           0.5,
	}
}

type point struct {
	x, y float64
}

// Layout is the set of cylinders placed so far in one run.
// It is owned by a single run and must not be shared across goroutines.
type Layout struct {
	Container Container
	Placed    []*Cylinder

	params SearchParams
}

// NewLayout returns an empty layout for the container.
func NewLayout(box Container, params SearchParams) *Layout {
	return &Layout{Container: box, params: params}
}

// TotalValue sums the value of every placed cylinder.
func (l *Layout) TotalValue() float64 {
	total := 0.0
	for _, c := range l.Placed {
		total += c.Value
	}
	return total
}

// UsedVolume sums the volume of every placed cylinder.
func (l *Layout) UsedVolume() float64 {
	total := 0.0
	for _, c := range l.Placed {
		total += c.Volume()
	}
	return total
}

// Place runs the first-pass grid search. Candidate heights are the floor and
// the top face of every placed cylinder. On success the cylinder is appended
// to the layout; on failure it is moved to the unplaced sentinel.
func (l *Layout) Place(c *Cylinder, t Tuning) bool {
	factor := l.params.GridFactor
	if t.Dense {
		factor = l.params.DenseGridFactor
	}
	step := l.step(factor, c.Radius)
	points := l.points(c.Radius, step, t.Order)

	for _, z := range l.levels() {
		for _, p := range points {
			c.X, c.Y, c.Z = p.x, p.y, z
			if FitsIn(c, l.Container) && !Overlaps(c, l.Placed) {
				l.Placed = append(l.Placed, c)
				return true
			}
		}
	}

	c.MarkUnplaced()
	return false
}

// Refine runs the dense 3-D grid search used for cylinders the first pass
// could not place. Points are tried by ascending Z, then by the tuning order.
func (l *Layout) Refine(c *Cylinder, t Tuning) bool {
	factor := l.params.RefinedFactor
	if t.Dense {
		factor = l.params.DenseRefinedFactor
	}
	step := l.step(factor, c.Radius/2)
	zStep := math.Min(c.Height/2, l.params.MaxZStep)
	if zStep <= 0 {
		c.MarkUnplaced()
		return false
	}
	points := l.points(c.Radius, step, t.Order)

	for z := 0.0; z <= l.Container.Height-c.Height; z += zStep {
		for _, p := range points {
			c.X, c.Y, c.Z = p.x, p.y, z
			if FitsIn(c, l.Container) && !Overlaps(c, l.Placed) {
				l.Placed = append(l.Placed, c)
				return true
			}
		}
	}

	c.MarkUnplaced()
	return false
}

// step clamps min(length, width)/factor into [MinStep, ceiling].
func (l *Layout) step(factor, ceiling float64) float64 {
	s := math.Min(l.Container.Length, l.Container.Width) / factor
	return math.Max(l.params.MinStep, math.Min(s, ceiling))
}

// levels returns the floor plus every distinct top face, ascending.
func (l *Layout) levels() []float64 {
	levels := []float64{0}
	seen := map[float64]bool{0: true}
	for _, p := range l.Placed {
		top := p.Top()
		if !seen[top] {
			seen[top] = true
			levels = append(levels, top)
		}
	}
	sort.Float64s(levels)
	return levels
}

// points enumerates grid centers x in [r, L-r], y in [r, W-r] in x-major
// order, then applies the preferred ordering with a stable sort.
func (l *Layout) points(radius, step float64, order PointOrder) []point {
	if step <= 0 {
		return nil
	}
	var pts []point
	for x := radius; x <= l.Container.Length-radius; x += step {
		for y := radius; y <= l.Container.Width-radius; y += step {
			pts = append(pts, point{x, y})
		}
	}

	var key func(p point) float64
	switch order {
	case OrderNearOrigin:
		key = func(p point) float64 {
			return math.Sqrt(p.x*p.x + p.y*p.y)
		}
	case OrderAwayFromCorner:
		key = func(p point) float64 {
			dx := l.Container.Length - p.x
			dy := l.Container.Width - p.y
			return -math.Sqrt(dx*dx + dy*dy)
		}
	default:
		return pts
	}

	keys := make([]float64, len(pts))
	for i, p := range pts {
		keys[i] = key(p)
	}
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return keys[idx[i]] < keys[idx[j]]
	})
	sorted := make([]point, len(pts))
	for i, k := range idx {
		sorted[i] = pts[k]
	}
	return sorted
}

// Packer runs the two-pass placement pipeline for one ordering.
type Packer struct {
	Params SearchParams
}

func NewPacker(params SearchParams) *Packer {
	return &Packer{Params: params}
}

// Pack places items in the given order with the grid search, then retries
// every failure once with the refined search against the placed set.
func (p *Packer) Pack(items []*Cylinder, box Container, t Tuning) *Layout {
	layout := NewLayout(box, p.Params)

	var pending []*Cylinder
	for _, item := range items {
		if !layout.Place(item, t) {
			pending = append(pending, item)
		}
	}

	for _, item := range pending {
		layout.Refine(item, t)
	}

	return layout
}
