package tetris

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertValidPacking checks containment and pairwise separation of every placed
// cylinder, and the exact sentinel for every unplaced one.
func assertValidPacking(t *testing.T, items []*Cylinder, box Container) {
	t.Helper()
	var placed []*Cylinder
	for _, c := range items {
		if c.Placed() {
			assert.Truef(t, FitsIn(c, box), "cylinder %d at (%g,%g,%g) outside container", c.ID, c.X, c.Y, c.Z)
			placed = append(placed, c)
			continue
		}
		assert.Truef(t, c.IsUnplaced(), "cylinder %d has non-sentinel position (%g,%g,%g)", c.ID, c.X, c.Y, c.Z)
	}
	for i, a := range placed {
		assert.Falsef(t, Overlaps(a, placed[i+1:]), "cylinder %d overlaps a later cylinder", a.ID)
	}
}

func TestFitsIn(t *testing.T) {
	box := Container{Length: 10, Width: 8, Height: 5}
	tests := []struct {
		name string
		c    Cylinder
		want bool
	}{
		{"corner", Cylinder{Radius: 1, Height: 1, X: 1, Y: 1, Z: 0}, true},
		{"flush far corner", Cylinder{Radius: 1, Height: 5, X: 9, Y: 7, Z: 0}, true},
		{"crosses x=0", Cylinder{Radius: 1, Height: 1, X: 0.5, Y: 1, Z: 0}, false},
		{"crosses width", Cylinder{Radius: 1, Height: 1, X: 5, Y: 7.5, Z: 0}, false},
		{"pokes through lid", Cylinder{Radius: 1, Height: 2, X: 5, Y: 4, Z: 3.5}, false},
		{"below floor", Cylinder{Radius: 1, Height: 1, X: 5, Y: 4, Z: -0.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			assert.Equal(t, tt.want, FitsIn(&c, box))
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := &Cylinder{ID: 1, Radius: 1, Height: 2, X: 5, Y: 5, Z: 0}

	tests := []struct {
		name string
		c    Cylinder
		want bool
	}{
		{"same spot", Cylinder{Radius: 1, Height: 1, X: 5, Y: 5, Z: 0}, true},
		{"resting on top", Cylinder{Radius: 1, Height: 1, X: 5, Y: 5, Z: 2}, false},
		{"sunk into top", Cylinder{Radius: 1, Height: 1, X: 5, Y: 5, Z: 1.9}, true},
		{"touching sides", Cylinder{Radius: 1, Height: 1, X: 7, Y: 5, Z: 0}, false},
		{"sides intersect", Cylinder{Radius: 1, Height: 1, X: 6.9, Y: 5, Z: 0}, true},
		{"diagonal clear", Cylinder{Radius: 0.5, Height: 1, X: 6.1, Y: 6.1, Z: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			assert.Equal(t, tt.want, Overlaps(&c, []*Cylinder{base}))
		})
	}

	assert.False(t, Overlaps(base, []*Cylinder{base}), "a cylinder never overlaps itself")
}

func TestValidate(t *testing.T) {
	inf, nan := math.Inf(1), math.NaN()

	boxes := []struct {
		name string
		box  Container
		ok   bool
	}{
		{"regular", Container{Length: 12, Width: 2.4, Height: 2.6}, true},
		{"zero", Container{Length: 0, Width: 1, Height: 1}, false},
		{"negative", Container{Length: 1, Width: -1, Height: 1}, false},
		{"infinite", Container{Length: inf, Width: 10, Height: 10}, false},
		{"NaN", Container{Length: 10, Width: 10, Height: nan}, false},
	}
	for _, tt := range boxes {
		t.Run("container "+tt.name, func(t *testing.T) {
			if tt.ok {
				assert.NoError(t, tt.box.Validate())
			} else {
				assert.ErrorIs(t, tt.box.Validate(), ErrInvalidContainer)
			}
		})
	}

	items := []struct {
		name string
		c    *Cylinder
		ok   bool
	}{
		{"regular", NewCylinder(1, 1, 1, 0), true},
		{"negative value", NewCylinder(1, 1, 1, -1), false},
		{"infinite radius", NewCylinder(1, inf, 1, 1), false},
		{"NaN radius", NewCylinder(1, nan, 1, 1), false},
		{"infinite height", NewCylinder(1, 1, inf, 1), false},
		{"infinite value", NewCylinder(1, 1, 1, inf), false},
		{"NaN value", NewCylinder(1, 1, 1, nan), false},
	}
	for _, tt := range items {
		t.Run("item "+tt.name, func(t *testing.T) {
			if tt.ok {
				assert.NoError(t, tt.c.Validate())
			} else {
				assert.ErrorIs(t, tt.c.Validate(), ErrInvalidItem)
			}
		})
	}
}

func TestUnplacedSentinel(t *testing.T) {
	c := NewCylinder(7, 1.5, 2, 10)
	assert.Equal(t, -1.5, c.X)
	assert.Equal(t, -1.5, c.Y)
	assert.Equal(t, -2.0, c.Z)
	assert.True(t, c.IsUnplaced())
	assert.False(t, c.Placed())

	c.X, c.Y, c.Z = 3, 3, 0
	assert.True(t, c.Placed())
	c.MarkUnplaced()
	assert.True(t, c.IsUnplaced())
}

func TestLayout_PlaceTwoOnFloor(t *testing.T) {
	box := Container{Length: 10, Width: 10, Height: 10}
	layout := NewLayout(box, DefaultSearchParams())

	a := NewCylinder(1, 1, 1, 0)
	b := NewCylinder(2, 1, 1, 0)
	require.True(t, layout.Place(a, Tuning{}))
	require.True(t, layout.Place(b, Tuning{}))

	assert.Equal(t, 0.0, a.Z)
	assert.Equal(t, 0.0, b.Z)
	assert.Equal(t, 1.0, a.X)
	assert.Equal(t, 1.0, a.Y)
	// Step is 0.5: the first clear point along y is 2 radii away.
	assert.Equal(t, 1.0, b.X)
	assert.InDelta(t, 3.0, b.Y, 1e-9)
	assertValidPacking(t, []*Cylinder{a, b}, box)
}

func TestLayout_PlaceStacksOnTopFace(t *testing.T) {
	box := Container{Length: 2, Width: 2, Height: 2}
	layout := NewLayout(box, DefaultSearchParams())

	a := NewCylinder(1, 1, 1, 0)
	b := NewCylinder(2, 1, 1, 0)
	c := NewCylinder(3, 1, 1, 0)
	require.True(t, layout.Place(a, Tuning{}))
	require.True(t, layout.Place(b, Tuning{}))
	assert.Equal(t, 1.0, b.Z)

	assert.False(t, layout.Place(c, Tuning{}))
	assert.True(t, c.IsUnplaced())
	assert.Len(t, layout.Placed, 2)
}

func TestLayout_LevelsDeduplicated(t *testing.T) {
	layout := NewLayout(Container{Length: 10, Width: 10, Height: 10}, DefaultSearchParams())
	layout.Placed = []*Cylinder{
		{Radius: 1, Height: 2, Z: 0},
		{Radius: 1, Height: 2, Z: 0},
		{Radius: 1, Height: 1, Z: 2},
		{Radius: 1, Height: 0.5, Z: 0},
	}
	assert.Equal(t, []float64{0, 0.5, 2, 3}, layout.levels())
}

func TestLayout_PointOrder(t *testing.T) {
	layout := NewLayout(Container{Length: 4, Width: 4, Height: 1}, DefaultSearchParams())

	gen := layout.points(1, 0.5, OrderGenerated)
	require.Len(t, gen, 25)
	assert.Equal(t, point{1, 1}, gen[0])
	assert.Equal(t, point{1, 1.5}, gen[1])

	near := layout.points(1, 0.5, OrderNearOrigin)
	assert.Equal(t, point{1, 1}, near[0])
	// Equal distances keep generation order.
	assert.Equal(t, point{1, 1.5}, near[1])
	assert.Equal(t, point{1.5, 1}, near[2])
	assert.Equal(t, point{3, 3}, near[len(near)-1])

	away := layout.points(1, 0.5, OrderAwayFromCorner)
	assert.Equal(t, point{1, 1}, away[0])
	assert.Equal(t, point{3, 3}, away[len(away)-1])
}

func TestLayout_RefineFindsMidHeight(t *testing.T) {
	box := Container{Length: 2, Width: 2, Height: 3}
	layout := NewLayout(box, DefaultSearchParams())
	layout.Placed = []*Cylinder{{ID: 1, Radius: 1, Height: 1, X: 1, Y: 1, Z: 0}}

	c := NewCylinder(2, 1, 1, 0)
	require.True(t, layout.Refine(c, Tuning{}))
	assert.Equal(t, 1.0, c.Z)
	assert.Len(t, layout.Placed, 2)

	d := NewCylinder(3, 1, 1.5, 0)
	assert.False(t, layout.Refine(d, Tuning{}))
	assert.True(t, d.IsUnplaced())
	assert.Len(t, layout.Placed, 2)
}

func TestPacker_OversizedItemUnplaced(t *testing.T) {
	tests := []struct {
		name string
		box  Container
		item *Cylinder
	}{
		{"radius exceeds half the box", Container{Length: 1, Width: 1, Height: 1}, NewCylinder(1, 1, 1, 5)},
		{"diameter exceeds length and width", Container{Length: 3, Width: 3, Height: 10}, NewCylinder(1, 1.6, 1, 5)},
		{"taller than the box", Container{Length: 10, Width: 10, Height: 1}, NewCylinder(1, 1, 1.5, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, tuning := range []Tuning{{}, {Dense: true, Order: OrderNearOrigin}, {Order: OrderAwayFromCorner}} {
				item := tt.item.Fresh()
				layout := NewPacker(DefaultSearchParams()).Pack([]*Cylinder{item}, tt.box, tuning)
				assert.Empty(t, layout.Placed)
				assert.True(t, item.IsUnplaced())
			}
		})
	}
}

func TestPacker_RandomLoadIsValid(t *testing.T) {
	box := Container{Length: 10, Width: 10, Height: 4}
	rng := rand.New(rand.NewSource(42))

	makeItems := func() []*Cylinder {
		rng.Seed(42)
		items := make([]*Cylinder, 40)
		for i := range items {
			items[i] = NewCylinder(i+1, 0.5+rng.Float64(), 0.5+rng.Float64()*1.5, float64(rng.Intn(100)))
		}
		return items
	}

	for _, tuning := range []Tuning{{}, {Dense: true, Order: OrderNearOrigin}, {Order: OrderAwayFromCorner}} {
		t.Run(tuning.Order.String(), func(t *testing.T) {
			first := makeItems()
			layout := NewPacker(DefaultSearchParams()).Pack(first, box, tuning)
			require.NotEmpty(t, layout.Placed)
			assertValidPacking(t, first, box)

			second := makeItems()
			again := NewPacker(DefaultSearchParams()).Pack(second, box, tuning)
			assert.Equal(t, len(layout.Placed), len(again.Placed), "placement count must be deterministic")
		})
	}
}
