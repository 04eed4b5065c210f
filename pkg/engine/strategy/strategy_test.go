package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

func ids(items []*tetris.Cylinder) []int {
	out := make([]int, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func sample() []*tetris.Cylinder {
	return []*tetris.Cylinder{
		tetris.NewCylinder(3, 1, 1, 30),   // volume pi,   density 9.5
		tetris.NewCylinder(1, 2, 1, 30),   // volume 4pi,  density 2.4
		tetris.NewCylinder(4, 0.5, 2, 5),  // volume pi/2, density 3.2
		tetris.NewCylinder(2, 1, 1, 100),  // volume pi,   density 31.8
		tetris.NewCylinder(5, 1, 4, 0),    // volume 4pi,  density 0
	}
}

func TestStrategyOrders(t *testing.T) {
	tests := []struct {
		key  Key
		want []int
	}{
		{ID, []int{1, 2, 3, 4, 5}},
		// Equal volumes keep input order: 3 before 2, 1 before 5.
		{Quantity, []int{4, 3, 2, 1, 5}},
		{Volume, []int{1, 5, 3, 2, 4}},
		{Value, []int{2, 3, 1, 4, 5}},
		{ValueMax, []int{2, 3, 4, 1, 5}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			s, ok := Resolve(string(tt.key))
			require.True(t, ok)
			items := sample()
			s.Sort(items)
			assert.Equal(t, tt.want, ids(items))
		})
	}
}

func TestSortLeavesAttributesAlone(t *testing.T) {
	items := sample()
	before := map[int]tetris.Cylinder{}
	for _, c := range items {
		before[c.ID] = *c
	}
	for _, s := range All() {
		s.Sort(items)
		for _, c := range items {
			assert.Equal(t, before[c.ID], *c)
		}
	}
}

func TestLookupFallsBackToVolume(t *testing.T) {
	for _, key := range []string{"", "weight", "VOLUME"} {
		s := Lookup(key)
		assert.Equal(t, Volume, s.Key, "key %q", key)
	}
	_, ok := Resolve("weight")
	assert.False(t, ok)
}

func TestTuning(t *testing.T) {
	assert.Equal(t, tetris.Tuning{Dense: true, Order: tetris.OrderNearOrigin}, Lookup("quantity").Tuning)
	assert.Equal(t, tetris.Tuning{Order: tetris.OrderAwayFromCorner}, Lookup("volume").Tuning)
	for _, k := range []string{"id", "value", "valuemax"} {
		assert.Equal(t, tetris.Tuning{}, Lookup(k).Tuning, k)
	}
}

func TestAllAndNames(t *testing.T) {
	all := All()
	require.Len(t, all, 5)
	keys := make([]Key, len(all))
	for i, s := range all {
		keys[i] = s.Key
	}
	assert.Equal(t, []Key{ID, Quantity, Value, ValueMax, Volume}, keys)

	names := Names()
	assert.Equal(t, "价值最大化", names["valuemax"])
	assert.Equal(t, "大体积优先", names["volume"])
	assert.Len(t, names, 5)
}
