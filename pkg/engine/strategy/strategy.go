// Package strategy defines the fixed set of loading orders.
package strategy

import (
	"sort"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// Key identifies a loading strategy.
type Key string

const (
	ID       Key = "id"
	Quantity Key = "quantity"
	Volume   Key = "volume"
	Value    Key = "value"
	ValueMax Key = "valuemax"

	// Default is used for empty and unrecognised keys.
	Default = Volume
)

// Strategy is a named stable ordering of cylinders plus the search tuning
// that goes with it.
type Strategy struct {
	Key Key
	// Name is the canonical display name written to reports.
	Name string
	// Label is a short English description for terminal output.
	Label  string
	Tuning tetris.Tuning

	less func(a, b *tetris.Cylinder) bool
}

// Sort reorders items in place. Equal elements keep their relative order.
func (s Strategy) Sort(items []*tetris.Cylinder) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.less(items[i], items[j])
	})
}

// Less reports whether a is loaded before b.
func (s Strategy) Less(a, b *tetris.Cylinder) bool {
	return s.less(a, b)
}

var table = map[Key]Strategy{
	ID: {
		Key:   ID,
		Name:  "编号优先",
		Label: "ID first",
		less:  func(a, b *tetris.Cylinder) bool { return a.ID < b.ID },
	},
	Quantity: {
		Key:    Quantity,
		Name:   "数量优先",
		Label:  "Quantity first (smallest volume first)",
		Tuning: tetris.Tuning{Dense: true, Order: tetris.OrderNearOrigin},
		less:   func(a, b *tetris.Cylinder) bool { return a.Volume() < b.Volume() },
	},
	Volume: {
		Key:    Volume,
		Name:   "大体积优先",
		Label:  "Large volume first",
		Tuning: tetris.Tuning{Order: tetris.OrderAwayFromCorner},
		less:   func(a, b *tetris.Cylinder) bool { return a.Volume() > b.Volume() },
	},
	Value: {
		Key:   Value,
		Name:  "价值优先",
		Label: "Value first",
		less:  func(a, b *tetris.Cylinder) bool { return a.Value > b.Value },
	},
	ValueMax: {
		Key:   ValueMax,
		Name:  "价值最大化",
		Label: "Value maximization",
		less:  func(a, b *tetris.Cylinder) bool { return a.Density() > b.Density() },
	},
}

// Resolve looks up a strategy by key.
func Resolve(key string) (Strategy, bool) {
	s, ok := table[Key(key)]
	return s, ok
}

// Lookup returns the strategy for key, falling back to Default.
func Lookup(key string) Strategy {
	if s, ok := Resolve(key); ok {
		return s
	}
	return table[Default]
}

// All returns every strategy ordered by key.
func All() []Strategy {
	out := make([]Strategy, 0, len(table))
	for _, s := range table {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Names maps each key to its display name.
func Names() map[string]string {
	names := make(map[string]string, len(table))
	for k, s := range table {
		names[string(k)] = s.Name
	}
	return names
}
