package engine

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/cargoload/pkg/engine/history"
	"github.com/DrSkyle/cargoload/pkg/engine/policy"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
	"github.com/DrSkyle/cargoload/pkg/storage"
)

func newTestEngine(t *testing.T, mutate func(*Config), opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SkipTelemetry = true
	cfg.Seed = 7
	if mutate != nil {
		mutate(&cfg)
	}
	opts = append([]Option{WithConfig(cfg), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	e, err := New(context.Background(), opts...)
	require.NoError(t, err)
	return e
}

func randomItems(seed int64, n int) []*tetris.Cylinder {
	rng := rand.New(rand.NewSource(seed))
	items := make([]*tetris.Cylinder, n)
	for i := range items {
		items[i] = tetris.NewCylinder(i+1, 0.4+rng.Float64()*0.9, 0.5+rng.Float64(), float64(1+rng.Intn(50)))
	}
	return items
}

func assertValid(t *testing.T, items []*tetris.Cylinder, box tetris.Container) {
	t.Helper()
	var placed []*tetris.Cylinder
	for _, c := range items {
		if c.Placed() {
			assert.Truef(t, tetris.FitsIn(c, box), "item %d outside container", c.ID)
			assert.Falsef(t, tetris.Overlaps(c, placed), "item %d overlaps", c.ID)
			placed = append(placed, c)
			continue
		}
		assert.Truef(t, c.IsUnplaced(), "item %d not at the unplaced position", c.ID)
	}
}

func TestRun_TwoItemsOnTheFloor(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 10, Width: 10, Height: 10}
	items := []*tetris.Cylinder{tetris.NewCylinder(1, 1, 1, 5), tetris.NewCylinder(2, 1, 1, 5)}

	res, err := e.Run(context.Background(), items, box, "volume")
	require.NoError(t, err)

	assert.Equal(t, 2, res.PlacedCount)
	assert.Zero(t, res.UnplacedCount)
	assert.Equal(t, "大体积优先", res.Strategy)
	for _, c := range items {
		assert.Equal(t, 0.0, c.Z)
	}
	assertValid(t, items, box)
}

func TestRun_ItemTooWide(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 1, Width: 1, Height: 1}
	item := tetris.NewCylinder(1, 1, 1, 5)

	for _, key := range []string{"id", "quantity", "volume", "value", "valuemax"} {
		item.MarkUnplaced()
		res, err := e.Run(context.Background(), []*tetris.Cylinder{item}, box, key)
		require.NoError(t, err, key)
		assert.Equal(t, 1, res.UnplacedCount, key)
		assert.True(t, item.IsUnplaced(), key)
	}
}

func TestRun_ValueMaxKeepsTheValuableItem(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 2, Width: 2, Height: 1}
	cheap := tetris.NewCylinder(1, 1, 1, 10)
	dear := tetris.NewCylinder(2, 1, 1, 100)

	res, err := e.Run(context.Background(), []*tetris.Cylinder{cheap, dear}, box, "valuemax")
	require.NoError(t, err)

	assert.True(t, dear.Placed())
	assert.True(t, cheap.IsUnplaced())
	assert.Equal(t, 1, res.UnplacedCount)
	assert.Equal(t, 100.0, res.TotalValue)
	assert.Equal(t, "价值最大化", res.Strategy)
}

func TestRun_UnknownStrategyFallsBackToVolume(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 6, Width: 5, Height: 2}

	a := randomItems(4, 12)
	b := randomItems(4, 12)
	ra, err := e.Run(context.Background(), a, box, "no-such-strategy")
	require.NoError(t, err)
	rb, err := e.Run(context.Background(), b, box, "volume")
	require.NoError(t, err)

	assert.Equal(t, "volume", ra.StrategyKey)
	assert.Equal(t, rb.PlacedCount, ra.PlacedCount)
	for i := range ra.Items {
		assert.Equal(t, rb.Items[i].ID, ra.Items[i].ID)
		assert.Equal(t, rb.Items[i].Z, ra.Items[i].Z)
	}
}

func TestRun_Deterministic(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 6, Width: 6, Height: 3}

	for _, key := range []string{"id", "quantity", "volume", "value"} {
		first, err := e.Run(context.Background(), randomItems(9, 20), box, key)
		require.NoError(t, err)
		second, err := e.Run(context.Background(), randomItems(9, 20), box, key)
		require.NoError(t, err)
		assert.Equal(t, first.PlacedCount, second.PlacedCount, key)
		assertValid(t, first.Items, box)
	}
}

func TestRun_ValueMaxAtLeastValue(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 6, Width: 5, Height: 2}

	for _, seed := range []int64{2, 13} {
		plain, err := e.Run(context.Background(), randomItems(seed, 14), box, "value")
		require.NoError(t, err)
		best, err := e.Run(context.Background(), randomItems(seed, 14), box, "valuemax")
		require.NoError(t, err)

		assert.GreaterOrEqualf(t, best.TotalValue, plain.TotalValue, "seed %d", seed)
		assertValid(t, best.Items, box)
	}
}

func TestRun_OversizedAlwaysUnplaced(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 3, Width: 3, Height: 10}

	for _, key := range []string{"id", "quantity", "volume", "value", "valuemax"} {
		items := []*tetris.Cylinder{tetris.NewCylinder(1, 1.6, 1, 1000), tetris.NewCylinder(2, 0.5, 1, 1)}
		res, err := e.Run(context.Background(), items, box, key)
		require.NoError(t, err, key)
		assert.True(t, items[0].IsUnplaced(), key)
		assert.True(t, items[1].Placed(), key)
		assert.Equal(t, 1, res.UnplacedCount, key)
	}
}

func TestRun_StrictModeReportsPartialLoad(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Strict = true })
	box := tetris.Container{Length: 1, Width: 1, Height: 1}

	res, err := e.Run(context.Background(), []*tetris.Cylinder{tetris.NewCylinder(1, 1, 1, 1)}, box, "id")
	require.ErrorIs(t, err, ErrPartialLoad)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.UnplacedCount)
}

func TestRun_RejectsInvalidInput(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 5, Width: 5, Height: 5}
	one := func(c *tetris.Cylinder) []*tetris.Cylinder { return []*tetris.Cylinder{c} }

	tests := []struct {
		name  string
		items []*tetris.Cylinder
		box   tetris.Container
		want  error
	}{
		{"zero length", nil, tetris.Container{Length: 0, Width: 1, Height: 1}, tetris.ErrInvalidContainer},
		{"infinite length", one(tetris.NewCylinder(1, 1, 1, 1)), tetris.Container{Length: math.Inf(1), Width: 10, Height: 10}, tetris.ErrInvalidContainer},
		{"NaN width", nil, tetris.Container{Length: 10, Width: math.NaN(), Height: 10}, tetris.ErrInvalidContainer},
		{"infinite height", nil, tetris.Container{Length: 10, Width: 10, Height: math.Inf(1)}, tetris.ErrInvalidContainer},
		{"negative value", one(tetris.NewCylinder(1, 1, 1, -3)), box, tetris.ErrInvalidItem},
		{"infinite radius", one(tetris.NewCylinder(1, math.Inf(1), 1, 1)), box, tetris.ErrInvalidItem},
		{"NaN height", one(tetris.NewCylinder(1, 1, math.NaN(), 1)), box, tetris.ErrInvalidItem},
		{"infinite value", one(tetris.NewCylinder(1, 1, 1, math.Inf(1))), box, tetris.ErrInvalidItem},
		{"NaN value", one(tetris.NewCylinder(1, 1, 1, math.NaN())), box, tetris.ErrInvalidItem},
		{"duplicate id", []*tetris.Cylinder{tetris.NewCylinder(1, 1, 1, 5), tetris.NewCylinder(1, 1, 1, 5)}, box, tetris.ErrInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Run(context.Background(), tt.items, tt.box, "id")
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestRun_DuplicateIDsNeverShareAPosition(t *testing.T) {
	e := newTestEngine(t, nil)
	a := tetris.NewCylinder(1, 1, 1, 5)
	b := tetris.NewCylinder(1, 1, 1, 5)

	_, err := e.Run(context.Background(), []*tetris.Cylinder{a, b}, tetris.Container{Length: 10, Width: 10, Height: 1}, "valuemax")
	require.ErrorIs(t, err, tetris.ErrInvalidItem)
	assert.True(t, a.IsUnplaced())
	assert.True(t, b.IsUnplaced())
}

func TestRun_PolicyExcludesItems(t *testing.T) {
	rules := []policy.Rule{{ID: "no_tall", Condition: "height > 2.0", Action: policy.ActionExclude}}
	e := newTestEngine(t, func(c *Config) { c.Rules = rules })
	require.NotNil(t, e.Policy)

	box := tetris.Container{Length: 10, Width: 10, Height: 10}
	tall := tetris.NewCylinder(1, 1, 3, 50)
	short := tetris.NewCylinder(2, 1, 1, 5)

	res, err := e.Run(context.Background(), []*tetris.Cylinder{tall, short}, box, "value")
	require.NoError(t, err)

	assert.True(t, tall.IsUnplaced())
	assert.True(t, short.Placed())
	assert.Equal(t, 1, res.ExcludedCount)
	assert.Equal(t, 1, res.UnplacedCount)
	assert.Equal(t, 2, res.TotalCount)
}

func TestNew_InvalidRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipTelemetry = true
	cfg.Rules = []policy.Rule{{ID: "broken", Condition: "radius >", Action: policy.ActionWarn}}

	_, err := New(context.Background(), WithConfig(cfg))
	assert.Error(t, err)
}

func TestRun_AssignsColors(t *testing.T) {
	e := newTestEngine(t, nil)
	items := randomItems(1, 5)

	_, err := e.Run(context.Background(), items, tetris.Container{Length: 5, Width: 5, Height: 5}, "id")
	require.NoError(t, err)

	hex := regexp.MustCompile(`^#[0-9A-F]{6}$`)
	for _, c := range items {
		assert.Regexp(t, hex, c.Color)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "history.jsonl")
	client := history.NewClient(history.NewLocalBackend(ledger))
	e := newTestEngine(t, nil, WithHistory(client))

	box := tetris.Container{Length: 4, Width: 4, Height: 2}
	res, err := e.Run(context.Background(), randomItems(3, 6), box, "quantity")
	require.NoError(t, err)

	got, err := client.LoadWindow(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "quantity", got[0].Strategy)
	assert.Equal(t, res.PlacedCount, got[0].PlacedCount)
	assert.InDelta(t, res.TotalValue, got[0].TotalValue, 1e-9)
}

func TestRun_CancelledContext(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, randomItems(1, 3), tetris.Container{Length: 5, Width: 5, Height: 5}, "valuemax")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_Levels(t *testing.T) {
	e := newTestEngine(t, nil)
	box := tetris.Container{Length: 2, Width: 2, Height: 2}
	items := []*tetris.Cylinder{tetris.NewCylinder(1, 1, 1, 1), tetris.NewCylinder(2, 1, 1, 1)}

	res, err := e.Run(context.Background(), items, box, "id")
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1}, res.Levels())
	assert.Len(t, res.AtLevel(1), 1)
	assert.InDelta(t, 2*3.141592653589793/8, res.FillRatio, 1e-9)
}

func TestUploadArtifacts(t *testing.T) {
	e := newTestEngine(t, nil)
	src := t.TempDir()
	store := storage.NewLocalStore(t.TempDir())

	require.NoError(t, storage.NewLocalStore(src).Put(context.Background(), "a.csv", []byte("x")))
	require.NoError(t, storage.NewLocalStore(src).Put(context.Background(), "levels/0.svg", []byte("y")))

	n, err := e.UploadArtifacts(context.Background(), src, store, "runs/1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := store.List(context.Background(), "runs/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/1/a.csv", "runs/1/levels/0.svg"}, keys)
}
