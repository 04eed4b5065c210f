package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSearchConfig(t *testing.T) {
	cfg := DefaultSearchConfig()

	assert.Equal(t, 20.0, cfg.GridFactor)
	assert.Equal(t, 40.0, cfg.DenseGridFactor)
	assert.Equal(t, 50.0, cfg.RefinedFactor)
	assert.Equal(t, 80.0, cfg.DenseRefinedFactor)
	assert.Equal(t, 0.05, cfg.MinStep)
	assert.Equal(t, 0.5, cfg.MaxZStep)
	assert.Greater(t, cfg.DenseGridFactor, cfg.GridFactor, "dense grid must be finer")
}

func TestDefaultOptimizerConfig(t *testing.T) {
	cfg := DefaultOptimizerConfig()

	assert.Equal(t, 100, cfg.MaxIterations)
	assert.InDelta(t, 1.1, cfg.BackfillSlack, 1e-12)
	if cfg.MaxEvaluations <= 0 {
		t.Error("MaxEvaluations must be positive to bound the local search")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "volume", cfg.Strategy)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Contains(t, cfg.Output.Formats, "table")
	assert.True(t, cfg.History.Enabled)
	assert.False(t, cfg.Strict)
}
