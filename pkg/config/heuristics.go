package config

// SearchConfig defines grid resolution for the placement search.
type SearchConfig struct {
	// GridFactor divides min(length, width) into the first-pass grid step.
	GridFactor float64 `mapstructure:"grid_factor"`
	// DenseGridFactor replaces GridFactor for the quantity strategy.
	DenseGridFactor float64 `mapstructure:"dense_grid_factor"`
	// RefinedFactor divides min(length, width) into the refined-pass grid step.
	RefinedFactor float64 `mapstructure:"refined_factor"`
	// DenseRefinedFactor replaces RefinedFactor for the quantity strategy.
	DenseRefinedFactor float64 `mapstructure:"dense_refined_factor"`
	// MinStep is the lower clamp for every grid step.
	MinStep float64 `mapstructure:"min_step"`
	// MaxZStep caps the vertical step of the refined pass.
	MaxZStep float64 `mapstructure:"max_z_step"`
}

// OptimizerConfig defines the value-maximization search budget.
type OptimizerConfig struct {
	// MaxIterations bounds the hill-climbing loop.
	MaxIterations int `mapstructure:"max_iterations"`
	// MaxEvaluations bounds the number of full placements the local search may run.
	MaxEvaluations int `mapstructure:"max_evaluations"`
	// BackfillSlack scales the freed volume available to a backfill move.
	BackfillSlack float64 `mapstructure:"backfill_slack"`
	// Parallel evaluates the seed orderings concurrently.
	Parallel bool `mapstructure:"parallel"`
}

// DefaultSearchConfig returns the standard grid resolution.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		GridFactor:         20,
		DenseGridFactor:    40,
		RefinedFactor:      50,
		DenseRefinedFactor: 80,
		MinStep:            0.05,
		MaxZStep:           0.5,
	}
}

// DefaultOptimizerConfig returns the standard optimizer budget.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MaxIterations:  100,
		MaxEvaluations: 200,
		BackfillSlack:  1.1,
		Parallel:       true,
	}
}
