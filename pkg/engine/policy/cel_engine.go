package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// Match is a rule that fired for an item.
type Match struct {
	ID     string
	Action Action
}

type program struct {
	rule Rule
	prg  cel.Program
}

// CELEngine compiles rules once and evaluates them against items.
type CELEngine struct {
	// Logger receives rule evaluation failures. Defaults to slog.Default().
	Logger *slog.Logger

	env      *cel.Env
	programs []program
}

// NewCELEngine initializes the CEL environment with the item variables.
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("radius", cel.DoubleType),
		cel.Variable("height", cel.DoubleType),
		cel.Variable("value", cel.DoubleType),
		cel.Variable("volume", cel.DoubleType),
		cel.Variable("density", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &CELEngine{Logger: slog.Default(), env: env}, nil
}

// Compile compiles rules into programs. Conditions must be boolean.
func (e *CELEngine) Compile(rules []Rule) error {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		ast, issues := e.env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return fmt.Errorf("rule %s: condition must be boolean, got %s", r.ID, ast.OutputType())
		}

		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}
		e.programs = append(e.programs, program{rule: r, prg: prg})
	}
	return nil
}

// Len returns the number of compiled rules.
func (e *CELEngine) Len() int {
	return len(e.programs)
}

// Evaluate returns the rules matching c, in compile order.
// A rule that fails at runtime is logged to e.Logger and skipped.
func (e *CELEngine) Evaluate(ctx context.Context, c *tetris.Cylinder) []Match {
	return e.evaluate(ctx, c, e.Logger)
}

func (e *CELEngine) evaluate(ctx context.Context, c *tetris.Cylinder, logger *slog.Logger) []Match {
	if logger == nil {
		logger = slog.Default()
	}
	vars := map[string]any{
		"id":      int64(c.ID),
		"radius":  c.Radius,
		"height":  c.Height,
		"value":   c.Value,
		"volume":  c.Volume(),
		"density": c.Density(),
	}

	var matches []Match
	for _, p := range e.programs {
		out, _, err := p.prg.ContextEval(ctx, vars)
		if err != nil {
			logger.Error("Rule evaluation failed", "rule_id", p.rule.ID, "item", c.ID, "error", err)
			continue
		}
		if match, ok := out.Value().(bool); ok && match {
			matches = append(matches, Match{ID: p.rule.ID, Action: p.rule.Action})
		}
	}
	return matches
}

// Admit splits items into those allowed into the container and those an
// exclude rule keeps out. Warn matches are logged.
func (e *CELEngine) Admit(ctx context.Context, items []*tetris.Cylinder, logger *slog.Logger) (admitted, excluded []*tetris.Cylinder) {
	if logger == nil {
		logger = e.Logger
	}
	for _, c := range items {
		keep := true
		for _, m := range e.evaluate(ctx, c, logger) {
			switch m.Action {
			case ActionExclude:
				keep = false
				logger.Info("Item excluded by rule", "item", c.ID, "rule_id", m.ID)
			case ActionWarn:
				logger.Warn("Item matched rule", "item", c.ID, "rule_id", m.ID)
			}
		}
		if keep {
			admitted = append(admitted, c)
		} else {
			excluded = append(excluded, c)
		}
	}
	return admitted, excluded
}
