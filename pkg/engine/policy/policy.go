package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Action is what happens to an item matched by a rule.
type Action string

const (
	// ActionExclude keeps the item out of the container.
	ActionExclude Action = "exclude"
	// ActionWarn only reports the match.
	ActionWarn Action = "warn"
)

// Rule is a user-defined admission rule.
type Rule struct {
	ID string `json:"id" yaml:"id"`
	// Condition is a CEL expression over id, radius, height, value, volume and density.
	Condition string `json:"condition" yaml:"condition"`
	Action    Action `json:"action" yaml:"action"`
}

// Validate checks that the rule is complete and its action is known.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule without id")
	}
	if r.Condition == "" {
		return fmt.Errorf("rule %s: empty condition", r.ID)
	}
	switch r.Action {
	case ActionExclude, ActionWarn:
		return nil
	default:
		return fmt.Errorf("rule %s: unknown action %q", r.ID, r.Action)
	}
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML document of the form `rules: [{id, condition, action}]`.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule document.
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	seen := make(map[string]bool, len(f.Rules))
	for _, r := range f.Rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true
	}
	return f.Rules, nil
}
