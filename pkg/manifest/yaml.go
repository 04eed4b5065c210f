package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

type yamlJob struct {
	Container *tetris.Container `yaml:"container"`
	Strategy  string            `yaml:"strategy"`
	Items     []yamlItem        `yaml:"items"`
}

type yamlItem struct {
	ID     int     `yaml:"id"`
	Radius float64 `yaml:"radius"`
	Height float64 `yaml:"height"`
	Value  float64 `yaml:"value"`
	Count  int     `yaml:"count"`
}

// ParseYAML decodes a YAML job file.
func ParseYAML(data []byte) (*Job, error) {
	var raw yamlJob
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	specs := make([]itemSpec, len(raw.Items))
	for i, it := range raw.Items {
		specs[i] = itemSpec(it)
	}
	items, err := expand(specs)
	if err != nil {
		return nil, err
	}
	return &Job{Container: raw.Container, Strategy: raw.Strategy, Items: items}, nil
}
