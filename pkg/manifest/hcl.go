package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

type hclJob struct {
	Container *hclContainer `hcl:"container,block"`
	Strategy  string        `hcl:"strategy,optional"`
	Items     []hclItem     `hcl:"item,block"`
}

type hclContainer struct {
	Length float64 `hcl:"length"`
	Width  float64 `hcl:"width"`
	Height float64 `hcl:"height"`
}

type hclItem struct {
	Label  string  `hcl:"label,label"`
	ID     int     `hcl:"id,optional"`
	Radius float64 `hcl:"radius"`
	Height float64 `hcl:"height"`
	Value  float64 `hcl:"value,optional"`
	Count  int     `hcl:"count,optional"`
}

// evalContext exposes a few numeric helpers to job file expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
			"ceil":  stdlib.CeilFunc,
			"floor": stdlib.FloorFunc,
			"abs":   stdlib.AbsoluteFunc,
		},
	}
}

// ParseHCL decodes an HCL job file:
//
//	container {
//	  length = 12
//	  width  = 2.4
//	  height = 2.6
//	}
//	strategy = "valuemax"
//	item "drum" {
//	  radius = 0.3
//	  height = 0.9
//	  value  = 120
//	  count  = 8
//	}
func ParseHCL(data []byte, filename string) (*Job, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var raw hclJob
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &raw); diags.HasErrors() {
		return nil, diags
	}

	labels := make(map[string]bool, len(raw.Items))
	specs := make([]itemSpec, len(raw.Items))
	for i, it := range raw.Items {
		if labels[it.Label] {
			return nil, fmt.Errorf("%w: duplicate item block %q", tetris.ErrInvalidItem, it.Label)
		}
		labels[it.Label] = true
		specs[i] = itemSpec{ID: it.ID, Radius: it.Radius, Height: it.Height, Value: it.Value, Count: it.Count}
	}
	items, err := expand(specs)
	if err != nil {
		return nil, err
	}

	job := &Job{Strategy: raw.Strategy, Items: items}
	if raw.Container != nil {
		job.Container = &tetris.Container{
			Length: raw.Container.Length,
			Width:  raw.Container.Width,
			Height: raw.Container.Height,
		}
	}
	return job, nil
}
