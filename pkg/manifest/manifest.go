// Package manifest loads loading jobs from item sheets and job files.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// ErrUnsupportedFormat is returned for file extensions no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Job is everything needed to run one load.
type Job struct {
	// Container is nil for item sheets, which carry no container dimensions.
	Container *tetris.Container
	Strategy  string
	Items     []*tetris.Cylinder
}

// Load reads a manifest from path, picking the loader by extension.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes data using the loader for name's extension and validates the result.
func Parse(data []byte, name string) (*Job, error) {
	var (
		job *Job
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx":
		var items []*tetris.Cylinder
		items, err = ReadXLSX(bytes.NewReader(data))
		job = &Job{Items: items}
	case ".csv":
		var items []*tetris.Cylinder
		items, err = ReadCSV(bytes.NewReader(data))
		job = &Job{Items: items}
	case ".yaml", ".yml":
		job, err = ParseYAML(data)
	case ".hcl":
		job, err = ParseHCL(data, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return job, nil
}

// Validate checks the container, every item, and id uniqueness.
func (j *Job) Validate() error {
	if j.Container != nil {
		if err := j.Container.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[int]bool, len(j.Items))
	for _, c := range j.Items {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate item id %d", tetris.ErrInvalidItem, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// itemSpec is one item declaration before count expansion.
type itemSpec struct {
	ID     int
	Radius float64
	Height float64
	Value  float64
	Count  int
}

// expand turns declarations into unplaced items. An explicit id is honored for
// single items; everything else takes the next free id.
func expand(specs []itemSpec) ([]*tetris.Cylinder, error) {
	var items []*tetris.Cylinder
	next := 1
	for i, s := range specs {
		count := s.Count
		if count == 0 {
			count = 1
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: item %d: count must be positive", tetris.ErrInvalidItem, i+1)
		}
		if s.ID != 0 && count > 1 {
			return nil, fmt.Errorf("%w: item %d: id cannot be combined with count", tetris.ErrInvalidItem, s.ID)
		}
		for k := 0; k < count; k++ {
			id := s.ID
			if id == 0 {
				id = next
			}
			if id >= next {
				next = id + 1
			}
			items = append(items, tetris.NewCylinder(id, s.Radius, s.Height, s.Value))
		}
	}
	return items, nil
}
