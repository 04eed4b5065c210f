package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// Header is the column layout shared by the CSV export and the result workbook.
var Header = []string{"ID", "Radius", "Height", "Value", "X", "Y", "Z", "Status", "Strategy"}

const (
	StatusLoaded   = "Loaded"
	StatusUnloaded = "Unloaded"
)

// Status labels an item by whether it sits inside the container.
func Status(c *tetris.Cylinder) string {
	if c.Placed() {
		return StatusLoaded
	}
	return StatusUnloaded
}

func record(c *tetris.Cylinder, strategyName string) []string {
	return []string{
		strconv.Itoa(c.ID),
		num(c.Radius),
		num(c.Height),
		num(c.Value),
		coord(c.X),
		coord(c.Y),
		coord(c.Z),
		Status(c),
		strategyName,
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// WriteCSV writes one row per item in result order.
func WriteCSV(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range res.Items {
		if err := cw.Write(record(c, res.Strategy)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the full result, items included.
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// GenerateCSV writes the CSV export to path.
func GenerateCSV(res *engine.Result, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, res) })
}

// GenerateJSON writes the JSON export to path.
func GenerateJSON(res *engine.Result, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, res) })
}

// Formats maps each export format to its file name inside an output directory.
var Formats = map[string]string{
	"csv":  "result.csv",
	"json": "result.json",
	"xlsx": "result.xlsx",
	"html": "dashboard.html",
}

// GenerateAll writes every requested format into dir and returns the paths written.
func GenerateAll(res *engine.Result, dir string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var written []string
	for _, format := range formats {
		name, ok := Formats[format]
		if !ok {
			return written, fmt.Errorf("unknown report format %q", format)
		}
		path := filepath.Join(dir, name)

		var err error
		switch format {
		case "csv":
			err = GenerateCSV(res, path)
		case "json":
			err = GenerateJSON(res, path)
		case "xlsx":
			err = GenerateWorkbook(res, path)
		case "html":
			err = GenerateDashboard(res, path)
		}
		if err != nil {
			return written, fmt.Errorf("failed to write %s report: %w", format, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
