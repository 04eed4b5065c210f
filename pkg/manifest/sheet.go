package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

// ReadXLSX reads items from the first sheet of a workbook. Row 1 is a header;
// columns are radius, height and an optional value. Ids follow row order from 1.
func ReadXLSX(r io.Reader) ([]*tetris.Cylinder, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return fromRows(rows)
}

// ReadCSV reads items using the same column layout as ReadXLSX.
func ReadCSV(r io.Reader) ([]*tetris.Cylinder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]*tetris.Cylinder, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var items []*tetris.Cylinder
	id := 1
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := i + 2

		radius, err := cell(row, 0)
		if err != nil {
			return nil, fmt.Errorf("row %d: radius: %w", line, err)
		}
		height, err := cell(row, 1)
		if err != nil {
			return nil, fmt.Errorf("row %d: height: %w", line, err)
		}
		// Unreadable values count as zero.
		value, err := cell(row, 2)
		if err != nil {
			value = 0
		}

		items = append(items, tetris.NewCylinder(id, radius, height, value))
		id++
	}
	return items, nil
}

func cell(row []string, col int) (float64, error) {
	if col >= len(row) || strings.TrimSpace(row[col]) == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
