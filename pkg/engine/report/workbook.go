package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/DrSkyle/cargoload/pkg/engine"
)

// SheetName is the single sheet of the result workbook.
const SheetName = "Loading Result"

// BuildWorkbook lays the result out as a spreadsheet. The caller closes the file.
func BuildWorkbook(res *engine.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "I1", bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, c := range res.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{c.ID, c.Radius, c.Height, c.Value, c.X, c.Y, c.Z, Status(c), res.Strategy}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteWorkbook streams the result workbook to w.
func WriteWorkbook(w io.Writer, res *engine.Result) error {
	f, err := BuildWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// GenerateWorkbook saves the result workbook to path.
func GenerateWorkbook(res *engine.Result, path string) error {
	f, err := BuildWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
