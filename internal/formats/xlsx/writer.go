package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName names the single sheet of a written report.
const DefaultSheetName = "Sheet"

// WriteFile saves a text table as a single-sheet .xlsx file.
func WriteFile(table [][]string, sheetName, path string) error {
	f, err := build(table, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

// Write streams a text table as a single-sheet .xlsx document.
func Write(w io.Writer, table [][]string, sheetName string) error {
	f, err := build(table, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}
	return nil
}

func build(table [][]string, sheetName string) (*excelize.File, error) {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	if defaultSheet != sheetName {
		if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not rename sheet: %w", err)
		}
	}

	for rowIdx, row := range table {
		cellName, err := excelize.CoordinatesToCellName(1, rowIdx+1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("invalid cell coordinates: %w", err)
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheetName, cellName, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not write row %d: %w", rowIdx+1, err)
		}
	}

	return f, nil
}
