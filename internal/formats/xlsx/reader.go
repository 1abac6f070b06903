// Package xlsx reads timesheet exports from and writes reshaped reports to
// .xlsx (Excel) files.
package xlsx

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/tsconv/internal/timesheet"
)

// Sheet is one decoded worksheet.
type Sheet struct {
	Name string          `json:"name"`
	Rows []timesheet.Row `json:"rows"`
}

// ReadFile decodes one worksheet of an .xlsx file. An empty sheet name
// selects the first sheet.
func ReadFile(path, sheet string) (*Sheet, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", path, err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// ReadBytes decodes one worksheet of an .xlsx file held in memory.
func ReadBytes(data []byte, sheet string) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not read Excel data: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// ReadTable reads a worksheet as formatted text, the way a reshaped report
// is stored. An empty sheet name selects the first sheet.
func ReadTable(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", path, err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
	}
	return rows, nil
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	names := f.GetSheetList()
	if len(names) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if sheet == "" {
		return names[0], nil
	}
	for _, n := range names {
		if n == sheet {
			return n, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found — available sheets: %v", sheet, names)
}

// readSheet keeps raw cell values so date serials stay numeric instead of
// being rendered through the cell's number format.
func readSheet(f *excelize.File, sheet string) (*Sheet, error) {
	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
	}

	out := &Sheet{Name: name, Rows: make([]timesheet.Row, len(rows))}
	for r, cols := range rows {
		row := make(timesheet.Row, len(cols))
		for c, value := range cols {
			if value == "" {
				row[c] = timesheet.Empty()
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("invalid cell coordinates: %w", err)
			}
			typ, err := f.GetCellType(name, cellName)
			if err != nil {
				return nil, fmt.Errorf("could not read cell %s: %w", cellName, err)
			}
			row[c] = decodeCell(value, typ)
		}
		out.Rows[r] = timesheet.TrimRow(row)
	}

	return out, nil
}

func decodeCell(value string, typ excelize.CellType) timesheet.Cell {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return timesheet.NumberText(value)
		}
	}
	return timesheet.Text(value)
}
