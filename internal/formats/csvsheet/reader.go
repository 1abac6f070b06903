// Package csvsheet decodes timesheet exports saved as CSV.
package csvsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klytics/tsconv/internal/timesheet"
)

// ReadFile decodes a CSV file into worksheet rows.
func ReadFile(path string) ([]timesheet.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return rows, nil
}

// Read decodes CSV records into worksheet rows. Records may differ in
// length. Fields that parse as numbers become number cells, empty fields
// become empty cells, and trailing empty fields are dropped.
func Read(r io.Reader) ([]timesheet.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []timesheet.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(timesheet.Row, len(record))
		for i, field := range record {
			row[i] = decodeField(field)
		}
		rows = append(rows, timesheet.TrimRow(row))
	}
	return rows, nil
}

func decodeField(field string) timesheet.Cell {
	if field == "" {
		return timesheet.Empty()
	}
	trimmed := strings.TrimSpace(field)
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil && !isSpecialFloat(trimmed) {
		return timesheet.NumberText(trimmed)
	}
	return timesheet.Text(field)
}

// isSpecialFloat reports spellings strconv accepts that no spreadsheet
// writes as a number.
func isSpecialFloat(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "inf", "infinity", "nan":
		return true
	}
	return false
}
