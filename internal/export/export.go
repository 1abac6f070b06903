// Package export encodes a reshaped timesheet table into the supported
// report formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klytics/tsconv/internal/formats/xlsx"
	"github.com/klytics/tsconv/internal/timesheet"
)

// Format is a report output format.
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
)

// ErrUnsupportedFormat is returned for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatXLSX, FormatCSV, FormatJSON, FormatYAML, FormatMarkdown}
}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "xlsx", "":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w %q (supported: xlsx, csv, json, yaml, md)", ErrUnsupportedFormat, s)
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Hours is a record's weekday totals.
type Hours struct {
	Monday    string `json:"monday" yaml:"monday"`
	Tuesday   string `json:"tuesday" yaml:"tuesday"`
	Wednesday string `json:"wednesday" yaml:"wednesday"`
	Thursday  string `json:"thursday" yaml:"thursday"`
	Friday    string `json:"friday" yaml:"friday"`
	Saturday  string `json:"saturday" yaml:"saturday"`
	Sunday    string `json:"sunday" yaml:"sunday"`
}

// Record is one table row in structured form.
type Record struct {
	ProjectCode    string `json:"projectCode" yaml:"projectCode"`
	ProjectSubCode string `json:"projectSubCode" yaml:"projectSubCode"`
	Category       string `json:"category" yaml:"category"`
	Task           string `json:"task" yaml:"task"`
	Hours          Hours  `json:"hours" yaml:"hours"`
}

// Records converts the data rows of a table (everything after the header)
// into structured records. Short rows are padded with empty values.
func Records(table [][]string) []Record {
	if len(table) < 2 {
		return []Record{}
	}
	records := make([]Record, 0, len(table)-1)
	for _, row := range table[1:] {
		cell := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
		records = append(records, Record{
			ProjectCode:    cell(0),
			ProjectSubCode: cell(1),
			Category:       cell(2),
			Task:           cell(3),
			Hours: Hours{
				Monday:    cell(4),
				Tuesday:   cell(5),
				Wednesday: cell(6),
				Thursday:  cell(7),
				Friday:    cell(8),
				Saturday:  cell(9),
				Sunday:    cell(10),
			},
		})
	}
	return records
}

// Write encodes table to w in the given format.
func Write(w io.Writer, table [][]string, format Format) error {
	switch format {
	case FormatXLSX:
		return xlsx.Write(w, table, xlsx.DefaultSheetName)
	case FormatCSV:
		return writeCSV(w, table)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Records(table))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Records(table)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(table))
		return err
	}
	return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}

func writeCSV(w io.Writer, table [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table); err != nil {
		return fmt.Errorf("could not write CSV: %w", err)
	}
	return nil
}

// Markdown renders a table as a GFM Markdown table. The first row is the
// header.
func Markdown(table [][]string) string {
	if len(table) < 1 {
		return ""
	}

	headers := table[0]
	var b strings.Builder

	b.WriteString("| ")
	b.WriteString(strings.Join(escapeAll(headers), " | "))
	b.WriteString(" |\n")

	b.WriteString("|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range table[1:] {
		cells := make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		b.WriteString("| ")
		b.WriteString(strings.Join(escapeAll(cells), " | "))
		b.WriteString(" |\n")
	}

	return b.String()
}

func escapeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// Totals sums every weekday column of a table's data rows.
func Totals(table [][]string) timesheet.Week {
	var week timesheet.Week
	if len(table) < 2 {
		return week
	}
	for _, row := range table[1:] {
		for d := 0; d < timesheet.DaysPerWeek; d++ {
			if c := 4 + d; c < len(row) {
				week[d] = week[d].Add(timesheet.ParseHours(row[c]))
			}
		}
	}
	return week
}
