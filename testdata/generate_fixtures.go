//go:build ignore

// This program generates sample timesheet exports for tsconv.
//
//	go run testdata/generate_fixtures.go
package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// Monday 2024-01-08 as a spreadsheet serial.
const weekStart = 45299

type entry struct {
	task, category string
	day            int
	hours          float64
}

var projects = []struct {
	code    string
	entries []entry
}{
	{"P100", []entry{
		{"Design review", "Engineering", 0, 2.5},
		{"Design review", "Engineering", 2, 1},
		{"API work", "Engineering", 1, 6},
		{"API work", "Engineering", 3, 7.25},
	}},
	{"P200", []entry{
		{"Customer support", "", 4, 3},
		{"Customer support", "", 5, 0.5},
		{"Standup", "Meetings", 0, 0.25},
	}},
}

func rows() [][]any {
	out := [][]any{
		{"Timesheet export"},
		{"Employee", "J. Doe"},
		{"Period", "2024-01-08", "2024-01-14"},
	}
	for _, p := range projects {
		out = append(out, []any{p.code})
		for _, e := range p.entries {
			out = append(out, []any{
				e.task, "", "", e.category, weekStart + e.day, "", "", "", "", e.hours, "approved",
			})
		}
	}
	return out
}

func main() {
	if err := generateXlsx("testdata/week2.xlsx"); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating week2.xlsx: %v\n", err)
		os.Exit(1)
	}
	if err := generateCSV("testdata/week2.csv"); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating week2.csv: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Test fixtures generated successfully.")
}

func generateXlsx(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func generateCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, row := range rows() {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
