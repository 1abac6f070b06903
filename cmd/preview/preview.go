// Package preview provides the "tsconv preview" command, which prints a
// weekly report to the terminal without writing a file.
package preview

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/tsconv/internal/cli"
	"github.com/klytics/tsconv/internal/converter"
	"github.com/klytics/tsconv/internal/export"
	"github.com/klytics/tsconv/internal/output"
	"github.com/klytics/tsconv/internal/timesheet"
)

const maxColumnWidth = 40

// NewCommand creates the "preview" command.
func NewCommand() *cobra.Command {
	var (
		sheet    string
		appendTo string
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Print the weekly report for an export",
		Long: `Print the weekly report for a timesheet export as a table, followed by
the daily totals. Use --raw to see how every input row was classified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.Setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			opts, err := env.ConverterOptions("", sheet)
			if err != nil {
				return err
			}
			opts.AppendTo = appendTo
			conv := converter.New(opts, env.Logger)
			w := cmd.OutOrStdout()

			if raw {
				rows, err := converter.Load(args[0], opts.Sheet)
				if err != nil {
					return err
				}
				if env.JSON {
					return output.WriteJSON(w, "preview", classifyRows(rows))
				}
				printRaw(w, rows)
				return nil
			}

			report, err := conv.Reshape(args[0])
			if err != nil {
				return err
			}
			if env.JSON {
				return output.WriteJSON(w, "preview", report)
			}
			printReport(w, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&appendTo, "append-to", "", "Existing report to merge the new rows into")
	cmd.Flags().BoolVar(&raw, "raw", false, "Show the decoded input rows and how each was classified")

	return cmd
}

// RawRow is one decoded input row with its classification.
type RawRow struct {
	Index int      `json:"index"`
	Kind  string   `json:"kind"`
	Cells []string `json:"cells"`
}

func classifyRows(rows []timesheet.Row) []RawRow {
	out := make([]RawRow, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = c.String()
		}
		out[i] = RawRow{Index: i + 1, Kind: kindOf(i, row), Cells: cells}
	}
	return out
}

func kindOf(i int, row timesheet.Row) string {
	if i < timesheet.PreambleRows {
		return "preamble"
	}
	switch timesheet.Classify(row).(type) {
	case timesheet.ProjectHeader:
		return "header"
	case timesheet.Detail:
		return "detail"
	default:
		return "ignored"
	}
}

func printRaw(w io.Writer, rows []timesheet.Row) {
	styles := map[string]*color.Color{
		"preamble": color.New(color.FgHiBlack),
		"header":   color.New(color.Bold, color.FgCyan),
		"detail":   color.New(color.FgGreen),
		"ignored":  color.New(color.FgYellow),
	}
	for _, r := range classifyRows(rows) {
		styles[r.Kind].Fprintf(w, "  %4d  %-8s ", r.Index, r.Kind)
		fmt.Fprintln(w, strings.Join(r.Cells, " | "))
	}
}

func printReport(w io.Writer, report timesheet.Report) {
	dim := color.New(color.FgHiBlack)
	table := report.Table

	totals := make([]string, 0, len(timesheet.Header))
	totals = append(totals, "Total", "", "", "")
	for _, h := range export.Totals(table) {
		totals = append(totals, timesheet.FormatHours(h))
	}

	widths := columnWidths(append(table, totals))

	printRow(w, table[0], widths, color.New(color.Bold))
	printSeparator(w, widths, dim)
	for _, row := range table[1:] {
		printRow(w, row, widths, nil)
	}
	printSeparator(w, widths, dim)
	printRow(w, totals, widths, color.New(color.Bold, color.FgCyan))

	s := report.Stats
	dim.Fprintf(w, "  (%d tasks from %d detail rows, %d ignored)\n", s.Lines, s.Details, s.Ignored)
	if s.Unresolved > 0 {
		color.New(color.FgYellow).Fprintf(w,
			"  Warning: %d row(s) had no readable date; their hours were left out\n", s.Unresolved)
	}
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for j, cell := range row {
			for len(widths) <= j {
				widths = append(widths, 0)
			}
			widths[j] = max(widths[j], utf8.RuneCountInString(cell))
		}
	}
	for i := range widths {
		widths[i] = max(3, min(widths[i], maxColumnWidth))
	}
	return widths
}

func printSeparator(w io.Writer, widths []int, style *color.Color) {
	style.Fprint(w, "  ")
	for j, width := range widths {
		if j > 0 {
			style.Fprint(w, "+-")
		}
		style.Fprint(w, strings.Repeat("-", width+1))
	}
	style.Fprintln(w)
}

func printRow(w io.Writer, row []string, widths []int, style *color.Color) {
	fmt.Fprint(w, "  ")
	for j := range widths {
		if j > 0 {
			fmt.Fprint(w, "| ")
		}
		cell := ""
		if j < len(row) {
			cell = row[j]
		}
		padded := fit(cell, widths[j]) + " "
		if style != nil {
			style.Fprint(w, padded)
		} else {
			fmt.Fprint(w, padded)
		}
	}
	fmt.Fprintln(w)
}

// fit pads or truncates cell to exactly width runes, marking truncation
// with a trailing "~".
func fit(cell string, width int) string {
	n := utf8.RuneCountInString(cell)
	if n <= width {
		return cell + strings.Repeat(" ", width-n)
	}
	runes := []rune(cell)
	return string(runes[:width-1]) + "~"
}
