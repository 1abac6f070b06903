// Package convert provides the "tsconv convert" command.
package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klytics/tsconv/internal/cli"
	"github.com/klytics/tsconv/internal/converter"
	"github.com/klytics/tsconv/internal/output"
	"github.com/klytics/tsconv/internal/progress"
)

// NewCommand creates the "convert" command.
func NewCommand() *cobra.Command {
	var (
		toFmt    string
		out      string
		outDir   string
		sheet    string
		appendTo string
	)

	cmd := &cobra.Command{
		Use:   "convert <file|glob>",
		Short: "Reshape a timesheet export into a weekly report",
		Long: `Reshape a timesheet export (.xlsx or .csv) into the weekly report layout:
one row per task with the hours spread over Monday to Sunday.

Examples:
  tsconv convert week2.xlsx
  tsconv convert week2.xlsx --to csv -o week2.csv
  tsconv convert week2.csv -o - --to md
  tsconv convert week3.xlsx --append-to QCIF_format.xlsx
  tsconv convert 'exports/*.xlsx' --out-dir ./reports`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no input provided — pass a timesheet export (.xlsx or .csv)")
			}

			env, err := cli.Setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			opts, err := env.ConverterOptions(toFmt, sheet)
			if err != nil {
				return err
			}
			opts.AppendTo = appendTo
			conv := converter.New(opts, env.Logger)

			if outDir == "" {
				outDir = env.Config.Output.Dir
			}

			w := cmd.OutOrStdout()
			input := args[0]
			if strings.ContainsAny(input, "*?[") {
				if out != "" {
					return fmt.Errorf("-o/--output names a single report and cannot be used with a pattern — use --out-dir instead")
				}
				return batchConvert(cmd, conv, env.Logger, input, outDir, env.JSON)
			}

			if out == "-" {
				if env.JSON {
					return fmt.Errorf("--json cannot be combined with -o - (the report is already written to stdout)")
				}
				_, err := conv.Render(cmd.Context(), input, w)
				return err
			}

			if out == "" {
				out = conv.DefaultOutput(outDir)
			}
			res, err := conv.Convert(cmd.Context(), input, out)
			if err != nil {
				return err
			}

			if env.JSON {
				return output.WriteJSON(w, "convert", res)
			}
			printResult(w, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&toFmt, "to", "", "Report format: xlsx, csv, json, yaml, md (default from config)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Report path, or - for stdout")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for reports (default from config)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&appendTo, "append-to", "", "Existing report to merge the new rows into")

	return cmd
}

func batchConvert(cmd *cobra.Command, conv *converter.Converter, log *zap.Logger, pattern, outDir string, jsonOut bool) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	var inputs []string
	for _, m := range matches {
		if converter.IsSupported(m) && !conv.IsReport(m) {
			inputs = append(inputs, m)
		}
	}

	w := cmd.OutOrStdout()
	if len(inputs) == 0 {
		if jsonOut {
			return output.WriteJSON(w, "convert", []converter.Result{})
		}
		fmt.Fprintln(w, "No timesheet exports matched the pattern.")
		return nil
	}

	bar := progress.New("Converting", len(inputs), jsonOut)
	opts := conv.Options()
	opts.OnDone = bar.Done
	results, err := converter.New(opts, log).ConvertAll(cmd.Context(), inputs, outDir)
	bar.Finish()
	if jsonOut {
		if encErr := output.WriteJSON(w, "convert", results); encErr != nil {
			return encErr
		}
		return err
	}
	for i := range results {
		printResult(w, &results[i])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d report(s) written to %s\n", len(results), outDir)
	return nil
}

func printResult(w io.Writer, res *converter.Result) {
	fmt.Fprintf(w, "Converted: %s → %s (%d tasks)\n", res.Input, res.Output, res.Stats.Lines)
	if res.Stats.Unresolved > 0 {
		color.New(color.FgYellow).Fprintf(w,
			"  Warning: %d row(s) had no readable date; their hours were left out\n", res.Stats.Unresolved)
	}
}
