// Package converter turns timesheet export files into weekly reports. It
// decodes the input file, runs the reshaping pass and encodes the result.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/klytics/tsconv/internal/export"
	"github.com/klytics/tsconv/internal/formats/csvsheet"
	"github.com/klytics/tsconv/internal/formats/xlsx"
	"github.com/klytics/tsconv/internal/timesheet"
)

// DefaultFileName is the report name used when none is configured.
const DefaultFileName = "QCIF_format.xlsx"

// ErrUnsupportedInput is returned for input files that are neither .xlsx
// nor .csv.
var ErrUnsupportedInput = errors.New("unsupported input file")

// Options controls how files are converted.
type Options struct {
	// Sheet selects the input worksheet; empty means the first one.
	Sheet string
	// Format is the report encoding.
	Format export.Format
	// FileName is the report file name for single conversions. Batch and
	// watch outputs derive their names from it.
	FileName string
	// AppendTo names an existing report whose rows are merged with the new
	// ones.
	AppendTo string
	// Workers bounds concurrent conversions in ConvertAll.
	Workers int
	// OnDone, when set, is called after each ConvertAll conversion. It may
	// be called from several goroutines at once.
	OnDone func(input string, err error)
}

// Result describes one finished conversion.
type Result struct {
	RunID    string          `json:"runId"`
	Input    string          `json:"input"`
	Output   string          `json:"output,omitempty"`
	Format   export.Format   `json:"format"`
	Stats    timesheet.Stats `json:"stats"`
	Duration time.Duration   `json:"durationNs"`
}

// Converter converts timesheet exports. It is safe for concurrent use.
type Converter struct {
	opts Options
	log  *zap.Logger
}

// New creates a Converter. A nil logger discards log output.
func New(opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Format == "" {
		opts.Format = export.FormatXLSX
	}
	if opts.FileName == "" {
		opts.FileName = DefaultFileName
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Converter{opts: opts, log: log}
}

// Options returns the effective options.
func (c *Converter) Options() Options {
	return c.opts
}

// IsSupported reports whether path has an input extension Load can decode.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// Load decodes an export file into worksheet rows.
func Load(path, sheet string) ([]timesheet.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		s, err := xlsx.ReadFile(path, sheet)
		if err != nil {
			return nil, err
		}
		return s.Rows, nil
	case ".csv":
		return csvsheet.ReadFile(path)
	}
	return nil, fmt.Errorf("%w %q — expected an .xlsx or .csv timesheet export", ErrUnsupportedInput, path)
}

// LoadTable reads a previously written report as text rows.
func LoadTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsx.ReadTable(path, "")
	case ".csv":
		rows, err := csvsheet.ReadFile(path)
		if err != nil {
			return nil, err
		}
		table := make([][]string, len(rows))
		for i, row := range rows {
			table[i] = make([]string, len(row))
			for j, cell := range row {
				table[i][j] = cell.String()
			}
		}
		return table, nil
	}
	return nil, fmt.Errorf("%w %q — reports can be appended to from .xlsx or .csv", ErrUnsupportedInput, path)
}

// Reshape loads input and runs the reshaping pass over it, merging into
// the AppendTo report when one is configured.
func (c *Converter) Reshape(input string) (timesheet.Report, error) {
	rows, err := Load(input, c.opts.Sheet)
	if err != nil {
		return timesheet.Report{}, err
	}

	agg := timesheet.NewAggregator()
	if c.opts.AppendTo != "" {
		seed, err := LoadTable(c.opts.AppendTo)
		if err != nil {
			return timesheet.Report{}, fmt.Errorf("could not read report to append to: %w", err)
		}
		agg = timesheet.NewAggregatorFrom(seed)
	}

	return timesheet.SummarizeInto(agg, rows), nil
}

// Render converts input and writes the encoded report to w.
func (c *Converter) Render(ctx context.Context, input string, w io.Writer) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Input: input, Format: c.opts.Format}
	log := c.log.With(zap.String("run", res.RunID), zap.String("input", input))

	report, err := c.Reshape(input)
	if err != nil {
		log.Warn("could not reshape timesheet", zap.Error(err))
		return nil, err
	}
	if err := export.Write(w, report.Table, c.opts.Format); err != nil {
		return nil, fmt.Errorf("could not encode report: %w", err)
	}

	res.Stats = report.Stats
	res.Duration = time.Since(start)
	log.Debug("timesheet reshaped", statsFields(report.Stats)...)
	return res, nil
}

// Convert converts input and writes the report to output. The file is
// written through a temporary file in the same directory and renamed into
// place, so readers never observe a partial report.
func (c *Converter) Convert(ctx context.Context, input, output string) (*Result, error) {
	if output == "" {
		output = c.DefaultOutput(".")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".tsconv-*"+filepath.Ext(output))
	if err != nil {
		return nil, fmt.Errorf("could not create %s: %w", output, err)
	}
	defer os.Remove(tmp.Name())

	res, err := c.Render(ctx, input, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("could not write %s: %w", output, closeErr)
	}
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return nil, fmt.Errorf("could not save %s: %w", output, err)
	}

	res.Output = output
	c.log.Info("report written",
		zap.String("run", res.RunID),
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("lines", res.Stats.Lines))
	return res, nil
}

// ConvertAll converts every input concurrently into outDir, naming each
// report after its input. It stops starting new conversions after the
// first failure and returns that error along with the finished results.
func (c *Converter) ConvertAll(ctx context.Context, inputs []string, outDir string) ([]Result, error) {
	results := make([]*Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			res, err := c.Convert(gctx, input, c.OutputPath(input, outDir))
			if c.opts.OnDone != nil {
				c.opts.OnDone(input, err)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	done := make([]Result, 0, len(inputs))
	for _, r := range results {
		if r != nil {
			done = append(done, *r)
		}
	}
	return done, err
}

// DefaultOutput returns the report path for a single conversion in dir.
func (c *Converter) DefaultOutput(dir string) string {
	return filepath.Join(dir, c.reportStem()+c.opts.Format.Ext())
}

// OutputPath names the report for input inside outDir as
// <input-base>_<report-stem><ext>. An empty outDir means the input's
// directory.
func (c *Converter) OutputPath(input, outDir string) string {
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outDir, base+"_"+c.reportStem()+c.opts.Format.Ext())
}

// IsReport reports whether path looks like a report this converter writes,
// so watchers can skip their own output.
func (c *Converter) IsReport(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.HasPrefix(base, ".tsconv-") {
		return true
	}
	return strings.HasSuffix(base, c.reportStem())
}

func (c *Converter) reportStem() string {
	return strings.TrimSuffix(c.opts.FileName, filepath.Ext(c.opts.FileName))
}

func statsFields(s timesheet.Stats) []zap.Field {
	return []zap.Field{
		zap.Int("rows", s.Rows),
		zap.Int("headers", s.Headers),
		zap.Int("details", s.Details),
		zap.Int("ignored", s.Ignored),
		zap.Int("unresolved", s.Unresolved),
		zap.Int("merged", s.Merged),
		zap.Int("lines", s.Lines),
	}
}
