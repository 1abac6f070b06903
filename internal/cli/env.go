// Package cli holds the per-invocation state shared by tsconv commands.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klytics/tsconv/internal/config"
	"github.com/klytics/tsconv/internal/converter"
	"github.com/klytics/tsconv/internal/export"
	"github.com/klytics/tsconv/internal/logging"
)

// Env is what a command needs to run: settings, a logger and output mode.
type Env struct {
	Config *config.Config
	Logger *zap.Logger
	JSON   bool
}

// Setup loads configuration and builds the logger for cmd, honoring the
// root's persistent --json, --verbose and --no-color flags.
func Setup(cmd *cobra.Command) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOut, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || !cfg.Output.Color {
		color.NoColor = true
	}

	logger, err := logging.New(cfg.Log.Level, verbose)
	if err != nil {
		return nil, err
	}

	return &Env{Config: cfg, Logger: logger, JSON: jsonOut}, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	if e != nil && e.Logger != nil {
		_ = e.Logger.Sync()
	}
}

// ConverterOptions maps the loaded settings onto converter options. format
// and sheet override the configured values when non-empty.
func (e *Env) ConverterOptions(format, sheet string) (converter.Options, error) {
	if format == "" {
		format = e.Config.Output.Format
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return converter.Options{}, err
	}
	if sheet == "" {
		sheet = e.Config.Input.Sheet
	}
	return converter.Options{
		Sheet:    sheet,
		Format:   f,
		FileName: e.Config.Output.FileName,
		Workers:  e.Config.Batch.Workers,
	}, nil
}
