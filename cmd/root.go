// Package cmd contains all CLI commands for the tsconv binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/tsconv/cmd/completion"
	cmdconfig "github.com/klytics/tsconv/cmd/config"
	"github.com/klytics/tsconv/cmd/convert"
	"github.com/klytics/tsconv/cmd/preview"
	"github.com/klytics/tsconv/cmd/version"
	cmdwatch "github.com/klytics/tsconv/cmd/watch"
	"github.com/klytics/tsconv/internal/output"
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
		noColor    bool
	)

	rootCmd := &cobra.Command{
		Use:   "tsconv",
		Short: "Reshape timesheet exports into weekly reports",
		Long: `tsconv turns a timesheet export (one row per logged entry) into a weekly
report with one row per task and the hours spread over Monday to Sunday.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	rootCmd.AddCommand(convert.NewCommand())
	rootCmd.AddCommand(preview.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}
	code := output.ExitCode(err)
	if jsonOut, _ := rootCmd.PersistentFlags().GetBool("json"); jsonOut {
		_ = output.PrintJSONError(cmd.Name(), err, code)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(code)
}
