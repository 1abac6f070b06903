// Package watch provides the "tsconv watch" commands, which convert exports
// as they land in a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klytics/tsconv/internal/cli"
	"github.com/klytics/tsconv/internal/config"
	"github.com/klytics/tsconv/internal/converter"
	"github.com/klytics/tsconv/internal/output"
	w "github.com/klytics/tsconv/internal/watch"
)

// NewCommand creates the "watch" command with subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert timesheet exports as they appear in a directory",
		Long: `Watch directories for new or modified timesheet exports and write a
weekly report next to each one (or into --out-dir).

Example:
  tsconv watch start ~/Downloads --out-dir ~/reports
  tsconv watch status
  tsconv watch stop`,
	}

	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func newStartCmd() *cobra.Command {
	var (
		recursive bool
		debounce  int
		outDir    string
		toFmt     string
		sheet     string
	)

	cmd := &cobra.Command{
		Use:   "start <directory> [directory...]",
		Short: "Start watching directories for timesheet exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.Setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if !cmd.Flags().Changed("recursive") {
				recursive = env.Config.Watch.Recursive
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = env.Config.Watch.DebounceMs
			}

			opts, err := env.ConverterOptions(toFmt, sheet)
			if err != nil {
				return err
			}
			conv := converter.New(opts, env.Logger)

			cfg := w.Config{
				Directories: args,
				Recursive:   recursive,
				Debounce:    debounce,
				OutDir:      outDir,
				Format:      string(opts.Format),
			}

			watcher, err := w.New(cfg)
			if err != nil {
				return err
			}
			watcher.Logger = env.Logger
			watcher.Skip = conv.IsReport
			watcher.Handler = func(ctx context.Context, path string) (string, error) {
				res, err := conv.Convert(ctx, path, conv.OutputPath(path, outDir))
				if err != nil {
					return "", err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Converted: %s → %s (%d tasks)\n", path, res.Output, res.Stats.Lines)
				return res.Output, nil
			}

			stateDir := config.Dir()
			if err := w.WritePIDFile(stateDir); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not write PID file: %v\n", err)
			}
			defer w.RemovePIDFile(stateDir)

			// Save config for status command
			if err := w.SaveConfig(stateDir, watcher.Config); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save watcher config: %v\n", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d directory(ies) for timesheet exports (%s reports)\n",
				len(args), opts.Format)
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(cmd.OutOrStdout(), "\nStopping watcher...")
					cancel()
				case <-ctx.Done():
				}
			}()

			return watcher.Start(ctx)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch directories recursively (default from config)")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Quiet period in milliseconds before a file is converted (default from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for reports (default: next to each export)")
	cmd.Flags().StringVar(&toFmt, "to", "", "Report format: xlsx, csv, json, yaml, md (default from config)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")

	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir := config.Dir()
			pid, err := w.ReadPIDFile(stateDir)
			if err != nil {
				return fmt.Errorf("no watcher running (PID file not found)")
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("could not find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				w.RemovePIDFile(stateDir)
				return fmt.Errorf("could not stop watcher (PID %d): %w", pid, err)
			}

			w.RemovePIDFile(stateDir)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.WriteJSON(cmd.OutOrStdout(), "watch stop", map[string]any{
					"stopped": true,
					"pid":     pid,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stopped watcher (PID %d)\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current watcher status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir := config.Dir()
			out := cmd.OutOrStdout()

			pid, err := w.ReadPIDFile(stateDir)
			running := err == nil

			// Signal 0 only checks that the process exists.
			if running {
				process, err := os.FindProcess(pid)
				if err != nil || process.Signal(syscall.Signal(0)) != nil {
					running = false
					w.RemovePIDFile(stateDir)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")

			if !running {
				if jsonOut {
					return output.WriteJSON(out, "watch status", map[string]any{"running": false})
				}
				fmt.Fprintln(out, "Watcher is not running")
				return nil
			}

			cfg, _ := w.LoadConfig(stateDir)

			status := map[string]any{
				"running": true,
				"pid":     pid,
			}
			if cfg != nil {
				status["directories"] = cfg.Directories
				status["recursive"] = cfg.Recursive
				status["outDir"] = cfg.OutDir
				status["format"] = cfg.Format
			}

			if jsonOut {
				return output.WriteJSON(out, "watch status", status)
			}

			fmt.Fprintf(out, "Watcher is running (PID %d)\n", pid)
			if cfg != nil {
				fmt.Fprintf(out, "  Directories: %s\n", strings.Join(cfg.Directories, ", "))
				fmt.Fprintf(out, "  Recursive:   %v\n", cfg.Recursive)
				fmt.Fprintf(out, "  Format:      %s\n", cfg.Format)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the configuration of the last started watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := w.LoadConfig(config.Dir())
			if err != nil {
				return fmt.Errorf("no watcher configuration found (run 'tsconv watch start' first)")
			}

			out := cmd.OutOrStdout()
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.WriteJSON(out, "watch config", cfg)
			}

			outDir := cfg.OutDir
			if outDir == "" {
				outDir = "(next to each export)"
			}
			fmt.Fprintf(out, "Directories: %s\n", strings.Join(cfg.Directories, ", "))
			fmt.Fprintf(out, "Recursive:   %v\n", cfg.Recursive)
			fmt.Fprintf(out, "Debounce:    %dms\n", cfg.Debounce)
			fmt.Fprintf(out, "Output dir:  %s\n", outDir)
			fmt.Fprintf(out, "Format:      %s\n", cfg.Format)
			return nil
		},
	}
}
