// Package commands implements the Astro CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/astroforge/astro/internal/cli/config"
	"github.com/astroforge/astro/internal/engine"
	"github.com/astroforge/astro/internal/runner"
	"github.com/astroforge/astro/internal/state"
)

var (
	fileStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RunCmdOptions holds options for the run command.
type RunCmdOptions struct {
	AvailableGas    uint64
	AllowWarnings   bool
	PrintFullMemory bool
	Profile         bool
	DbgPrint        bool
	NoHistory       bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunCmdOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Compile and execute Astro programs",
		Long: `Compile each source file, execute its main function, and print the
resulting report. Multiple files are executed concurrently; reports
are printed in argument order.`,
		Example: `  # Run a program
  astro run demo.astro

  # Run with a gas budget and a full memory dump
  astro run demo.astro --available-gas 10000 --print-full-memory

  # Include captured debug prints in the report
  astro run demo.astro --dbg-print`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.AvailableGas, "available-gas", 0, "Gas budget for metered execution (0 is a valid budget)")
	cmd.Flags().BoolVar(&opts.AllowWarnings, "allow-warnings", false, "Do not treat warnings as fatal")
	cmd.Flags().BoolVar(&opts.PrintFullMemory, "print-full-memory", false, "Append the full memory trace to the report")
	cmd.Flags().BoolVar(&opts.Profile, "profile", false, "Collect and print per-function execution counts")
	cmd.Flags().BoolVar(&opts.DbgPrint, "dbg-print", false, "Include captured debug prints in the report")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Skip recording this run in the history database")

	return cmd
}

// fileRun is the outcome of running one source file.
type fileRun struct {
	path string
	out  *runner.RunOutput
	err  error
}

func runRun(cmd *cobra.Command, args []string, opts *RunCmdOptions) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	runOpts := runner.Options{
		AllowWarnings:   opts.AllowWarnings || cfg.AllowWarnings,
		PrintFullMemory: opts.PrintFullMemory || cfg.PrintFullMemory,
		RunProfiler:     opts.Profile || cfg.Profile,
		UseDbgPrintHint: opts.DbgPrint || cfg.DbgPrint,
	}
	// The flag presence matters, not the value: --available-gas 0 is a
	// valid budget while an absent flag means unmetered.
	if cmd.Flags().Changed("available-gas") {
		gas := opts.AvailableGas
		runOpts.AvailableGas = &gas
	}

	results := make([]fileRun, len(args))
	var g errgroup.Group
	for i, path := range args {
		g.Go(func() error {
			results[i] = runFile(path, runOpts, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var store state.Store
	if cfg.StatePath != "" && !opts.NoHistory {
		s, err := openStore(cfg.StatePath)
		if err != nil {
			logger.Warn("run history unavailable", "error", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	var failed bool
	for _, res := range results {
		if len(args) > 1 {
			fmt.Fprintln(cmd.OutOrStdout(), fileStyle.Render(res.path))
		}
		if res.err != nil {
			failed = true
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(res.err.Error()))
		} else {
			fmt.Fprint(cmd.OutOrStdout(), res.out.Report)
			if res.out.Profile != nil {
				fmt.Fprintln(cmd.OutOrStdout(), res.out.Profile.String())
			}
		}
		if store != nil {
			if err := store.RecordRun(historyRun(res)); err != nil {
				logger.Warn("failed to record run", "error", err)
			}
		}
	}

	if failed {
		return fmt.Errorf("one or more runs failed")
	}
	return nil
}

// runFile compiles and executes one source file with its own pipeline,
// so concurrent files never share a debug log.
func runFile(path string, opts runner.Options, logger *slog.Logger) fileRun {
	res := fileRun{path: path}

	source, err := os.ReadFile(path)
	if err != nil {
		res.err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}

	p := runner.New(runner.Config{Logger: logger.With("source", path)})
	res.out, res.err = p.Execute(string(source), opts)
	return res
}

// historyRun converts a file run into a history record.
func historyRun(res fileRun) *state.Run {
	run := &state.Run{Source: res.path}
	if res.err != nil {
		run.Status = state.RunStatusFailed
		run.Error = res.err.Error()
		return run
	}

	run.Report = res.out.Report
	run.Status = state.RunStatusSuccess
	if res.out.Result.Kind == engine.ResultPanic {
		run.Status = state.RunStatusPanic
	}
	if res.out.Result.GasCounter != nil {
		gas := *res.out.Result.GasCounter
		run.GasRemaining = &gas
	}
	return run
}

// openStore opens the history database, creating its directory first.
func openStore(path string) (*state.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	s := state.NewSQLiteStore()
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
