// Package runner sequences a full program run: compile the source,
// lower it, validate the gas budget, build the execution engine, run
// the entry point, and render the outcome as a report string.
package runner

import (
	"fmt"
	"log/slog"

	"github.com/astroforge/astro/internal/compiler"
	"github.com/astroforge/astro/internal/engine"
	"github.com/astroforge/astro/internal/logdb"
	"github.com/astroforge/astro/internal/lower"
	"github.com/astroforge/astro/internal/profiling"
)

// SourcePath anchors diagnostics for source text that arrives as a
// string rather than a file.
const SourcePath = "astro_program.astro"

// Config carries the injectable collaborators. Zero values get safe
// defaults, so Pipeline{} via New(Config{}) is usable in tests.
type Config struct {
	Logger *slog.Logger
	// DbgLog captures print() output during execution and is read
	// back by the renderer.
	DbgLog *logdb.Log
	// Selector resolves the entry point. Defaults to the function
	// whose qualified name ends in "::main".
	Selector engine.EntrySelector
}

// Options are the per-run toggles.
type Options struct {
	// AvailableGas switches the whole pipeline into metered mode
	// when non-nil. Zero is a valid budget.
	AvailableGas    *uint64
	AllowWarnings   bool
	PrintFullMemory bool
	RunProfiler     bool
	UseDbgPrintHint bool
}

// RunOutput is the full result of one pipeline invocation.
type RunOutput struct {
	Report  string
	Result  *engine.RunResult
	Profile *profiling.Report
}

// Pipeline runs programs. Each invocation builds its own database and
// engine, so a Pipeline is safe to reuse sequentially; concurrent runs
// should each use their own Pipeline and debug log.
type Pipeline struct {
	logger   *slog.Logger
	dbgLog   *logdb.Log
	selector engine.EntrySelector
}

// New builds a Pipeline, filling in defaults for absent collaborators.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		logger:   cfg.Logger,
		dbgLog:   cfg.DbgLog,
		selector: cfg.Selector,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.dbgLog == nil {
		p.dbgLog = logdb.New()
	}
	if p.selector == nil {
		p.selector = engine.ByName("::main")
	}
	return p
}

// Run executes source and returns the rendered report.
func (p *Pipeline) Run(source string, opts Options) (string, error) {
	out, err := p.Execute(source, opts)
	if err != nil {
		return "", err
	}
	return out.Report, nil
}

// Execute runs the full pipeline and returns the report together with
// the raw result and the processed profile, when profiling was on.
func (p *Pipeline) Execute(source string, opts Options) (*RunOutput, error) {
	builder := compiler.NewDatabaseBuilder().DetectCorelib()
	if opts.AvailableGas == nil {
		builder = builder.SkipAutoWithdrawGas()
	}
	db, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build program database: %w", err)
	}

	crate, err := db.SetupProjectWithInputString(SourcePath, source)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	crates := []compiler.CrateID{crate}

	reporter := compiler.NewReporter()
	if opts.AllowWarnings {
		reporter = reporter.AllowWarnings()
	}
	if reporter.Check(db) {
		return nil, &DiagnosticsError{Text: db.DiagnosticsText()}
	}

	pd := lower.ProgramForCrates(db, crates)
	if pd == nil {
		return nil, &LoweringError{}
	}
	replacer := &lower.Replacer{Debug: pd.Debug}
	replacer.EnrichFunctionNames(pd.Program)

	if opts.AvailableGas == nil && pd.Program.RequiresGasCounter() {
		return nil, &BudgetRequiredError{}
	}

	contracts, err := ExtractContractsInfo(db, crates)
	if err != nil {
		return nil, &EngineSetupError{Err: err}
	}

	prog := replacer.Apply(pd.Program)

	var metering *engine.CostModel
	if opts.AvailableGas != nil {
		metering = engine.DefaultCostModel()
	}
	var profCfg *engine.ProfileConfig
	if opts.RunProfiler {
		profCfg = engine.DefaultProfileConfig()
	}

	eng, err := engine.New(prog, metering, contracts, profCfg,
		engine.WithLogger(p.logger),
		engine.WithDebugLog(p.dbgLog),
	)
	if err != nil {
		return nil, &EngineSetupError{Err: err}
	}

	entry, err := p.selector.Select(eng)
	if err != nil {
		return nil, &EntryPointError{Err: err}
	}
	p.logger.Debug("resolved entry point", "function", entry.Name, "metered", metering != nil)

	var gas *uint64
	if opts.AvailableGas != nil {
		g := *opts.AvailableGas
		gas = &g
	}
	res, err := eng.RunFunction(entry, nil, gas, engine.NewState())
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	p.logger.Debug("run finished", "outcome", res.Kind.String(), "values", len(res.Values))

	out := &RunOutput{Result: res}
	if opts.RunProfiler && res.Profiling != nil {
		out.Profile = profiling.NewProcessor().Process(res.Profiling)
	}
	renderer := &Renderer{DbgLog: p.dbgLog}
	out.Report = renderer.Render(res, opts.PrintFullMemory, opts.UseDbgPrintHint)
	return out, nil
}
