package runner

import "fmt"

// DiagnosticsError means compilation produced fatal diagnostics. Text
// holds the rendered diagnostics, one per line.
type DiagnosticsError struct {
	Text string
}

func (e *DiagnosticsError) Error() string {
	return "failed to compile:\n" + e.Text
}

// LoweringError means the lowering stage produced no program even
// though diagnostics were clean. It signals an internal inconsistency
// rather than a problem with the user's source.
type LoweringError struct{}

func (e *LoweringError) Error() string {
	return "compilation passed diagnostics but lowering produced no program"
}

// BudgetRequiredError means the lowered program meters gas but no gas
// budget was supplied.
type BudgetRequiredError struct{}

func (e *BudgetRequiredError) Error() string {
	return "program requires a gas budget; pass an available gas amount"
}

// EngineSetupError wraps an engine construction failure.
type EngineSetupError struct {
	Err error
}

func (e *EngineSetupError) Error() string {
	return fmt.Sprintf("failed to set up execution engine: %v", e.Err)
}

func (e *EngineSetupError) Unwrap() error { return e.Err }

// EntryPointError means the configured entry selector matched no
// function in the enriched program.
type EntryPointError struct {
	Err error
}

func (e *EntryPointError) Error() string {
	return fmt.Sprintf("entry point not found: %v", e.Err)
}

func (e *EntryPointError) Unwrap() error { return e.Err }

// ExecutionError wraps an engine-internal failure during the run. A
// program-level panic is not an ExecutionError; it is a valid outcome.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to run program: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
