package engine

import "github.com/astroforge/astro/pkg/felt"

// ResultKind distinguishes a normal return from a program-level panic.
// A panic is a successful engine run whose program chose to panic; it
// is never an engine error.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultPanic
)

func (k ResultKind) String() string {
	if k == ResultPanic {
		return "panic"
	}
	return "success"
}

// RunResult is the raw outcome of one execution.
type RunResult struct {
	Kind   ResultKind
	Values []felt.Felt

	// GasCounter is the remaining budget; set iff metering was
	// configured for this run.
	GasCounter *uint64

	// Memory is the execution memory trace; nil cells were reserved
	// but never written.
	Memory []*felt.Felt

	// Profiling is set iff profiling collection was configured.
	Profiling *ProfileData
}

// ContractInfo is the execution metadata of one entry point.
type ContractInfo struct {
	QualifiedName string
	ParamCount    int
	ReturnsValue  bool
}

// ContractsInfo maps qualified entry-point names to their metadata. It
// is built once per lowered program and read-only afterwards.
type ContractsInfo map[string]ContractInfo

// State is the execution-context state for a single run. A fresh state
// must be used per invocation; nothing carries over.
type State struct {
	// DebugPrints counts values emitted through the print builtin.
	DebugPrints int
}

// NewState returns a fresh, empty execution-context state.
func NewState() *State {
	return &State{}
}
