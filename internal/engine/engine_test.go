package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroforge/astro/internal/compiler"
	"github.com/astroforge/astro/internal/logdb"
	"github.com/astroforge/astro/internal/lower"
	"github.com/astroforge/astro/internal/testutil"
	"github.com/astroforge/astro/pkg/felt"
)

// buildProgram compiles source down to an enriched lowered program.
func buildProgram(t *testing.T, source string, metered bool) *lower.Program {
	t.Helper()
	b := compiler.NewDatabaseBuilder().DetectCorelib()
	if !metered {
		b = b.SkipAutoWithdrawGas()
	}
	db, err := b.Build()
	require.NoError(t, err)
	_, err = db.SetupProjectWithInputString("test.astro", source)
	require.NoError(t, err)
	require.False(t, compiler.NewReporter().Check(db), db.DiagnosticsText())

	pd := lower.ProgramForCrates(db, nil)
	require.NotNil(t, pd)
	replacer := &lower.Replacer{Debug: pd.Debug}
	replacer.EnrichFunctionNames(pd.Program)
	return replacer.Apply(pd.Program)
}

func newEngine(t *testing.T, prog *lower.Program, metering *CostModel, profiling *ProfileConfig, opts ...Option) *Engine {
	t.Helper()
	opts = append(opts, WithLogger(testutil.NewTestLogger(t)))
	e, err := New(prog, metering, nil, profiling, opts...)
	require.NoError(t, err)
	return e
}

func runMain(t *testing.T, e *Engine, gas *uint64) *RunResult {
	t.Helper()
	main, err := e.FindFunction("::main")
	require.NoError(t, err)
	res, err := e.RunFunction(main, nil, gas, NewState())
	require.NoError(t, err)
	return res
}

func TestRunReturnsValue(t *testing.T) {
	prog := buildProgram(t, `fn main() -> felt { return 42; }`, false)
	e := newEngine(t, prog, nil, nil)

	res := runMain(t, e, nil)
	assert.Equal(t, ResultSuccess, res.Kind)
	assert.Equal(t, "[42]", felt.Join(res.Values))
	assert.Nil(t, res.GasCounter)
}

func TestRunWithCalls(t *testing.T) {
	prog := buildProgram(t, `
fn fib(n) -> felt {
    if n < 2 {
        return n;
    }
    return fib(n - 1) + fib(n - 2);
}

fn main() -> felt {
    return fib(10);
}
`, false)
	e := newEngine(t, prog, nil, nil)

	res := runMain(t, e, nil)
	assert.Equal(t, ResultSuccess, res.Kind)
	assert.Equal(t, "[55]", felt.Join(res.Values))
}

func TestRunPanicPreservesValueOrder(t *testing.T) {
	prog := buildProgram(t, `fn main() { panic(1, 2); }`, false)
	e := newEngine(t, prog, nil, nil)

	res := runMain(t, e, nil)
	assert.Equal(t, ResultPanic, res.Kind)
	assert.Equal(t, "[1, 2]", felt.Join(res.Values))
}

func TestMeteredRunTracksGas(t *testing.T) {
	prog := buildProgram(t, `fn main() -> felt { return 40 + 2; }`, true)
	e := newEngine(t, prog, DefaultCostModel(), nil)

	gas := uint64(1000)
	res := runMain(t, e, &gas)
	assert.Equal(t, ResultSuccess, res.Kind)
	require.NotNil(t, res.GasCounter)
	assert.Less(t, *res.GasCounter, uint64(1000))
}

func TestMeteredRunOutOfGas(t *testing.T) {
	prog := buildProgram(t, `
fn spin(n) -> felt {
    return spin(n + 1);
}

fn main() -> felt {
    return spin(0);
}
`, true)
	e := newEngine(t, prog, DefaultCostModel(), nil)

	gas := uint64(100)
	res := runMain(t, e, &gas)
	require.Equal(t, ResultPanic, res.Kind)
	require.Len(t, res.Values, 1)

	s, ok := felt.AsShortString(res.Values[0])
	require.True(t, ok)
	assert.Equal(t, "Out of gas", s)
	require.NotNil(t, res.GasCounter)
	assert.Equal(t, uint64(0), *res.GasCounter)
}

func TestMemoryTraceKeepsHoles(t *testing.T) {
	// The let in the untaken branch reserves a cell that is never
	// written.
	prog := buildProgram(t, `
fn main() -> felt {
    if 1 == 2 {
        let dead = 9;
        return dead;
    }
    return 3;
}
`, false)
	e := newEngine(t, prog, nil, nil)

	res := runMain(t, e, nil)
	require.Equal(t, ResultSuccess, res.Kind)

	holes := 0
	for _, cell := range res.Memory {
		if cell == nil {
			holes++
		}
	}
	assert.Equal(t, 1, holes)
}

func TestPrintWritesToDebugLog(t *testing.T) {
	prog := buildProgram(t, `
fn main() -> felt {
    print('hi');
    return 0;
}
`, false)

	dbg := logdb.New()
	e := newEngine(t, prog, nil, nil, WithDebugLog(dbg))

	st := NewState()
	main, err := e.FindFunction("::main")
	require.NoError(t, err)
	_, err = e.RunFunction(main, nil, nil, st)
	require.NoError(t, err)

	assert.Equal(t, 1, st.DebugPrints)
	assert.Equal(t, "26729 ('hi')\n", dbg.FileText(logdb.DefaultFile))
}

func TestProfilingCollectsCounts(t *testing.T) {
	prog := buildProgram(t, `
fn helper() -> felt {
    return 1;
}

fn main() -> felt {
    return helper() + helper();
}
`, false)
	e := newEngine(t, prog, nil, DefaultProfileConfig())

	res := runMain(t, e, nil)
	require.NotNil(t, res.Profiling)
	assert.Equal(t, uint64(2), res.Profiling.CallsByFunction["astro::helper"])
	assert.Positive(t, res.Profiling.StepsByFunction["astro::main"])
	assert.Positive(t, res.Profiling.TotalSteps)
}

func TestFindFunction(t *testing.T) {
	prog := buildProgram(t, `fn main() -> felt { return 1; }`, false)
	e := newEngine(t, prog, nil, nil)

	fn, err := e.FindFunction("::main")
	require.NoError(t, err)
	assert.Equal(t, "astro::main", fn.Name)

	_, err = e.FindFunction("::absent")
	require.Error(t, err)
}

func TestEntrySelectors(t *testing.T) {
	prog := buildProgram(t, `
fn first() -> felt { return 1; }
fn main() -> felt { return 2; }
`, false)
	e := newEngine(t, prog, nil, nil)

	fn, err := ByName("::main").Select(e)
	require.NoError(t, err)
	assert.Equal(t, "astro::main", fn.Name)

	fn, err = FirstDeclared().Select(e)
	require.NoError(t, err)
	assert.Equal(t, "astro::first", fn.Name)
}

func TestNewRejectsUnenrichedProgram(t *testing.T) {
	prog := &lower.Program{Funcs: []lower.Function{{ID: 0}}}

	_, err := New(prog, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enriched")
}

func TestNewRejectsUnresolvedCall(t *testing.T) {
	prog := &lower.Program{Funcs: []lower.Function{{
		ID:   lower.NoFunc,
		Name: "astro::main",
		Code: []lower.Instruction{{Op: lower.OpCall, Target: lower.NoFunc}},
	}}}

	_, err := New(prog, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved target")
}

func TestNewRejectsUnknownContractEntry(t *testing.T) {
	prog := buildProgram(t, `fn main() -> felt { return 1; }`, false)

	_, err := New(prog, nil, ContractsInfo{"astro::ghost": {}}, nil)
	require.Error(t, err)
}

func TestArgumentCountMismatch(t *testing.T) {
	prog := buildProgram(t, `fn main() -> felt { return 1; }`, false)
	e := newEngine(t, prog, nil, nil)

	main, err := e.FindFunction("::main")
	require.NoError(t, err)
	_, err = e.RunFunction(main, []felt.Felt{felt.New(1)}, nil, NewState())
	require.Error(t, err)
}
