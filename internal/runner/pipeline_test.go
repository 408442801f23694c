package runner

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroforge/astro/internal/engine"
	"github.com/astroforge/astro/internal/testutil"
)

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return New(Config{Logger: testutil.NewTestLogger(t)})
}

func uintPtr(v uint64) *uint64 { return &v }

func TestRunSuccess(t *testing.T) {
	report, err := newPipeline(t).Run(`fn main() -> felt { return 42; }`, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Run completed successfully, returning [42]\n", report)
}

func TestRunPanicSingleItem(t *testing.T) {
	report, err := newPipeline(t).Run(`fn main() { panic(1); }`, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Run panicked with [1].\n", report)
}

func TestRunPanicSeparatesItems(t *testing.T) {
	// An earlier renderer dropped the separator between panic items
	// and printed "[12]". The comma is intentional.
	report, err := newPipeline(t).Run(`fn main() { panic(1, 2); }`, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Run panicked with [1, 2].\n", report)
}

func TestRunPanicAnnotatesShortStrings(t *testing.T) {
	report, err := newPipeline(t).Run(`fn main() { panic('oops'); }`, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Run panicked with [1869574259 ('oops')].\n", report)
}

func TestDiagnosticsFailureStopsPipeline(t *testing.T) {
	_, err := newPipeline(t).Run(`fn main() -> felt { return x; }`, Options{})

	var diagErr *DiagnosticsError
	require.ErrorAs(t, err, &diagErr)
	assert.Contains(t, diagErr.Text, "error:")
	assert.Contains(t, diagErr.Text, SourcePath)
}

func TestWarningsFatalByDefault(t *testing.T) {
	source := `
fn main() -> felt {
    let unused = 1;
    return 2;
}
`
	_, err := newPipeline(t).Run(source, Options{})
	var diagErr *DiagnosticsError
	require.ErrorAs(t, err, &diagErr)
	assert.Contains(t, diagErr.Text, "warning:")

	report, err := newPipeline(t).Run(source, Options{AllowWarnings: true})
	require.NoError(t, err)
	assert.Equal(t, "Run completed successfully, returning [2]\n", report)
}

const recursiveSource = `
fn spin(n) -> felt {
    return spin(n + 1);
}

fn main() -> felt {
    return spin(0);
}
`

func TestBudgetRequired(t *testing.T) {
	_, err := newPipeline(t).Run(recursiveSource, Options{})

	var budgetErr *BudgetRequiredError
	require.ErrorAs(t, err, &budgetErr)
}

func TestBudgetRequiredForMutualRecursion(t *testing.T) {
	// An unbounded cycle through two functions must demand a budget
	// instead of spinning until the engine's step limit.
	_, err := newPipeline(t).Run(`
fn ping(n) -> felt {
    return pong(n + 1);
}

fn pong(n) -> felt {
    return ping(n + 1);
}

fn main() -> felt {
    return ping(0);
}
`, Options{})

	var budgetErr *BudgetRequiredError
	require.ErrorAs(t, err, &budgetErr)
}

func TestZeroBudgetIsAValidBudget(t *testing.T) {
	report, err := newPipeline(t).Run(recursiveSource, Options{AvailableGas: uintPtr(0)})
	require.NoError(t, err)
	assert.Contains(t, report, "Run panicked with [")
	assert.Contains(t, report, "Out of gas")
	assert.Contains(t, report, "Remaining gas: 0\n")
}

func TestMeteredRunReportsRemainingGas(t *testing.T) {
	report, err := newPipeline(t).Run(`fn main() -> felt { return 40 + 2; }`,
		Options{AvailableGas: uintPtr(1000)})
	require.NoError(t, err)

	lines := strings.Split(report, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Run completed successfully, returning [42]", lines[0])

	rest, found := strings.CutPrefix(lines[1], "Remaining gas: ")
	require.True(t, found, "report: %q", report)
	remaining, err := strconv.ParseUint(rest, 10, 64)
	require.NoError(t, err)
	assert.LessOrEqual(t, remaining, uint64(1000))
}

func TestFullMemoryDump(t *testing.T) {
	out, err := newPipeline(t).Execute(`
fn main() -> felt {
    if 1 == 2 {
        let dead = 9;
        return dead;
    }
    return 3;
}
`, Options{PrintFullMemory: true})
	require.NoError(t, err)

	start := strings.Index(out.Report, "Full memory: [")
	require.GreaterOrEqual(t, start, 0, "report: %q", out.Report)
	section := out.Report[start:]
	assert.True(t, strings.HasSuffix(section, "]\n"))

	body := strings.TrimSuffix(strings.TrimPrefix(section, "Full memory: ["), "]\n")
	cells := strings.Count(body, ", ")
	assert.Equal(t, len(out.Result.Memory), cells)
	assert.Contains(t, body, "_, ")
}

func TestEntryPointNotFound(t *testing.T) {
	_, err := newPipeline(t).Run(`fn start() -> felt { return 1; }`, Options{})

	var entryErr *EntryPointError
	require.ErrorAs(t, err, &entryErr)
}

func TestCustomEntrySelector(t *testing.T) {
	p := New(Config{
		Logger:   testutil.NewTestLogger(t),
		Selector: engine.FirstDeclared(),
	})

	report, err := p.Run(`fn start() -> felt { return 7; }`, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Run completed successfully, returning [7]\n", report)
}

const printingSource = `
fn main() -> felt {
    print('hi');
    return 0;
}
`

func TestDbgPrintHintPrependsCapturedLog(t *testing.T) {
	report, err := newPipeline(t).Run(printingSource, Options{UseDbgPrintHint: true})
	require.NoError(t, err)
	assert.Equal(t, "26729 ('hi')\nRun completed successfully, returning [0]\n", report)
}

func TestDbgPrintHintOffKeepsReportClean(t *testing.T) {
	report, err := newPipeline(t).Run(printingSource, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Run completed successfully, returning [0]\n", report)
}

func TestProfilingProducesReport(t *testing.T) {
	source := `
fn helper() -> felt {
    return 1;
}

fn main() -> felt {
    return helper() + helper();
}
`
	out, err := newPipeline(t).Execute(source, Options{RunProfiler: true})
	require.NoError(t, err)
	require.NotNil(t, out.Profile)
	assert.Positive(t, out.Profile.TotalSteps)

	names := make([]string, 0, len(out.Profile.Rows))
	for _, row := range out.Profile.Rows {
		names = append(names, row.Function)
	}
	assert.Contains(t, names, "astro::main")
	assert.Contains(t, names, "astro::helper")

	out, err = newPipeline(t).Execute(source, Options{})
	require.NoError(t, err)
	assert.Nil(t, out.Profile)
}

func TestRenderingIsDeterministic(t *testing.T) {
	p := newPipeline(t)
	out, err := p.Execute(`fn main() { panic(1, 'x', 2); }`, Options{})
	require.NoError(t, err)

	r := &Renderer{DbgLog: p.dbgLog}
	first := r.Render(out.Result, true, true)
	second := r.Render(out.Result, true, true)
	assert.Equal(t, first, second)
	assert.Equal(t, out.Report, r.Render(out.Result, false, false))
}
