package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeProgram(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "astro v")
}

func TestRunCommandSuccess(t *testing.T) {
	path := writeProgram(t, "demo.astro", `fn main() -> felt { return 42; }`)

	out, _, err := executeCmd(t, "run", path, "--no-history")
	require.NoError(t, err)
	assert.Equal(t, "Run completed successfully, returning [42]\n", out)
}

func TestRunCommandZeroGasBudget(t *testing.T) {
	path := writeProgram(t, "spin.astro", `
fn spin(n) -> felt {
    return spin(n + 1);
}

fn main() -> felt {
    return spin(0);
}
`)

	out, _, err := executeCmd(t, "run", path, "--available-gas", "0", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "Out of gas")
	assert.Contains(t, out, "Remaining gas: 0\n")
}

func TestRunCommandCompileFailure(t *testing.T) {
	path := writeProgram(t, "bad.astro", `fn main() -> felt { return x; }`)

	_, errOut, err := executeCmd(t, "run", path, "--no-history")
	require.Error(t, err)
	assert.Contains(t, errOut, "failed to compile")
}

func TestRunCommandMultipleFiles(t *testing.T) {
	a := writeProgram(t, "a.astro", `fn main() -> felt { return 1; }`)
	b := writeProgram(t, "b.astro", `fn main() -> felt { return 2; }`)

	out, _, err := executeCmd(t, "run", a, b, "--no-history")
	require.NoError(t, err)

	// Reports come back in argument order regardless of which file
	// finished first.
	i := strings.Index(out, "returning [1]")
	j := strings.Index(out, "returning [2]")
	require.GreaterOrEqual(t, i, 0, "output: %q", out)
	require.GreaterOrEqual(t, j, 0, "output: %q", out)
	assert.Less(t, i, j)
}

func TestCheckCommand(t *testing.T) {
	good := writeProgram(t, "good.astro", `fn main() -> felt { return 1; }`)
	out, _, err := executeCmd(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, good)

	bad := writeProgram(t, "bad.astro", `fn main() -> felt { return x; }`)
	_, errOut, err := executeCmd(t, "check", bad)
	require.Error(t, err)
	assert.Contains(t, errOut, "unknown identifier")
}

func TestCheckCommandAllowWarningsSequencesOutput(t *testing.T) {
	warny := writeProgram(t, "warny.astro", `
fn main() -> felt {
    let unused = 1;
    return 2;
}
`)
	clean := writeProgram(t, "clean.astro", `fn main() -> felt { return 1; }`)

	out, errOut, err := executeCmd(t, "check", warny, clean, "--allow-warnings")
	require.NoError(t, err)

	// Both files pass, in argument order, and each file's warnings
	// follow its own status line.
	i := strings.Index(out, warny)
	j := strings.Index(out, clean)
	require.GreaterOrEqual(t, i, 0, "output: %q", out)
	require.GreaterOrEqual(t, j, 0, "output: %q", out)
	assert.Less(t, i, j)
	assert.Contains(t, errOut, `unused local binding "unused"`)
}

func TestHistoryCommand(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.db")
	path := writeProgram(t, "demo.astro", `fn main() -> felt { return 42; }`)

	_, _, err := executeCmd(t, "run", path, "--state", statePath)
	require.NoError(t, err)

	out, _, err := executeCmd(t, "history", "--state", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "demo.astro")
	assert.Contains(t, out, "success")
}

func TestHistoryCommandEmpty(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.db")

	out, _, err := executeCmd(t, "history", "--state", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded runs.")
}
