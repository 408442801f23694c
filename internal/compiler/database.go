// Package compiler hosts the program database: source loading,
// semantic checking, and the diagnostics it produces. The database is
// built once per pipeline invocation and is not safe to share across
// concurrent invocations.
package compiler

import (
	"fmt"

	"github.com/astroforge/astro/pkg/ast"
	"github.com/astroforge/astro/pkg/parser"
)

// CrateName is the synthetic crate every loaded source file belongs to.
// Qualified function names are formed as "astro::<name>".
const CrateName = "astro"

// CrateID identifies one loaded source unit within a database.
type CrateID int

// DatabaseBuilder configures and constructs a Database.
type DatabaseBuilder struct {
	detectCorelib   bool
	autoWithdrawGas bool
}

// NewDatabaseBuilder returns a builder with gas accounting enabled.
func NewDatabaseBuilder() *DatabaseBuilder {
	return &DatabaseBuilder{autoWithdrawGas: true}
}

// DetectCorelib makes the core builtins (panic, print) resolvable.
func (b *DatabaseBuilder) DetectCorelib() *DatabaseBuilder {
	b.detectCorelib = true
	return b
}

// SkipAutoWithdrawGas disables the implicit gas withdrawal prelude, so
// the lowered program carries no gas instructions. Used when the caller
// supplies no execution budget.
func (b *DatabaseBuilder) SkipAutoWithdrawGas() *DatabaseBuilder {
	b.autoWithdrawGas = false
	return b
}

// Build constructs the database.
func (b *DatabaseBuilder) Build() (*Database, error) {
	return &Database{
		detectCorelib:   b.detectCorelib,
		autoWithdrawGas: b.autoWithdrawGas,
	}, nil
}

// unit is one loaded source file. A failed parse leaves file nil and
// the parse error recorded as a diagnostic.
type unit struct {
	path string
	file *ast.File
}

// Database owns the loaded sources and the results of checking them.
type Database struct {
	detectCorelib   bool
	autoWithdrawGas bool

	units []unit

	checked   *CheckedProgram
	diags     Diagnostics
	checkDone bool
}

// AutoWithdrawGas reports whether lowering should emit the gas
// withdrawal prelude.
func (db *Database) AutoWithdrawGas() bool {
	return db.autoWithdrawGas
}

// SetupProjectWithInputString parses source under a synthetic logical
// path and registers it as a crate. Parse errors are recorded as
// diagnostics rather than returned, so they surface through the
// diagnostics gate like any other compilation failure.
func (db *Database) SetupProjectWithInputString(path, source string) (CrateID, error) {
	if db.checkDone {
		return 0, fmt.Errorf("cannot load %s: database already checked", path)
	}

	file, err := parser.ParseFile(path, source)
	if err != nil {
		db.diags = append(db.diags, diagnosticFromParseError(err))
		file = nil
	}
	db.units = append(db.units, unit{path: path, file: file})
	return CrateID(len(db.units) - 1), nil
}

// Diagnostics runs checking if needed and returns all accumulated
// diagnostics, parse findings included.
func (db *Database) Diagnostics() Diagnostics {
	db.ensureChecked()
	return db.diags
}

// DiagnosticsText returns the rendered diagnostics.
func (db *Database) DiagnosticsText() string {
	return db.Diagnostics().Render()
}

// CheckedProgram returns the checked program for the given crates, or
// nil when checking failed to produce one (fatal parse failure).
func (db *Database) CheckedProgram(crates []CrateID) *CheckedProgram {
	db.ensureChecked()
	if db.diags.HasErrors() {
		return nil
	}
	return db.checked
}

func (db *Database) ensureChecked() {
	if db.checkDone {
		return
	}
	db.checkDone = true

	var files []*ast.File
	for _, u := range db.units {
		if u.file != nil {
			files = append(files, u.file)
		}
	}

	c := &checker{db: db}
	db.checked = c.check(files)
	db.diags = append(db.diags, c.diags...)
}

func diagnosticFromParseError(err error) Diagnostic {
	switch e := err.(type) {
	case *parser.ParseError:
		return Diagnostic{Severity: SeverityError, Pos: e.Pos, Message: e.Message}
	case *parser.LexError:
		return Diagnostic{Severity: SeverityError, Pos: e.Pos, Message: e.Message}
	default:
		return Diagnostic{Severity: SeverityError, Message: err.Error()}
	}
}
