package compiler

import (
	"fmt"
	"strings"

	"github.com/astroforge/astro/pkg/token"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is one compiler finding anchored to a source position.
type Diagnostic struct {
	Severity Severity
	Pos      token.Position
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Pos, d.Message)
}

// Diagnostics is an ordered list of findings.
type Diagnostics []Diagnostic

// HasErrors reports whether any error-severity diagnostic is present.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any warning-severity diagnostic is present.
func (ds Diagnostics) HasWarnings() bool {
	for _, d := range ds {
		if d.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Render formats the diagnostics one per line, in reporting order.
func (ds Diagnostics) Render() string {
	var sb strings.Builder
	for _, d := range ds {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Reporter decides whether compilation may proceed past checking.
// By default warnings are fatal; AllowWarnings relaxes that.
type Reporter struct {
	allowWarnings bool
}

// NewReporter returns a reporter that treats warnings as fatal.
func NewReporter() *Reporter {
	return &Reporter{}
}

// AllowWarnings makes warning diagnostics non-fatal.
func (r *Reporter) AllowWarnings() *Reporter {
	r.allowWarnings = true
	return r
}

// Check runs the database's checking queries and reports whether fatal
// diagnostics were produced. Compilation must not proceed when it
// returns true.
func (r *Reporter) Check(db *Database) bool {
	diags := db.Diagnostics()
	if diags.HasErrors() {
		return true
	}
	if !r.allowWarnings && diags.HasWarnings() {
		return true
	}
	return false
}
