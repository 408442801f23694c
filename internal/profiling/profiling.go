// Package profiling turns raw per-function execution counters into a
// human-readable report.
package profiling

import (
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/astroforge/astro/internal/engine"
)

// Row holds the aggregated counters for one function.
type Row struct {
	Function string
	Steps    uint64
	Calls    uint64
}

// Report is the processed profiling output, ordered by descending step
// count with function name as the tiebreaker.
type Report struct {
	TotalSteps uint64
	Rows       []Row
}

// Processor aggregates raw engine counters into a Report.
type Processor struct{}

// NewProcessor returns a ready Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process builds a Report from raw. A nil input yields an empty report.
func (p *Processor) Process(raw *engine.ProfileData) *Report {
	rep := &Report{}
	if raw == nil {
		return rep
	}
	rep.TotalSteps = raw.TotalSteps

	names := make(map[string]struct{}, len(raw.StepsByFunction))
	for name := range raw.StepsByFunction {
		names[name] = struct{}{}
	}
	for name := range raw.CallsByFunction {
		names[name] = struct{}{}
	}

	for name := range names {
		rep.Rows = append(rep.Rows, Row{
			Function: name,
			Steps:    raw.StepsByFunction[name],
			Calls:    raw.CallsByFunction[name],
		})
	}
	sort.Slice(rep.Rows, func(i, j int) bool {
		if rep.Rows[i].Steps != rep.Rows[j].Steps {
			return rep.Rows[i].Steps > rep.Rows[j].Steps
		}
		return rep.Rows[i].Function < rep.Rows[j].Function
	})
	return rep
}

// String renders the report as a table suitable for terminal output.
func (r *Report) String() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Function", "Steps", "Calls"})
	for _, row := range r.Rows {
		t.AppendRow(table.Row{row.Function, row.Steps, row.Calls})
	}
	t.AppendFooter(table.Row{"Total", r.TotalSteps, ""})
	return t.Render()
}
