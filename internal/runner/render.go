package runner

import (
	"strconv"
	"strings"

	"github.com/astroforge/astro/internal/engine"
	"github.com/astroforge/astro/internal/logdb"
	"github.com/astroforge/astro/pkg/felt"
)

// Renderer turns an execution result into the final report string. It
// never fails; malformed panic payloads degrade to their raw numeric
// rendering inside the felt decoder.
type Renderer struct {
	// DbgLog is the captured debug-print log. Its contents are
	// prepended to the report when the caller asks for the dbg hint.
	DbgLog *logdb.Log
}

// Render produces the report for res. Identical inputs always produce
// byte-identical output.
func (r *Renderer) Render(res *engine.RunResult, printFullMemory, useDbgPrintHint bool) string {
	var b strings.Builder

	if useDbgPrintHint && r.DbgLog != nil {
		b.WriteString(r.DbgLog.FileText(logdb.DefaultFile))
	}

	switch res.Kind {
	case engine.ResultSuccess:
		b.WriteString("Run completed successfully, returning ")
		b.WriteString(felt.Join(res.Values))
		b.WriteByte('\n')
	case engine.ResultPanic:
		b.WriteString("Run panicked with [")
		rd := felt.NewReader(res.Values)
		for i := 0; ; i++ {
			item, ok := felt.FormatNextItem(rd)
			if !ok {
				break
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.QuoteIfString())
		}
		b.WriteString("].\n")
	}

	if res.GasCounter != nil {
		b.WriteString("Remaining gas: ")
		b.WriteString(strconv.FormatUint(*res.GasCounter, 10))
		b.WriteByte('\n')
	}

	if printFullMemory {
		b.WriteString("Full memory: [")
		for _, cell := range res.Memory {
			if cell == nil {
				b.WriteString("_, ")
			} else {
				b.WriteString(cell.String())
				b.WriteString(", ")
			}
		}
		b.WriteString("]\n")
	}

	return b.String()
}
