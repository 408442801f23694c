package engine

import (
	"fmt"
	"strings"

	"github.com/astroforge/astro/internal/lower"
)

// EntrySelector chooses the function an execution starts from. The
// default pipeline uses ByName("::main"); alternative discovery
// strategies plug in here without touching the pipeline.
type EntrySelector interface {
	Select(e *Engine) (*lower.Function, error)
}

// ByName selects the function whose enriched display name ends with
// the given suffix.
func ByName(suffix string) EntrySelector {
	return byName{suffix: suffix}
}

type byName struct {
	suffix string
}

func (s byName) Select(e *Engine) (*lower.Function, error) {
	return e.FindFunction(s.suffix)
}

// FirstDeclared selects the first function in program order.
func FirstDeclared() EntrySelector {
	return firstDeclared{}
}

type firstDeclared struct{}

func (firstDeclared) Select(e *Engine) (*lower.Function, error) {
	if len(e.prog.Funcs) == 0 {
		return nil, fmt.Errorf("program has no functions")
	}
	return &e.prog.Funcs[0], nil
}

// FindFunction returns the function whose display name matches or ends
// with the given suffix.
func (e *Engine) FindFunction(suffix string) (*lower.Function, error) {
	for i := range e.prog.Funcs {
		fn := &e.prog.Funcs[i]
		if fn.Name == suffix || strings.HasSuffix(fn.Name, suffix) {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("function with suffix %q not found", suffix)
}
