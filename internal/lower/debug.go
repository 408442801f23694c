package lower

// DebugInfo maps internal function identifiers to human-readable
// qualified names.
type DebugInfo struct {
	FuncNames map[FuncID]string
}

// Replacer rewrites internal identifiers in a lowered program into
// display names taken from debug metadata. Both operations are
// idempotent: a program with no identifiers left is returned unchanged.
type Replacer struct {
	Debug *DebugInfo
}

// EnrichFunctionNames fills in the display name of every function that
// does not have one yet. Identifiers are kept; only Apply erases them.
func (r *Replacer) EnrichFunctionNames(p *Program) {
	for i := range p.Funcs {
		fn := &p.Funcs[i]
		if fn.Name == "" {
			fn.Name = r.Debug.FuncNames[fn.ID]
		}
	}
}

// Apply returns a copy of p in which every remaining identifier is
// replaced by its display name and then erased. The result is what the
// execution engine and the report renderer see.
func (r *Replacer) Apply(p *Program) *Program {
	out := &Program{Funcs: make([]Function, len(p.Funcs))}
	for i, fn := range p.Funcs {
		nf := fn
		nf.Code = make([]Instruction, len(fn.Code))
		copy(nf.Code, fn.Code)

		if nf.Name == "" {
			nf.Name = r.Debug.FuncNames[nf.ID]
		}
		nf.ID = NoFunc

		for j := range nf.Code {
			in := &nf.Code[j]
			if in.Op == OpCall && in.TargetName == "" {
				in.TargetName = r.Debug.FuncNames[in.Target]
				in.Target = NoFunc
			}
		}
		out.Funcs[i] = nf
	}
	return out
}
