package lower

import (
	"github.com/astroforge/astro/internal/compiler"
	"github.com/astroforge/astro/pkg/ast"
	"github.com/astroforge/astro/pkg/felt"
	"github.com/astroforge/astro/pkg/token"
)

// ProgramWithDebug pairs a lowered program with its debug metadata.
type ProgramWithDebug struct {
	Program *Program
	Debug   *DebugInfo
}

// ProgramForCrates runs the lowering query against the database.
// Returns nil when the database holds no checked program for the
// crates, which callers must treat as an internal inconsistency if the
// diagnostics gate passed beforehand.
func ProgramForCrates(db *compiler.Database, crates []compiler.CrateID) *ProgramWithDebug {
	checked := db.CheckedProgram(crates)
	if checked == nil {
		return nil
	}

	l := &lowerer{
		checked:     checked,
		withdrawGas: db.AutoWithdrawGas(),
		ids:         make(map[string]FuncID),
		cyclic:      cyclicFuncs(checked),
	}
	return l.lower()
}

type lowerer struct {
	checked     *compiler.CheckedProgram
	withdrawGas bool
	ids         map[string]FuncID // unqualified name -> id
	cyclic      map[string]bool   // functions on a call cycle
}

func (l *lowerer) lower() *ProgramWithDebug {
	prog := &Program{}
	debug := &DebugInfo{FuncNames: make(map[FuncID]string)}

	for i, info := range l.checked.Funcs {
		id := FuncID(i)
		l.ids[info.Name] = id
		debug.FuncNames[id] = info.QualifiedName
	}

	for i, info := range l.checked.Funcs {
		fn := l.lowerFunc(FuncID(i), info)
		prog.Funcs = append(prog.Funcs, fn)
	}

	return &ProgramWithDebug{Program: prog, Debug: debug}
}

// funcLowerer carries per-function codegen state.
type funcLowerer struct {
	parent *lowerer
	code   []Instruction
	slots  map[string]int
	next   int
}

func (l *lowerer) lowerFunc(id FuncID, info *compiler.FuncInfo) Function {
	fl := &funcLowerer{parent: l, slots: make(map[string]int)}
	for _, p := range info.Decl.Params {
		fl.slots[p.Name] = fl.next
		fl.next++
	}

	// Functions on a call cycle always meter, since nothing else
	// bounds them. Other functions meter only in metered mode.
	if l.withdrawGas || l.cyclic[info.Name] {
		fl.emit(Instruction{Op: OpWithdrawGas})
	}

	fl.lowerBlock(info.Decl.Body)

	// Fallback for bodies that run off the end; the checker guarantees
	// value-returning functions never reach it.
	fl.emit(Instruction{Op: OpRet, Imm: 0})

	return Function{
		ID:           id,
		ParamCount:   info.ParamCount,
		NumLocals:    fl.next,
		ReturnsValue: info.ReturnsValue,
		Code:         fl.code,
	}
}

// cyclicFuncs returns the names of functions that can reach themselves
// through the call graph, whether directly or through other functions.
func cyclicFuncs(checked *compiler.CheckedProgram) map[string]bool {
	graph := make(map[string][]string)
	for _, info := range checked.Funcs {
		targets := make(map[string]bool)
		blockCallTargets(info.Decl.Body, targets)
		for name := range targets {
			if _, ok := checked.Lookup(name); ok {
				graph[info.Name] = append(graph[info.Name], name)
			}
		}
	}

	cyclic := make(map[string]bool)
	for name := range graph {
		if reaches(graph, name, name, make(map[string]bool)) {
			cyclic[name] = true
		}
	}
	return cyclic
}

// reaches reports whether to is reachable from from by following call
// edges in graph.
func reaches(graph map[string][]string, from, to string, seen map[string]bool) bool {
	for _, next := range graph[from] {
		if next == to {
			return true
		}
		if seen[next] {
			continue
		}
		seen[next] = true
		if reaches(graph, next, to, seen) {
			return true
		}
	}
	return false
}

// blockCallTargets collects the names called anywhere in b.
func blockCallTargets(b *ast.Block, out map[string]bool) {
	for _, stmt := range b.Stmts {
		stmtCallTargets(stmt, out)
	}
}

func stmtCallTargets(stmt ast.Stmt, out map[string]bool) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		exprCallTargets(s.Value, out)
	case *ast.ReturnStmt:
		if s.Value != nil {
			exprCallTargets(s.Value, out)
		}
	case *ast.IfStmt:
		exprCallTargets(s.Cond, out)
		blockCallTargets(s.Then, out)
		if s.Else != nil {
			blockCallTargets(s.Else, out)
		}
	case *ast.ExprStmt:
		exprCallTargets(s.X, out)
	}
}

func exprCallTargets(expr ast.Expr, out map[string]bool) {
	switch e := expr.(type) {
	case *ast.UnaryExpr:
		exprCallTargets(e.X, out)
	case *ast.BinaryExpr:
		exprCallTargets(e.X, out)
		exprCallTargets(e.Y, out)
	case *ast.CallExpr:
		out[e.Name] = true
		for _, arg := range e.Args {
			exprCallTargets(arg, out)
		}
	}
}

func (fl *funcLowerer) emit(in Instruction) int {
	fl.code = append(fl.code, in)
	return len(fl.code) - 1
}

func (fl *funcLowerer) lowerBlock(b *ast.Block) {
	for _, stmt := range b.Stmts {
		fl.lowerStmt(stmt)
	}
}

func (fl *funcLowerer) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		fl.lowerExpr(s.Value)
		slot := fl.next
		fl.next++
		fl.slots[s.Name] = slot
		fl.emit(Instruction{Op: OpStore, Imm: slot})

	case *ast.ReturnStmt:
		if s.Value != nil {
			fl.lowerExpr(s.Value)
			fl.emit(Instruction{Op: OpRet, Imm: 1})
			return
		}
		fl.emit(Instruction{Op: OpRet, Imm: 0})

	case *ast.IfStmt:
		fl.lowerExpr(s.Cond)
		jz := fl.emit(Instruction{Op: OpJumpIfZero})
		fl.lowerBlock(s.Then)
		if s.Else == nil {
			fl.code[jz].Imm = len(fl.code)
			return
		}
		jend := fl.emit(Instruction{Op: OpJump})
		fl.code[jz].Imm = len(fl.code)
		fl.lowerBlock(s.Else)
		fl.code[jend].Imm = len(fl.code)

	case *ast.ExprStmt:
		if call, ok := s.X.(*ast.CallExpr); ok {
			fl.lowerCallStmt(call)
			return
		}
		fl.lowerExpr(s.X)
		fl.emit(Instruction{Op: OpPop})
	}
}

// lowerCallStmt lowers a call in statement position, discarding any
// produced value.
func (fl *funcLowerer) lowerCallStmt(call *ast.CallExpr) {
	switch call.Name {
	case compiler.BuiltinPanic, compiler.BuiltinPrint:
		fl.lowerExpr(call)
		return
	}
	fl.lowerExpr(call)
	if target, ok := fl.parent.checked.Lookup(call.Name); ok && target.ReturnsValue {
		fl.emit(Instruction{Op: OpPop})
	}
}

func (fl *funcLowerer) lowerExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		fl.emit(Instruction{Op: OpPush, Operand: e.Value})

	case *ast.ShortStringLit:
		fl.emit(Instruction{Op: OpPush, Operand: e.Value})

	case *ast.Ident:
		fl.emit(Instruction{Op: OpLoad, Imm: fl.slots[e.Name]})

	case *ast.UnaryExpr:
		// -x lowers as 0 - x.
		fl.emit(Instruction{Op: OpPush, Operand: felt.New(0)})
		fl.lowerExpr(e.X)
		fl.emit(Instruction{Op: OpSub})

	case *ast.BinaryExpr:
		fl.lowerExpr(e.X)
		fl.lowerExpr(e.Y)
		fl.emit(Instruction{Op: binaryOp(e.Op)})

	case *ast.CallExpr:
		for _, arg := range e.Args {
			fl.lowerExpr(arg)
		}
		switch e.Name {
		case compiler.BuiltinPanic:
			fl.emit(Instruction{Op: OpPanic, Imm: len(e.Args)})
		case compiler.BuiltinPrint:
			fl.emit(Instruction{Op: OpPrint})
		default:
			fl.emit(Instruction{
				Op:     OpCall,
				Imm:    len(e.Args),
				Target: fl.parent.ids[e.Name],
			})
		}
	}
}

func binaryOp(t token.Type) Opcode {
	switch t {
	case token.PLUS:
		return OpAdd
	case token.MINUS:
		return OpSub
	case token.STAR:
		return OpMul
	case token.EQ:
		return OpEq
	case token.NE:
		return OpNe
	case token.LT:
		return OpLt
	case token.LE:
		return OpLe
	case token.GT:
		return OpGt
	case token.GE:
		return OpGe
	default:
		return OpNop
	}
}
