package compiler

import (
	"fmt"

	"github.com/astroforge/astro/pkg/ast"
	"github.com/astroforge/astro/pkg/token"
)

// FuncInfo describes one checked function.
type FuncInfo struct {
	Name          string
	QualifiedName string
	ParamCount    int
	ReturnsValue  bool
	Decl          *ast.FuncDecl
}

// CheckedProgram is the result of semantic analysis: the functions of
// the loaded crates with their resolved signatures. It is queried by
// lowering and never mutated afterwards.
type CheckedProgram struct {
	Funcs  []*FuncInfo
	byName map[string]*FuncInfo
}

// Lookup returns the function with the given unqualified name.
func (p *CheckedProgram) Lookup(name string) (*FuncInfo, bool) {
	f, ok := p.byName[name]
	return f, ok
}

// Builtins resolvable when the corelib is detected. panic takes one or
// more payload values; print takes exactly one.
const (
	BuiltinPanic = "panic"
	BuiltinPrint = "print"
)

type checker struct {
	db    *Database
	prog  *CheckedProgram
	diags Diagnostics
}

func (c *checker) errorf(pos token.Position, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Severity: SeverityError,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) warnf(pos token.Position, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Severity: SeverityWarning,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) check(files []*ast.File) *CheckedProgram {
	c.prog = &CheckedProgram{byName: make(map[string]*FuncInfo)}

	// Declaration pass so functions may call forward.
	for _, file := range files {
		for _, fn := range file.Funcs {
			if _, exists := c.prog.byName[fn.Name]; exists {
				c.errorf(fn.NamePos, "function %q is declared more than once", fn.Name)
				continue
			}
			info := &FuncInfo{
				Name:          fn.Name,
				QualifiedName: CrateName + "::" + fn.Name,
				ParamCount:    len(fn.Params),
				ReturnsValue:  fn.ReturnsValue,
				Decl:          fn,
			}
			c.prog.Funcs = append(c.prog.Funcs, info)
			c.prog.byName[fn.Name] = info
		}
	}

	for _, info := range c.prog.Funcs {
		c.checkFunc(info)
	}
	return c.prog
}

// scope tracks local bindings of one function body.
type scope struct {
	names map[string]*binding
	order []*binding
}

type binding struct {
	name string
	pos  token.Position
	used bool
}

func (c *checker) checkFunc(info *FuncInfo) {
	sc := &scope{names: make(map[string]*binding)}
	for _, p := range info.Decl.Params {
		if _, dup := sc.names[p.Name]; dup {
			c.errorf(p.NamePos, "duplicate parameter %q", p.Name)
			continue
		}
		// Parameters are considered used; only let bindings warn.
		b := &binding{name: p.Name, pos: p.NamePos, used: true}
		sc.names[p.Name] = b
	}

	c.checkBlock(info, sc, info.Decl.Body)

	for _, b := range sc.order {
		if !b.used {
			c.warnf(b.pos, "unused local binding %q", b.name)
		}
	}

	if info.ReturnsValue && !blockTerminates(info.Decl.Body) {
		c.errorf(info.Decl.NamePos, "function %q may finish without returning a value", info.Name)
	}
}

func (c *checker) checkBlock(info *FuncInfo, sc *scope, b *ast.Block) {
	for _, stmt := range b.Stmts {
		c.checkStmt(info, sc, stmt)
	}
}

func (c *checker) checkStmt(info *FuncInfo, sc *scope, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.checkExpr(info, sc, s.Value)
		if _, dup := sc.names[s.Name]; dup {
			c.errorf(s.NamePos, "binding %q shadows an earlier binding", s.Name)
			return
		}
		bind := &binding{name: s.Name, pos: s.NamePos}
		sc.names[s.Name] = bind
		sc.order = append(sc.order, bind)

	case *ast.ReturnStmt:
		if s.Value != nil {
			if !info.ReturnsValue {
				c.errorf(s.Return, "function %q does not return a value", info.Name)
			}
			c.checkExpr(info, sc, s.Value)
		} else if info.ReturnsValue {
			c.errorf(s.Return, "missing return value in function %q", info.Name)
		}

	case *ast.IfStmt:
		c.checkExpr(info, sc, s.Cond)
		c.checkBlock(info, sc, s.Then)
		if s.Else != nil {
			c.checkBlock(info, sc, s.Else)
		}

	case *ast.ExprStmt:
		if call, ok := s.X.(*ast.CallExpr); ok {
			c.checkCall(info, sc, call, false)
			return
		}
		c.checkExpr(info, sc, s.X)
	}
}

func (c *checker) checkExpr(info *FuncInfo, sc *scope, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		b, ok := sc.names[e.Name]
		if !ok {
			c.errorf(e.NamePos, "unknown identifier %q", e.Name)
			return
		}
		b.used = true

	case *ast.BinaryExpr:
		c.checkExpr(info, sc, e.X)
		c.checkExpr(info, sc, e.Y)

	case *ast.UnaryExpr:
		c.checkExpr(info, sc, e.X)

	case *ast.CallExpr:
		c.checkCall(info, sc, e, true)
	}
}

func (c *checker) checkCall(info *FuncInfo, sc *scope, call *ast.CallExpr, needValue bool) {
	for _, arg := range call.Args {
		c.checkExpr(info, sc, arg)
	}

	switch call.Name {
	case BuiltinPanic:
		if !c.db.detectCorelib {
			c.errorf(call.NamePos, "unknown function %q (corelib not available)", call.Name)
			return
		}
		if len(call.Args) == 0 {
			c.errorf(call.NamePos, "panic requires at least one value")
		}
		return
	case BuiltinPrint:
		if !c.db.detectCorelib {
			c.errorf(call.NamePos, "unknown function %q (corelib not available)", call.Name)
			return
		}
		if needValue {
			c.errorf(call.NamePos, "print does not produce a value")
		}
		if len(call.Args) != 1 {
			c.errorf(call.NamePos, "print takes exactly one value, got %d", len(call.Args))
		}
		return
	}

	target, ok := c.prog.byName[call.Name]
	if !ok {
		c.errorf(call.NamePos, "unknown function %q", call.Name)
		return
	}
	if needValue && !target.ReturnsValue {
		c.errorf(call.NamePos, "function %q does not produce a value", call.Name)
	}
	if len(call.Args) != target.ParamCount {
		c.errorf(call.NamePos, "function %q takes %d arguments, got %d",
			call.Name, target.ParamCount, len(call.Args))
	}
}

// blockTerminates reports whether every path through b ends in a return
// or a panic.
func blockTerminates(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	last := b.Stmts[len(b.Stmts)-1]
	return stmtTerminates(last)
}

func stmtTerminates(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		return s.Else != nil && blockTerminates(s.Then) && blockTerminates(s.Else)
	case *ast.ExprStmt:
		call, ok := s.X.(*ast.CallExpr)
		return ok && call.Name == BuiltinPanic
	default:
		return false
	}
}
