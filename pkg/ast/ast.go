// Package ast defines the abstract syntax tree for Astro source files.
package ast

import (
	"github.com/astroforge/astro/pkg/felt"
	"github.com/astroforge/astro/pkg/token"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// File is a parsed source file.
type File struct {
	Path  string
	Funcs []*FuncDecl
}

// FuncDecl is a function declaration.
//
//	fn add(a, b) -> felt { return a + b; }
type FuncDecl struct {
	Name         string
	Params       []*Param
	ReturnsValue bool // has a "-> felt" clause
	Body         *Block
	NamePos      token.Position
}

func (d *FuncDecl) Pos() token.Position { return d.NamePos }

// Param is a single function parameter.
type Param struct {
	Name    string
	NamePos token.Position
}

// Block is a braced statement list.
type Block struct {
	Stmts  []Stmt
	Lbrace token.Position
}

func (b *Block) Pos() token.Position { return b.Lbrace }

// LetStmt binds a local name: let x = expr;
type LetStmt struct {
	Name    string
	Value   Expr
	NamePos token.Position
}

// ReturnStmt returns from the enclosing function, optionally with a value.
type ReturnStmt struct {
	Value  Expr // nil for bare return
	Return token.Position
}

// IfStmt is a conditional with an optional else block.
type IfStmt struct {
	Cond Expr
	Then *Block
	Else *Block // nil when absent
	If   token.Position
}

// ExprStmt is an expression evaluated for effect: panic(1); print(x);
type ExprStmt struct {
	X Expr
}

func (s *LetStmt) Pos() token.Position    { return s.NamePos }
func (s *ReturnStmt) Pos() token.Position { return s.Return }
func (s *IfStmt) Pos() token.Position     { return s.If }
func (s *ExprStmt) Pos() token.Position   { return s.X.Pos() }

func (*LetStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*ExprStmt) stmtNode()   {}

// NumberLit is an integer literal, already reduced into the field.
type NumberLit struct {
	Text     string
	Value    felt.Felt
	ValuePos token.Position
}

// ShortStringLit is a single-quoted literal of up to 31 bytes, encoded
// as one field element.
type ShortStringLit struct {
	Text     string
	Value    felt.Felt
	ValuePos token.Position
}

// Ident is a reference to a named binding.
type Ident struct {
	Name    string
	NamePos token.Position
}

// BinaryExpr is an infix operation.
type BinaryExpr struct {
	Op   token.Type
	X, Y Expr
}

// UnaryExpr is a prefix operation; only MINUS exists.
type UnaryExpr struct {
	Op    token.Type
	X     Expr
	OpPos token.Position
}

// CallExpr calls a function or builtin by name.
type CallExpr struct {
	Name    string
	Args    []Expr
	NamePos token.Position
}

func (e *NumberLit) Pos() token.Position      { return e.ValuePos }
func (e *ShortStringLit) Pos() token.Position { return e.ValuePos }
func (e *Ident) Pos() token.Position          { return e.NamePos }
func (e *BinaryExpr) Pos() token.Position     { return e.X.Pos() }
func (e *UnaryExpr) Pos() token.Position      { return e.OpPos }
func (e *CallExpr) Pos() token.Position       { return e.NamePos }

func (*NumberLit) exprNode()      {}
func (*ShortStringLit) exprNode() {}
func (*Ident) exprNode()          {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*CallExpr) exprNode()       {}
