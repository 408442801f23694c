// Package parser implements the lexer and recursive-descent parser for
// Astro source files.
package parser

import (
	"fmt"

	"github.com/astroforge/astro/pkg/ast"
	"github.com/astroforge/astro/pkg/felt"
	"github.com/astroforge/astro/pkg/token"
)

// Parser builds an ast.File from a token stream.
type Parser struct {
	lex  *Lexer
	tok  token.Token
	peek token.Token
}

// ParseFile parses a whole source file.
func ParseFile(path, src string) (*ast.File, error) {
	p := &Parser{lex: NewLexer(path, src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	file := &ast.File{Path: path}
	for p.tok.Type != token.EOF {
		fn, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		file.Funcs = append(file.Funcs, fn)
	}
	return file, nil
}

func (p *Parser) next() error {
	p.tok = p.peek
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = t
	return nil
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.tok.Type != t {
		return token.Token{}, &ParseError{
			Pos:     p.tok.Pos,
			Message: fmt.Sprintf("unexpected token %s, expected %s", p.tok.Type, t),
		}
	}
	cur := p.tok
	if err := p.next(); err != nil {
		return token.Token{}, err
	}
	return cur, nil
}

func (p *Parser) parseFunc() (*ast.FuncDecl, error) {
	if _, err := p.expect(token.FN); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	fn := &ast.FuncDecl{Name: name.Literal, NamePos: name.Pos}
	for p.tok.Type != token.RPAREN {
		if len(fn.Params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		param, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &ast.Param{Name: param.Literal, NamePos: param.Pos})
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if p.tok.Type == token.ARROW {
		if err := p.next(); err != nil {
			return nil, err
		}
		ret, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if ret.Literal != "felt" {
			return nil, &ParseError{Pos: ret.Pos, Message: fmt.Sprintf("unknown return type %q, only felt is supported", ret.Literal)}
		}
		fn.ReturnsValue = true
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Lbrace: lbrace.Pos}
	for p.tok.Type != token.RBRACE {
		if p.tok.Type == token.EOF {
			return nil, &ParseError{Pos: p.tok.Pos, Message: "unexpected end of file, expected }"}
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.tok.Type {
	case token.LET:
		return p.parseLet()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	}
}

func (p *Parser) parseLet() (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.LetStmt{Name: name.Literal, Value: value, NamePos: name.Pos}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	ret := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	stmt := &ast.ReturnStmt{Return: ret}
	if p.tok.Type != token.SEMICOLON {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	ifPos := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then, If: ifPos}
	if p.tok.Type == token.ELSE {
		if err := p.next(); err != nil {
			return nil, err
		}
		stmt.Else, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// Expression grammar, loosest first:
//
//	expr       = additive [ (==|!=|<|<=|>|>=) additive ]
//	additive   = term { (+|-) term }
//	term       = unary { * unary }
//	unary      = [-] primary
//	primary    = NUMBER | SHORTSTRING | IDENT | call | ( expr )
func (p *Parser) parseExpr() (ast.Expr, error) {
	x, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	switch p.tok.Type {
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		op := p.tok.Type
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, X: x, Y: y}, nil
	}
	return x, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == token.PLUS || p.tok.Type == token.MINUS {
		op := p.tok.Type
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == token.STAR {
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: token.STAR, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.tok.Type == token.MINUS {
		opPos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: token.MINUS, X: x, OpPos: opPos}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.tok.Type {
	case token.NUMBER:
		lit := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := felt.Parse(lit.Literal)
		if err != nil {
			return nil, &ParseError{Pos: lit.Pos, Message: err.Error()}
		}
		return &ast.NumberLit{Text: lit.Literal, Value: value, ValuePos: lit.Pos}, nil

	case token.SHORTSTRING:
		lit := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		value, ok := felt.FromShortString(lit.Literal)
		if !ok {
			return nil, &ParseError{
				Pos:     lit.Pos,
				Message: fmt.Sprintf("short string exceeds %d bytes", felt.MaxShortStringLen),
			}
		}
		return &ast.ShortStringLit{Text: lit.Literal, Value: value, ValuePos: lit.Pos}, nil

	case token.IDENT:
		name := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Type == token.LPAREN {
			return p.parseCallArgs(name)
		}
		return &ast.Ident{Name: name.Literal, NamePos: name.Pos}, nil

	case token.LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	}

	return nil, &ParseError{
		Pos:     p.tok.Pos,
		Message: fmt.Sprintf("unexpected token %s, expected an expression", p.tok.Type),
	}
}

func (p *Parser) parseCallArgs(name token.Token) (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	call := &ast.CallExpr{Name: name.Literal, NamePos: name.Pos}
	for p.tok.Type != token.RPAREN {
		if len(call.Args) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
