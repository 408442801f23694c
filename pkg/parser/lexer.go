package parser

import (
	"fmt"

	"github.com/astroforge/astro/pkg/token"
)

// Lexer tokenizes Astro source text.
type Lexer struct {
	file  string
	input string
	pos   int // current byte offset
	line  int
	col   int
}

// NewLexer returns a lexer over input. The file name is only used for
// positions in errors and diagnostics.
func NewLexer(file, input string) *Lexer {
	return &Lexer{file: file, input: input, line: 1, col: 1}
}

func (l *Lexer) position() token.Position {
	return token.Position{File: l.file, Line: l.line, Column: l.col}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.input) {
		return 0
	}
	return l.input[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		switch c := l.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token, or a LexError on malformed input.
func (l *Lexer) Next() (token.Token, error) {
	l.skipSpaceAndComments()

	pos := l.position()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: pos}, nil
	}

	c := l.peek()
	switch {
	case isLetter(c):
		start := l.pos
		for l.pos < len(l.input) && isIdentByte(l.peek()) {
			l.advance()
		}
		lit := l.input[start:l.pos]
		return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: pos}, nil

	case isDigit(c):
		return l.lexNumber(pos)

	case c == '\'':
		return l.lexShortString(pos)
	}

	l.advance()
	two := func(t token.Type, lit string) (token.Token, error) {
		l.advance()
		return token.Token{Type: t, Literal: lit, Pos: pos}, nil
	}

	switch c {
	case '+':
		return token.Token{Type: token.PLUS, Literal: "+", Pos: pos}, nil
	case '-':
		if l.peek() == '>' {
			return two(token.ARROW, "->")
		}
		return token.Token{Type: token.MINUS, Literal: "-", Pos: pos}, nil
	case '*':
		return token.Token{Type: token.STAR, Literal: "*", Pos: pos}, nil
	case '=':
		if l.peek() == '=' {
			return two(token.EQ, "==")
		}
		return token.Token{Type: token.ASSIGN, Literal: "=", Pos: pos}, nil
	case '!':
		if l.peek() == '=' {
			return two(token.NE, "!=")
		}
	case '<':
		if l.peek() == '=' {
			return two(token.LE, "<=")
		}
		return token.Token{Type: token.LT, Literal: "<", Pos: pos}, nil
	case '>':
		if l.peek() == '=' {
			return two(token.GE, ">=")
		}
		return token.Token{Type: token.GT, Literal: ">", Pos: pos}, nil
	case '(':
		return token.Token{Type: token.LPAREN, Literal: "(", Pos: pos}, nil
	case ')':
		return token.Token{Type: token.RPAREN, Literal: ")", Pos: pos}, nil
	case '{':
		return token.Token{Type: token.LBRACE, Literal: "{", Pos: pos}, nil
	case '}':
		return token.Token{Type: token.RBRACE, Literal: "}", Pos: pos}, nil
	case ',':
		return token.Token{Type: token.COMMA, Literal: ",", Pos: pos}, nil
	case ';':
		return token.Token{Type: token.SEMICOLON, Literal: ";", Pos: pos}, nil
	}

	return token.Token{Type: token.ILLEGAL, Literal: string(c), Pos: pos},
		&LexError{Pos: pos, Message: fmt.Sprintf("unexpected character %q", c)}
}

func (l *Lexer) lexNumber(pos token.Position) (token.Token, error) {
	start := l.pos
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		if !isHexDigit(l.peek()) {
			return token.Token{}, &LexError{Pos: pos, Message: "invalid hexadecimal literal"}
		}
		for l.pos < len(l.input) && isHexDigit(l.peek()) {
			l.advance()
		}
	} else {
		for l.pos < len(l.input) && isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.pos < len(l.input) && isLetter(l.peek()) {
		return token.Token{}, &LexError{Pos: pos, Message: "invalid number literal"}
	}
	return token.Token{Type: token.NUMBER, Literal: l.input[start:l.pos], Pos: pos}, nil
}

func (l *Lexer) lexShortString(pos token.Position) (token.Token, error) {
	l.advance() // opening quote
	start := l.pos
	for {
		if l.pos >= len(l.input) || l.peek() == '\n' {
			return token.Token{}, &LexError{Pos: pos, Message: "unterminated short string literal"}
		}
		if l.peek() == '\'' {
			break
		}
		l.advance()
	}
	lit := l.input[start:l.pos]
	l.advance() // closing quote
	return token.Token{Type: token.SHORTSTRING, Literal: lit, Pos: pos}, nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentByte(c byte) bool { return isLetter(c) || isDigit(c) }

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
