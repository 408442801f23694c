// Package token defines the lexical tokens of the Astro language.
package token

import "fmt"

// Type identifies the kind of a lexical token.
type Type int

const (
	// Special tokens
	EOF Type = iota
	ILLEGAL

	// Literals
	IDENT       // main, x
	NUMBER      // 123, 0x2a
	SHORTSTRING // 'ab'

	// Operators and delimiters
	PLUS      // +
	MINUS     // -
	STAR      // *
	ASSIGN    // =
	EQ        // ==
	NE        // !=
	LT        // <
	LE        // <=
	GT        // >
	GE        // >=
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;
	ARROW     // ->

	// Keywords
	FN
	LET
	RETURN
	IF
	ELSE
)

var names = map[Type]string{
	EOF:         "EOF",
	ILLEGAL:     "ILLEGAL",
	IDENT:       "IDENT",
	NUMBER:      "NUMBER",
	SHORTSTRING: "SHORTSTRING",
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	ASSIGN:      "=",
	EQ:          "==",
	NE:          "!=",
	LT:          "<",
	LE:          "<=",
	GT:          ">",
	GE:          ">=",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACE:      "{",
	RBRACE:      "}",
	COMMA:       ",",
	SEMICOLON:   ";",
	ARROW:       "->",
	FN:          "fn",
	LET:         "let",
	RETURN:      "return",
	IF:          "if",
	ELSE:        "else",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

var keywords = map[string]Type{
	"fn":     FN,
	"let":    LET,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
}

// LookupIdent returns the keyword type for an identifier spelling, or
// IDENT when it is not a keyword.
func LookupIdent(ident string) Type {
	if kw, ok := keywords[ident]; ok {
		return kw
	}
	return IDENT
}

// Token is one lexical token with its source position.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// Position is a line/column location in a source file. Lines and
// columns are 1-based.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
