package parser

import (
	"fmt"

	"github.com/astroforge/astro/pkg/token"
)

// ParseError is a syntax error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

// LexError is a lexical error with position information.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at %s: %s", e.Pos, e.Message)
}
