package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroforge/astro/pkg/ast"
	"github.com/astroforge/astro/pkg/token"
)

func TestLexerTokens(t *testing.T) {
	lex := NewLexer("test.astro", "fn main() -> felt { return 0x2a; }")

	want := []token.Type{
		token.FN, token.IDENT, token.LPAREN, token.RPAREN, token.ARROW,
		token.IDENT, token.LBRACE, token.RETURN, token.NUMBER,
		token.SEMICOLON, token.RBRACE, token.EOF,
	}
	for _, w := range want {
		tok, err := lex.Next()
		require.NoError(t, err)
		assert.Equal(t, w, tok.Type)
	}
}

func TestLexerComments(t *testing.T) {
	lex := NewLexer("test.astro", "// leading\nlet // trailing\nx")

	tok, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, token.LET, tok.Type)
	assert.Equal(t, 2, tok.Pos.Line)

	tok, err = lex.Next()
	require.NoError(t, err)
	assert.Equal(t, token.IDENT, tok.Type)
	assert.Equal(t, "x", tok.Literal)
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unexpected character", "fn @"},
		{"unterminated short string", "'abc"},
		{"invalid number", "12ab"},
		{"bare hex prefix", "0x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := NewLexer("test.astro", tt.input)
			var err error
			for range 4 {
				if _, err = lex.Next(); err != nil {
					break
				}
			}
			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
		})
	}
}

func TestParseFile(t *testing.T) {
	src := `
fn double(x) -> felt {
    return x * 2;
}

fn main() -> felt {
    let a = double(21);
    return a;
}
`
	file, err := ParseFile("test.astro", src)
	require.NoError(t, err)
	require.Len(t, file.Funcs, 2)

	double := file.Funcs[0]
	assert.Equal(t, "double", double.Name)
	require.Len(t, double.Params, 1)
	assert.True(t, double.ReturnsValue)

	main := file.Funcs[1]
	assert.Equal(t, "main", main.Name)
	require.Len(t, main.Body.Stmts, 2)

	let, ok := main.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "a", let.Name)

	call, ok := let.Value.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "double", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParseIfElse(t *testing.T) {
	src := `
fn main() -> felt {
    if 1 == 2 {
        return 1;
    } else {
        return 2;
    }
}
`
	file, err := ParseFile("test.astro", src)
	require.NoError(t, err)

	stmt, ok := file.Funcs[0].Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, stmt.Else)

	cond, ok := stmt.Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.EQ, cond.Op)
}

func TestParsePanicWithShortString(t *testing.T) {
	src := `
fn main() {
    panic('oops', 7);
}
`
	file, err := ParseFile("test.astro", src)
	require.NoError(t, err)

	fn := file.Funcs[0]
	assert.False(t, fn.ReturnsValue)

	exprStmt, ok := fn.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "panic", call.Name)
	require.Len(t, call.Args, 2)

	lit, ok := call.Args[0].(*ast.ShortStringLit)
	require.True(t, ok)
	assert.Equal(t, "oops", lit.Text)
}

func TestParsePrecedence(t *testing.T) {
	src := `fn main() -> felt { return 1 + 2 * 3; }`

	file, err := ParseFile("test.astro", src)
	require.NoError(t, err)

	ret := file.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	add, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, add.Op)

	mul, ok := add.Y.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing paren", "fn main( { }"},
		{"missing semicolon", "fn main() { return 1 }"},
		{"bad return type", "fn main() -> int { }"},
		{"statement outside function", "let x = 1;"},
		{"unclosed block", "fn main() {"},
		{"oversized short string", "fn main() { panic('a short string that is far too long to fit'); }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile("test.astro", tt.src)
			require.Error(t, err)
		})
	}
}
