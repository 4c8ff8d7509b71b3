package lexer_test

import (
	"testing"

	"flowcore/internal/lexer"
	"flowcore/internal/token"
)

func TestNextBasicTokens(t *testing.T) {
	l := lexer.New(`handler main { return true; }`)

	want := []token.Kind{
		token.Handler, token.Ident, token.LBrace,
		token.Return, token.True, token.Semicolon,
		token.RBrace, token.EOF,
	}
	for i, k := range want {
		tok := l.Next()
		if tok.Kind != k {
			t.Fatalf("token %d: got %s, want %s", i, tok.Kind, k)
		}
	}
}

func TestDottedIdentifier(t *testing.T) {
	l := lexer.New(`req.user_tier`)
	tok := l.Next()
	if tok.Kind != token.Ident || tok.Lexeme != "req.user_tier" {
		t.Fatalf("got %v, want single Ident %q", tok, "req.user_tier")
	}
	if eof := l.Next(); eof.Kind != token.EOF {
		t.Fatalf("expected EOF after the dotted identifier, got %v", eof)
	}
}

func TestIPLiteralNotConfusedWithDottedIdent(t *testing.T) {
	l := lexer.New(`127.0.0.1`)
	tok := l.Next()
	if tok.Kind != token.IP || tok.Lexeme != "127.0.0.1" {
		t.Fatalf("got %v, want IP literal", tok)
	}
}

func TestRegexpVsDivide(t *testing.T) {
	l := lexer.New(`a / b`)
	l.Next() // a
	tok := l.Next()
	if tok.Kind != token.Slash {
		t.Fatalf("expected divide, got %v", tok)
	}
}
