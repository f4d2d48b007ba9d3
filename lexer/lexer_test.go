package lexer

import (
	"testing"

	"ledger/token"
)

func TestNextToken(t *testing.T) {
	input := `SUM(A1:A3,10.5)+B2<>"hi, there"&TRUE<=2e3`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.IDENT, "SUM"},
		{token.LPAREN, "("},
		{token.IDENT, "A1"},
		{token.COLON, ":"},
		{token.IDENT, "A3"},
		{token.COMMA, ","},
		{token.NUMBER, "10.5"},
		{token.RPAREN, ")"},
		{token.PLUS, "+"},
		{token.IDENT, "B2"},
		{token.NOT_EQ, "<>"},
		{token.STRING, "hi, there"},
		{token.AMP, "&"},
		{token.TRUE, "TRUE"},
		{token.LE, "<="},
		{token.NUMBER, "2e3"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestDottedFunctionNames(t *testing.T) {
	l := New("MODE.SNGL(A1:A2)")
	tok := l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "MODE.SNGL" {
		t.Fatalf("dotted identifier = %q %q, want IDENT \"MODE.SNGL\"", tok.Type, tok.Literal)
	}
}

func TestEscapedStringQuotes(t *testing.T) {
	l := New(`"say ""hi"""`)
	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Literal != `say "hi"` {
		t.Fatalf("escaped string = %q %q, want STRING %q", tok.Type, tok.Literal, `say "hi"`)
	}
}

func TestScientificNotationNumber(t *testing.T) {
	for _, src := range []string{"1e10", "1.5E+3", "2E-4"} {
		l := New(src)
		tok := l.NextToken()
		if tok.Type != token.NUMBER || tok.Literal != src {
			t.Errorf("NextToken(%q) = %q %q, want NUMBER %q", src, tok.Type, tok.Literal, src)
		}
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("1\n+2")
	first := l.NextToken()
	if first.Line != 1 {
		t.Errorf("first token line = %d, want 1", first.Line)
	}
	_ = l.NextToken() // '+' on line 2
	third := l.NextToken()
	if third.Line != 2 {
		t.Errorf("third token line = %d, want 2", third.Line)
	}
}
