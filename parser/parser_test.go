package parser

import (
	"testing"

	"ledger/ast"
	"ledger/lexer"
)

func parseFormula(t *testing.T, input string) ast.Expression {
	t.Helper()
	p := New(lexer.New(input))
	expr, err := p.ParseFormula()
	if err != nil {
		t.Fatalf("ParseFormula(%q) error: %v", input, err)
	}
	return expr
}

func number(t *testing.T, expr ast.Expression) float64 {
	t.Helper()
	n, ok := expr.(*ast.NumberLiteral)
	if !ok {
		t.Fatalf("expected NumberLiteral, got %#v", expr)
	}
	return n.Value
}

func TestParseMultiplyBindsTighterThanAdd(t *testing.T) {
	// 1+2*3 must parse as 1+(2*3): the top node is "+" whose right side is
	// the "*" node, not the other way around.
	expr := parseFormula(t, "1+2*3")
	top, ok := expr.(*ast.InfixNode)
	if !ok || top.Operator != "+" {
		t.Fatalf("top node = %#v, want InfixNode(+)", expr)
	}
	if number(t, top.Left) != 1 {
		t.Errorf("left = %v, want 1", top.Left)
	}
	right, ok := top.Right.(*ast.InfixNode)
	if !ok || right.Operator != "*" {
		t.Fatalf("right = %#v, want InfixNode(*)", top.Right)
	}
	if number(t, right.Left) != 2 || number(t, right.Right) != 3 {
		t.Errorf("right operands = %v, %v, want 2, 3", right.Left, right.Right)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	// (1+2)*3 must parse as (1+2)*3: the top node is "*" whose left side is
	// the "+" node.
	expr := parseFormula(t, "(1+2)*3")
	top, ok := expr.(*ast.InfixNode)
	if !ok || top.Operator != "*" {
		t.Fatalf("top node = %#v, want InfixNode(*)", expr)
	}
	if _, ok := top.Left.(*ast.InfixNode); !ok {
		t.Fatalf("left = %#v, want InfixNode(+)", top.Left)
	}
	if number(t, top.Right) != 3 {
		t.Errorf("right = %v, want 3", top.Right)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	// 2^3^2 must parse as 2^(3^2): the top node's right side is itself a
	// "^" node, never its left side.
	expr := parseFormula(t, "2^3^2")
	top, ok := expr.(*ast.InfixNode)
	if !ok || top.Operator != "^" {
		t.Fatalf("top node = %#v, want InfixNode(^)", expr)
	}
	if _, ok := top.Right.(*ast.InfixNode); !ok {
		t.Fatalf("right = %#v, want InfixNode(^)", top.Right)
	}
	if number(t, top.Left) != 2 {
		t.Errorf("left = %v, want 2", top.Left)
	}
}

func TestParsePrefixMinus(t *testing.T) {
	expr := parseFormula(t, "-1+2")
	top, ok := expr.(*ast.InfixNode)
	if !ok || top.Operator != "+" {
		t.Fatalf("top node = %#v, want InfixNode(+)", expr)
	}
	if _, ok := top.Left.(*ast.PrefixNode); !ok {
		t.Fatalf("left = %#v, want PrefixNode(-)", top.Left)
	}
}

func TestParseCellAndRangeRef(t *testing.T) {
	expr := parseFormula(t, "A1")
	ref, ok := expr.(*ast.CellRefNode)
	if !ok || ref.Ref != "A1" {
		t.Fatalf("A1 parsed as %#v, want CellRefNode", expr)
	}

	expr = parseFormula(t, "SUM(A1:B10)")
	call, ok := expr.(*ast.CallNode)
	if !ok || len(call.Args) != 1 {
		t.Fatalf("SUM(A1:B10) = %#v, want CallNode with 1 arg", expr)
	}
	rng, ok := call.Args[0].(*ast.RangeRefNode)
	if !ok || rng.From != "A1" || rng.To != "B10" {
		t.Fatalf("arg = %#v, want RangeRefNode A1:B10", call.Args[0])
	}
}

func TestParseChainedCall(t *testing.T) {
	expr := parseFormula(t, "LAMBDA(x,x+1)(41)")
	outer, ok := expr.(*ast.CallNode)
	if !ok {
		t.Fatalf("expected outer CallNode, got %#v", expr)
	}
	if len(outer.Args) != 1 {
		t.Fatalf("outer call has %d args, want 1", len(outer.Args))
	}
	if _, ok := outer.Callee.(*ast.CallNode); !ok {
		t.Fatalf("callee = %#v, want CallNode (the LAMBDA(...) call)", outer.Callee)
	}
}

func TestParseBooleanAndString(t *testing.T) {
	expr := parseFormula(t, "TRUE")
	if b, ok := expr.(*ast.BooleanLiteral); !ok || !b.Value {
		t.Fatalf("TRUE parsed as %#v", expr)
	}
	expr = parseFormula(t, `"hello"`)
	if s, ok := expr.(*ast.StringLiteral); !ok || s.Value != "hello" {
		t.Fatalf(`"hello" parsed as %#v`, expr)
	}
}

func TestParseNameVsCellRef(t *testing.T) {
	expr := parseFormula(t, "LET(total,1,total)")
	call, ok := expr.(*ast.CallNode)
	if !ok || len(call.Args) != 3 {
		t.Fatalf("LET(...) = %#v", expr)
	}
	if _, ok := call.Args[0].(*ast.NameNode); !ok {
		t.Fatalf("first LET arg = %#v, want NameNode", call.Args[0])
	}
}

func TestParseErrorOnMissingParen(t *testing.T) {
	p := New(lexer.New("SUM(A1,A2"))
	_, err := p.ParseFormula()
	if err == nil {
		t.Fatal("expected parse error for unterminated call")
	}
}

func TestParseErrorOnDanglingOperator(t *testing.T) {
	p := New(lexer.New("1+"))
	_, err := p.ParseFormula()
	if err == nil {
		t.Fatal("expected parse error for dangling operator")
	}
}

func TestParseTrailingTokenIsError(t *testing.T) {
	p := New(lexer.New("1 2"))
	_, err := p.ParseFormula()
	if err == nil {
		t.Fatal("expected parse error for trailing token")
	}
}
