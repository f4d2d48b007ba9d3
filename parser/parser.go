// Package parser builds an ast.Expression tree out of formula source text
// using a hand-rolled Pratt parser (prefix/infix parse function tables),
// in the same style as the teacher's general-purpose language parser but
// reduced to the formula grammar: literals, cell/range references,
// function calls, and infix operators. There is no statement grammar —
// a formula is a single expression.
package parser

import (
	"fmt"
	"regexp"
	"strconv"

	"ledger/ast"
	"ledger/lexer"
	"ledger/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []ParseError

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

const (
	_ int = iota
	LOWEST
	COMPARISON
	CONCAT
	SUM
	PRODUCT
	POWER
	PREFIX
	CALL
)

var precedences = map[token.TokenType]int{
	token.EQ:       COMPARISON,
	token.NOT_EQ:   COMPARISON,
	token.LT:       COMPARISON,
	token.LE:       COMPARISON,
	token.GT:       COMPARISON,
	token.GE:       COMPARISON,
	token.AMP:      CONCAT,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.CARET:    POWER,
	token.LPAREN:   CALL,
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []ParseError{}}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifierOrRef)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, tt := range []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.CARET,
		token.AMP, token.EQ, token.NOT_EQ, token.LT, token.LE, token.GT, token.GE,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) addError(tok token.Token, msg string) {
	p.errors = append(p.errors, ParseError{Message: msg, Token: tok})
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseFormula parses a complete formula expression and reports an error
// if trailing tokens remain or no expression could be parsed.
func (p *Parser) ParseFormula() (ast.Expression, error) {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil, fmt.Errorf("%s", FormatParseErrors(p.errors, "", ""))
	}
	if !p.peekTokenIs(token.EOF) {
		p.addError(p.peekToken, fmt.Sprintf("unexpected trailing token %q", p.peekToken.Literal))
	}
	if len(p.errors) > 0 {
		return expr, fmt.Errorf("%s", FormatParseErrors(p.errors, "", ""))
	}
	return expr, nil
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(p.curToken, fmt.Sprintf("no prefix parse function for %q", p.curToken.Literal))
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

var cellPattern = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)

// parseIdentifierOrRef disambiguates a bare identifier into a cell
// reference, a range reference (when followed by ":"), or a plain name
// node used for variables and LAMBDA/LET parameter binders.
func (p *Parser) parseIdentifierOrRef() ast.Expression {
	tok := p.curToken
	isCell := cellPattern.MatchString(tok.Literal)

	if isCell && p.peekTokenIs(token.COLON) {
		p.nextToken() // consume ':'
		if !p.peekTokenIs(token.IDENT) || !cellPattern.MatchString(p.peekToken.Literal) {
			p.addError(p.peekToken, "expected cell reference after ':'")
			return nil
		}
		p.nextToken()
		return &ast.RangeRefNode{Token: tok, From: tok.Literal, To: p.curToken.Literal}
	}

	if isCell {
		return &ast.CellRefNode{Token: tok, Ref: tok.Literal}
	}
	return &ast.NameNode{Token: tok, Name: tok.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	val, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.addError(tok, fmt.Sprintf("invalid number literal %q", tok.Literal))
		return nil
	}
	return &ast.NumberLiteral{Token: tok, Value: val}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Type == token.TRUE}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	return &ast.PrefixNode{Token: tok, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	precedence := p.curPrecedence()
	if tok.Type == token.CARET {
		// "^" is right-associative: 2^3^2 parses as 2^(3^2).
		precedence--
	}
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.InfixNode{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

// parseCallExpression builds a call on whatever expression precedes "(".
// That's ordinarily a NameNode (a builtin or variable lookup), but it may
// just as well be another CallNode — repeated infix-LPAREN application
// handles chained calls like LAMBDA(x,x+1)(41) without any special case.
func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	call := &ast.CallNode{Token: p.curToken, Callee: fn}
	call.Args = p.parseExpressionList(token.RPAREN)
	return call
}

func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }
func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected next token to be %s, got %q instead", t, p.peekToken.Literal))
	return false
}
