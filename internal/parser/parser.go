// Package parser turns Flow source text into the ast package's node set,
// which CodeGen consumes. It is a standard recursive-descent/precedence-
// climbing parser with a token lookahead of one and `errorf` accumulation
// instead of panicking on the first mistake.
package parser

import (
	"fmt"
	"strconv"

	"flowcore/internal/ast"
	"flowcore/internal/lexer"
	"flowcore/internal/token"
)

// Parser turns a token stream into an *ast.Unit, accumulating errors rather
// than stopping at the first one so a single source file can report more
// than one mistake per parse (mirrors CodeGen's own "keep going" policy).
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []string
}

// New creates a Parser over l, priming the one-token lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the accumulated parse errors, empty if parsing succeeded.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("%s: ", pos)+fmt.Sprintf(format, args...))
}

func (p *Parser) expect(kind token.Kind) token.Token {
	if p.cur.Kind != kind {
		p.errorf(p.cur.Pos, "expected %s, got %s (%q)", kind, p.cur.Kind, p.cur.Lexeme)
	}
	tok := p.cur
	p.nextToken()
	return tok
}

// ---------------- Top level ----------------

// ParseUnit parses one Flow source file into an *ast.Unit.
func ParseUnit(src string) (*ast.Unit, []string) {
	p := New(lexer.New(src))
	return p.parseUnit(), p.errors
}

func (p *Parser) parseUnit() *ast.Unit {
	u := ast.NewUnit(p.cur.Pos)

	for p.cur.Kind == token.Import {
		u.Imports = append(u.Imports, p.parseImport())
	}

	for p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.Var:
			decl := p.parseVarDecl(true)
			if decl != nil {
				u.Variables = append(u.Variables, decl)
			}
		case token.Function, token.Handler:
			fn := p.parseFunDecl()
			if fn != nil {
				u.Functions = append(u.Functions, fn)
			}
		default:
			p.errorf(p.cur.Pos, "unexpected token at top level: %s", p.cur.Kind)
			p.nextToken()
		}
	}
	return u
}

func (p *Parser) parseImport() *ast.Import {
	pos := p.cur.Pos
	p.expect(token.Import)
	path := p.expect(token.String).Lexeme
	if p.cur.Kind == token.Semicolon {
		p.nextToken()
	}
	return &ast.Import{Path: path, Position: pos}
}

func (p *Parser) parseVarDecl(global bool) *ast.VarDecl {
	pos := p.cur.Pos
	p.expect(token.Var)
	name := p.expect(token.Ident).Lexeme
	p.expect(token.Assign)
	value := p.parseExpr()
	if p.cur.Kind == token.Semicolon {
		p.nextToken()
	}
	return &ast.VarDecl{Name: name, Value: value, Global: global, Position: pos}
}

func (p *Parser) parseFunDecl() *ast.FunDecl {
	pos := p.cur.Pos
	isHandler := p.cur.Kind == token.Handler
	p.nextToken() // consume 'function' or 'handler'
	name := p.expect(token.Ident).Lexeme

	var params []string
	if p.cur.Kind == token.LParen {
		p.nextToken()
		for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
			params = append(params, p.expect(token.Ident).Lexeme)
			if p.cur.Kind == token.Comma {
				p.nextToken()
			}
		}
		p.expect(token.RParen)
	}

	body := p.parseCompoundStmt()
	return &ast.FunDecl{Name: name, IsHandler: isHandler, Params: params, Body: body, Position: pos}
}

// ---------------- Statements ----------------

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	pos := p.cur.Pos
	p.expect(token.LBrace)
	var stmts []ast.Stmt
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBrace)
	return &ast.CompoundStmt{Stmts: stmts, Position: pos}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case token.LBrace:
		return p.parseCompoundStmt()
	case token.If:
		return p.parseCondStmt()
	case token.Return:
		return p.parseReturnStmt()
	case token.Var:
		pos := p.cur.Pos
		decl := p.parseVarDecl(false)
		return &ast.LocalVarStmt{Decl: decl, Position: pos}
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseCondStmt() *ast.CondStmt {
	pos := p.cur.Pos
	p.expect(token.If)
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	then := p.parseStmt()
	var els ast.Stmt
	if p.cur.Kind == token.Else {
		p.nextToken()
		els = p.parseStmt()
	}
	return &ast.CondStmt{Cond: cond, Then: then, Else: els, Position: pos}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.cur.Pos
	p.expect(token.Return)
	var result ast.Expr
	if p.cur.Kind != token.Semicolon && p.cur.Kind != token.RBrace {
		result = p.parseExpr()
	}
	if p.cur.Kind == token.Semicolon {
		p.nextToken()
	}
	return &ast.ReturnStmt{Result: result, Position: pos}
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	pos := p.cur.Pos
	x := p.parseExpr()
	if p.cur.Kind == token.Semicolon {
		p.nextToken()
	}
	return &ast.ExprStmt{X: x, Position: pos}
}

// ---------------- Expressions ----------------
//
// Precedence, lowest to highest: assignment, ||, (&& xor), equality-family
// (== != =^ =$ =~ in), relational (< > <= >=), additive (+ -),
// multiplicative (* /), pow (**, right-assoc), unary (! - +), primary.

func (p *Parser) parseExpr() ast.Expr { return p.parseAssign() }

func (p *Parser) parseAssign() ast.Expr {
	left := p.parseOr()
	if p.cur.Kind == token.Assign {
		pos := p.cur.Pos
		ref, ok := left.(*ast.VarRef)
		if !ok {
			p.errorf(pos, "left side of '=' must be a variable reference")
		}
		p.nextToken()
		value := p.parseAssign()
		name := ""
		if ref != nil {
			name = ref.Name
		}
		return &ast.AssignExpr{Name: name, Value: value, Position: pos}
	}
	return left
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAndXor()
	for p.cur.Kind == token.OrOr {
		pos := p.cur.Pos
		p.nextToken()
		right := p.parseAndXor()
		left = &ast.BinaryExpr{Op: ast.OpOr, Left: left, Right: right, Position: pos}
	}
	return left
}

func (p *Parser) parseAndXor() ast.Expr {
	left := p.parseEquality()
	for p.cur.Kind == token.AndAnd || p.cur.Kind == token.Xor {
		pos := p.cur.Pos
		op := ast.OpAnd
		if p.cur.Kind == token.Xor {
			op = ast.OpXor
		}
		p.nextToken()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Position: pos}
	}
	return left
}

var equalityOps = map[token.Kind]ast.Operator{
	token.Eq:       ast.OpEq,
	token.NotEq:    ast.OpNeq,
	token.PrefixEq: ast.OpPrefixMatch,
	token.SuffixEq: ast.OpSuffixMatch,
	token.RegexpEq: ast.OpRegexMatch,
	token.In:       ast.OpIn,
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for {
		op, ok := equalityOps[p.cur.Kind]
		if !ok {
			return left
		}
		pos := p.cur.Pos
		p.nextToken()
		right := p.parseRelational()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Position: pos}
	}
}

var relationalOps = map[token.Kind]ast.Operator{
	token.Lt:   ast.OpLt,
	token.Gt:   ast.OpGt,
	token.LtEq: ast.OpLte,
	token.GtEq: ast.OpGte,
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for {
		op, ok := relationalOps[p.cur.Kind]
		if !ok {
			return left
		}
		pos := p.cur.Pos
		p.nextToken()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Position: pos}
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur.Kind == token.Plus || p.cur.Kind == token.Minus {
		pos := p.cur.Pos
		op := ast.OpAdd
		if p.cur.Kind == token.Minus {
			op = ast.OpSub
		}
		p.nextToken()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Position: pos}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parsePow()
	for p.cur.Kind == token.Star || p.cur.Kind == token.Slash {
		pos := p.cur.Pos
		op := ast.OpMul
		if p.cur.Kind == token.Slash {
			op = ast.OpDiv
		}
		p.nextToken()
		right := p.parsePow()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Position: pos}
	}
	return left
}

// parsePow is right-associative, unlike the other binary levels.
func (p *Parser) parsePow() ast.Expr {
	left := p.parseUnary()
	if p.cur.Kind == token.Pow {
		pos := p.cur.Pos
		p.nextToken()
		right := p.parsePow()
		return &ast.BinaryExpr{Op: ast.OpPow, Left: left, Right: right, Position: pos}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Kind {
	case token.Bang:
		pos := p.cur.Pos
		p.nextToken()
		return &ast.UnaryExpr{Op: ast.OpBang, X: p.parseUnary(), Position: pos}
	case token.Minus:
		pos := p.cur.Pos
		p.nextToken()
		return &ast.UnaryExpr{Op: ast.OpNeg, X: p.parseUnary(), Position: pos}
	case token.Plus:
		pos := p.cur.Pos
		p.nextToken()
		return &ast.UnaryExpr{Op: ast.OpPos, X: p.parseUnary(), Position: pos}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.Number:
		lexeme := p.cur.Lexeme
		p.nextToken()
		n, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			p.errorf(pos, "invalid number literal %q", lexeme)
		}
		return &ast.NumberLit{Value: n, Position: pos}
	case token.String:
		lexeme := p.cur.Lexeme
		p.nextToken()
		return &ast.StringLit{Value: lexeme, Position: pos}
	case token.True, token.False:
		v := p.cur.Kind == token.True
		p.nextToken()
		return &ast.BoolLit{Value: v, Position: pos}
	case token.IP:
		lexeme := p.cur.Lexeme
		p.nextToken()
		return &ast.IPLit{Value: lexeme, Position: pos}
	case token.Regexp:
		lexeme := p.cur.Lexeme
		p.nextToken()
		return &ast.RegexpLit{Pattern: lexeme, Position: pos}
	case token.LBracket:
		return p.parseListLit()
	case token.LParen:
		p.nextToken()
		x := p.parseExpr()
		p.expect(token.RParen)
		return x
	case token.Ident:
		name := p.cur.Lexeme
		p.nextToken()
		if p.cur.Kind == token.LParen {
			return p.parseCallArgs(name, pos)
		}
		return &ast.VarRef{Name: name, Position: pos}
	default:
		p.errorf(pos, "unexpected token in expression: %s (%q)", p.cur.Kind, p.cur.Lexeme)
		p.nextToken()
		return &ast.BoolLit{Value: false, Position: pos}
	}
}

func (p *Parser) parseListLit() *ast.ListLit {
	pos := p.cur.Pos
	p.expect(token.LBracket)
	var elems []ast.Expr
	for p.cur.Kind != token.RBracket && p.cur.Kind != token.EOF {
		elems = append(elems, p.parseExpr())
		if p.cur.Kind == token.Comma {
			p.nextToken()
		}
	}
	p.expect(token.RBracket)
	return &ast.ListLit{Elements: elems, Position: pos}
}

func (p *Parser) parseCallArgs(callee string, pos token.Position) *ast.CallExpr {
	p.expect(token.LParen)
	var args []ast.Expr
	for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
		args = append(args, p.parseExpr())
		if p.cur.Kind == token.Comma {
			p.nextToken()
		}
	}
	p.expect(token.RParen)
	return &ast.CallExpr{Callee: callee, Args: args, Position: pos}
}
