package parser

import (
	"loongcc/pkg/ast"
	"loongcc/pkg/lexer"
	"loongcc/pkg/types"
)

// block parses "{" declOrStmt* "}" as a BLOCK node, opening a fresh
// variable scope.
func (p *Parser) block() (*ast.Node, error) {
	brace, err := p.expect(lexer.LBRACE)
	if err != nil {
		return nil, err
	}
	p.pushScope()
	defer p.popScope()

	var body []*ast.Node
	for !p.at(lexer.RBRACE) {
		s, err := p.declOrStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			body = append(body, s)
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.BLOCK, Tok: tok(brace), Body: body}, nil
}

// declOrStmt parses either a local variable declaration (returned as a
// BLOCK of EXPR_STMTs wrapping its initializer assignments, or nil if
// there are none) or an ordinary statement.
func (p *Parser) declOrStmt() (*ast.Node, error) {
	if p.isTypeStart() {
		return p.localDecl()
	}
	return p.statement()
}

// localDecl parses one or more comma-separated local declarators
// sharing a base type, each with an optional initializer, and returns
// them wrapped in a synthetic BLOCK so a single declaration can expand
// to several initializer assignments.
func (p *Parser) localDecl() (*ast.Node, error) {
	base, _, err := p.declspec()
	if err != nil {
		return nil, err
	}

	var stmts []*ast.Node
	for {
		nameTok := p.peek()
		name, ty, err := p.declarator(base)
		if err != nil {
			return nil, err
		}
		obj := p.newLocal(name, ty)

		if p.consume(lexer.ASSIGN) {
			if ty.IsAggregate() {
				return nil, errf(nameTok, "aggregate initializers are not supported for locals")
			}
			rhs, err := p.assign()
			if err != nil {
				return nil, err
			}
			lhs := newVarNode(nameTok, obj)
			asn := &ast.Node{Kind: ast.ASSIGN, Tok: tok(nameTok), Type: ty, Lhs: lhs, Rhs: castIfNeeded(rhs, ty)}
			stmts = append(stmts, &ast.Node{Kind: ast.EXPR_STMT, Tok: tok(nameTok), Lhs: asn})
		}

		if !p.consume(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, nil
	}
	return &ast.Node{Kind: ast.BLOCK, Tok: stmts[0].Tok, Body: stmts}, nil
}

// statement dispatches on the leading keyword. break
// and continue desugar to GOTO against the nearest enclosing loop's
// BrkLabel/ContLabel, matching the "no BREAK/CONTINUE kind" shape of
// the statement node-kind union (there's no dedicated kind for either).
func (p *Parser) statement() (*ast.Node, error) {
	t := p.peek()
	switch t.Type {
	case lexer.LBRACE:
		return p.block()
	case lexer.IF:
		return p.ifStmt()
	case lexer.FOR:
		return p.forStmt()
	case lexer.WHILE:
		return p.whileStmt()
	case lexer.DO:
		return p.doStmt()
	case lexer.SWITCH:
		return p.switchStmt()
	case lexer.CASE:
		return p.caseStmt()
	case lexer.DEFAULT:
		return p.defaultStmt()
	case lexer.GOTO:
		p.advance()
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, err
		}
		n := &ast.Node{Kind: ast.GOTO, Tok: tok(nameTok), Label: nameTok.Lexeme}
		p.gotos = append(p.gotos, gotoRef{node: n, name: nameTok.Lexeme})
		return n, nil
	case lexer.IDENT:
		if p.peekAt(1).Type == lexer.COLON {
			return p.labelStmt()
		}
	case lexer.BREAK:
		p.advance()
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, err
		}
		if p.breakLabel == "" {
			return nil, errf(t, "break outside of loop or switch")
		}
		return &ast.Node{Kind: ast.GOTO, Tok: tok(t), UniqueLabel: p.breakLabel}, nil
	case lexer.CONTINUE:
		p.advance()
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, err
		}
		if p.continueLabel == "" {
			return nil, errf(t, "continue outside of loop")
		}
		return &ast.Node{Kind: ast.GOTO, Tok: tok(t), UniqueLabel: p.continueLabel}, nil
	case lexer.RETURN:
		return p.returnStmt()
	case lexer.SEMICOLON:
		p.advance()
		return &ast.Node{Kind: ast.BLOCK, Tok: tok(t)}, nil
	}
	return p.exprStmt()
}

func (p *Parser) ifStmt() (*ast.Node, error) {
	t := p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	n := &ast.Node{Kind: ast.IF, Tok: tok(t), Cond: cond, Then: then}
	if p.consume(lexer.ELSE) {
		els, err := p.statement()
		if err != nil {
			return nil, err
		}
		n.Els = els
	}
	return n, nil
}

// enterLoop pushes new break/continue targets and returns a restore
// function; callers defer it so nested loops don't leak labels outward.
func (p *Parser) enterLoop(brk, cont string) func() {
	prevBrk, prevCont := p.breakLabel, p.continueLabel
	p.breakLabel, p.continueLabel = brk, cont
	return func() {
		p.breakLabel, p.continueLabel = prevBrk, prevCont
	}
}

func (p *Parser) forStmt() (*ast.Node, error) {
	t := p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	p.pushScope()
	defer p.popScope()

	n := &ast.Node{Kind: ast.FOR, Tok: tok(t), BrkLabel: p.newLabel("brk"), ContLabel: p.newLabel("cont")}

	if !p.at(lexer.SEMICOLON) {
		init, err := p.forInit()
		if err != nil {
			return nil, err
		}
		n.Init = init
	} else {
		p.advance()
	}

	if !p.at(lexer.SEMICOLON) {
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		n.Cond = cond
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}

	if !p.at(lexer.RPAREN) {
		inc, err := p.expr()
		if err != nil {
			return nil, err
		}
		n.Inc = wrapExprStmt(inc)
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	restore := p.enterLoop(n.BrkLabel, n.ContLabel)
	then, err := p.statement()
	restore()
	if err != nil {
		return nil, err
	}
	n.Then = then
	return n, nil
}

// forInit parses the for-loop init clause, which may be a local
// declaration (no trailing ";" consumption needed — localDecl already
// does that) or an expression statement.
func (p *Parser) forInit() (*ast.Node, error) {
	if p.isTypeStart() {
		return p.localDecl()
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return wrapExprStmt(e), nil
}

func wrapExprStmt(e *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.EXPR_STMT, Tok: e.Tok, Lhs: e}
}

// whileStmt desugars to a FOR node with no Init/Inc.
func (p *Parser) whileStmt() (*ast.Node, error) {
	t := p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	n := &ast.Node{Kind: ast.FOR, Tok: tok(t), Cond: cond, BrkLabel: p.newLabel("brk"), ContLabel: p.newLabel("cont")}
	restore := p.enterLoop(n.BrkLabel, n.ContLabel)
	then, err := p.statement()
	restore()
	if err != nil {
		return nil, err
	}
	n.Then = then
	return n, nil
}

func (p *Parser) doStmt() (*ast.Node, error) {
	t := p.advance()
	n := &ast.Node{Kind: ast.DO, Tok: tok(t), BrkLabel: p.newLabel("brk"), ContLabel: p.newLabel("cont")}

	restore := p.enterLoop(n.BrkLabel, n.ContLabel)
	then, err := p.statement()
	restore()
	if err != nil {
		return nil, err
	}
	n.Then = then

	if _, err := p.expect(lexer.WHILE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	n.Cond = cond
	return n, nil
}

func (p *Parser) switchStmt() (*ast.Node, error) {
	t := p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	n := &ast.Node{Kind: ast.SWITCH, Tok: tok(t), Cond: cond, BrkLabel: p.newLabel("brk")}

	restoreLoop := p.enterLoop(n.BrkLabel, p.continueLabel)
	prevCases, prevDefault := p.switchCases, p.switchDefault
	var defaultCase *ast.Node
	p.switchCases = &n.Cases
	p.switchDefault = &defaultCase

	then, err := p.statement()

	p.switchCases, p.switchDefault = prevCases, prevDefault
	restoreLoop()
	if err != nil {
		return nil, err
	}
	n.Then = then
	n.DefaultCase = defaultCase
	return n, nil
}

func (p *Parser) caseStmt() (*ast.Node, error) {
	t := p.advance()
	if p.switchCases == nil {
		return nil, errf(t, "case outside of switch")
	}
	val, err := p.constExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	inner, err := p.statement()
	if err != nil {
		return nil, err
	}
	n := &ast.Node{Kind: ast.CASE, Tok: tok(t), CaseVal: val, Then: inner}
	*p.switchCases = append(*p.switchCases, n)
	return n, nil
}

func (p *Parser) defaultStmt() (*ast.Node, error) {
	t := p.advance()
	if p.switchDefault == nil {
		return nil, errf(t, "default outside of switch")
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	inner, err := p.statement()
	if err != nil {
		return nil, err
	}
	n := &ast.Node{Kind: ast.CASE, Tok: tok(t), Then: inner}
	*p.switchDefault = n
	return n, nil
}

func (p *Parser) labelStmt() (*ast.Node, error) {
	nameTok := p.advance()
	p.advance() // ":"
	inner, err := p.statement()
	if err != nil {
		return nil, err
	}
	unique := p.newLabel("label." + nameTok.Lexeme)
	p.labels[nameTok.Lexeme] = unique
	return &ast.Node{Kind: ast.LABEL, Tok: tok(nameTok), Label: nameTok.Lexeme, UniqueLabel: unique, Lhs: inner}, nil
}

// resolveGotos fixes up every goto collected while parsing the current
// function body now that every LABEL in it has a known unique label —
// Every referenced synthesized label must be defined
// exactly once in the same function's output.
func (p *Parser) resolveGotos() error {
	for _, g := range p.gotos {
		unique, ok := p.labels[g.name]
		if !ok {
			return errf(lexer.Token{Line: g.node.Tok.Line}, "use of undeclared label %q", g.name)
		}
		g.node.UniqueLabel = unique
	}
	return nil
}

func (p *Parser) returnStmt() (*ast.Node, error) {
	t := p.advance()
	n := &ast.Node{Kind: ast.RETURN, Tok: tok(t)}
	if !p.at(lexer.SEMICOLON) {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		n.Lhs = e
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) exprStmt() (*ast.Node, error) {
	if p.consume(lexer.SEMICOLON) {
		return &ast.Node{Kind: ast.BLOCK, Tok: tok(p.peek())}, nil
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return wrapExprStmt(e), nil
}

// castIfNeeded wraps rhs in a CAST node when its type doesn't already
// match target, so locals/assignment targets always receive a value of
// their own declared width.
func castIfNeeded(rhs *ast.Node, target *types.Type) *ast.Node {
	if rhs.Type == target || sameType(rhs.Type, target) {
		return rhs
	}
	return &ast.Node{Kind: ast.CAST, Tok: rhs.Tok, Type: target, Lhs: rhs, CastFrom: rhs.Type}
}

func sameType(a, b *types.Type) bool {
	return a.Kind == b.Kind && a.Size == b.Size && a.IsUnsigned == b.IsUnsigned
}
