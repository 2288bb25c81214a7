// Package parser is a small recursive-descent parser/type-checker that
// turns lexer.Token streams into the typed *ast.Obj/*ast.Node trees
// pkg/codegen consumes. It implements the "Parser/typer supplies"
// contract of the back end directly: every Node it returns already
// carries a resolved *types.Type, and every goto/break/continue label
// has already been synthesized into a unique string. Case labels are
// not assigned here; pkg/codegen's switch lowering assigns them.
package parser

import (
	"fmt"
	"strings"

	"loongcc/pkg/ast"
	"loongcc/pkg/lexer"
	"loongcc/pkg/types"
)

// Error reports a syntax or type error tied to a source line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

func errf(tok lexer.Token, format string, args ...any) *Error {
	return &Error{Line: tok.Line, Message: fmt.Sprintf(format, args...)}
}

// varScope is one block's worth of visible identifiers: variables and
// struct/union tags each get their own namespace, as in C.
type varScope struct {
	vars map[string]*ast.Obj
	tags map[string]*types.Type
}

func newVarScope() *varScope {
	return &varScope{vars: map[string]*ast.Obj{}, tags: map[string]*types.Type{}}
}

// gotoRef is an unresolved goto, fixed up once the enclosing function's
// body has been fully parsed and every label is known.
type gotoRef struct {
	node *ast.Node
	name string
}

// Parser consumes the flat token slice Lex produces and builds the
// program's list of top-level Obj.
type Parser struct {
	toks []lexer.Token
	pos  int

	scopes  []*varScope
	globals []*ast.Obj
	funcs   map[string]*types.Type // declared signatures, for FUNCALL return-narrowing

	locals    []*ast.Obj // current function's locals, in declaration order
	labelSeq  int        // parser-local unique-label counter: goto/break/continue labels are assigned here, not in codegen
	strSeq    int        // anonymous string-literal label counter

	labels map[string]string // current function: user label name -> unique label
	gotos  []gotoRef         // current function: unresolved gotos

	breakLabel    string // nearest enclosing loop/switch's break target, "" outside one
	continueLabel string // nearest enclosing loop's continue target, "" outside one
	switchCases   *[]*ast.Node
	switchDefault **ast.Node
}

// Parse runs a full translation unit through the parser and returns the
// linked (here: slice) list of top-level Obj that pkg/codegen.Generate
// expects.
func Parse(toks []lexer.Token) ([]*ast.Obj, error) {
	p := &Parser{toks: toks, funcs: map[string]*types.Type{}}
	p.pushScope()
	for p.peek().Type != lexer.EOF {
		if err := p.topLevel(); err != nil {
			return nil, err
		}
	}
	p.popScope()
	return p.globals, nil
}

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, newVarScope())
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) findVar(name string) *ast.Obj {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i].vars[name]; ok {
			return v
		}
	}
	return nil
}

func (p *Parser) findTag(name string) *types.Type {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if t, ok := p.scopes[i].tags[name]; ok {
			return t
		}
	}
	return nil
}

func (p *Parser) declareVar(name string, obj *ast.Obj) {
	p.scopes[len(p.scopes)-1].vars[name] = obj
}

func (p *Parser) declareTag(name string, ty *types.Type) {
	p.scopes[len(p.scopes)-1].tags[name] = ty
}

// newLabel hands out a unique ".L.<purpose>.<id>" label for goto/break/
// continue targets, parser-assigned so a forward goto can reference its
// target before the target's LABEL node has been parsed. This is
// distinct from the codegen-internal labels pkg/codegen/labels.go
// allocates for its own else/end/begin branches.
func (p *Parser) newLabel(purpose string) string {
	p.labelSeq++
	return fmt.Sprintf(".L.%s.%d", purpose, p.labelSeq)
}

func (p *Parser) newStringLabel() string {
	p.strSeq++
	return fmt.Sprintf(".LC%d", p.strSeq)
}

// --- token stream helpers ---

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.peek().Type == tt
}

func (p *Parser) consume(tt lexer.TokenType) bool {
	if p.at(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if !p.at(tt) {
		t := p.peek()
		return t, errf(t, "expected %s, got %s (%q)", tt, t.Type, t.Lexeme)
	}
	return p.advance(), nil
}

// tok builds an ast.Token from a lexer.Token for embedding into Node.
func tok(t lexer.Token) ast.Token {
	return ast.Token{Line: t.Line, Text: t.Lexeme}
}

// isTypeStart reports whether the current token can start a declaration's
// type specifier.
func (p *Parser) isTypeStart() bool {
	switch p.peek().Type {
	case lexer.VOID, lexer.BOOL, lexer.CHAR, lexer.SHORT, lexer.INT, lexer.LONG,
		lexer.UNSIGNED, lexer.STRUCT, lexer.UNION, lexer.STATIC:
		return true
	}
	return false
}

func quoteJoin(parts []string) string {
	return strings.Join(parts, ", ")
}
