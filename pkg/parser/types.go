package parser

import (
	"loongcc/pkg/ast"
	"loongcc/pkg/lexer"
	"loongcc/pkg/types"
)

// declspec parses a base type: an optional "static", then a sequence of
// int-family keywords (mirroring C's combinable specifiers: "unsigned
// long", "unsigned char", bare "unsigned" meaning unsigned int) or a
// struct/union specifier. Returns the resolved type and whether "static"
// was seen.
func (p *Parser) declspec() (*types.Type, bool, error) {
	isStatic := false
	for p.consume(lexer.STATIC) {
		isStatic = true
	}

	if p.at(lexer.STRUCT) || p.at(lexer.UNION) {
		ty, err := p.structUnionSpec()
		return ty, isStatic, err
	}

	unsigned := false
	var base *types.Type
	for {
		switch p.peek().Type {
		case lexer.UNSIGNED:
			p.advance()
			unsigned = true
			continue
		case lexer.VOID:
			p.advance()
			base = types.TypeVoid
		case lexer.BOOL:
			p.advance()
			base = types.TypeBool
		case lexer.CHAR:
			p.advance()
			base = types.TypeChar
		case lexer.SHORT:
			p.advance()
			base = types.TypeShort
		case lexer.INT:
			p.advance()
			base = types.TypeInt
		case lexer.LONG:
			p.advance()
			base = types.TypeLong
		}
		break
	}
	if base == nil {
		if unsigned {
			base = types.TypeInt
		} else {
			t := p.peek()
			return nil, false, errf(t, "expected a type, got %s (%q)", t.Type, t.Lexeme)
		}
	}
	if unsigned && base.Kind != types.Bool {
		base = unsignedVariant(base)
	}
	return base, isStatic, nil
}

func unsignedVariant(base *types.Type) *types.Type {
	switch base.Kind {
	case types.Char:
		return types.TypeUChar
	case types.Short:
		return types.TypeUShort
	case types.Int:
		return types.TypeUInt
	case types.Long:
		return types.TypeULong
	default:
		return base
	}
}

// structUnionSpec parses "struct"|"union" [tag] ["{" member* "}"]. A
// bare tag reference looks the type up in scope; a body declares (and
// optionally binds) it.
func (p *Parser) structUnionSpec() (*types.Type, error) {
	isUnion := p.at(lexer.UNION)
	p.advance()

	tag := ""
	if p.at(lexer.IDENT) {
		tag = p.advance().Lexeme
	}

	if !p.at(lexer.LBRACE) {
		if tag == "" {
			t := p.peek()
			return nil, errf(t, "expected struct/union tag or body")
		}
		ty := p.findTag(tag)
		if ty == nil {
			t := p.peek()
			return nil, errf(t, "unknown struct/union tag %q", tag)
		}
		return ty, nil
	}

	p.advance() // {
	var members []*types.Member
	for !p.at(lexer.RBRACE) {
		base, _, err := p.declspec()
		if err != nil {
			return nil, err
		}
		for {
			name, mty, err := p.declarator(base)
			if err != nil {
				return nil, err
			}
			members = append(members, &types.Member{Name: name, Type: mty})
			if !p.consume(lexer.COMMA) {
				break
			}
		}
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}

	var ty *types.Type
	if isUnion {
		ty = types.UnionOf(tag, members)
	} else {
		ty = types.StructOf(tag, members)
	}
	if tag != "" {
		p.declareTag(tag, ty)
	}
	return ty, nil
}

// declarator parses the pointer/array/identifier part of a declaration
// around a base type, C-style: "*" nests pointers, a trailing
// "[" NUM "]" wraps in an array. Returns the declared name and its full
// type.
func (p *Parser) declarator(base *types.Type) (string, *types.Type, error) {
	for p.consume(lexer.STAR) {
		base = types.PointerTo(base)
	}
	t := p.peek()
	if t.Type != lexer.IDENT {
		return "", nil, errf(t, "expected identifier in declaration, got %s", t.Type)
	}
	name := p.advance().Lexeme

	for p.at(lexer.LBRACKET) {
		p.advance()
		length := 0
		if p.at(lexer.NUM) {
			length = int(p.advance().Val)
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return "", nil, err
		}
		base = types.ArrayOf(base, length)
	}
	return name, base, nil
}

// abstractDeclarator parses a type with no identifier, for casts:
// "*"* only (this subset has no abstract array/function declarators).
func (p *Parser) abstractDeclarator(base *types.Type) *types.Type {
	for p.consume(lexer.STAR) {
		base = types.PointerTo(base)
	}
	return base
}

// newLocal allocates a local Obj, appends it to the current function's
// Locals (for pkg/codegen/layout.go to later assign offsets to), and
// binds it in the current scope.
func (p *Parser) newLocal(name string, ty *types.Type) *ast.Obj {
	obj := &ast.Obj{Name: name, Type: ty, IsLocal: true, Align: ty.Align}
	p.locals = append(p.locals, obj)
	p.declareVar(name, obj)
	return obj
}

// newVarNode builds a VAR expression node referencing obj.
func newVarNode(t lexer.Token, obj *ast.Obj) *ast.Node {
	return &ast.Node{Kind: ast.VAR, Tok: tok(t), Type: obj.Type, Var: obj}
}
