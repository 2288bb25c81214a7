package parser

import (
	"loongcc/pkg/ast"
	"loongcc/pkg/lexer"
	"loongcc/pkg/types"
)

// topLevel parses one function or global-variable declaration and
// appends the resulting Obj to p.globals.
func (p *Parser) topLevel() error {
	base, isStatic, err := p.declspec()
	if err != nil {
		return err
	}
	// A bare "struct tag {...};" declares only the tag.
	if p.consume(lexer.SEMICOLON) {
		return nil
	}

	name, ty, err := p.declarator(base)
	if err != nil {
		return err
	}

	if p.at(lexer.LPAREN) {
		return p.functionDecl(name, ty, isStatic)
	}
	return p.globalDecl(name, ty, isStatic, base)
}

// functionDecl parses a parameter list and either a ";" (prototype,
// recorded for call-site return narrowing but not emitted) or a "{"
// body (definition).
func (p *Parser) functionDecl(name string, retType *types.Type, isStatic bool) error {
	params, variadic, err := p.paramList()
	if err != nil {
		return err
	}

	paramTypes := make([]*types.Type, len(params))
	for i, pr := range params {
		paramTypes[i] = pr.ty
	}
	p.funcs[name] = types.FuncType(retType, paramTypes, variadic)

	if p.consume(lexer.SEMICOLON) {
		return nil // prototype only
	}

	fn := &ast.Obj{Name: name, Type: retType, IsFunction: true, IsDefinition: true, IsStatic: isStatic}
	p.globals = append(p.globals, fn)

	p.pushScope()
	p.locals = nil
	p.labels = map[string]string{}
	p.gotos = nil

	for _, pr := range params {
		obj := p.newLocal(pr.name, pr.ty)
		fn.Params = append(fn.Params, obj)
	}
	if variadic {
		// Synthetic tail sink: homeArguments (pkg/codegen/text.go) spills
		// every remaining argument register here, one 8-byte word each,
		// regardless of how many the caller actually passed.
		tail := types.ArrayOf(types.TypeLong, len(argRegNames)-len(params))
		obj := p.newLocal("__va_args", tail)
		fn.Params = append(fn.Params, obj)
	}

	body, err := p.block()
	if err != nil {
		return err
	}
	fn.Body = body
	fn.Locals = p.locals
	p.popScope()

	if err := p.resolveGotos(); err != nil {
		return err
	}
	return nil
}

var argRegNames = []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}

type paramDecl struct {
	name string
	ty   *types.Type
}

// paramList parses "(" (param ("," param)* ("," "...")? | "void")? ")".
func (p *Parser) paramList() ([]paramDecl, bool, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, false, err
	}
	var params []paramDecl
	variadic := false

	if p.at(lexer.VOID) && p.peekAt(1).Type == lexer.RPAREN {
		p.advance()
	} else {
		for !p.at(lexer.RPAREN) {
			if p.consume(lexer.ELLIPSIS) {
				variadic = true
				break
			}
			base, _, err := p.declspec()
			if err != nil {
				return nil, false, err
			}
			name, ty, err := p.declarator(base)
			if err != nil {
				return nil, false, err
			}
			// Array parameters decay to a pointer to their element type,
			// as in C.
			if ty.Kind == types.Array {
				ty = types.PointerTo(ty.Base)
			}
			params = append(params, paramDecl{name: name, ty: ty})
			if !p.consume(lexer.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, false, err
	}
	return params, variadic, nil
}

// globalDecl parses the remainder of a (possibly comma-separated) list
// of global variable declarators sharing a base type, with optional
// initializers, building relocation records for pointer/string globals.
func (p *Parser) globalDecl(name string, ty *types.Type, isStatic bool, base *types.Type) error {
	for {
		obj := &ast.Obj{Name: name, Type: ty, IsDefinition: true, IsStatic: isStatic, Align: ty.Align}
		if p.consume(lexer.ASSIGN) {
			if err := p.globalInitializer(obj); err != nil {
				return err
			}
		}
		p.globals = append(p.globals, obj)
		p.declareVar(name, obj)

		if !p.consume(lexer.COMMA) {
			break
		}
		var err error
		name, ty, err = p.declarator(base)
		if err != nil {
			return err
		}
	}
	_, err := p.expect(lexer.SEMICOLON)
	return err
}

// globalInitializer fills obj.InitData (and obj.Rel for pointer/string
// initializers) from a single constant-expression or string-literal
// initializer. This front end only supports the initializer shapes the
// kinds a small compiler's test suite exercises: integer constants
// and string literals (directly into a char array, or via a relocation
// into a pointer variable).
func (p *Parser) globalInitializer(obj *ast.Obj) error {
	t := p.peek()

	if t.Type == lexer.STRING {
		p.advance()
		bytes := append([]byte(t.Lexeme), 0)
		if obj.Type.Kind == types.Array {
			obj.InitData = bytes
			if obj.Type.ArrayLen == 0 {
				obj.Type.ArrayLen = len(bytes)
				obj.Type.Size = len(bytes)
			}
			return nil
		}
		// Pointer-typed global initialized from a string literal: emit
		// the bytes as an anonymous data object and relocate to it.
		label := p.newStringLabel()
		strObj := &ast.Obj{
			Name: label, Type: types.ArrayOf(types.TypeChar, len(bytes)),
			IsDefinition: true, IsStatic: true, Align: 1, InitData: bytes,
		}
		p.globals = append(p.globals, strObj)
		obj.InitData = make([]byte, 8)
		obj.Rel = []ast.Relocation{{Offset: 0, Label: label, Addend: 0}}
		return nil
	}

	n, err := p.constExpr()
	if err != nil {
		return err
	}
	size := obj.Type.Size
	if size == 0 || size > 8 {
		size = 8
	}
	buf := make([]byte, size)
	for i := 0; i < size; i++ {
		buf[i] = byte(n >> (8 * i))
	}
	obj.InitData = buf
	return nil
}

// constExpr evaluates a compile-time integer constant expression
// (literal arithmetic only — this front end has no linker-time constant
// folding beyond what's needed for global initializers).
func (p *Parser) constExpr() (int64, error) {
	n, err := p.expr()
	if err != nil {
		return 0, err
	}
	return foldConst(n)
}

func foldConst(n *ast.Node) (int64, error) {
	switch n.Kind {
	case ast.NUM:
		return n.Val, nil
	case ast.NEG:
		v, err := foldConst(n.Lhs)
		return -v, err
	case ast.ADD:
		l, err := foldConst(n.Lhs)
		if err != nil {
			return 0, err
		}
		r, err := foldConst(n.Rhs)
		return l + r, err
	case ast.SUB:
		l, err := foldConst(n.Lhs)
		if err != nil {
			return 0, err
		}
		r, err := foldConst(n.Rhs)
		return l - r, err
	case ast.CAST:
		return foldConst(n.Lhs)
	}
	return 0, errf(lexer.Token{Line: n.Tok.Line}, "initializer is not a compile-time constant")
}
