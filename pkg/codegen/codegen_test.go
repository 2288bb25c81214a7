package codegen

import (
	"bytes"
	"strings"
	"testing"

	"loongcc/pkg/ast"
	"loongcc/pkg/types"
)

// assertContains checks that code contains expected as a substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("expected generated code to contain %q, got:\n%s", expected, code)
	}
}

func num(v int64, ty *types.Type) *ast.Node {
	return &ast.Node{Kind: ast.NUM, Type: ty, Val: v}
}

func generate(t *testing.T, prog []*ast.Obj) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Generate(prog, &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return buf.String()
}

// TestGenerate_ReturnConstant covers the simplest function body:
// int main(){return 42;}
func TestGenerate_ReturnConstant(t *testing.T) {
	main := &ast.Obj{
		Name: "main", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{
			{Kind: ast.RETURN, Lhs: num(42, types.TypeInt)},
		}},
	}

	code := generate(t, []*ast.Obj{main})

	assertContains(t, code, "li.d $a0, 42")
	assertContains(t, code, "b .L.return.main")
	assertContains(t, code, "addi.d $sp, $sp, -16") // stack_size(0)+16
	assertContains(t, code, ".size main, .-main")
	assertContains(t, code, ".section .note.GNU-stack")
}

// TestGenerate_LocalsAndAdd covers two locals and an addition:
// int main(){int a=3;int b=4;return a+b;}
func TestGenerate_LocalsAndAdd(t *testing.T) {
	a := &ast.Obj{Name: "a", Type: types.TypeInt, IsLocal: true, Align: types.TypeInt.Align}
	b := &ast.Obj{Name: "b", Type: types.TypeInt, IsLocal: true, Align: types.TypeInt.Align}

	varNode := func(o *ast.Obj) *ast.Node { return &ast.Node{Kind: ast.VAR, Type: o.Type, Var: o} }
	assign := func(o *ast.Obj, rhs *ast.Node) *ast.Node {
		return &ast.Node{Kind: ast.EXPR_STMT, Lhs: &ast.Node{Kind: ast.ASSIGN, Type: o.Type, Lhs: varNode(o), Rhs: rhs}}
	}

	main := &ast.Obj{
		Name: "main", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Locals: []*ast.Obj{a, b},
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{
			assign(a, num(3, types.TypeInt)),
			assign(b, num(4, types.TypeInt)),
			{Kind: ast.RETURN, Lhs: &ast.Node{Kind: ast.ADD, Type: types.TypeInt, Lhs: varNode(a), Rhs: varNode(b)}},
		}},
	}

	code := generate(t, []*ast.Obj{main})

	// a gets offset 0 (address fp-4), b gets offset -4 (address fp-8).
	assertContains(t, code, "addi.d $a0, $fp, -4")
	assertContains(t, code, "addi.d $a0, $fp, -8")
	assertContains(t, code, "st.w $a0, $a1, 0")
	assertContains(t, code, "add.w $a0, $a0, $a1")
	if a.Offset != 0 || b.Offset != -4 {
		t.Errorf("unexpected local offsets: a=%d b=%d", a.Offset, b.Offset)
	}
	if main.StackSize != 16 {
		t.Errorf("StackSize = %d, want 16", main.StackSize)
	}
}

// TestGenerate_Funcall covers a function call with two arguments:
// int f(int a,int b){return a-b;} int main(){return f(10,3);}
func TestGenerate_Funcall(t *testing.T) {
	fa := &ast.Obj{Name: "a", Type: types.TypeInt, IsLocal: true, Align: types.TypeInt.Align}
	fb := &ast.Obj{Name: "b", Type: types.TypeInt, IsLocal: true, Align: types.TypeInt.Align}
	varNode := func(o *ast.Obj) *ast.Node { return &ast.Node{Kind: ast.VAR, Type: o.Type, Var: o} }

	f := &ast.Obj{
		Name: "f", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Params: []*ast.Obj{fa, fb}, Locals: []*ast.Obj{fa, fb},
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{
			{Kind: ast.RETURN, Lhs: &ast.Node{Kind: ast.SUB, Type: types.TypeInt, Lhs: varNode(fa), Rhs: varNode(fb)}},
		}},
	}

	fSig := types.FuncType(types.TypeInt, []*types.Type{types.TypeInt, types.TypeInt}, false)
	call := &ast.Node{
		Kind: ast.FUNCALL, Type: types.TypeInt, Funcname: "f", FuncType: fSig,
		Args: []*ast.Node{num(10, types.TypeInt), num(3, types.TypeInt)},
	}
	main := &ast.Obj{
		Name: "main", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{
			{Kind: ast.RETURN, Lhs: call},
		}},
	}

	code := generate(t, []*ast.Obj{f, main})

	assertContains(t, code, "bl f")
	assertContains(t, code, "sub.w $a0, $a0, $a1")
	// Argument pushes pop in reverse into a0, a1.
	assertContains(t, code, "ld.d $a1, $sp, 0")
	assertContains(t, code, "ld.d $a0, $sp, 0")
}

// TestGenerate_StringGlobal covers a string literal global and the
// pointer relocation into it:
// char *s="hi"; int main(){return s[0];}
func TestGenerate_StringGlobal(t *testing.T) {
	str := &ast.Obj{
		Name: ".LC1", Type: types.ArrayOf(types.TypeChar, 3),
		IsDefinition: true, IsStatic: true, Align: 1,
		InitData: []byte{'h', 'i', 0},
	}
	s := &ast.Obj{
		Name: "s", Type: types.PointerTo(types.TypeChar), IsDefinition: true, Align: 8,
		InitData: make([]byte, 8),
		Rel:      []ast.Relocation{{Offset: 0, Label: ".LC1", Addend: 0}},
	}

	sVal := &ast.Node{Kind: ast.VAR, Type: s.Type, Var: s}
	index := &ast.Node{Kind: ast.DEREF, Type: types.TypeChar, Lhs: sVal}
	main := &ast.Obj{
		Name: "main", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{
			{Kind: ast.RETURN, Lhs: index},
		}},
	}

	code := generate(t, []*ast.Obj{str, s, main})

	assertContains(t, code, ".byte 104")
	assertContains(t, code, ".byte 105")
	assertContains(t, code, ".byte 0")
	assertContains(t, code, ".quad .LC1+0")
	assertContains(t, code, "la.local $a0, s")
	assertContains(t, code, "ld.b $a0, $a0, 0") // signed char: sign-extending load
}

// TestGenerate_ForLoop covers a for loop with a condition and increment:
// int main(){int i;int s=0;for(i=0;i<10;i=i+1)s=s+i;return s;}
func TestGenerate_ForLoop(t *testing.T) {
	i := &ast.Obj{Name: "i", Type: types.TypeInt, IsLocal: true, Align: types.TypeInt.Align}
	s := &ast.Obj{Name: "s", Type: types.TypeInt, IsLocal: true, Align: types.TypeInt.Align}
	v := func(o *ast.Obj) *ast.Node { return &ast.Node{Kind: ast.VAR, Type: o.Type, Var: o} }
	assignStmt := func(o *ast.Obj, rhs *ast.Node) *ast.Node {
		return &ast.Node{Kind: ast.EXPR_STMT, Lhs: &ast.Node{Kind: ast.ASSIGN, Type: o.Type, Lhs: v(o), Rhs: rhs}}
	}

	forNode := &ast.Node{
		Kind:      ast.FOR,
		BrkLabel:  ".L.brk.1",
		ContLabel: ".L.cont.1",
		Init:      assignStmt(i, num(0, types.TypeInt)),
		Cond:      &ast.Node{Kind: ast.LT, Type: types.TypeInt, Lhs: v(i), Rhs: num(10, types.TypeInt)},
		Then:      assignStmt(s, &ast.Node{Kind: ast.ADD, Type: types.TypeInt, Lhs: v(s), Rhs: v(i)}),
		Inc:       assignStmt(i, &ast.Node{Kind: ast.ADD, Type: types.TypeInt, Lhs: v(i), Rhs: num(1, types.TypeInt)}),
	}

	main := &ast.Obj{
		Name: "main", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Locals: []*ast.Obj{i, s},
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{
			assignStmt(s, num(0, types.TypeInt)),
			forNode,
			{Kind: ast.RETURN, Lhs: v(s)},
		}},
	}

	code := generate(t, []*ast.Obj{main})

	assertContains(t, code, ".L.begin.")
	assertContains(t, code, "beqz $a0, .L.brk.1")
	assertContains(t, code, ".L.cont.1:")
	assertContains(t, code, ".L.brk.1:")
	assertContains(t, code, "slt $a0, $a0, $a1")
}

// TestGenerate_Switch covers a switch with two cases and a default:
// switch(3){case 1: return 10; case 3: return 30; default: return 0;}
func TestGenerate_Switch(t *testing.T) {
	case1 := &ast.Node{Kind: ast.CASE, CaseVal: 1, Then: &ast.Node{Kind: ast.RETURN, Lhs: num(10, types.TypeInt)}}
	case3 := &ast.Node{Kind: ast.CASE, CaseVal: 3, Then: &ast.Node{Kind: ast.RETURN, Lhs: num(30, types.TypeInt)}}
	def := &ast.Node{Kind: ast.CASE, Then: &ast.Node{Kind: ast.RETURN, Lhs: num(0, types.TypeInt)}}

	sw := &ast.Node{
		Kind: ast.SWITCH, BrkLabel: ".L.brk.1",
		Cond:        num(3, types.TypeInt),
		Cases:       []*ast.Node{case1, case3},
		DefaultCase: def,
		Then:        &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{case1, case3, def}},
	}

	main := &ast.Obj{
		Name: "main", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{sw}},
	}

	code := generate(t, []*ast.Obj{main})

	assertContains(t, code, "li.d $a1, 1")
	assertContains(t, code, "li.d $a1, 3")
	assertContains(t, code, "beq $a0, $a1, .L.case.")
	assertContains(t, code, "b .L.default.")
	assertContains(t, code, "li.d $a0, 10")
	assertContains(t, code, "li.d $a0, 30")
	assertContains(t, code, "li.d $a0, 0")
	assertContains(t, code, ".L.brk.1:")
}

// TestPushDepthAssertion exercises the structural invariant that a
// function whose body leaves the push depth non-zero is a back-end
// bug, reported as an error rather than silently emitted.
func TestPushDepthAssertion(t *testing.T) {
	g := newGenerator(&bytes.Buffer{})
	g.currentFn = &ast.Obj{Name: "broken"}

	g.push() // simulate an unbalanced push left by a malformed AST
	err := g.checkDepth()
	if err == nil {
		t.Fatal("expected an error for non-zero push depth, got nil")
	}
	if !strings.Contains(err.Error(), "push depth") {
		t.Errorf("error = %v, want a push-depth message", err)
	}

	g.pop("a1")
	if err := g.checkDepth(); err != nil {
		t.Errorf("checkDepth after balanced push/pop = %v, want nil", err)
	}
}

// TestGenerate_GlobalBss covers an uninitialized global laid out in .bss.
func TestGenerate_GlobalBss(t *testing.T) {
	g := &ast.Obj{Name: "counter", Type: types.TypeLong, IsDefinition: true, Align: 8}
	main := &ast.Obj{
		Name: "main", Type: types.TypeInt, IsFunction: true, IsDefinition: true,
		Body: &ast.Node{Kind: ast.BLOCK, Body: []*ast.Node{{Kind: ast.RETURN, Lhs: num(0, types.TypeInt)}}},
	}

	code := generate(t, []*ast.Obj{g, main})

	assertContains(t, code, ".globl counter")
	assertContains(t, code, ".bss")
	assertContains(t, code, "counter:")
	assertContains(t, code, ".zero 8")
}
