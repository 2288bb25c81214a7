package codegen

import (
	"loongcc/pkg/ast"
	"loongcc/pkg/types"
)

// widthSuffix picks the 32- or 64-bit opcode suffix for arithmetic on
// ty: 64-bit for long and pointer-ish types, else
// 32-bit.
func widthSuffix(ty *types.Type) string {
	if ty.Is64Bit() {
		return "d"
	}
	return "w"
}

// genExpr lowers an expression node, leaving its value in the
// accumulator (a0). Every node is preceded by a .loc directive,
// exactly one per visited node, which is also what a DWARF line table
// §8's ".loc count" property checks.
func (g *Generator) genExpr(n *ast.Node) error {
	g.emit("  .loc 1 %d", n.Tok.Line)

	switch n.Kind {
	case ast.NULL_EXPR:
		return nil

	case ast.NUM:
		g.emit("  li.d $a0, %d", n.Val)
		return nil

	case ast.NEG:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		g.emit("  sub.d $a0, $r0, $a0")
		return nil

	case ast.VAR, ast.MEMBER:
		if err := g.genAddr(n); err != nil {
			return err
		}
		g.load(n.Type)
		return nil

	case ast.DEREF:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		g.load(n.Type)
		return nil

	case ast.ADDR:
		return g.genAddr(n.Lhs)

	case ast.ASSIGN:
		if err := g.genAddr(n.Lhs); err != nil {
			return err
		}
		g.push()
		if err := g.genExpr(n.Rhs); err != nil {
			return err
		}
		g.store(n.Type)
		return nil

	case ast.STMT_EXPR:
		for _, stmt := range n.Body {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}
		return nil

	case ast.COMMA:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		return g.genExpr(n.Rhs)

	case ast.CAST:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		g.castTo(n.Lhs.Type, n.Type)
		return nil

	case ast.MEMZERO:
		return g.genMemzero(n)

	case ast.COND:
		return g.genCond(n)

	case ast.NOT:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		g.emit("  sltu $a0, $r0, $a0")
		g.emit("  xori $a0, $a0, 1")
		return nil

	case ast.BITNOT:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		g.emit("  li.d $a1, -1")
		g.emit("  xor $a0, $a0, $a1")
		return nil

	case ast.LOGAND:
		return g.genLogAnd(n)

	case ast.LOGOR:
		return g.genLogOr(n)

	case ast.FUNCALL:
		return g.genFuncall(n)
	}

	return g.genBinary(n)
}

func (g *Generator) genMemzero(n *ast.Node) error {
	if err := g.genAddr(n.Lhs); err != nil {
		return err
	}
	size := n.Lhs.Var.Type.Size
	g.emit("  mov $a1, $a0")
	g.emit("  li.d $a0, 0")
	for i := 0; i < size; i++ {
		g.emit("  st.b $a0, $a1, %d", i)
	}
	return nil
}

func (g *Generator) genCond(n *ast.Node) error {
	elseLabel := g.uniqueLabel("else")
	endLabel := g.uniqueLabel("end")

	if err := g.genExpr(n.Cond); err != nil {
		return err
	}
	g.emit("  beqz $a0, %s", elseLabel)
	if err := g.genExpr(n.Then); err != nil {
		return err
	}
	g.emit("  b %s", endLabel)
	g.emit("%s:", elseLabel)
	if err := g.genExpr(n.Els); err != nil {
		return err
	}
	g.emit("%s:", endLabel)
	return nil
}

func (g *Generator) genLogAnd(n *ast.Node) error {
	falseLabel := g.uniqueLabel("false")
	endLabel := g.uniqueLabel("end")

	if err := g.genExpr(n.Lhs); err != nil {
		return err
	}
	g.emit("  beqz $a0, %s", falseLabel)
	if err := g.genExpr(n.Rhs); err != nil {
		return err
	}
	g.emit("  beqz $a0, %s", falseLabel)
	g.emit("  li.d $a0, 1")
	g.emit("  b %s", endLabel)
	g.emit("%s:", falseLabel)
	g.emit("  li.d $a0, 0")
	g.emit("%s:", endLabel)
	return nil
}

func (g *Generator) genLogOr(n *ast.Node) error {
	trueLabel := g.uniqueLabel("true")
	endLabel := g.uniqueLabel("end")

	if err := g.genExpr(n.Lhs); err != nil {
		return err
	}
	g.emit("  bne $a0, $r0, %s", trueLabel)
	if err := g.genExpr(n.Rhs); err != nil {
		return err
	}
	g.emit("  bne $a0, $r0, %s", trueLabel)
	g.emit("  li.d $a0, 0")
	g.emit("  b %s", endLabel)
	g.emit("%s:", trueLabel)
	g.emit("  li.d $a0, 1")
	g.emit("%s:", endLabel)
	return nil
}

var argRegs = []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}

func (g *Generator) genFuncall(n *ast.Node) error {
	if len(n.Args) > len(argRegs) {
		return errTok(n.Tok.Line, "too many arguments to %s (max %d supported)", n.Funcname, len(argRegs))
	}

	for _, arg := range n.Args {
		if err := g.genExpr(arg); err != nil {
			return err
		}
		g.push()
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		g.pop(argRegs[i])
	}

	// Keep sp 16-byte aligned across the call: each push/pop moves it by
	// 8, so an odd outstanding depth means it's currently mis-aligned.
	misaligned := g.depth%2 != 0
	if misaligned {
		g.emit("  addi.d $sp, $sp, -8")
	}
	g.emit("  bl %s", n.Funcname)
	if misaligned {
		g.emit("  addi.d $sp, $sp, 8")
	}

	if n.FuncType != nil && n.FuncType.ReturnType != nil {
		g.castTo(types.TypeLong, n.FuncType.ReturnType)
	}
	return nil
}

func (g *Generator) genBinary(n *ast.Node) error {
	if err := g.genExpr(n.Rhs); err != nil {
		return err
	}
	g.push()
	if err := g.genExpr(n.Lhs); err != nil {
		return err
	}
	g.pop("a1")

	w := widthSuffix(n.Lhs.Type)
	unsigned := n.Type.IsUnsigned

	switch n.Kind {
	case ast.ADD:
		g.emit("  add.%s $a0, $a0, $a1", w)
	case ast.SUB:
		g.emit("  sub.%s $a0, $a0, $a1", w)
	case ast.MUL:
		g.emit("  mul.%s $a0, $a0, $a1", w)
	case ast.DIV:
		g.emit("  div.%s%s $a0, $a0, $a1", w, uSuffix(unsigned))
	case ast.MOD:
		g.emit("  mod.%s%s $a0, $a0, $a1", w, uSuffix(unsigned))
	case ast.BITAND:
		g.emit("  and $a0, $a0, $a1")
	case ast.BITOR:
		g.emit("  or $a0, $a0, $a1")
	case ast.BITXOR:
		g.emit("  xor $a0, $a0, $a1")
	case ast.EQ:
		g.emit("  sub.%s $a0, $a0, $a1", w)
		g.emit("  sltu $a0, $r0, $a0")
		g.emit("  xori $a0, $a0, 1")
	case ast.NE:
		g.emit("  sub.%s $a0, $a0, $a1", w)
		g.emit("  sltu $a0, $r0, $a0")
	case ast.LT:
		g.emit("  %s $a0, $a0, $a1", ltOp(n.Lhs.Type))
	case ast.LE:
		g.emit("  %s $a0, $a1, $a0", ltOp(n.Lhs.Type))
		g.emit("  xori $a0, $a0, 1")
	case ast.SHL:
		g.emit("  sll.%s $a0, $a0, $a1", w)
	case ast.SHR:
		if n.Lhs.Type.IsUnsigned {
			g.emit("  srl.%s $a0, $a0, $a1", w)
		} else {
			g.emit("  sra.%s $a0, $a0, $a1", w)
		}
	default:
		return errTok(n.Tok.Line, "invalid expression")
	}
	return nil
}

func uSuffix(unsigned bool) string {
	if unsigned {
		return "u"
	}
	return ""
}

func ltOp(ty *types.Type) string {
	if ty.IsUnsigned {
		return "sltu"
	}
	return "slt"
}
