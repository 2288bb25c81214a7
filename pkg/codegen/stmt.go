package codegen

import "loongcc/pkg/ast"

// genStmt lowers a statement node. Every statement is
// preceded by a .loc directive, same as genExpr.
func (g *Generator) genStmt(n *ast.Node) error {
	g.emit("  .loc 1 %d", n.Tok.Line)

	switch n.Kind {
	case ast.IF:
		return g.genIf(n)

	case ast.FOR:
		return g.genFor(n)

	case ast.DO:
		return g.genDo(n)

	case ast.SWITCH:
		return g.genSwitch(n)

	case ast.CASE:
		g.emit("%s:", n.CaseLabel)
		return g.genStmt(n.Then)

	case ast.BLOCK:
		for _, stmt := range n.Body {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}
		return nil

	case ast.GOTO:
		g.emit("  b %s", n.UniqueLabel)
		return nil

	case ast.LABEL:
		g.emit("%s:", n.UniqueLabel)
		return g.genStmt(n.Lhs)

	case ast.RETURN:
		if n.Lhs != nil {
			if err := g.genExpr(n.Lhs); err != nil {
				return err
			}
		}
		g.emit("  b .L.return.%s", g.currentFn.Name)
		return nil

	case ast.EXPR_STMT:
		return g.genExpr(n.Lhs)
	}

	return errTok(n.Tok.Line, "invalid statement")
}

func (g *Generator) genIf(n *ast.Node) error {
	elseLabel := g.uniqueLabel("else")
	endLabel := g.uniqueLabel("end")

	if err := g.genExpr(n.Cond); err != nil {
		return err
	}
	g.emit("  beqz $a0, %s", elseLabel)
	if err := g.genStmt(n.Then); err != nil {
		return err
	}
	g.emit("  b %s", endLabel)
	g.emit("%s:", elseLabel)
	if n.Els != nil {
		if err := g.genStmt(n.Els); err != nil {
			return err
		}
	}
	g.emit("%s:", endLabel)
	return nil
}

// genFor handles both "for" and "while" (while is a for with no
// Init/Inc).
func (g *Generator) genFor(n *ast.Node) error {
	beginLabel := g.uniqueLabel("begin")

	if n.Init != nil {
		if err := g.genStmt(n.Init); err != nil {
			return err
		}
	}
	g.emit("%s:", beginLabel)
	if n.Cond != nil {
		if err := g.genExpr(n.Cond); err != nil {
			return err
		}
		g.emit("  beqz $a0, %s", n.BrkLabel)
	}
	if err := g.genStmt(n.Then); err != nil {
		return err
	}
	g.emit("%s:", n.ContLabel)
	if n.Inc != nil {
		if err := g.genStmt(n.Inc); err != nil {
			return err
		}
	}
	g.emit("  b %s", beginLabel)
	g.emit("%s:", n.BrkLabel)
	return nil
}

func (g *Generator) genDo(n *ast.Node) error {
	beginLabel := g.uniqueLabel("begin")

	g.emit("%s:", beginLabel)
	if err := g.genStmt(n.Then); err != nil {
		return err
	}
	g.emit("%s:", n.ContLabel)
	if err := g.genExpr(n.Cond); err != nil {
		return err
	}
	g.emit("  bne $a0, $r0, %s", beginLabel)
	g.emit("%s:", n.BrkLabel)
	return nil
}

// genSwitch compares the target against each case in order, falling
// through to the default (or brk label) if none match, then emits the
// body (which contains every case's code, each preceded by its own
// label) followed by the break label. Every case gets its own
// compare-and-branch before control reaches the body, and the
// default/brk-label is the final fallthrough: the compare loop runs to
// completion before Then is ever emitted.
func (g *Generator) genSwitch(n *ast.Node) error {
	if err := g.genExpr(n.Cond); err != nil {
		return err
	}

	for _, c := range n.Cases {
		c.CaseLabel = g.uniqueLabel("case")
		g.emit("  li.d $a1, %d", c.CaseVal)
		g.emit("  beq $a0, $a1, %s", c.CaseLabel)
	}

	if n.DefaultCase != nil {
		n.DefaultCase.CaseLabel = g.uniqueLabel("default")
		g.emit("  b %s", n.DefaultCase.CaseLabel)
	} else {
		g.emit("  b %s", n.BrkLabel)
	}

	if err := g.genStmt(n.Then); err != nil {
		return err
	}
	g.emit("%s:", n.BrkLabel)
	return nil
}
