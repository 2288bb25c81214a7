package codegen

import "loongcc/pkg/ast"

// genAddr computes the address of an lvalue node into the accumulator
// (a0). Any node kind that isn't an lvalue is a
// programmer error from an earlier phase.
func (g *Generator) genAddr(n *ast.Node) error {
	switch n.Kind {
	case ast.VAR:
		if n.Var.IsLocal {
			// frame_ptr + (offset - size); offset is the slot's top.
			g.emit("  addi.d $a0, $fp, %d", n.Var.Offset-n.Var.Type.Size)
		} else {
			g.emit("  la.local $a0, %s", n.Var.Name)
		}
		return nil

	case ast.DEREF:
		return g.genExpr(n.Lhs)

	case ast.COMMA:
		if err := g.genExpr(n.Lhs); err != nil {
			return err
		}
		return g.genAddr(n.Rhs)

	case ast.MEMBER:
		if err := g.genAddr(n.Lhs); err != nil {
			return err
		}
		g.emit("  addi.d $a0, $a0, %d", n.Member.Offset)
		return nil
	}

	return errTok(n.Tok.Line, "not an lvalue")
}
