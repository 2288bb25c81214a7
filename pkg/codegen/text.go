package codegen

import (
	"loongcc/pkg/ast"
	"loongcc/pkg/types"
)

// emitText emits every function definition: visibility, prologue,
// argument homing, body, epilogue.
func (g *Generator) emitText(prog []*ast.Obj) error {
	for _, fn := range prog {
		if !fn.IsFunction || !fn.IsDefinition {
			continue
		}
		if err := g.emitFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitFunction(fn *ast.Obj) error {
	if fn.IsStatic {
		g.emit("  .local %s", fn.Name)
	} else {
		g.emit("  .globl %s", fn.Name)
	}
	g.emit("  .text")
	g.emit("%s:", fn.Name)

	g.currentFn = fn
	g.depth = 0

	frame := fn.StackSize + 16
	g.emit("  addi.d $sp, $sp, -%d", frame)
	g.emit("  st.d $ra, $sp, %d", fn.StackSize+8)
	g.emit("  st.d $fp, $sp, %d", fn.StackSize)
	g.emit("  add.d $fp, $r0, $sp")
	g.emit("  addi.d $sp, $sp, -%d", fn.StackSize)

	g.homeArguments(fn)

	if err := g.genStmt(fn.Body); err != nil {
		return err
	}
	if err := g.checkDepth(); err != nil {
		return err
	}

	g.emit(".L.return.%s:", fn.Name)
	g.emit("  add.d $sp, $r0, $fp")
	g.emit("  ld.d $ra, $sp, %d", fn.StackSize+8)
	g.emit("  ld.d $fp, $sp, %d", fn.StackSize)
	g.emit("  addi.d $sp, $sp, %d", frame)
	g.emit("  jr $ra")

	g.currentFn = nil
	return nil
}

// homeArguments stores each incoming argument register into its
// parameter's frame slot. A trailing array-typed parameter is the
// variadic tail sink: it captures every remaining argument register
// one 8-byte word per register, starting at its own
// frame address.
func (g *Generator) homeArguments(fn *ast.Obj) {
	reg := 0
	for _, p := range fn.Params {
		if reg >= len(argRegs) {
			return
		}
		base := p.Offset - p.Type.Size

		if p.Type.Kind == types.Array {
			slot := 0
			for reg < len(argRegs) {
				g.emit("  st.d $%s, $fp, %d", argRegs[reg], base+slot*8)
				reg++
				slot++
			}
			return
		}

		switch p.Type.Size {
		case 1:
			g.emit("  st.b $%s, $fp, %d", argRegs[reg], base)
		case 2:
			g.emit("  st.h $%s, $fp, %d", argRegs[reg], base)
		case 4:
			g.emit("  st.w $%s, $fp, %d", argRegs[reg], base)
		default:
			g.emit("  st.d $%s, $fp, %d", argRegs[reg], base)
		}
		reg++
	}
}
