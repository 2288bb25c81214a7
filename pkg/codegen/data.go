package codegen

import (
	"math/bits"

	"loongcc/pkg/ast"
)

// log2 returns the base-2 logarithm of a positive power of two, for
// the .align directive (which takes a power, not a byte count).
func log2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// emitData emits every global variable definition.
func (g *Generator) emitData(prog []*ast.Obj) {
	for _, v := range prog {
		if v.IsFunction || !v.IsDefinition {
			continue
		}

		if v.IsStatic {
			g.emit("  .local %s", v.Name)
		} else {
			g.emit("  .globl %s", v.Name)
		}
		g.emit("  .align %d", log2(v.Align))

		if v.InitData != nil {
			g.emitInitializedGlobal(v)
		} else {
			g.emit("  .bss")
			g.emit("%s:", v.Name)
			g.emit("  .zero %d", v.Type.Size)
		}
	}
}

// emitInitializedGlobal interleaves raw initializer bytes with
// relocation records, each an 8-byte "label+addend" slot that replaces
// the bytes it covers. Relocations are sorted by offset, 8 bytes each,
// and never overlap the raw bytes around them.
func (g *Generator) emitInitializedGlobal(v *ast.Obj) {
	g.emit("  .data")
	g.emit("%s:", v.Name)

	rel := v.Rel
	data := v.InitData
	pos := 0
	for pos < len(data) {
		if len(rel) > 0 && rel[0].Offset == pos {
			r := rel[0]
			if r.Addend >= 0 {
				g.emit("  .quad %s+%d", r.Label, r.Addend)
			} else {
				g.emit("  .quad %s%d", r.Label, r.Addend)
			}
			pos += 8
			rel = rel[1:]
			continue
		}
		g.emit("  .byte %d", data[pos])
		pos++
	}
}
