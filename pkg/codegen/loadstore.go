package codegen

import "loongcc/pkg/types"

// load reads ty.Size bytes from the address in the accumulator into the
// accumulator. Arrays/structs/unions are left alone:
// their "value" is the address already computed by genAddr.
func (g *Generator) load(ty *types.Type) {
	if ty.IsAggregate() {
		return
	}

	switch ty.Size {
	case 1:
		if ty.IsUnsigned {
			g.emit("  ld.bu $a0, $a0, 0")
		} else {
			g.emit("  ld.b $a0, $a0, 0")
		}
	case 2:
		if ty.IsUnsigned {
			g.emit("  ld.hu $a0, $a0, 0")
		} else {
			g.emit("  ld.h $a0, $a0, 0")
		}
	case 4:
		if ty.IsUnsigned {
			g.emit("  ld.wu $a0, $a0, 0")
		} else {
			g.emit("  ld.w $a0, $a0, 0")
		}
	default:
		g.emit("  ld.d $a0, $a0, 0")
	}
}

// store pops the destination address (pushed by the caller) into a1 and
// writes the accumulator there. Aggregates are copied
// byte by byte; scalars use a single width-specific store.
func (g *Generator) store(ty *types.Type) {
	g.pop("a1")

	if ty.IsAggregate() {
		for i := 0; i < ty.Size; i++ {
			g.emit("  ld.b $t1, $a0, %d", i)
			g.emit("  st.b $t1, $a1, %d", i)
		}
		return
	}

	switch ty.Size {
	case 1:
		g.emit("  st.b $a0, $a1, 0")
	case 2:
		g.emit("  st.h $a0, $a1, 0")
	case 4:
		g.emit("  st.w $a0, $a1, 0")
	default:
		g.emit("  st.d $a0, $a1, 0")
	}
}
