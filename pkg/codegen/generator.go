package codegen

import (
	"fmt"
	"io"

	"loongcc/pkg/ast"
)

// Generator walks a translation unit and writes LoongArch assembly to
// out. It is single-use: construct one per call to Generate.
type Generator struct {
	out io.Writer

	labelCounter int // label allocator, see labels.go
	depth        int // push depth, see §5/§8: must return to 0 at statement/function boundaries

	currentFn *ast.Obj
}

func newGenerator(out io.Writer) *Generator {
	return &Generator{out: out}
}

// Generate walks prog (the parser's linked list of top-level functions
// and globals) and writes a complete LoongArch assembly listing to out,
// the usual order: layout pass, then data section, then text
// section, then the trailing size/note markers.
//
// Each call constructs a fresh Generator, so the label counter and push
// depth never leak between calls in
// the same process.
func Generate(prog []*ast.Obj, out io.Writer) error {
	layoutProgram(prog)

	g := newGenerator(out)
	g.emitData(prog)
	if err := g.emitText(prog); err != nil {
		return err
	}

	g.emit(".LFE0:")
	g.emitMainSize(prog)
	g.emit("  .section .note.GNU-stack,\"\",@progbits")
	return nil
}

// emitMainSize emits the .size directive for main, if the program
// defines one.
func (g *Generator) emitMainSize(prog []*ast.Obj) {
	for _, fn := range prog {
		if fn.IsFunction && fn.IsDefinition && fn.Name == "main" {
			g.emit("  .size main, .-main")
			return
		}
	}
}

// emit writes one formatted line followed by a newline; this is the
// only place that writes to out.
func (g *Generator) emit(format string, args ...any) {
	if len(args) == 0 {
		fmt.Fprintln(g.out, format)
		return
	}
	fmt.Fprintf(g.out, format+"\n", args...)
}

// push spills the accumulator (a0) into a fresh 8-byte stack slot.
func (g *Generator) push() {
	g.emit("  addi.d $sp, $sp, -8")
	g.emit("  st.d $a0, $sp, 0")
	g.depth++
}

// pop restores the top stack slot into reg, usually "a1".
func (g *Generator) pop(reg string) {
	g.emit("  ld.d $%s, $sp, 0", reg)
	g.emit("  addi.d $sp, $sp, 8")
	g.depth--
}

// checkDepth verifies the push/pop discipline left nothing outstanding
// at the end of a function body.
func (g *Generator) checkDepth() error {
	if g.depth != 0 {
		return errTok(0, "internal error: push depth %d at end of %s, expected 0", g.depth, g.currentFn.Name)
	}
	return nil
}
