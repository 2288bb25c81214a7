package codegen

import (
	"loongcc/pkg/ast"
	"loongcc/pkg/types"
)

// assignLocalOffsets lays out every local of fn at a negative,
// alignment-honoring offset from the frame pointer.
//
// var.Offset is the slot's *top*; the data itself starts Offset -
// Type.Size (see genAddr in address.go). After this pass,
// fn.StackSize is a multiple of 16.
func assignLocalOffsets(fn *ast.Obj) {
	offset := 0
	for _, v := range fn.Locals {
		offset = types.AlignTo(offset, v.Align)
		v.Offset = -offset
		offset += v.Type.Size
	}
	fn.StackSize = types.AlignTo(offset, 16)
}

// layoutProgram runs assignLocalOffsets over every function definition
// in the program, and defaults any local missing an explicit Align to
// its type's natural alignment.
func layoutProgram(prog []*ast.Obj) {
	for _, obj := range prog {
		if !obj.IsFunction || !obj.IsDefinition {
			continue
		}
		for _, v := range obj.Locals {
			if v.Align == 0 {
				v.Align = v.Type.Align
			}
		}
		assignLocalOffsets(obj)
	}
}
