package codegen

import "fmt"

// uniqueLabel hands out a globally unique, monotonically increasing
// label of the form ".L.<purpose>.<id>". The counter lives on the
// Generator (not a package global), so two Generate calls in the same
// process each start fresh instead of leaking state across calls.
func (g *Generator) uniqueLabel(purpose string) string {
	g.labelCounter++
	return fmt.Sprintf(".L.%s.%d", purpose, g.labelCounter)
}
