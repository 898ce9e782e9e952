// Package usegraph extracts the def-use graph reachable from a
// function's stack pointer for DOT inspection. It exists to answer
// "why did frame recovery classify this value that way" without
// stepping through the builder.
package usegraph

import (
	"github.com/zboralski/lattice"

	"stackrec/internal/ssa"
)

// Build constructs a lattice.Graph over every value reachable from the
// designated stack pointer of fn. Each value becomes a node labeled
// with its SSA name (or "op.N" for unnamed instructions); each def-use
// pair becomes an edge. Returns false when fn has no designated stack
// pointer.
func Build(fn *ssa.Func) (*lattice.Graph, bool) {
	base, ok := fn.StackPointer()
	if !ok {
		return nil, false
	}

	g := &lattice.Graph{}
	seen := map[ssa.Value]bool{}
	var walk func(v ssa.Value)
	walk = func(v ssa.Value) {
		if seen[v] {
			return
		}
		seen[v] = true
		g.Nodes = append(g.Nodes, label(v))
		for _, use := range v.Uses() {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: label(v),
				Callee: label(use),
			})
			walk(use)
		}
	}
	walk(base)
	g.Dedup()
	return g, true
}

func label(v ssa.Value) string {
	if in, ok := v.(*ssa.Instr); ok {
		return in.Label()
	}
	return v.Name()
}
