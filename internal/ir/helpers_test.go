package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/gensym"
)

// square builds f(x) = add(mul(x, x), x).
type square struct {
	a        *Arena
	g        *Graph
	x        NodeID
	add, mul NodeID
	m, r     NodeID
}

func newSquare(t *testing.T) *square {
	t.Helper()
	a := NewArena()
	g := a.NewGraph(nil, ast.Sym("f"), gensym.New("f"))
	s := &square{a: a, g: g}
	s.x = g.AddInput(ast.Sym("x"))
	s.add = a.NewConstant(ast.Sym("add"), ast.Sym("add"))
	s.mul = a.NewConstant(ast.Sym("mul"), ast.Sym("mul"))

	var err error
	s.m, err = g.Apply(ast.Sym("m"), s.mul, s.x, s.x)
	require.NoError(t, err)
	s.r, err = g.Apply(ast.Sym("r"), s.add, s.m, s.x)
	require.NoError(t, err)
	require.NoError(t, g.SetOutput(s.r))
	require.NoError(t, a.Verify())
	return s
}

// validOrder reports whether order lists every owned computation reachable
// from the output exactly once, producers first.
func validOrder(a *Arena, g *Graph, order []NodeID) bool {
	pos := make(map[NodeID]int, len(order))
	for i, id := range order {
		if _, dup := pos[id]; dup {
			return false
		}
		pos[id] = i
	}
	for i, id := range order {
		for _, s := range a.Successors(id) {
			if p, ok := pos[s]; ok && p >= i {
				return false
			}
		}
	}
	for _, id := range g.IterNodes(false) {
		if _, ok := pos[id]; a.IsComputation(id) && !ok {
			return false
		}
	}
	return true
}
