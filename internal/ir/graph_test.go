package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anfir/internal/ast"
)

// TestReplace_Output tests that replacing the output moves it.
func TestReplace_Output(t *testing.T) {
	s := newSquare(t)
	r2, err := s.g.Apply(ast.Sym("r2"), s.mul, s.m, s.x)
	require.NoError(t, err)

	require.NoError(t, s.g.Replace(s.r, r2))
	assert.Equal(t, r2, s.g.Output)
	require.NoError(t, s.a.Verify())
}

// TestReplace_Intermediate tests replacing a node that is not the output.
func TestReplace_Intermediate(t *testing.T) {
	s := newSquare(t)
	sub := s.a.NewConstant(ast.Sym("sub"), ast.Sym("sub"))
	m2, err := s.g.Apply(ast.Sym("m2"), sub, s.x, s.x)
	require.NoError(t, err)

	require.NoError(t, s.g.Replace(s.m, m2))
	assert.Equal(t, s.r, s.g.Output)
	assert.Equal(t, []NodeID{m2, s.x}, s.a.Inputs(s.r))
	assert.Empty(t, s.a.Users(s.m))
	assert.NotContains(t, s.g.IterNodes(false), s.m)
	require.NoError(t, s.a.Verify())
}

// TestLink tests adding an edge through the graph.
func TestLink(t *testing.T) {
	s := newSquare(t)
	n := s.g.NewNode(ast.Sym("n"))

	require.NoError(t, s.g.Link(n, s.add, FN))
	require.NoError(t, s.g.Link(n, s.r, IN(0)))
	assert.Equal(t, []NodeID{s.add, s.r}, s.a.App(n))
	assert.True(t, IsInvalidNode(s.g.Link(n, NodeID(99), IN(1))))
	assert.True(t, IsInvalidNode(s.g.Link(NoNode, s.x, IN(1))))
}

// TestContainedIn tests the ancestor relation.
func TestContainedIn(t *testing.T) {
	a := NewArena()
	root := a.NewGraph(nil, ast.Sym("root"), nil)
	mid := a.NewGraph(root, ast.Sym("mid"), nil)
	leaf := a.NewGraph(mid, ast.Sym("leaf"), nil)
	other := a.NewGraph(nil, ast.Sym("other"), nil)

	assert.True(t, leaf.ContainedIn(leaf))
	assert.True(t, leaf.ContainedIn(mid))
	assert.True(t, leaf.ContainedIn(root))
	assert.False(t, root.ContainedIn(leaf))
	assert.False(t, leaf.ContainedIn(other))
}

// TestIterNodes tests reachability from the output.
func TestIterNodes(t *testing.T) {
	s := newSquare(t)
	dead, err := s.g.Apply(ast.Sym("dead"), s.add, s.x, s.x)
	require.NoError(t, err)

	nodes := s.g.IterNodes(false)
	assert.Equal(t, []NodeID{s.r, s.m, s.x}, nodes)
	assert.NotContains(t, nodes, dead)
	assert.NotContains(t, nodes, s.add)
}

// TestIterNodes_Boundary tests that foreign nodes are returned but not
// traversed.
func TestIterNodes_Boundary(t *testing.T) {
	s := newSquare(t)
	inner := s.a.NewGraph(s.g, ast.Sym("inner"), nil)
	y := inner.AddInput(ast.Sym("y"))
	out, err := inner.Apply(ast.Sym("o"), s.add, y, s.m)
	require.NoError(t, err)
	require.NoError(t, inner.SetOutput(out))

	assert.Equal(t, []NodeID{out, y}, inner.IterNodes(false))
	assert.Equal(t, []NodeID{out, y, s.m}, inner.IterNodes(true))
	assert.Equal(t, []NodeID{s.m}, inner.Boundary())
	assert.Empty(t, s.g.Boundary())
}

// TestIterNodes_NoOutput tests an empty graph.
func TestIterNodes_NoOutput(t *testing.T) {
	a := NewArena()
	g := a.NewGraph(nil, nil, nil)
	assert.Empty(t, g.IterNodes(true))
	assert.Equal(t, "<graph>", g.String())
	assert.True(t, IsInvalidNode(g.SetOutput(NodeID(3))))
}

// TestEdges tests the forward edge listing.
func TestEdges(t *testing.T) {
	s := newSquare(t)
	assert.Equal(t, []Edge{
		{From: s.r, Role: FN, To: s.add},
		{From: s.r, Role: IN(0), To: s.m},
		{From: s.r, Role: IN(1), To: s.x},
		{From: s.m, Role: FN, To: s.mul},
		{From: s.m, Role: IN(0), To: s.x},
		{From: s.m, Role: IN(1), To: s.x},
	}, s.g.Edges())
}
