package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anfir/internal/ast"
)

// TestKinds tests node classification.
func TestKinds(t *testing.T) {
	s := newSquare(t)
	sub := s.a.NewGraph(s.g, ast.Sym("sub"), nil)
	ref := s.a.NewConstant(sub, ast.Sym("sub"))

	assert.Equal(t, KindInput, s.a.Kind(s.x))
	assert.Equal(t, KindConstant, s.a.Kind(s.add))
	assert.Equal(t, KindComputation, s.a.Kind(s.r))
	assert.Equal(t, KindGraph, s.a.Kind(ref))

	assert.True(t, s.a.IsInput(s.x))
	assert.True(t, s.a.IsConstant(s.add))
	assert.True(t, s.a.IsBuiltin(s.add))
	assert.True(t, s.a.IsConstant(ref))
	assert.False(t, s.a.IsBuiltin(ref))
	assert.True(t, s.a.IsGraph(ref))
	assert.True(t, s.a.IsComputation(s.m))
	assert.Nil(t, s.a.Graph(s.add))
	assert.Same(t, s.g, s.a.Graph(s.m))
	assert.Equal(t, "graph", KindGraph.String())
}

// TestRoles tests role validity and rendering.
func TestRoles(t *testing.T) {
	assert.True(t, FN.Valid())
	assert.True(t, IN(0).Valid())
	assert.False(t, IN(-1).Valid())
	assert.False(t, Role{}.Valid())
	assert.False(t, Role{Kind: RoleFn, Index: 2}.Valid())
	assert.Equal(t, "FN", FN.String())
	assert.Equal(t, "IN(3)", IN(3).String())
}

// TestAccessors tests edge reads.
func TestAccessors(t *testing.T) {
	s := newSquare(t)

	assert.Equal(t, s.add, s.a.Fn(s.r))
	assert.Equal(t, []NodeID{s.m, s.x}, s.a.Inputs(s.r))
	assert.Equal(t, []NodeID{s.add, s.m, s.x}, s.a.App(s.r))
	assert.Nil(t, s.a.App(s.x))
	assert.Equal(t, []NodeID{s.mul, s.x}, s.a.Successors(s.m), "successors are distinct")

	got, err := s.a.Succ(s.r, IN(1))
	require.NoError(t, err)
	assert.Equal(t, s.x, got)
	got, err = s.a.Succ(s.r, IN(9))
	require.NoError(t, err)
	assert.Equal(t, NoNode, got)
	_, err = s.a.Succ(s.r, IN(-1))
	assert.True(t, IsRoleError(err))
	_, err = s.a.Succ(NodeID(99), FN)
	assert.True(t, IsInvalidNode(err))
}

// TestUsers_LinkOrder tests that reverse edges keep link order.
func TestUsers_LinkOrder(t *testing.T) {
	s := newSquare(t)
	assert.Equal(t, []Use{
		{Role: IN(0), User: s.m},
		{Role: IN(1), User: s.m},
		{Role: IN(1), User: s.r},
	}, s.a.Users(s.x))
	assert.Equal(t, []Use{{Role: FN, User: s.r}}, s.a.Users(s.add))
}

// TestInfo tests the read-only snapshot.
func TestInfo(t *testing.T) {
	s := newSquare(t)
	s.a.Inferred(s.m)["type"] = "int"

	info, ok := s.a.Info(s.m)
	require.True(t, ok)
	assert.Equal(t, KindComputation, info.Kind)
	assert.Equal(t, "m", info.Tag.String())
	assert.Equal(t, s.mul, info.Fn)
	assert.Equal(t, []NodeID{s.x, s.x}, info.Inputs)
	assert.Equal(t, []Use{{Role: IN(0), User: s.r}}, info.Users)
	assert.Equal(t, "int", info.Inferred["type"])

	info.Inferred["type"] = "float"
	assert.Equal(t, "int", s.a.Inferred(s.m)["type"], "snapshot must not alias the slot")

	_, ok = s.a.Info(NoNode)
	assert.False(t, ok)
}

// TestLabel tests message labels.
func TestLabel(t *testing.T) {
	s := newSquare(t)
	one := s.a.NewConstant(ast.Int(1), nil)
	assert.Equal(t, "m", s.a.Label(s.m))
	assert.Equal(t, "1", s.a.Label(one))
	assert.Equal(t, "n42", s.a.Label(NodeID(42)))
}
