package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anfir/internal/ast"
)

// TestSetSucc_Retarget tests that retargeting unlinks the old edge.
func TestSetSucc_Retarget(t *testing.T) {
	s := newSquare(t)

	require.NoError(t, s.a.SetSucc(s.r, IN(0), s.x))
	assert.Equal(t, []NodeID{s.x, s.x}, s.a.Inputs(s.r))
	assert.Empty(t, s.a.Users(s.m))
	assert.Contains(t, s.a.Users(s.x), Use{Role: IN(0), User: s.r})
	require.NoError(t, s.a.Verify())
}

// TestSetSucc_Clear tests clearing an edge with NoNode.
func TestSetSucc_Clear(t *testing.T) {
	s := newSquare(t)

	require.NoError(t, s.a.SetSucc(s.r, FN, NoNode))
	assert.Equal(t, NoNode, s.a.Fn(s.r))
	assert.Empty(t, s.a.Users(s.add))
	assert.False(t, s.a.IsComputation(s.r))
	require.NoError(t, s.a.Verify())
}

// TestSetSucc_Sparse tests that input slots grow on demand.
func TestSetSucc_Sparse(t *testing.T) {
	s := newSquare(t)
	n := s.g.NewNode(ast.Sym("n"))

	require.NoError(t, s.a.SetSucc(n, IN(2), s.x))
	assert.Equal(t, []NodeID{NoNode, NoNode, s.x}, s.a.Inputs(n))
	require.NoError(t, s.a.Verify())
}

// TestSetSucc_Noop tests that setting the current target changes nothing.
func TestSetSucc_Noop(t *testing.T) {
	s := newSquare(t)
	before := s.a.Users(s.m)
	require.NoError(t, s.a.SetSucc(s.r, IN(0), s.m))
	assert.Equal(t, before, s.a.Users(s.m))
}

// TestSetSucc_Errors tests invalid roles and handles.
func TestSetSucc_Errors(t *testing.T) {
	s := newSquare(t)

	err := s.a.SetSucc(s.r, IN(-1), s.x)
	assert.True(t, IsRoleError(err))
	err = s.a.SetSucc(s.r, Role{Kind: 7}, s.x)
	assert.True(t, IsRoleError(err))
	err = s.a.SetSucc(NodeID(77), FN, s.x)
	assert.True(t, IsInvalidNode(err))
	err = s.a.SetSucc(s.r, FN, NodeID(77))
	assert.True(t, IsInvalidNode(err))
	require.NoError(t, s.a.Verify())
}

// TestApply_LinkOccupied tests that linking an occupied role is rejected.
func TestApply_LinkOccupied(t *testing.T) {
	s := newSquare(t)

	err := s.a.apply(batch{}.link(s.r, FN, s.mul))
	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))
	assert.Contains(t, err.Error(), "already occupied")
}

// TestApply_UnlinkMismatch tests that unlinking a different edge is rejected.
func TestApply_UnlinkMismatch(t *testing.T) {
	s := newSquare(t)

	err := s.a.apply(batch{}.unlink(s.r, IN(0), s.x))
	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))
	assert.Contains(t, err.Error(), "expected")
}

// TestApply_NoPartialApplication tests that a batch failing midway leaves
// every node as it was.
func TestApply_NoPartialApplication(t *testing.T) {
	s := newSquare(t)
	inputsBefore := s.a.Inputs(s.r)
	usersM := s.a.Users(s.m)
	usersX := s.a.Users(s.x)

	b := batch{}.
		unlink(s.r, IN(0), s.m).
		link(s.r, IN(0), s.x).
		link(s.r, IN(1), s.m) // IN(1) still holds x
	err := s.a.apply(b)
	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))

	assert.Equal(t, inputsBefore, s.a.Inputs(s.r))
	assert.Equal(t, usersM, s.a.Users(s.m))
	assert.Equal(t, usersX, s.a.Users(s.x))
	require.NoError(t, s.a.Verify())
}

// TestApply_ShadowSeesEarlierOps tests that validation accounts for the
// earlier primitives of the same batch.
func TestApply_ShadowSeesEarlierOps(t *testing.T) {
	s := newSquare(t)

	b := batch{}.
		unlink(s.r, IN(1), s.x).
		link(s.r, IN(1), s.m)
	require.NoError(t, s.a.apply(b))
	assert.Equal(t, []NodeID{s.m, s.m}, s.a.Inputs(s.r))
	require.NoError(t, s.a.Verify())
}

// TestSetApp_Restructure tests replacing fn and inputs together.
func TestSetApp_Restructure(t *testing.T) {
	s := newSquare(t)

	require.NoError(t, s.a.SetApp(s.r, s.mul, []NodeID{s.x, s.m, s.x}))
	assert.Equal(t, s.mul, s.a.Fn(s.r))
	assert.Equal(t, []NodeID{s.x, s.m, s.x}, s.a.Inputs(s.r))
	assert.Empty(t, s.a.Users(s.add))
	assert.Equal(t, []Use{{Role: IN(1), User: s.r}}, s.a.Users(s.m))
	require.NoError(t, s.a.Verify())
}

// TestSetApp_Shrink tests that dropped trailing inputs are unlinked and
// trimmed.
func TestSetApp_Shrink(t *testing.T) {
	s := newSquare(t)

	require.NoError(t, s.a.SetApp(s.r, s.add, []NodeID{s.x}))
	assert.Equal(t, []NodeID{s.x}, s.a.Inputs(s.r))
	assert.Empty(t, s.a.Users(s.m))
	require.NoError(t, s.a.Verify())
}

// TestSetApp_FromInput tests turning a bare node into a computation.
func TestSetApp_FromInput(t *testing.T) {
	s := newSquare(t)
	n := s.g.NewNode(ast.Sym("n"))
	assert.True(t, s.a.IsInput(n))

	s.a.MustSetApp(n, s.add, s.x, s.r)
	assert.True(t, s.a.IsComputation(n))
	require.NoError(t, s.a.Verify())
}

// TestSetApp_InvalidInput tests that a bad input handle changes nothing.
func TestSetApp_InvalidInput(t *testing.T) {
	s := newSquare(t)
	err := s.a.SetApp(s.r, s.mul, []NodeID{s.x, NodeID(500)})
	assert.True(t, IsInvalidNode(err))
	assert.Equal(t, s.add, s.a.Fn(s.r))
	require.NoError(t, s.a.Verify())
}

// TestRedirect tests moving every user onto another node.
func TestRedirect(t *testing.T) {
	s := newSquare(t)
	formerUsers := s.a.Users(s.x)
	y := s.g.AddInput(ast.Sym("y"))

	require.NoError(t, s.a.Redirect(s.x, y))

	assert.Empty(t, s.a.Users(s.x))
	for _, u := range formerUsers {
		got, err := s.a.Succ(u.User, u.Role)
		require.NoError(t, err)
		assert.Equal(t, y, got)
	}
	assert.Equal(t, formerUsers, s.a.Users(y))
	require.NoError(t, s.a.Verify())
}

// TestRedirect_KeepsForwardEdges tests that the redirected node keeps its
// own edges.
func TestRedirect_KeepsForwardEdges(t *testing.T) {
	s := newSquare(t)
	m2, err := s.g.Apply(ast.Sym("m2"), s.add, s.x, s.x)
	require.NoError(t, err)

	require.NoError(t, s.a.Redirect(s.m, m2))
	assert.Equal(t, []NodeID{m2, s.x}, s.a.Inputs(s.r))
	assert.Equal(t, []NodeID{s.x, s.x}, s.a.Inputs(s.m))
	assert.Empty(t, s.a.Users(s.m))
	require.NoError(t, s.a.Verify())
}

// TestSubsume tests the inverse form.
func TestSubsume(t *testing.T) {
	s := newSquare(t)
	m2 := s.g.NewNode(ast.Sym("m2"))

	require.NoError(t, s.a.Subsume(m2, s.m))
	assert.Equal(t, []Use{{Role: IN(0), User: s.r}}, s.a.Users(m2))
	assert.Empty(t, s.a.Users(s.m))
}

// TestRedirect_Self tests that redirecting a node onto itself is a no-op.
func TestRedirect_Self(t *testing.T) {
	s := newSquare(t)
	before := s.a.Users(s.m)
	require.NoError(t, s.a.Redirect(s.m, s.m))
	assert.Equal(t, before, s.a.Users(s.m))
	assert.True(t, IsInvalidNode(s.a.Redirect(s.m, NoNode)))
}
