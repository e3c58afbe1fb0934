package lower

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anfir/internal/anf"
	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/ir"
	"github.com/roach88/anfir/internal/testutil"
)

var (
	x, y, m, k   = ast.Sym("x"), ast.Sym("y"), ast.Sym("m"), ast.Sym("k")
	add, mul, fs = ast.Sym("add"), ast.Sym("mul"), ast.Sym("f")
)

func lower(t *testing.T, lam *ast.Lambda) (*ir.Arena, *ir.Graph) {
	t.Helper()
	a := ir.NewArena()
	g, err := Lambda(a, lam)
	require.NoError(t, err)
	require.NoError(t, a.Verify())
	return a, g
}

// TestLambda_Bindings tests that each binding becomes one tagged node.
func TestLambda_Bindings(t *testing.T) {
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.LetIn(ast.App(add, m, x), ast.Bind(m, ast.App(mul, x, x))))
	a, g := lower(t, lam)

	require.Len(t, g.Inputs, 1)
	in := g.Inputs[0]
	assert.Equal(t, "x", a.Tag(in).String())
	assert.Equal(t, "main", g.String())

	order, err := g.Toposort()
	require.NoError(t, err)
	require.Len(t, order, 2)
	mID, out := order[0], order[1]
	assert.Equal(t, out, g.Output)
	assert.Equal(t, "m", a.Tag(mID).String())
	assert.Equal(t, "out#1", a.Tag(out).String())

	assert.True(t, a.IsBuiltin(a.Fn(mID)))
	assert.Equal(t, []ir.NodeID{in, in}, a.Inputs(mID))
	assert.Equal(t, []ir.NodeID{mID, in}, a.Inputs(out))
	v, _ := a.Value(a.Fn(out))
	assert.Equal(t, add, v)
}

// TestLambda_Alias tests that a symbol binding reuses its target.
func TestLambda_Alias(t *testing.T) {
	al := ast.Sym("a")
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.LetIn(ast.App(add, al, al), ast.Bind(al, x)))
	a, g := lower(t, lam)

	assert.Equal(t, []ir.NodeID{g.Inputs[0], g.Inputs[0]}, a.Inputs(g.Output))
}

// TestLambda_Literals tests that literals become constants.
func TestLambda_Literals(t *testing.T) {
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.App(add, x, ast.IntLit(1)))
	a, g := lower(t, lam)

	c := a.Inputs(g.Output)[1]
	assert.True(t, a.IsConstant(c))
	assert.False(t, a.IsBuiltin(c))
	v, ok := a.Value(c)
	require.True(t, ok)
	assert.Equal(t, ast.Int(1), v)
}

// TestLambda_SharedBuiltins tests that every use of a builtin name refers
// to one constant.
func TestLambda_SharedBuiltins(t *testing.T) {
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.LetIn(ast.App(add, m, m), ast.Bind(m, ast.App(add, x, x))))
	a, g := lower(t, lam)

	mID := a.Inputs(g.Output)[0]
	assert.Equal(t, a.Fn(mID), a.Fn(g.Output))
	assert.Len(t, a.Users(a.Fn(g.Output)), 2)
}

// TestLambda_Structured tests the builtins standing for If, Tuple and
// Closure.
func TestLambda_Structured(t *testing.T) {
	c, tp, cl := ast.Sym("c"), ast.Sym("t"), ast.Sym("cl")
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{c, x},
		ast.LetIn(ast.Cond(c, tp, cl),
			ast.Bind(tp, ast.Tup(x, ast.IntLit(1))),
			ast.Bind(cl, ast.Clo(add, x)),
		))
	a, g := lower(t, lam)

	fnName := func(id ir.NodeID) string {
		v, _ := a.Value(a.Fn(id))
		return v.(*ast.Symbol).Label
	}
	assert.Equal(t, BuiltinIf, fnName(g.Output))
	ins := a.Inputs(g.Output)
	require.Len(t, ins, 3)
	assert.Equal(t, BuiltinTuple, fnName(ins[1]))
	assert.Equal(t, BuiltinClosure, fnName(ins[2]))
	assert.Len(t, a.Inputs(ins[2]), 2)
}

// TestLambda_StructuredIgnoresUserBindings tests that a user binding named
// after a structural builtin does not capture it.
func TestLambda_StructuredIgnoresUserBindings(t *testing.T) {
	c := ast.Sym("c")
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{c},
		ast.LetIn(ast.Cond(c, ast.IntLit(10), ast.IntLit(20)),
			ast.Bind(ast.Sym(BuiltinIf), ast.IntLit(7)),
		))
	a, g := lower(t, lam)

	fn := a.Fn(g.Output)
	assert.True(t, a.IsBuiltin(fn))
	v, _ := a.Value(fn)
	assert.Equal(t, ast.Sym(BuiltinIf), v)
}

// TestLambda_SelfReference tests a binding that refers to the argument it
// shadows.
func TestLambda_SelfReference(t *testing.T) {
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.LetIn(x, ast.Bind(x, ast.App(add, x, ast.IntLit(1)))))
	a, g := lower(t, lam)

	assert.NotEqual(t, g.Inputs[0], g.Output)
	assert.Equal(t, g.Inputs[0], a.Inputs(g.Output)[0])
}

// TestLambda_Nested tests child graphs and boundary references.
func TestLambda_Nested(t *testing.T) {
	inner := ast.Lam(testutil.NewNamer("f/k"), []*ast.Symbol{y}, ast.App(add, x, y))
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.LetIn(ast.App(k, ast.IntLit(2)), ast.Bind(k, inner)))
	a, g := lower(t, lam)

	ref := a.Fn(g.Output)
	require.True(t, a.IsGraph(ref))
	v, _ := a.Value(ref)
	child := v.(*ir.Graph)
	assert.Same(t, g, child.Parent)
	assert.True(t, child.ContainedIn(g))
	assert.Equal(t, "k", child.String())
	assert.Equal(t, []ir.NodeID{g.Inputs[0]}, child.Boundary())

	order, err := child.Toposort()
	require.NoError(t, err)
	assert.Equal(t, []ir.NodeID{child.Output}, order)
}

// TestLambda_Recursive tests a lambda bound to a name it refers to.
func TestLambda_Recursive(t *testing.T) {
	inner := ast.Lam(testutil.NewNamer("f/loop"), []*ast.Symbol{y}, ast.App(fs, y))
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.LetIn(ast.App(fs, x), ast.Bind(fs, inner)))
	a, g := lower(t, lam)

	ref := a.Fn(g.Output)
	v, _ := a.Value(ref)
	child := v.(*ir.Graph)
	assert.Equal(t, ref, a.Fn(child.Output))
}

// TestLambda_RejectsNonANF tests that nested operands are reported.
func TestLambda_RejectsNonANF(t *testing.T) {
	lam := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x},
		ast.App(add, ast.App(mul, x, x), x))
	_, err := Lambda(ir.NewArena(), lam)
	require.Error(t, err)

	var ce *anf.CheckError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, anf.ErrNonAtomicOperand, ce.Violations[0].Code)
}

// TestLambda_AfterNormalize tests lowering the output of Normalize.
func TestLambda_AfterNormalize(t *testing.T) {
	src := ast.Lam(testutil.NewNamer("f"), []*ast.Symbol{x, y},
		ast.App(add, ast.App(mul, x, ast.App(add, y, ast.IntLit(1))), ast.Cond(x, y, ast.App(mul, y, y))))
	norm, err := anf.Normalize(src)
	require.NoError(t, err)
	lam, ok := norm.(*ast.Lambda)
	require.True(t, ok)

	a, g := lower(t, lam)
	order, err := g.Toposort()
	require.NoError(t, err)
	assert.Len(t, order, 5)
	assert.Equal(t, g.Output, order[len(order)-1])
	assert.Equal(t, "add/in1#1", a.Tag(order[1]).String())
}

// TestLambda_Nil tests the nil guard.
func TestLambda_Nil(t *testing.T) {
	_, err := Lambda(ir.NewArena(), nil)
	assert.Error(t, err)
}
