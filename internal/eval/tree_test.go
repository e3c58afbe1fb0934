package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/testutil"
)

var (
	x, y, f, p = ast.Sym("x"), ast.Sym("y"), ast.Sym("f"), ast.Sym("p")
	add, mul   = ast.Sym("add"), ast.Sym("mul")
)

func xy(xv, yv int64) *Env {
	return NewEnv(nil).Set("x", ast.Int(xv)).Set("y", ast.Int(yv))
}

// TestTree_Forms tests each construct.
func TestTree_Forms(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want Value
	}{
		{"symbol", x, ast.Int(3)},
		{"literal", ast.Lit(ast.Str("s")), ast.Str("s")},
		{"apply", ast.App(add, x, ast.App(mul, y, y)), ast.Int(19)},
		{"let is sequential", ast.LetIn(p, ast.Bind(p, x), ast.Bind(p, ast.App(mul, p, p))), ast.Int(9)},
		{"if then", ast.Cond(ast.App(ast.Sym("lt"), x, y), x, y), ast.Int(3)},
		{"if else", ast.Cond(ast.Lit(ast.Bool(false)), x, y), ast.Int(4)},
		{"tuple", ast.Tup(x, ast.IntLit(1)), Tuple{ast.Int(3), ast.Int(1)}},
		{"closure", ast.App(ast.Clo(add, x), y), ast.Int(7)},
		{"lambda", ast.App(ast.Lam(nil, []*ast.Symbol{p}, ast.App(mul, p, x)), y), ast.Int(12)},
		{"begin", ast.Seq(ast.App(add, x, x), y), ast.Int(4)},
		{"empty begin", ast.Seq(), ast.Nil{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tree(t.Context(), tt.expr, xy(3, 4))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestTree_IfIsLazy tests that the branch not taken is never evaluated.
func TestTree_IfIsLazy(t *testing.T) {
	boom := ast.App(ast.Sym("div"), x, ast.IntLit(0))
	got, err := Tree(t.Context(), ast.Cond(ast.Lit(ast.Bool(true)), y, boom), xy(1, 2))
	require.NoError(t, err)
	assert.Equal(t, ast.Int(2), got)
}

// TestTree_Closures tests that lambdas capture their defining scope.
func TestTree_Closures(t *testing.T) {
	// let mk = lambda(p) lambda(y) add(p, y); add1 = mk(1) in add1(x)
	mk, add1 := ast.Sym("mk"), ast.Sym("add1")
	inner := ast.Lam(nil, []*ast.Symbol{y}, ast.App(add, p, y))
	tree := ast.LetIn(ast.App(add1, x),
		ast.Bind(mk, ast.Lam(nil, []*ast.Symbol{p}, inner)),
		ast.Bind(add1, ast.App(mk, ast.IntLit(1))),
	)
	got, err := Tree(t.Context(), tree, xy(41, 0))
	require.NoError(t, err)
	assert.Equal(t, ast.Int(42), got)
}

// TestTree_Recursion tests a lambda that refers to its own binding.
func TestTree_Recursion(t *testing.T) {
	// fact = lambda(p) if(lt(p, 1), 1, mul(p, fact(sub(p, 1))))
	fact := ast.Sym("fact")
	body := ast.Cond(ast.App(ast.Sym("lt"), p, ast.IntLit(1)),
		ast.IntLit(1),
		ast.App(mul, p, ast.App(fact, ast.App(ast.Sym("sub"), p, ast.IntLit(1)))))
	tree := ast.LetIn(ast.App(fact, x), ast.Bind(fact, ast.Lam(nil, []*ast.Symbol{p}, body)))

	got, err := Tree(t.Context(), tree, xy(5, 0))
	require.NoError(t, err)
	assert.Equal(t, ast.Int(120), got)
}

// TestTree_Errors tests unbound symbols, bad calls and arity.
func TestTree_Errors(t *testing.T) {
	_, err := Tree(t.Context(), ast.Sym("nope"), nil)
	assert.True(t, HasCode(err, ErrCodeUnbound))

	_, err = Tree(t.Context(), ast.App(ast.IntLit(1), x), xy(1, 1))
	assert.True(t, HasCode(err, ErrCodeNotCallable))

	_, err = Tree(t.Context(), ast.App(ast.Lam(nil, []*ast.Symbol{p}, p)), nil)
	assert.True(t, HasCode(err, ErrCodeArity))

	// generated symbols never resolve to builtins
	gen := testutil.NewNamer("")
	_, err = Tree(t.Context(), gen.Sym("add"), nil)
	assert.True(t, HasCode(err, ErrCodeUnbound))
}

// TestTree_Quota tests that unbounded recursion stops at the step limit.
func TestTree_Quota(t *testing.T) {
	loop := ast.Sym("loop")
	tree := ast.LetIn(ast.App(loop, x),
		ast.Bind(loop, ast.Lam(nil, []*ast.Symbol{p}, ast.App(loop, p))))

	_, err := New(WithMaxSteps(50)).Tree(t.Context(), tree, xy(0, 0))
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))
}

// TestTree_Cancelled tests that a cancelled context stops evaluation.
func TestTree_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := Tree(ctx, ast.App(add, x, x), xy(1, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

// TestWithBuiltin tests extending the builtin table.
func TestWithBuiltin(t *testing.T) {
	twice := &Builtin{Name: "twice", Arity: 1, Fn: func(args []Value) (Value, error) {
		return args[0].(ast.Int) * 2, nil
	}}
	ev := New(WithBuiltin(twice))
	got, err := ev.Tree(t.Context(), ast.App(ast.Sym("twice"), x), xy(21, 0))
	require.NoError(t, err)
	assert.Equal(t, ast.Int(42), got)

	got, err = ev.Call(t.Context(), twice, ast.Int(2))
	require.NoError(t, err)
	assert.Equal(t, ast.Int(4), got)
}
