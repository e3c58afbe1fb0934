package testutil

import (
	"fmt"
	"math/rand"

	"github.com/roach88/anfir/internal/ast"
)

// FreeVars are the free variables of trees built by RandomTree. Evaluate
// them with integer bindings.
var FreeVars = []string{"x", "y", "z"}

// RandomTree builds a deterministic pseudo-random integer expression from
// seed. Every construct of the grammar appears at some depth: Apply of
// arithmetic builtins, If over comparisons, Let with sequential bindings,
// Begin, immediately applied Lambda, Tuple indexing and Closure partial
// application. Evaluating the result never fails for integer free variables.
func RandomTree(seed int64, depth int) ast.Expr {
	b := &treeBuilder{rng: rand.New(rand.NewSource(seed))}
	return b.expr(depth, b.freeScope())
}

// RandomShadowedTree is like RandomTree but Let binders and Lambda
// arguments often reuse a name already in scope, free variables included,
// so inner bindings shadow outer ones.
func RandomShadowedTree(seed int64, depth int) ast.Expr {
	b := &treeBuilder{rng: rand.New(rand.NewSource(seed)), shadow: true}
	return b.expr(depth, b.freeScope())
}

type treeBuilder struct {
	rng    *rand.Rand
	fresh  int
	shadow bool
}

func (b *treeBuilder) freeScope() []*ast.Symbol {
	scope := make([]*ast.Symbol, len(FreeVars))
	for i, v := range FreeVars {
		scope[i] = ast.Sym(v)
	}
	return scope
}

// name returns a binder. In shadow mode it picks a name from scope half of
// the time.
func (b *treeBuilder) name(prefix string, scope []*ast.Symbol) *ast.Symbol {
	b.fresh++
	if b.shadow && b.rng.Intn(2) == 0 {
		return ast.Sym(scope[b.rng.Intn(len(scope))].Label)
	}
	return ast.Sym(fmt.Sprintf("%s%d", prefix, b.fresh))
}

func (b *treeBuilder) atom(scope []*ast.Symbol) ast.Expr {
	if b.rng.Intn(3) == 0 {
		return ast.IntLit(int64(b.rng.Intn(11) - 5))
	}
	return scope[b.rng.Intn(len(scope))]
}

var arith = []string{"add", "sub", "mul"}

func (b *treeBuilder) expr(depth int, scope []*ast.Symbol) ast.Expr {
	if depth <= 0 {
		return b.atom(scope)
	}
	d := depth - 1
	switch b.rng.Intn(10) {
	case 0:
		return b.atom(scope)
	case 1, 2:
		op := ast.Sym(arith[b.rng.Intn(len(arith))])
		return ast.App(op, b.expr(d, scope), b.expr(d, scope))
	case 3:
		return ast.App(ast.Sym("neg"), b.expr(d, scope))
	case 4:
		cond := ast.App(ast.Sym("lt"), b.expr(d, scope), b.expr(d, scope))
		return ast.Cond(cond, b.expr(d, scope), b.expr(d, scope))
	case 5:
		n := 1 + b.rng.Intn(3)
		inner := append([]*ast.Symbol(nil), scope...)
		bindings := make([]ast.Binding, n)
		for i := range bindings {
			v := b.name("v", inner)
			bindings[i] = ast.Bind(v, b.expr(d, inner))
			inner = append(inner, v)
		}
		return ast.LetIn(b.expr(d, inner), bindings...)
	case 6:
		return ast.Seq(b.atom(scope), b.expr(d, scope), b.expr(d, scope))
	case 7:
		p := b.name("p", scope)
		inner := append(append([]*ast.Symbol(nil), scope...), p)
		lam := ast.Lam(NewNamer(fmt.Sprintf("lam%d", b.fresh)), []*ast.Symbol{p}, b.expr(d, inner))
		return ast.App(lam, b.expr(d, scope))
	case 8:
		tup := ast.Tup(b.expr(d, scope), b.expr(d, scope))
		return ast.App(ast.Sym("getitem"), tup, ast.IntLit(int64(b.rng.Intn(2))))
	default:
		clo := ast.Clo(ast.Sym("add"), b.expr(d, scope))
		return ast.App(clo, b.expr(d, scope))
	}
}
