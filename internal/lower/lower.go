// Package lower builds IR graphs from normalized lambdas.
//
// Every binding of the flat Let becomes one node tagged with its symbol.
// Literals become constants, symbols bound nowhere in scope become shared
// builtin constants and nested lambdas become child graphs referenced
// through a graph-valued constant. If, Tuple and Closure are applications of
// the builtins "if", "tuple" and "closure".
package lower

import (
	"fmt"
	"log/slog"

	"github.com/roach88/anfir/internal/anf"
	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/ir"
)

// Builtin names used for the structured nodes.
const (
	BuiltinIf      = "if"
	BuiltinTuple   = "tuple"
	BuiltinClosure = "closure"
)

// Lambda lowers lam into a new root graph of a. lam must be in flat
// A-normal form; otherwise the checker's violations are returned.
func Lambda(a *ir.Arena, lam *ast.Lambda) (*ir.Graph, error) {
	if lam == nil {
		return nil, fmt.Errorf("lower: nil lambda")
	}
	if err := anf.Verify(lam); err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	l := &lowerer{arena: a, builtins: make(map[string]ir.NodeID)}
	tag := lam.Ref
	if tag == nil {
		tag = ast.Sym("main")
	}
	g := a.NewGraph(nil, tag, lam.Gen)
	if err := l.lambda(g, lam, nil); err != nil {
		return nil, err
	}
	slog.Debug("lowered lambda",
		"graph", g.String(),
		"inputs", len(g.Inputs),
		"nodes", a.Len(),
	)
	return g, nil
}

type lowerer struct {
	arena    *ir.Arena
	builtins map[string]ir.NodeID
}

// scope maps symbol keys to nodes for one graph. Lookups that miss fall
// through to the enclosing graph's scope.
type scope struct {
	parent *scope
	names  map[string]ir.NodeID
}

func (s *scope) lookup(sym *ast.Symbol) (ir.NodeID, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.names[sym.Key()]; ok {
			return id, true
		}
	}
	return ir.NoNode, false
}

// lambda fills the empty graph g with the body of lam.
func (l *lowerer) lambda(g *ir.Graph, lam *ast.Lambda, parent *scope) error {
	sc := &scope{parent: parent, names: make(map[string]ir.NodeID)}
	for _, arg := range lam.Args {
		sc.names[arg.Key()] = g.AddInput(arg)
	}
	out, err := l.expr(g, sc, lam.Body, nil)
	if err != nil {
		return err
	}
	return g.SetOutput(out)
}

// expr lowers e into g and returns the node holding its value. tag names
// the node when e is compound.
func (l *lowerer) expr(g *ir.Graph, sc *scope, e ast.Expr, tag *ast.Symbol) (ir.NodeID, error) {
	switch n := e.(type) {
	case *ast.Symbol:
		return l.symbol(sc, n), nil

	case *ast.Value:
		return l.arena.NewConstant(n.Literal, tag), nil

	case *ast.Let:
		for _, b := range n.Bindings {
			id, err := l.binding(g, sc, b)
			if err != nil {
				return ir.NoNode, err
			}
			sc.names[b.Sym.Key()] = id
		}
		return l.expr(g, sc, n.Body, tag)

	case *ast.Apply:
		return l.apply(g, sc, tag, n.Fn, n.Args)

	case *ast.If:
		return l.applyBuiltin(g, sc, tag, BuiltinIf, []ast.Expr{n.Cond, n.Then, n.Else})

	case *ast.Tuple:
		return l.applyBuiltin(g, sc, tag, BuiltinTuple, n.Values)

	case *ast.Closure:
		return l.applyBuiltin(g, sc, tag, BuiltinClosure, append([]ast.Expr{n.Fn}, n.Args...))

	case *ast.Lambda:
		child := l.arena.NewGraph(g, graphTag(n, tag), n.Gen)
		ref := l.arena.NewConstant(child, tag)
		if err := l.lambda(child, n, sc); err != nil {
			return ir.NoNode, err
		}
		return ref, nil
	}
	return ir.NoNode, &anf.UnsupportedNodeError{Pass: "lower", Node: fmt.Sprintf("%T", e)}
}

// binding lowers one Let binding. Symbol aliases reuse the target node. A
// lambda is registered before its body is lowered so it can refer to itself.
func (l *lowerer) binding(g *ir.Graph, sc *scope, b ast.Binding) (ir.NodeID, error) {
	lam, ok := b.Expr.(*ast.Lambda)
	if !ok {
		return l.expr(g, sc, b.Expr, b.Sym)
	}
	child := l.arena.NewGraph(g, graphTag(lam, b.Sym), lam.Gen)
	ref := l.arena.NewConstant(child, b.Sym)
	sc.names[b.Sym.Key()] = ref
	if err := l.lambda(child, lam, sc); err != nil {
		return ir.NoNode, err
	}
	return ref, nil
}

func (l *lowerer) apply(g *ir.Graph, sc *scope, tag *ast.Symbol, fn ast.Expr, args []ast.Expr) (ir.NodeID, error) {
	fnID, err := l.expr(g, sc, fn, nil)
	if err != nil {
		return ir.NoNode, err
	}
	return l.call(g, sc, tag, fnID, args)
}

func (l *lowerer) call(g *ir.Graph, sc *scope, tag *ast.Symbol, fnID ir.NodeID, args []ast.Expr) (ir.NodeID, error) {
	inputs := make([]ir.NodeID, len(args))
	for i, arg := range args {
		var err error
		if inputs[i], err = l.expr(g, sc, arg, nil); err != nil {
			return ir.NoNode, err
		}
	}
	if tag == nil && g.Gen != nil {
		tag = g.Gen.Sym("out")
	}
	return g.Apply(tag, fnID, inputs...)
}

// applyBuiltin applies the builtin name. User bindings of the same name do
// not capture it.
func (l *lowerer) applyBuiltin(g *ir.Graph, sc *scope, tag *ast.Symbol, name string, args []ast.Expr) (ir.NodeID, error) {
	return l.call(g, sc, tag, l.builtin(ast.Sym(name)), args)
}

// symbol resolves a reference. Unbound symbols name builtins.
func (l *lowerer) symbol(sc *scope, s *ast.Symbol) ir.NodeID {
	if id, ok := sc.lookup(s); ok {
		return id
	}
	return l.builtin(s)
}

// builtin returns the constant for s, one shared constant per name.
func (l *lowerer) builtin(s *ast.Symbol) ir.NodeID {
	key := s.Key()
	if id, ok := l.builtins[key]; ok {
		return id
	}
	id := l.arena.NewConstant(s, s)
	l.builtins[key] = id
	return id
}

func graphTag(lam *ast.Lambda, fallback *ast.Symbol) *ast.Symbol {
	switch {
	case lam.Ref != nil:
		return lam.Ref
	case fallback != nil:
		return fallback
	}
	return ast.Sym("lambda")
}
