package gensym

import (
	"github.com/roach88/anfir/internal/ast"
)

// ReserveTree reserves every generated symbol of e in the generator of its
// namespace. The candidates are the generators of e's lambdas plus extra.
// Decoded trees must be reserved before they are rewritten, since their
// lambdas get new generators that start counting from zero.
func ReserveTree(e ast.Expr, extra ...*Generator) {
	gens := make(map[string]*Generator)
	for _, g := range extra {
		if g != nil {
			gens[g.namespace] = g
		}
	}

	var syms []*ast.Symbol
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Symbol:
			syms = append(syms, n)
		case *ast.Let:
			for _, b := range n.Bindings {
				syms = append(syms, b.Sym)
			}
		case *ast.Lambda:
			if g, ok := n.Gen.(*Generator); ok && g != nil {
				gens[g.namespace] = g
			}
			syms = append(syms, n.Args...)
			syms = append(syms, n.Ref)
		}
		for _, c := range ast.Children(e) {
			walk(c)
		}
	}
	walk(e)

	for _, s := range syms {
		for cur := s; cur != nil; cur = cur.Base {
			if g, ok := gens[cur.Namespace]; ok {
				g.Reserve(cur)
			}
		}
	}
}
