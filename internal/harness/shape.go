package harness

import (
	"strconv"

	"github.com/roach88/anfir/internal/ast"
)

// shape prints e with every generated symbol renamed by order of first
// appearance, so trees that differ only in fresh names print the same.
func shape(e ast.Expr) string {
	r := &renamer{names: make(map[string]*ast.Symbol)}
	return r.expr(e).String()
}

type renamer struct {
	names map[string]*ast.Symbol
}

func (r *renamer) sym(s *ast.Symbol) *ast.Symbol {
	if s == nil || !s.IsGenerated() {
		return s
	}
	if n, ok := r.names[s.Key()]; ok {
		return n
	}
	n := &ast.Symbol{Label: "_" + strconv.Itoa(len(r.names)+1)}
	r.names[s.Key()] = n
	return n
}

func (r *renamer) list(items []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, len(items))
	for i, item := range items {
		out[i] = r.expr(item)
	}
	return out
}

func (r *renamer) expr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Symbol:
		return r.sym(n)
	case *ast.Apply:
		return &ast.Apply{Fn: r.expr(n.Fn), Args: r.list(n.Args)}
	case *ast.Let:
		bindings := make([]ast.Binding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = ast.Binding{Sym: r.sym(b.Sym), Expr: r.expr(b.Expr)}
		}
		return &ast.Let{Bindings: bindings, Body: r.expr(n.Body)}
	case *ast.Lambda:
		args := make([]*ast.Symbol, len(n.Args))
		for i, a := range n.Args {
			args[i] = r.sym(a)
		}
		return &ast.Lambda{Args: args, Body: r.expr(n.Body), Gen: n.Gen, Ref: n.Ref}
	case *ast.If:
		return &ast.If{Cond: r.expr(n.Cond), Then: r.expr(n.Then), Else: r.expr(n.Else)}
	case *ast.Tuple:
		return &ast.Tuple{Values: r.list(n.Values)}
	case *ast.Closure:
		return &ast.Closure{Fn: r.expr(n.Fn), Args: r.list(n.Args)}
	case *ast.Begin:
		return &ast.Begin{Stmts: r.list(n.Stmts)}
	}
	return e
}
