package anf

import (
	"fmt"

	"github.com/roach88/anfir/internal/ast"
)

// Collapse flattens nested Let nodes bottom-up. A binding whose value
// collapses to a Let contributes the inner bindings first and keeps the inner
// body as its value; a body that collapses to a Let is merged into the outer
// binding list. Closure nodes are returned untouched.
//
// Splicing assumes no spliced binder captures a reference meant for another
// binding of the same name. Transform renames shadowed binders to keep it so.
func Collapse(e ast.Expr) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.Symbol, *ast.Value, *ast.Closure:
		return n, nil

	case *ast.Let:
		bindings := make([]ast.Binding, 0, len(n.Bindings))
		for _, b := range n.Bindings {
			v, err := Collapse(b.Expr)
			if err != nil {
				return nil, err
			}
			if inner, ok := v.(*ast.Let); ok {
				bindings = append(bindings, inner.Bindings...)
				v = inner.Body
			}
			bindings = append(bindings, ast.Binding{Sym: b.Sym, Expr: v})
		}
		body, err := Collapse(n.Body)
		if err != nil {
			return nil, err
		}
		if inner, ok := body.(*ast.Let); ok {
			bindings = append(bindings, inner.Bindings...)
			body = inner.Body
		}
		return &ast.Let{Bindings: bindings, Body: body}, nil

	case *ast.Lambda:
		body, err := Collapse(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Args: n.Args, Body: body, Gen: n.Gen, Ref: n.Ref}, nil

	case *ast.Apply:
		items, err := collapseAll(append([]ast.Expr{n.Fn}, n.Args...))
		if err != nil {
			return nil, err
		}
		return &ast.Apply{Fn: items[0], Args: items[1:]}, nil

	case *ast.If:
		items, err := collapseAll([]ast.Expr{n.Cond, n.Then, n.Else})
		if err != nil {
			return nil, err
		}
		return &ast.If{Cond: items[0], Then: items[1], Else: items[2]}, nil

	case *ast.Tuple:
		items, err := collapseAll(n.Values)
		if err != nil {
			return nil, err
		}
		return &ast.Tuple{Values: items}, nil

	case *ast.Begin:
		items, err := collapseAll(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.Begin{Stmts: items}, nil

	default:
		return nil, &UnsupportedNodeError{Pass: "collapse", Node: fmt.Sprintf("%T", e)}
	}
}

func collapseAll(items []ast.Expr) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(items))
	for i, item := range items {
		c, err := Collapse(item)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
