package eval

import (
	"context"
	"fmt"

	"github.com/roach88/anfir/internal/ast"
)

func (r *run) tree(ctx context.Context, e ast.Expr, env *Env) (Value, error) {
	switch n := e.(type) {
	case *ast.Symbol:
		if v, ok := env.Lookup(n); ok {
			return v, nil
		}
		b, err := r.builtin(n)
		if err != nil {
			return nil, err
		}
		return b, nil

	case *ast.Value:
		return FromLiteral(n.Literal), nil

	case *ast.Apply:
		fn, err := r.tree(ctx, n.Fn, env)
		if err != nil {
			return nil, err
		}
		args, err := r.trees(ctx, n.Args, env)
		if err != nil {
			return nil, err
		}
		return r.call(ctx, fn, args)

	case *ast.Let:
		inner := NewEnv(env)
		for _, b := range n.Bindings {
			// a lambda sees its own binding
			if lam, ok := b.Expr.(*ast.Lambda); ok {
				inner.Bind(b.Sym, &lambdaClosure{lam: lam, env: inner})
				continue
			}
			v, err := r.tree(ctx, b.Expr, inner)
			if err != nil {
				return nil, err
			}
			inner.Bind(b.Sym, v)
		}
		return r.tree(ctx, n.Body, inner)

	case *ast.Lambda:
		return &lambdaClosure{lam: n, env: env}, nil

	case *ast.If:
		cond, err := r.tree(ctx, n.Cond, env)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return r.tree(ctx, n.Then, env)
		}
		return r.tree(ctx, n.Else, env)

	case *ast.Tuple:
		vals, err := r.trees(ctx, n.Values, env)
		if err != nil {
			return nil, err
		}
		return Tuple(vals), nil

	case *ast.Closure:
		fn, err := r.tree(ctx, n.Fn, env)
		if err != nil {
			return nil, err
		}
		args, err := r.trees(ctx, n.Args, env)
		if err != nil {
			return nil, err
		}
		return &Partial{Fn: fn, Args: args}, nil

	case *ast.Begin:
		var last Value = ast.Nil{}
		for _, s := range n.Stmts {
			v, err := r.tree(ctx, s, env)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	}
	return nil, fmt.Errorf("eval: unsupported node %T", e)
}

func (r *run) trees(ctx context.Context, items []ast.Expr, env *Env) ([]Value, error) {
	out := make([]Value, len(items))
	for i, item := range items {
		v, err := r.tree(ctx, item, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
