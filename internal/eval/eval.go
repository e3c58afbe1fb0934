package eval

import (
	"context"
	"log/slog"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/ir"
)

// Evaluator runs trees and graphs against a builtin table. It holds no
// state between evaluations.
type Evaluator struct {
	builtins map[string]*Builtin
	maxSteps int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxSteps sets the maximum number of calls per evaluation.
//
// Default: DefaultMaxSteps.
func WithMaxSteps(maxSteps int) Option {
	return func(e *Evaluator) {
		e.maxSteps = maxSteps
	}
}

// WithBuiltin adds or replaces a builtin.
func WithBuiltin(b *Builtin) Option {
	return func(e *Evaluator) {
		e.builtins[b.Name] = b
	}
}

// New creates an Evaluator with the default builtins.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		builtins: Builtins(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tree evaluates expr with the default evaluator.
func Tree(ctx context.Context, expr ast.Expr, env *Env) (Value, error) {
	return New().Tree(ctx, expr, env)
}

// Graph evaluates g applied to args with the default evaluator.
func Graph(ctx context.Context, g *ir.Graph, args ...Value) (Value, error) {
	return New().Graph(ctx, g, args...)
}

// run is the state of one top-level evaluation.
type run struct {
	*Evaluator
	quota  *quota
	orders map[*ir.Graph][]ir.NodeID
}

func (e *Evaluator) start() *run {
	return &run{
		Evaluator: e,
		quota:     newQuota(e.maxSteps),
		orders:    make(map[*ir.Graph][]ir.NodeID),
	}
}

// Tree evaluates expr in env. A nil env is empty.
func (e *Evaluator) Tree(ctx context.Context, expr ast.Expr, env *Env) (Value, error) {
	if env == nil {
		env = NewEnv(nil)
	}
	r := e.start()
	v, err := r.tree(ctx, expr, env)
	slog.Debug("evaluated tree", "kind", ast.Kind(expr), "steps", r.quota.current, "error", err)
	return v, err
}

// Graph evaluates g applied to args.
func (e *Evaluator) Graph(ctx context.Context, g *ir.Graph, args ...Value) (Value, error) {
	r := e.start()
	v, err := r.graph(ctx, g, nil, args)
	slog.Debug("evaluated graph", "graph", g.String(), "steps", r.quota.current, "error", err)
	return v, err
}

// Call applies fn to args.
func (e *Evaluator) Call(ctx context.Context, fn Value, args ...Value) (Value, error) {
	return e.start().call(ctx, fn, args)
}

func (r *run) builtin(s *ast.Symbol) (*Builtin, error) {
	if !s.IsGenerated() && s.Base == nil {
		if b, ok := r.builtins[s.Label]; ok {
			return b, nil
		}
	}
	return nil, newError(ErrCodeUnbound, "", "unbound symbol %s", s)
}

// call is the single entry point of every application; it owns the quota
// and context checks.
func (r *run) call(ctx context.Context, fn Value, args []Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.quota.check(); err != nil {
		return nil, err
	}
	switch f := fn.(type) {
	case *Builtin:
		return callBuiltin(ctx, f, args)
	case *Partial:
		all := make([]Value, 0, len(f.Args)+len(args))
		all = append(append(all, f.Args...), args...)
		return r.call(ctx, f.Fn, all)
	case *lambdaClosure:
		if len(args) != len(f.lam.Args) {
			return nil, newError(ErrCodeArity, f.String(), "want %d arguments, got %d", len(f.lam.Args), len(args))
		}
		env := NewEnv(f.env)
		for i, a := range f.lam.Args {
			env.Bind(a, args[i])
		}
		return r.tree(ctx, f.lam.Body, env)
	case *graphClosure:
		return r.graph(ctx, f.graph, f.frame, args)
	}
	return nil, newError(ErrCodeNotCallable, "", "%s is not a function", Format(fn))
}
