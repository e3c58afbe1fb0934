package eval

import (
	"context"
	"fmt"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/ir"
)

// frame holds the computed values of one activation of a graph.
type frame struct {
	parent *frame
	graph  *ir.Graph
	values map[ir.NodeID]Value
}

// enclosing returns the innermost frame on the chain that activates g.
func (f *frame) enclosing(g *ir.Graph) *frame {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.graph == g {
			return cur
		}
	}
	return nil
}

// graph activates g. Nodes are computed in Toposort order; nodes that only
// nested graphs refer to are computed on first use.
func (r *run) graph(ctx context.Context, g *ir.Graph, parent *frame, args []Value) (Value, error) {
	if len(args) != len(g.Inputs) {
		return nil, newError(ErrCodeArity, g.String(), "want %d arguments, got %d", len(g.Inputs), len(args))
	}
	order, err := r.order(g)
	if err != nil {
		return nil, err
	}

	f := &frame{parent: parent, graph: g, values: make(map[ir.NodeID]Value, len(order)+len(args))}
	for i, in := range g.Inputs {
		f.values[in] = args[i]
	}
	for _, id := range order {
		if _, err := r.compute(ctx, f, id); err != nil {
			return nil, err
		}
	}
	return r.node(ctx, f, g.Output)
}

// order caches the toposort of each graph for repeated activations within
// one evaluation.
func (r *run) order(g *ir.Graph) ([]ir.NodeID, error) {
	if order, ok := r.orders[g]; ok {
		return order, nil
	}
	order, err := g.Toposort()
	if err != nil {
		return nil, err
	}
	r.orders[g] = order
	return order, nil
}

// compute evaluates the computation id in its own frame f, once.
func (r *run) compute(ctx context.Context, f *frame, id ir.NodeID) (Value, error) {
	if v, ok := f.values[id]; ok {
		return v, nil
	}
	a := f.graph.Arena()
	app := a.App(id)
	vals := make([]Value, len(app))
	for i, s := range app {
		v, err := r.node(ctx, f, s)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	v, err := r.call(ctx, vals[0], vals[1:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Label(id), err)
	}
	f.values[id] = v
	return v, nil
}

// node returns the value of id as seen from frame f: constants are
// materialized, owned nodes are read from the frame of their graph.
func (r *run) node(ctx context.Context, f *frame, id ir.NodeID) (Value, error) {
	a := f.graph.Arena()
	if v, ok := a.Value(id); ok {
		switch x := v.(type) {
		case *ast.Symbol:
			b, err := r.builtin(x)
			if err != nil {
				return nil, err
			}
			return b, nil
		case *ir.Graph:
			return &graphClosure{graph: x, frame: f.enclosing(x.Parent)}, nil
		case ast.Literal:
			return FromLiteral(x), nil
		}
		return v, nil
	}

	af := f.enclosing(a.Graph(id))
	if af != nil {
		if v, ok := af.values[id]; ok {
			return v, nil
		}
		if a.IsComputation(id) {
			return r.compute(ctx, af, id)
		}
	}
	return nil, newError(ErrCodeUnbound, "", "node %s has no value in %s", a.Label(id), f.graph)
}
