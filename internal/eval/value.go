package eval

import (
	"fmt"
	"strings"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/ir"
)

// Value is a runtime value: ast.Nil, ast.Int, ast.Float, ast.Str, ast.Bool,
// Tuple, or a callable.
type Value any

// Tuple is an ordered, immutable sequence of values.
type Tuple []Value

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = Format(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Partial is a function with its leading arguments captured.
type Partial struct {
	Fn   Value
	Args []Value
}

func (p *Partial) String() string {
	return fmt.Sprintf("<partial %s/%d>", Format(p.Fn), len(p.Args))
}

// lambdaClosure is a tree Lambda with its defining environment.
type lambdaClosure struct {
	lam *ast.Lambda
	env *Env
}

func (c *lambdaClosure) String() string {
	if c.lam.Ref != nil {
		return "<lambda " + c.lam.Ref.String() + ">"
	}
	return "<lambda>"
}

// graphClosure is a graph with the frame of its parent graph.
type graphClosure struct {
	graph *ir.Graph
	frame *frame
}

func (c *graphClosure) String() string {
	return "<graph " + c.graph.String() + ">"
}

// Format renders a value for display.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return ast.Nil{}.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Equal reports whether two values are structurally equal. Callables are
// equal only to themselves.
func Equal(a, b Value) bool {
	ta, okA := a.(Tuple)
	tb, okB := b.(Tuple)
	if okA || okB {
		if !okA || !okB || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	switch a.(type) {
	case ast.Str, ast.Bool, ast.Nil:
		return a == b
	}
	return sameCallable(a, b)
}

func sameCallable(a, b Value) bool {
	switch x := a.(type) {
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x == y
	case *Partial:
		y, ok := b.(*Partial)
		return ok && x == y
	case *lambdaClosure:
		y, ok := b.(*lambdaClosure)
		return ok && x == y
	case *graphClosure:
		y, ok := b.(*graphClosure)
		return ok && x == y
	}
	return false
}

// FromLiteral converts a literal to a value.
func FromLiteral(l ast.Literal) Value {
	if l == nil {
		return ast.Nil{}
	}
	return l
}

// FromData converts a decoded JSON or YAML value to a runtime value. Lists
// become tuples and strings become Str.
func FromData(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return ast.Nil{}, nil
	case bool:
		return ast.Bool(x), nil
	case int:
		return ast.Int(x), nil
	case int64:
		return ast.Int(x), nil
	case float64:
		return ast.Float(x), nil
	case string:
		return ast.Str(x), nil
	case []any:
		t := make(Tuple, len(x))
		for i, item := range x {
			iv, err := FromData(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			t[i] = iv
		}
		return t, nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}

// IsCallable reports whether v can be applied.
func IsCallable(v Value) bool {
	switch v.(type) {
	case *Builtin, *Partial, *lambdaClosure, *graphClosure:
		return true
	}
	return false
}
