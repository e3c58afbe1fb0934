package eval

import (
	"context"
	"sort"

	"github.com/roach88/anfir/internal/ast"
)

// Variadic marks a builtin that accepts any number of arguments.
const Variadic = -1

// Builtin is a primitive function.
type Builtin struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (b *Builtin) String() string {
	return "<builtin " + b.Name + ">"
}

// Builtins returns a fresh copy of the default builtin table.
func Builtins() map[string]*Builtin {
	table := make(map[string]*Builtin, len(builtinList))
	for _, b := range builtinList {
		table[b.Name] = b
	}
	return table
}

// BuiltinNames lists the default builtins in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinList))
	for _, b := range builtinList {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

var builtinList = []*Builtin{
	arith("add", func(a, b int64) (int64, error) { return a + b, nil }, func(a, b float64) float64 { return a + b }),
	arith("sub", func(a, b int64) (int64, error) { return a - b, nil }, func(a, b float64) float64 { return a - b }),
	arith("mul", func(a, b int64) (int64, error) { return a * b, nil }, func(a, b float64) float64 { return a * b }),
	arith("div", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, newError(ErrCodeDivZero, "div", "integer division by zero")
		}
		return a / b, nil
	}, func(a, b float64) float64 { return a / b }),
	{Name: "mod", Arity: 2, Fn: func(args []Value) (Value, error) {
		a, okA := args[0].(ast.Int)
		b, okB := args[1].(ast.Int)
		if !okA || !okB {
			return nil, typeError("mod", "integers", args)
		}
		if b == 0 {
			return nil, newError(ErrCodeDivZero, "mod", "integer modulo by zero")
		}
		return a % b, nil
	}},
	{Name: "neg", Arity: 1, Fn: func(args []Value) (Value, error) {
		switch x := args[0].(type) {
		case ast.Int:
			return -x, nil
		case ast.Float:
			return -x, nil
		}
		return nil, typeError("neg", "a number", args)
	}},
	compare("lt", func(c int) bool { return c < 0 }),
	compare("le", func(c int) bool { return c <= 0 }),
	compare("gt", func(c int) bool { return c > 0 }),
	compare("ge", func(c int) bool { return c >= 0 }),
	{Name: "eq", Arity: 2, Fn: func(args []Value) (Value, error) {
		return ast.Bool(Equal(args[0], args[1])), nil
	}},
	{Name: "ne", Arity: 2, Fn: func(args []Value) (Value, error) {
		return ast.Bool(!Equal(args[0], args[1])), nil
	}},
	{Name: "not", Arity: 1, Fn: func(args []Value) (Value, error) {
		return ast.Bool(!Truthy(args[0])), nil
	}},
	{Name: "and", Arity: 2, Fn: func(args []Value) (Value, error) {
		return ast.Bool(Truthy(args[0]) && Truthy(args[1])), nil
	}},
	{Name: "or", Arity: 2, Fn: func(args []Value) (Value, error) {
		return ast.Bool(Truthy(args[0]) || Truthy(args[1])), nil
	}},
	{Name: "getitem", Arity: 2, Fn: func(args []Value) (Value, error) {
		t, okT := args[0].(Tuple)
		i, okI := args[1].(ast.Int)
		if !okT || !okI {
			return nil, typeError("getitem", "a tuple and an integer", args)
		}
		if i < 0 || int(i) >= len(t) {
			return nil, newError(ErrCodeIndex, "getitem", "index %d out of range for %d-tuple", i, len(t))
		}
		return t[i], nil
	}},
	{Name: "len", Arity: 1, Fn: func(args []Value) (Value, error) {
		switch x := args[0].(type) {
		case Tuple:
			return ast.Int(len(x)), nil
		case ast.Str:
			return ast.Int(len(x)), nil
		}
		return nil, typeError("len", "a tuple or a string", args)
	}},
	{Name: "if", Arity: 3, Fn: func(args []Value) (Value, error) {
		if Truthy(args[0]) {
			return args[1], nil
		}
		return args[2], nil
	}},
	{Name: "tuple", Arity: Variadic, Fn: func(args []Value) (Value, error) {
		return Tuple(append([]Value(nil), args...)), nil
	}},
	{Name: "closure", Arity: Variadic, Fn: func(args []Value) (Value, error) {
		if len(args) == 0 {
			return nil, newError(ErrCodeArity, "closure", "closure needs a function")
		}
		return &Partial{Fn: args[0], Args: append([]Value(nil), args[1:]...)}, nil
	}},
}

func arith(name string, ints func(a, b int64) (int64, error), floats func(a, b float64) float64) *Builtin {
	return &Builtin{Name: name, Arity: 2, Fn: func(args []Value) (Value, error) {
		a, okA := args[0].(ast.Int)
		b, okB := args[1].(ast.Int)
		if okA && okB {
			r, err := ints(int64(a), int64(b))
			if err != nil {
				return nil, err
			}
			return ast.Int(r), nil
		}
		if name == "add" {
			sa, okA := args[0].(ast.Str)
			sb, okB := args[1].(ast.Str)
			if okA && okB {
				return sa + sb, nil
			}
		}
		fa, okA := toFloat(args[0])
		fb, okB := toFloat(args[1])
		if !okA || !okB {
			return nil, typeError(name, "numbers", args)
		}
		return ast.Float(floats(fa, fb)), nil
	}}
}

func compare(name string, ok func(int) bool) *Builtin {
	return &Builtin{Name: name, Arity: 2, Fn: func(args []Value) (Value, error) {
		if sa, isStr := args[0].(ast.Str); isStr {
			sb, isStr := args[1].(ast.Str)
			if !isStr {
				return nil, typeError(name, "two strings", args)
			}
			return ast.Bool(ok(cmpOrdered(sa, sb))), nil
		}
		fa, okA := toFloat(args[0])
		fb, okB := toFloat(args[1])
		if !okA || !okB {
			return nil, typeError(name, "numbers", args)
		}
		return ast.Bool(ok(cmpOrdered(fa, fb))), nil
	}}
}

func cmpOrdered[T ~string | ~float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case ast.Int:
		return float64(x), true
	case ast.Float:
		return float64(x), true
	}
	return 0, false
}

// Truthy is the condition test of "if": false, nil, zero and the empty
// string or tuple are false.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil, ast.Nil:
		return false
	case ast.Bool:
		return bool(x)
	case ast.Int:
		return x != 0
	case ast.Float:
		return x != 0
	case ast.Str:
		return x != ""
	case Tuple:
		return len(x) > 0
	}
	return true
}

func typeError(op, want string, args []Value) *EvalError {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Format(a)
	}
	return newError(ErrCodeType, op, "want %s, got %v", want, parts)
}

// callBuiltin checks the arity and runs b.
func callBuiltin(_ context.Context, b *Builtin, args []Value) (Value, error) {
	if b.Arity != Variadic && len(args) != b.Arity {
		return nil, newError(ErrCodeArity, b.Name, "want %d arguments, got %d", b.Arity, len(args))
	}
	return b.Fn(args)
}
