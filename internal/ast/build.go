package ast

// Constructors for building trees in code. They keep test fixtures and
// lowering code readable.

// Sym returns a user symbol.
func Sym(label string) *Symbol { return NewSymbol(label) }

// Lit wraps a literal in a Value node.
func Lit(l Literal) *Value { return &Value{Literal: l} }

// IntLit returns an integer Value.
func IntLit(i int64) *Value { return Lit(Int(i)) }

// App returns Apply(fn, args...).
func App(fn Expr, args ...Expr) *Apply { return &Apply{Fn: fn, Args: args} }

// Bind returns a Binding.
func Bind(s *Symbol, e Expr) Binding { return Binding{Sym: s, Expr: e} }

// LetIn returns Let(bindings, body).
func LetIn(body Expr, bindings ...Binding) *Let { return &Let{Bindings: bindings, Body: body} }

// Lam returns a Lambda with its own name generator.
func Lam(gen Namer, args []*Symbol, body Expr) *Lambda {
	return &Lambda{Args: args, Body: body, Gen: gen}
}

// Cond returns If(c, t, e).
func Cond(c, t, e Expr) *If { return &If{Cond: c, Then: t, Else: e} }

// Tup returns Tuple(values...).
func Tup(values ...Expr) *Tuple { return &Tuple{Values: values} }

// Clo returns Closure(fn, args...).
func Clo(fn Expr, args ...Expr) *Closure { return &Closure{Fn: fn, Args: args} }

// Seq returns Begin(stmts...).
func Seq(stmts ...Expr) *Begin { return &Begin{Stmts: stmts} }
