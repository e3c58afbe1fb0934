package ast

// Expr is a sealed interface over expression tree nodes.
type Expr interface {
	expr() // Sealed
	String() string
}

// Apply is a function application.
type Apply struct {
	Fn   Expr
	Args []Expr
}

// Value is a literal atom.
type Value struct {
	Literal Literal
}

// Binding binds Sym to the value of Expr.
type Binding struct {
	Sym  *Symbol
	Expr Expr
}

// Let evaluates Bindings in order, each one in scope of the earlier ones,
// then evaluates Body.
type Let struct {
	Bindings []Binding
	Body     Expr
}

// Lambda is a nested function. Gen scopes the fresh names minted inside its
// body and Ref points back at the symbol the lambda was defined under, if any.
type Lambda struct {
	Args []*Symbol
	Body Expr
	Gen  Namer
	Ref  *Symbol
}

// If is a two-way conditional.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Tuple builds an ordered tuple.
type Tuple struct {
	Values []Expr
}

// Closure partially applies Fn to captured Args.
type Closure struct {
	Fn   Expr
	Args []Expr
}

// Begin evaluates Stmts in order and yields the last one.
type Begin struct {
	Stmts []Expr
}

func (*Apply) expr()   {}
func (*Value) expr()   {}
func (*Let) expr()     {}
func (*Lambda) expr()  {}
func (*If) expr()      {}
func (*Tuple) expr()   {}
func (*Closure) expr() {}
func (*Begin) expr()   {}

// IsAtom reports whether e is a Symbol or a Value.
func IsAtom(e Expr) bool {
	switch e.(type) {
	case *Symbol, *Value:
		return true
	}
	return false
}

// Kind returns the lower-case tag of a node, as used by the tree codec.
func Kind(e Expr) string {
	switch e.(type) {
	case *Apply:
		return KindApply
	case *Symbol:
		return KindSym
	case *Value:
		return KindValue
	case *Let:
		return KindLet
	case *Lambda:
		return KindLambda
	case *If:
		return KindIf
	case *Tuple:
		return KindTuple
	case *Closure:
		return KindClosure
	case *Begin:
		return KindBegin
	}
	return ""
}

// Node kind tags.
const (
	KindApply   = "apply"
	KindSym     = "sym"
	KindValue   = "value"
	KindLet     = "let"
	KindLambda  = "lambda"
	KindIf      = "if"
	KindTuple   = "tuple"
	KindClosure = "closure"
	KindBegin   = "begin"
)
