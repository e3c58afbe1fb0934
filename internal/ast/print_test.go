package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestString_Forms tests the s-expression rendering of every node kind.
func TestString_Forms(t *testing.T) {
	f, g, x, y := Sym("f"), Sym("g"), Sym("x"), Sym("y")
	t1 := &Symbol{Label: "f/in1", Namespace: "t", Version: 1}

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"symbol", x, "x"},
		{"int", IntLit(-3), "-3"},
		{"float", Lit(Float(2)), "2.0"},
		{"float fraction", Lit(Float(0.25)), "0.25"},
		{"string", Lit(Str("a\"b")), `"a\"b"`},
		{"bool", Lit(Bool(true)), "true"},
		{"nil", Lit(Nil{}), "nil"},
		{"apply", App(f, x, IntLit(1)), "(f x 1)"},
		{"apply no args", App(f), "(f)"},
		{"let", LetIn(App(f, t1), Bind(t1, App(g, x))), "(let ((f/in1#1 (g x))) (f f/in1#1))"},
		{"lambda", Lam(nil, []*Symbol{x, y}, App(f, x, y)), "(lambda (x y) (f x y))"},
		{"if", Cond(x, IntLit(1), IntLit(2)), "(if x 1 2)"},
		{"tuple", Tup(x, y), "(tuple x y)"},
		{"empty tuple", Tup(), "(tuple)"},
		{"closure", Clo(f, x), "(closure f x)"},
		{"begin", Seq(x, App(f)), "(begin x (f))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

// TestIsAtom tests atom classification.
func TestIsAtom(t *testing.T) {
	assert.True(t, IsAtom(Sym("x")))
	assert.True(t, IsAtom(IntLit(1)))
	assert.False(t, IsAtom(App(Sym("f"))))
	assert.False(t, IsAtom(Tup()))
}
