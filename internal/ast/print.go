package ast

import (
	"strings"
)

// String methods render s-expressions:
//
//	(f x 1)
//	(let ((t#1 (g x)) (u#1 (h t#1))) (f u#1))
//	(lambda (x y) (add x y))
//	(if c a b)   (tuple a b)   (closure f a)   (begin a b)

func (v *Value) String() string {
	if v.Literal == nil {
		return Nil{}.String()
	}
	return v.Literal.String()
}

func (a *Apply) String() string {
	var b strings.Builder
	b.WriteByte('(')
	writeExpr(&b, a.Fn)
	writeList(&b, a.Args)
	b.WriteByte(')')
	return b.String()
}

func (l *Let) String() string {
	var b strings.Builder
	b.WriteString("(let (")
	for i, bnd := range l.Bindings {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('(')
		writeExpr(&b, bnd.Sym)
		b.WriteByte(' ')
		writeExpr(&b, bnd.Expr)
		b.WriteByte(')')
	}
	b.WriteString(") ")
	writeExpr(&b, l.Body)
	b.WriteByte(')')
	return b.String()
}

func (l *Lambda) String() string {
	var b strings.Builder
	b.WriteString("(lambda (")
	for i, arg := range l.Args {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeExpr(&b, arg)
	}
	b.WriteString(") ")
	writeExpr(&b, l.Body)
	b.WriteByte(')')
	return b.String()
}

func (i *If) String() string {
	return form("if", []Expr{i.Cond, i.Then, i.Else})
}

func (t *Tuple) String() string {
	return form("tuple", t.Values)
}

func (c *Closure) String() string {
	return form("closure", append([]Expr{c.Fn}, c.Args...))
}

func (s *Begin) String() string {
	return form("begin", s.Stmts)
}

func form(head string, items []Expr) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(head)
	writeList(&b, items)
	b.WriteByte(')')
	return b.String()
}

func writeList(b *strings.Builder, items []Expr) {
	for _, e := range items {
		b.WriteByte(' ')
		writeExpr(b, e)
	}
}

func writeExpr(b *strings.Builder, e Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(e.String())
}
