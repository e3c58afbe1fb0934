package ast

import (
	"strconv"
)

// Literal is a sealed interface over the constant values a Value node can
// carry. Only Nil, Int, Float, Str and Bool implement it.
type Literal interface {
	literal() // Sealed
	String() string
}

// Nil is the unit literal.
type Nil struct{}

func (Nil) literal() {}

func (Nil) String() string { return "nil" }

// Int is a 64-bit signed integer literal.
type Int int64

func (Int) literal() {}

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a 64-bit floating point literal.
type Float float64

func (Float) literal() {}

// String always contains a '.', an exponent or a non-finite marker so that
// Float(1) and Int(1) never print the same.
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	for _, c := range s {
		switch c {
		case '.', 'e', 'n', 'N', 'I':
			return s
		}
	}
	return s + ".0"
}

// Str is a string literal.
type Str string

func (Str) literal() {}

func (s Str) String() string { return strconv.Quote(string(s)) }

// Bool is a boolean literal.
type Bool bool

func (Bool) literal() {}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
