package ast

import (
	"strconv"
	"strings"
)

// Symbol names a variable.
//
// User symbols carry only a Label. Symbols minted by a Namer also carry the
// generator's Namespace and a Version >= 1, which makes them distinct from
// every user symbol and from each other. A derived symbol points at the
// symbol it was derived from through Base and records the marker in Relation.
type Symbol struct {
	Label     string
	Namespace string
	Version   int
	Base      *Symbol
	Relation  string
}

// Namer mints fresh symbols. Implementations are scoped to one lexical unit
// (a lambda or a graph) and are append-only.
type Namer interface {
	// Sym returns a fresh symbol derived from a base string.
	Sym(base string) *Symbol

	// Derive returns a fresh symbol derived from s plus a disambiguation marker.
	Derive(s *Symbol, marker string) *Symbol

	// Namespace identifies the scope of the names this Namer mints.
	Namespace() string
}

// NewSymbol returns a plain user symbol.
func NewSymbol(label string) *Symbol {
	return &Symbol{Label: label}
}

// RootLabel returns the label of the symbol at the end of the Base chain.
func (s *Symbol) RootLabel() string {
	for s.Base != nil {
		s = s.Base
	}
	return s.Label
}

// IsGenerated reports whether the symbol was minted by a Namer.
func (s *Symbol) IsGenerated() bool {
	return s.Version > 0
}

// Key identifies the variable. Two symbols with the same Key are the same
// variable, regardless of pointer identity.
func (s *Symbol) Key() string {
	var b strings.Builder
	s.writeKey(&b)
	return b.String()
}

func (s *Symbol) writeKey(b *strings.Builder) {
	if s.Base != nil {
		s.Base.writeKey(b)
		b.WriteByte('\x00')
		b.WriteString(s.Relation)
	} else {
		b.WriteString(s.Label)
	}
	if s.Version > 0 || s.Namespace != "" {
		b.WriteByte('\x00')
		b.WriteString(s.Namespace)
		b.WriteByte('\x00')
		b.WriteString(strconv.Itoa(s.Version))
	}
}

// Equal reports whether s and o name the same variable.
func (s *Symbol) Equal(o *Symbol) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	return s.Key() == o.Key()
}

// String renders the symbol without its namespace.
//
//	f        user symbol
//	f/in1#2  second "f/in1" minted in its scope
//	x+#1     first symbol derived from x with marker "+"
func (s *Symbol) String() string {
	var b strings.Builder
	if s.Base != nil {
		b.WriteString(s.Base.String())
		b.WriteString(s.Relation)
	} else {
		b.WriteString(s.Label)
	}
	if s.Version > 0 {
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(s.Version))
	}
	return b.String()
}

func (*Symbol) expr() {}
