package eval

import (
	"github.com/roach88/anfir/internal/ast"
)

// Env is a chain of variable scopes keyed by symbol identity.
type Env struct {
	parent *Env
	vars   map[string]Value
}

// NewEnv returns an empty scope nested in parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]Value)}
}

// Bind binds s in this scope.
func (e *Env) Bind(s *ast.Symbol, v Value) {
	e.vars[s.Key()] = v
}

// Set binds the user symbol named label.
func (e *Env) Set(label string, v Value) *Env {
	e.Bind(ast.Sym(label), v)
	return e
}

// Lookup finds s in this scope or an enclosing one.
func (e *Env) Lookup(s *ast.Symbol) (Value, bool) {
	key := s.Key()
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[key]; ok {
			return v, true
		}
	}
	return nil, false
}
