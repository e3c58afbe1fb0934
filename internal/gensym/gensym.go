// Package gensym mints fresh symbols for the normalization passes and the
// IR graph.
//
// A Generator is scoped to one lexical unit. It keeps one append-only
// counter per base name, so names read like "f/in1#1", "f/in1#2" and stay
// unique inside the scope. Generators are not safe for concurrent use; each
// tree or graph is confined to one goroutine.
package gensym

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/anfir/internal/ast"
)

// Generator implements ast.Namer.
type Generator struct {
	namespace string
	counts    map[string]int
	children  map[string]int
}

var _ ast.Namer = (*Generator)(nil)

// New returns a generator for namespace. An empty namespace is replaced by a
// time-sortable UUIDv7, which keeps anonymous scopes distinct.
func New(namespace string) *Generator {
	if namespace == "" {
		namespace = uuid.Must(uuid.NewV7()).String()
	}
	return &Generator{
		namespace: namespace,
		counts:    make(map[string]int),
		children:  make(map[string]int),
	}
}

// Namespace returns the generator's scope.
func (g *Generator) Namespace() string {
	return g.namespace
}

// Sym returns a fresh symbol labelled base.
func (g *Generator) Sym(base string) *ast.Symbol {
	g.counts[base]++
	return &ast.Symbol{Label: base, Namespace: g.namespace, Version: g.counts[base]}
}

// Derive returns a fresh symbol derived from s with a disambiguation marker.
func (g *Generator) Derive(s *ast.Symbol, marker string) *ast.Symbol {
	key := derivedKey(s, marker)
	g.counts[key]++
	return &ast.Symbol{Base: s, Relation: marker, Namespace: g.namespace, Version: g.counts[key]}
}

// Child returns a generator for a nested scope. Children of the same
// generator with the same scope name still get distinct namespaces.
func (g *Generator) Child(scope string) *Generator {
	g.children[scope]++
	ns := g.namespace + "/" + scope
	if n := g.children[scope]; n > 1 {
		ns += "#" + strconv.Itoa(n)
	}
	return New(ns)
}

// Reserve advances the counters past s when s was minted in this scope, so
// later names cannot collide with it. Trees decoded from files call this for
// every symbol they contain before being rewritten again.
func (g *Generator) Reserve(s *ast.Symbol) {
	if s == nil || s.Namespace != g.namespace || s.Version == 0 {
		return
	}
	key := s.Label
	if s.Base != nil {
		key = derivedKey(s.Base, s.Relation)
	}
	if s.Version > g.counts[key] {
		g.counts[key] = s.Version
	}
}

func derivedKey(s *ast.Symbol, marker string) string {
	return s.Key() + "\x00" + marker
}

// Factory returns a constructor of scoped generators for ast.Decoder.
// Scopes are nested under prefix when prefix is not empty; a scope already
// under prefix, as the encoder writes it, is kept. Anonymous scopes are
// numbered "lambda" scopes in decoding order, so they never share a
// namespace with each other or with prefix.
func Factory(prefix string) func(scope string) ast.Namer {
	anonymous := 0
	return func(scope string) ast.Namer {
		if scope == "" {
			anonymous++
			scope = "lambda"
			if anonymous > 1 {
				scope += "#" + strconv.Itoa(anonymous)
			}
		}
		if prefix == "" || scope == prefix || strings.HasPrefix(scope, prefix+"/") {
			return New(scope)
		}
		return New(prefix + "/" + scope)
	}
}
