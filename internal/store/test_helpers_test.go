package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/anfir/internal/anf"
	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/gensym"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// normalizeSource decodes and normalizes a stored source the same way for
// Put and Replay.
func normalizeSource(source []byte, namespace string) (ast.Expr, error) {
	dec := ast.Decoder{NewNamer: gensym.Factory(namespace)}
	tree, err := dec.UnmarshalExpr(source)
	if err != nil {
		return nil, err
	}
	return anf.Normalize(tree, anf.WithNamer(gensym.New(namespace)))
}

// nestedCall returns f(g(x)), whose normal form has one binding.
func nestedCall() ast.Expr {
	return ast.App(ast.Sym("f"), ast.App(ast.Sym("g"), ast.Sym("x")))
}

// putNormalized normalizes src under namespace and caches it.
func putNormalized(t *testing.T, s *Store, src ast.Expr, namespace string) Entry {
	t.Helper()
	data, err := ast.MarshalCanonical(src)
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}
	norm, err := normalizeSource(data, namespace)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	entry, _, err := s.Put(t.Context(), src, norm, namespace)
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	return entry
}
