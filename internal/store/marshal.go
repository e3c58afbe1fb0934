package store

import (
	"fmt"

	"github.com/roach88/anfir/internal/ast"
)

// marshalTree converts a tree to canonical JSON TEXT for storage.
// Canonical JSON gives every tree exactly one stored spelling.
func marshalTree(e ast.Expr) (string, error) {
	data, err := ast.MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("marshal tree: %w", err)
	}
	return string(data), nil
}

// unmarshalTree parses stored canonical JSON back into a tree.
func unmarshalTree(dec ast.Decoder, data string) (ast.Expr, error) {
	e, err := dec.UnmarshalExpr([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return e, nil
}

// countBindings returns the number of Let bindings anywhere in e.
func countBindings(e ast.Expr) int {
	n := 0
	if let, ok := e.(*ast.Let); ok {
		n += len(let.Bindings)
	}
	for _, c := range ast.Children(e) {
		n += countBindings(c)
	}
	return n
}
