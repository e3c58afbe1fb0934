// Package ast defines the expression trees consumed and produced by the
// normalization passes.
//
// The tree grammar is closed: Expr is a sealed interface implemented only by
// the node types in this package (Apply, Symbol, Value, Let, Lambda, If,
// Tuple, Closure, Begin). Passes dispatch with a type switch and report any
// other dynamic type as unsupported.
//
// Trees are immutable once built. Rewrites construct new nodes and share
// untouched children.
//
// The package also owns the data formats for trees:
//   - String renders an s-expression for humans and golden files
//   - Encode/Decode convert to and from the tagged generic form used for
//     JSON, YAML and CUE tree files
//   - MarshalCanonical and TreeHash give a stable content identity
package ast
