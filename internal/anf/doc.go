// Package anf rewrites expression trees into A-normal form.
//
// Normalization runs two passes:
//
//  1. The transformer hoists every compound operand of Apply, If, Tuple and
//     Closure into a binding with a fresh name, so that every operand
//     position holds a Symbol or a Value.
//  2. The collapser splices the nested Let nodes produced by the first pass
//     into one flat, ordered binding list per scope.
//
// Fresh names come from the ast.Namer of the innermost enclosing Lambda.
// Their labels are cosmetic ("f/in1", "if/cond", "tup/out"); see BaseName.
//
// Check verifies the result shape and is used by lowering to reject trees
// that were not normalized.
package anf
