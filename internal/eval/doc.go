// Package eval is the reference evaluator for expression trees and IR
// graphs.
//
// Both evaluators share one builtin table, so a tree and the graph lowered
// from its normal form can be run side by side and compared. Values are the
// ast literal types, Tuple, and callables (*Builtin, lambda closures,
// graph closures and *Partial).
//
// Tree evaluation is strict and left to right; If evaluates only the chosen
// branch. Graph evaluation computes nodes in Toposort order, so both
// branches of a lowered If have already been computed when "if" selects
// one. Nodes that only nested graphs refer to are computed on first use.
// The two agree on every tree whose branches evaluate without error.
//
// An Evaluator counts calls against a step quota and checks its context on
// every call, so runaway recursion ends with *StepsExceededError or the
// context's error.
package eval
