// Package harness runs normalization scenarios as executable tests.
//
// A scenario names a source tree and states what must hold for it: the
// printed normal form, the checker codes of the source, the evaluation
// result, and assertions over the normal form and its lowered graph.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: nested_call
//	description: "Nested applications are hoisted into bindings"
//	namespace: scenario
//	tree: {apply: [add, {apply: [mul, x, 2]}, 1]}
//	env: {x: 5}
//	expect:
//	  normal_form: "(let ((add/in1#1 (mul x 2))) (add add/in1#1 1))"
//	  violations: [E201]
//	  result: 11
//	assertions:
//	  - type: flat
//	  - type: bindings
//	    count: 1
//	  - type: preserves_eval
//
// The tree uses the tagged format of the ast codec. A root lambda is
// applied to args; any other root is evaluated in env.
//
// # Assertion Types
//
//   - flat: the normal form passes the ANF checker
//   - idempotent: normalizing the normal form again changes only fresh names
//   - bindings: the normal form has exactly count Let bindings
//   - free_symbols: normalization keeps the set of free symbols
//   - lowers: the normal form lowers to a consistent, acyclic graph with
//     count nodes in toposort order (count 0 skips the check)
//   - preserves_eval: the source, the normal form and the lowered graph
//     evaluate to equal values
//
// # Deterministic Testing
//
// Every run builds its generators from the scenario namespace, so names
// and golden snapshots are identical across runs.
package harness
