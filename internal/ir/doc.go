// Package ir provides the mutable graph representation of function bodies.
//
// Nodes live in an Arena and are addressed by NodeID handles. A node is one
// of:
//   - a computation: fn set, inputs populated, no value
//   - a constant: value set, no owning graph
//   - a graph reference: a constant whose value is a *Graph
//   - a free input: no fn, no inputs, no value
//
// Forward edges (fn, inputs) and reverse edges (users) are kept symmetric at
// all times: for every edge A --role--> B, the users of B contain
// Use{role, A}, and every Use has its forward edge. All mutations go through
// a batch of link/unlink operations that is validated as a whole before it
// is applied, so a failing mutation leaves the arena unchanged.
//
// A Graph owns an ordered list of input nodes and one output node. Nodes of
// other graphs reached from the output are boundary references and are never
// copied or ordered as if they were owned.
//
// The arena is not safe for concurrent use. Use Graph.Dup to hand an
// independent copy to another goroutine.
package ir
