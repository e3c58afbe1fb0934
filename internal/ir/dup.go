package ir

import (
	"log/slog"
)

// DupMarker is the relation marker of tags derived by Dup.
const DupMarker = "+"

// Dup copies g. Inputs and every owned node reachable from the output are
// mapped to fresh nodes with derived tags and the same values; edges are
// rewired through the mapping and fall back to the original target, so
// constants and boundary references are shared rather than copied.
//
// With into nil a new graph with the same parent, tag and generator is
// created and its inputs and output are set. Otherwise the copies are owned
// by into and only returned; into's inputs and output are left to the
// caller.
func (g *Graph) Dup(into *Graph) (*Graph, []NodeID, NodeID, error) {
	a := g.arena
	setIO := into == nil
	if setIO {
		into = a.NewGraph(g.Parent, g.Tag, g.Gen)
	}

	// copied tags are derived in into's scope, or g's when into has none
	gen := into.Gen
	if gen == nil {
		gen = g.Gen
	}

	mapping := make(map[NodeID]NodeID)
	var order []NodeID
	for _, id := range append(append([]NodeID(nil), g.Inputs...), g.IterNodes(false)...) {
		if _, done := mapping[id]; done {
			continue
		}
		n := a.node(id)
		tag := n.tag
		if tag != nil && gen != nil {
			tag = gen.Derive(tag, DupMarker)
		}
		cp := a.alloc(&node{graph: into, tag: tag, value: n.value, hasValue: n.hasValue})
		a.trace(cp, Provenance{Step: "dup", From: id})
		mapping[id] = cp
		order = append(order, id)
	}

	remap := func(id NodeID) NodeID {
		if m, ok := mapping[id]; ok {
			return m
		}
		return id
	}

	for _, id := range order {
		n := a.node(id)
		if n.fn == NoNode {
			continue
		}
		inputs := make([]NodeID, len(n.inputs))
		for i, in := range n.inputs {
			inputs[i] = remap(in)
		}
		if err := a.SetApp(mapping[id], remap(n.fn), inputs); err != nil {
			return nil, nil, NoNode, err
		}
	}

	inputs := make([]NodeID, len(g.Inputs))
	for i, in := range g.Inputs {
		inputs[i] = mapping[in]
	}
	output := remap(g.Output)
	if setIO {
		into.Inputs = inputs
		into.Output = output
	}

	slog.Debug("graph duplicated", "graph", g.String(), "nodes", len(order))
	return into, inputs, output, nil
}
