package ir

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Toposort returns the computation nodes of g reachable from its output,
// producers before consumers.
//
// Free inputs, constants and nodes of other graphs are leaves and are not
// ordered. A node is released once all of its in-scope consumers have been
// emitted, so a cycle either leaves nodes unreleased or releases a node a
// second time; both are reported as a cycle error carrying the cycle path.
func (g *Graph) Toposort() ([]NodeID, error) {
	a := g.arena
	if !a.IsComputation(g.Output) || !g.Owns(g.Output) {
		return nil, nil
	}

	scope := make(map[NodeID]bool)
	for _, id := range g.IterNodes(false) {
		if a.IsComputation(id) {
			scope[id] = true
		}
	}

	pending := make(map[NodeID]int)
	processed := make(map[NodeID]bool, len(scope))
	order := make([]NodeID, 0, len(scope))

	ready := arraystack.New()
	ready.Push(g.Output)
	for !ready.Empty() {
		v, _ := ready.Pop()
		id := v.(NodeID)
		if processed[id] {
			return nil, g.cycleError(scope, id)
		}
		processed[id] = true
		order = append(order, id)

		for _, s := range a.Successors(id) {
			if !scope[s] {
				continue
			}
			count, seen := pending[s]
			if !seen {
				count = g.consumers(s, scope)
			}
			count--
			pending[s] = count
			if count == 0 {
				ready.Push(s)
			}
		}
	}

	if len(order) < len(scope) {
		return nil, g.cycleError(scope, NoNode)
	}

	slices.Reverse(order)
	slog.Debug("toposort", "graph", g.String(), "nodes", len(order))
	return order, nil
}

// consumers counts the distinct in-scope users of id.
func (g *Graph) consumers(id NodeID, scope map[NodeID]bool) int {
	seen := make(map[NodeID]bool)
	for _, u := range g.arena.Users(id) {
		if scope[u.User] {
			seen[u.User] = true
		}
	}
	return len(seen)
}

func (g *Graph) cycleError(scope map[NodeID]bool, at NodeID) *GraphError {
	path := g.findCycle(scope)
	if len(path) == 0 && at != NoNode {
		path = []NodeID{at, at}
	}
	labels := make([]string, len(path))
	for i, id := range path {
		labels[i] = g.arena.Label(id)
	}
	return &GraphError{
		Code:    ErrCodeCycle,
		Message: fmt.Sprintf("graph %s is cyclic through %v", g, labels),
		Node:    at,
		Path:    path,
	}
}

// findCycle returns one cycle among the in-scope nodes, first node repeated
// last, using Tarjan's strongly connected components.
func (g *Graph) findCycle(scope map[NodeID]bool) []NodeID {
	succ := func(id NodeID) []NodeID {
		var out []NodeID
		for _, s := range g.arena.Successors(id) {
			if scope[s] {
				out = append(out, s)
			}
		}
		return out
	}

	nodes := make([]NodeID, 0, len(scope))
	for id := range scope {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)

	for _, scc := range tarjanSCC(nodes, succ) {
		if len(scc) > 1 || slices.Contains(succ(scc[0]), scc[0]) {
			return cyclePath(scc, succ)
		}
	}
	return nil
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(nodes []NodeID, succ func(NodeID) []NodeID) [][]NodeID {
	var (
		index   = 0
		stack   []NodeID
		indices = make(map[NodeID]int)
		lowlink = make(map[NodeID]int)
		onStack = make(map[NodeID]bool)
		sccs    [][]NodeID
	)

	var strongConnect func(NodeID)
	strongConnect = func(v NodeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range succ(v) {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []NodeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

// cyclePath finds the shortest cycle through the smallest member of scc.
func cyclePath(scc []NodeID, succ func(NodeID) []NodeID) []NodeID {
	start := slices.Min(scc)
	members := make(map[NodeID]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	parent := make(map[NodeID]NodeID)
	queue := []NodeID{start}
	visited := map[NodeID]bool{start: true}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range succ(v) {
			if !members[w] {
				continue
			}
			if w == start {
				path := []NodeID{start}
				for cur := v; cur != start; cur = parent[cur] {
					path = append(path, cur)
				}
				path = append(path, start)
				// path was collected backwards from v
				slices.Reverse(path[1 : len(path)-1])
				return path
			}
			if !visited[w] {
				visited[w] = true
				parent[w] = v
				queue = append(queue, w)
			}
		}
	}
	return []NodeID{start, start}
}
