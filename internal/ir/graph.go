package ir

import (
	"github.com/roach88/anfir/internal/ast"
)

// Graph is a function body: ordered input nodes and one output node. A
// non-nil Parent makes it a closure body nested in the parent's scope.
type Graph struct {
	Parent *Graph
	Tag    *ast.Symbol
	Gen    ast.Namer
	Inputs []NodeID
	Output NodeID

	arena *Arena
}

// NewGraph creates an empty graph whose nodes live in a.
func (a *Arena) NewGraph(parent *Graph, tag *ast.Symbol, gen ast.Namer) *Graph {
	return &Graph{Parent: parent, Tag: tag, Gen: gen, arena: a}
}

// Arena returns the arena holding the graph's nodes.
func (g *Graph) Arena() *Arena {
	return g.arena
}

func (g *Graph) String() string {
	if g.Tag == nil {
		return "<graph>"
	}
	return g.Tag.String()
}

// AddInput appends a free input node to the graph.
func (g *Graph) AddInput(tag *ast.Symbol) NodeID {
	id := g.arena.NewNode(g, tag)
	g.Inputs = append(g.Inputs, id)
	return id
}

// NewNode creates a bare node owned by the graph.
func (g *Graph) NewNode(tag *ast.Symbol) NodeID {
	return g.arena.NewNode(g, tag)
}

// Apply creates a computation node owned by the graph.
func (g *Graph) Apply(tag *ast.Symbol, fn NodeID, inputs ...NodeID) (NodeID, error) {
	id := g.NewNode(tag)
	if err := g.arena.SetApp(id, fn, inputs); err != nil {
		return NoNode, err
	}
	return id, nil
}

// SetOutput sets the output node.
func (g *Graph) SetOutput(id NodeID) error {
	if !g.arena.Valid(id) {
		return newInvalidNodeError(id)
	}
	g.Output = id
	return nil
}

// Link makes the edge from --role--> to. Both ends must be nodes of the
// graph's arena.
func (g *Graph) Link(from, to NodeID, role Role) error {
	for _, id := range []NodeID{from, to} {
		if !g.arena.Valid(id) {
			return newInvalidNodeError(id)
		}
	}
	return g.arena.SetSucc(from, role, to)
}

// Replace redirects every user of old onto repl and moves the output too if
// old was the output.
func (g *Graph) Replace(old, repl NodeID) error {
	if err := g.arena.Redirect(old, repl); err != nil {
		return err
	}
	if g.Output == old {
		g.Output = repl
	}
	return nil
}

// ContainedIn reports whether p is g or one of its ancestors.
func (g *Graph) ContainedIn(p *Graph) bool {
	for cur := g; cur != nil; cur = cur.Parent {
		if cur == p {
			return true
		}
	}
	return false
}

// Owns reports whether id is owned by g.
func (g *Graph) Owns(id NodeID) bool {
	return g.arena.Graph(id) == g
}

// IterNodes returns the nodes reachable from the output, breadth first.
// Owned nodes are returned and traversed. With boundary set, nodes owned by
// other graphs are returned too, but not traversed. Constants are skipped.
func (g *Graph) IterNodes(boundary bool) []NodeID {
	if g.Output == NoNode {
		return nil
	}
	var out []NodeID
	seen := map[NodeID]bool{g.Output: true}
	queue := []NodeID{g.Output}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		owner := g.arena.Graph(id)
		if owner != g {
			if boundary && owner != nil {
				out = append(out, id)
			}
			continue
		}
		out = append(out, id)
		for _, s := range g.arena.Successors(id) {
			if !seen[s] {
				seen[s] = true
				queue = append(queue, s)
			}
		}
	}
	return out
}

// Boundary returns the nodes of other graphs the graph refers to.
func (g *Graph) Boundary() []NodeID {
	var out []NodeID
	for _, id := range g.IterNodes(true) {
		if !g.Owns(id) {
			out = append(out, id)
		}
	}
	return out
}

// Edge is a forward edge for read-only consumers.
type Edge struct {
	From NodeID
	Role Role
	To   NodeID
}

// Edges returns the forward edges of every owned node reachable from the
// output, fn first then inputs in order. Edges into other graphs and
// constants are included.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, id := range g.IterNodes(false) {
		if fn := g.arena.Fn(id); fn != NoNode {
			out = append(out, Edge{From: id, Role: FN, To: fn})
		}
		for i, in := range g.arena.Inputs(id) {
			if in != NoNode {
				out = append(out, Edge{From: id, Role: IN(i), To: in})
			}
		}
	}
	return out
}
