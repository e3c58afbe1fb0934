// Package render turns IR graphs into cytoscape-style node and edge
// elements for inspection. It only reads the graphs.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/anfir/internal/ir"
)

// Node classes.
const (
	ClassFunction     = "function"
	ClassConstant     = "constant"
	ClassOutput       = "output"
	ClassInput        = "input"
	ClassIntermediate = "intermediate"
	ClassConstOutput  = "const_output"
)

// Data is the payload of one element.
type Data struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Parent string `json:"parent,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Element is a node or an edge.
type Element struct {
	Data    Data   `json:"data"`
	Classes string `json:"classes,omitempty"`
}

// Document is the rendered form of a set of graphs.
type Document struct {
	Nodes []Element `json:"nodes"`
	Edges []Element `json:"edges"`
}

// JSON returns the document as indented JSON.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Option configures a Printer.
type Option func(*Printer)

// DuplicateConstants shows each use of a constant as its own node, inside
// the graph of the use. Default: true.
func DuplicateConstants(on bool) Option {
	return func(p *Printer) { p.duplicateConstants = on }
}

// FunctionInNode labels applications of a constant function
// "node:function" instead of drawing an F edge to the function. Default:
// true.
func FunctionInNode(on bool) Option {
	return func(p *Printer) { p.functionInNode = on }
}

// FollowReferences also renders graphs referenced by rendered nodes.
// Default: true.
func FollowReferences(on bool) Option {
	return func(p *Printer) { p.followReferences = on }
}

// Printer accumulates elements for a set of graphs. Graphs and nodes are
// visited in a fixed order, so the same input always renders the same
// document.
type Printer struct {
	arena              *ir.Arena
	duplicateConstants bool
	functionInNode     bool
	followReferences   bool

	graphs []*ir.Graph
	queued map[*ir.Graph]bool
	pool   []ir.NodeID
	currID int
	ids    map[any]string
	nodes  []Element
	edges  []Element
}

// New creates a Printer over the nodes of a.
func New(a *ir.Arena, opts ...Option) *Printer {
	p := &Printer{
		arena:              a,
		duplicateConstants: true,
		functionInNode:     true,
		followReferences:   true,
		queued:             make(map[*ir.Graph]bool),
		ids:                make(map[any]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Graphs renders gs with a new Printer.
func Graphs(a *ir.Arena, gs []*ir.Graph, opts ...Option) Document {
	p := New(a, opts...)
	for _, g := range gs {
		p.Add(g)
	}
	return p.Render()
}

// Add queues g as an entry point.
func (p *Printer) Add(g *ir.Graph) {
	if g == nil || p.queued[g] {
		return
	}
	p.queued[g] = true
	p.graphs = append(p.graphs, g)
}

// Render processes every queued graph and returns the document.
func (p *Printer) Render() Document {
	for len(p.graphs) > 0 {
		g := p.graphs[0]
		p.graphs = p.graphs[1:]
		p.processGraph(g)
	}
	return Document{Nodes: p.nodes, Edges: p.edges}
}

func (p *Printer) nextID() string {
	p.currID++
	return fmt.Sprintf("X%d", p.currID)
}

func (p *Printer) shouldDup(id ir.NodeID) bool {
	return p.duplicateConstants && p.arena.IsConstant(id)
}

// register returns the element id of obj and whether it is new.
func (p *Printer) register(obj any) (string, bool) {
	if id, ok := obj.(ir.NodeID); !ok || !p.shouldDup(id) {
		if eid, ok := p.ids[obj]; ok {
			return eid, false
		}
	}
	eid := p.nextID()
	p.ids[obj] = eid
	return eid, true
}

// constFn returns the label of the constant function applied by id, or ""
// when the application is drawn with an F edge.
func (p *Printer) constFn(id ir.NodeID) string {
	fn := p.arena.Fn(id)
	if !p.functionInNode || fn == ir.NoNode || !p.arena.IsConstant(fn) {
		return ""
	}
	return p.arena.Label(fn)
}

func (p *Printer) addGraph(g *ir.Graph) string {
	eid, fresh := p.register(g)
	if fresh {
		p.nodes = append(p.nodes, Element{Data: Data{ID: eid, Label: g.String()}, Classes: ClassFunction})
	}
	return eid
}

// addNode renders id inside g, or inside its own graph when g is nil.
func (p *Printer) addNode(id ir.NodeID, g *ir.Graph) string {
	eid, fresh := p.register(id)
	if !fresh {
		return eid
	}
	a := p.arena
	if g == nil {
		g = a.Graph(id)
	}

	var label string
	switch {
	case a.IsGraph(id):
		v, _ := a.Value(id)
		ref := v.(*ir.Graph)
		if p.followReferences {
			p.Add(ref)
		}
		label = ref.String()
		if tag := a.Tag(id); tag != nil {
			label = tag.String()
		}
	case a.IsConstant(id):
		v, _ := a.Value(id)
		label = fmt.Sprint(v)
	default:
		label = a.Label(id)
	}

	own := a.Graph(id)
	class := ClassIntermediate
	switch {
	case own == nil:
		class = ClassConstant
	case id == own.Output && a.IsComputation(id):
		class = ClassOutput
	case isInput(own, id):
		class = ClassInput
	}

	if cfn := p.constFn(id); cfn != "" {
		if strings.Contains(label, "/out") || strings.Contains(label, "/in") {
			label = ""
		}
		label = label + ":" + cfn
	}

	data := Data{ID: eid, Label: label}
	if g != nil {
		data.Parent = p.addGraph(g)
	}
	p.nodes = append(p.nodes, Element{Data: data, Classes: class})
	p.pool = append(p.pool, id)
	return eid
}

func isInput(g *ir.Graph, id ir.NodeID) bool {
	for _, in := range g.Inputs {
		if in == id {
			return true
		}
	}
	return false
}

func (p *Printer) processGraph(g *ir.Graph) {
	a := p.arena
	for _, in := range g.Inputs {
		p.addNode(in, nil)
	}
	if g.Output == ir.NoNode {
		return
	}
	p.addNode(g.Output, nil)

	if !a.IsComputation(g.Output) {
		oid := p.nextID()
		p.nodes = append(p.nodes, Element{
			Data:    Data{ID: oid, Parent: p.addGraph(g)},
			Classes: ClassConstOutput,
		})
		p.edges = append(p.edges, Element{Data: Data{
			ID:     p.nextID(),
			Source: p.ids[g.Output],
			Target: oid,
		}})
	}

	for len(p.pool) > 0 {
		id := p.pool[0]
		p.pool = p.pool[1:]

		var edges []ir.Edge
		if p.constFn(id) != "" {
			if p.followReferences {
				if v, ok := a.Value(a.Fn(id)); ok {
					if ref, isGraph := v.(*ir.Graph); isGraph {
						p.Add(ref)
					}
				}
			}
		} else if fn := a.Fn(id); fn != ir.NoNode {
			edges = append(edges, ir.Edge{From: id, Role: ir.FN, To: fn})
		}
		for i, in := range a.Inputs(id) {
			if in != ir.NoNode {
				edges = append(edges, ir.Edge{From: id, Role: ir.IN(i), To: in})
			}
		}

		for _, e := range edges {
			label := "F"
			if e.Role.Kind == ir.RoleIn {
				label = fmt.Sprint(e.Role.Index)
			}
			var home *ir.Graph
			if p.shouldDup(e.To) {
				home = g
			}
			dest := p.addNode(e.To, home)
			p.edges = append(p.edges, Element{Data: Data{
				ID:     p.nextID(),
				Label:  label,
				Source: dest,
				Target: p.ids[e.From],
			}})
		}
	}
}
