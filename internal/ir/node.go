package ir

import (
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/roach88/anfir/internal/ast"
)

// NodeID is a stable handle to a node of an Arena. The zero value is NoNode.
type NodeID uint32

// NoNode is the absent node. It fills empty input slots and unset fn edges.
const NoNode NodeID = 0

func (id NodeID) String() string {
	return "n" + strconv.FormatUint(uint64(id), 10)
}

// RoleKind distinguishes the function position from argument positions.
type RoleKind uint8

const (
	RoleFn RoleKind = iota + 1
	RoleIn
)

// Role is the position an edge occupies on its source node.
type Role struct {
	Kind  RoleKind
	Index int
}

// FN is the function position.
var FN = Role{Kind: RoleFn}

// IN returns the role of argument i.
func IN(i int) Role {
	return Role{Kind: RoleIn, Index: i}
}

// Valid reports whether r is FN or IN(i) with i >= 0.
func (r Role) Valid() bool {
	switch r.Kind {
	case RoleFn:
		return r.Index == 0
	case RoleIn:
		return r.Index >= 0
	}
	return false
}

func (r Role) String() string {
	switch r.Kind {
	case RoleFn:
		return "FN"
	case RoleIn:
		return fmt.Sprintf("IN(%d)", r.Index)
	}
	return fmt.Sprintf("Role(%d,%d)", r.Kind, r.Index)
}

// Use is a reverse edge: User refers to the node at Role.
type Use struct {
	Role Role
	User NodeID
}

// Kind classifies a node.
type Kind uint8

const (
	KindInput Kind = iota
	KindComputation
	KindConstant
	KindGraph
)

func (k Kind) String() string {
	switch k {
	case KindComputation:
		return "computation"
	case KindConstant:
		return "constant"
	case KindGraph:
		return "graph"
	}
	return "input"
}

// Provenance records one step of a node's history.
type Provenance struct {
	Step string
	From NodeID
}

type node struct {
	graph    *Graph
	tag      *ast.Symbol
	fn       NodeID
	inputs   []NodeID
	users    *linkedhashset.Set // of Use, in link order
	value    any
	hasValue bool
	inferred map[string]any
	about    []Provenance
}

func (n *node) slot(r Role) NodeID {
	if r.Kind == RoleFn {
		return n.fn
	}
	if r.Index < len(n.inputs) {
		return n.inputs[r.Index]
	}
	return NoNode
}

func (n *node) setSlot(r Role, target NodeID) {
	if r.Kind == RoleFn {
		n.fn = target
		return
	}
	for len(n.inputs) <= r.Index {
		n.inputs = append(n.inputs, NoNode)
	}
	n.inputs[r.Index] = target
}

// Arena owns every node. Handles index into it and stay valid for the
// arena's lifetime; nodes are never freed, unreachable ones are simply
// unreferenced.
type Arena struct {
	nodes []*node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{nodes: []*node{nil}}
}

// Len returns the number of nodes allocated so far.
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

func (a *Arena) alloc(n *node) NodeID {
	n.users = linkedhashset.New()
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

func (a *Arena) node(id NodeID) *node {
	if id == NoNode || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

func (a *Arena) mustNode(id NodeID) (*node, error) {
	n := a.node(id)
	if n == nil {
		return nil, newInvalidNodeError(id)
	}
	return n, nil
}

// NewNode creates a bare node owned by g: no fn, no inputs, no value. Wire
// it with SetApp or SetSucc to make it a computation.
func (a *Arena) NewNode(g *Graph, tag *ast.Symbol) NodeID {
	return a.alloc(&node{graph: g, tag: tag})
}

// NewConstant creates a constant node with no owning graph. A *Graph value
// makes it a graph reference.
func (a *Arena) NewConstant(value any, tag *ast.Symbol) NodeID {
	return a.alloc(&node{tag: tag, value: value, hasValue: true})
}

// Valid reports whether id names a node of this arena.
func (a *Arena) Valid(id NodeID) bool {
	return a.node(id) != nil
}

// Graph returns the owning graph of id, nil for constants.
func (a *Arena) Graph(id NodeID) *Graph {
	if n := a.node(id); n != nil {
		return n.graph
	}
	return nil
}

// Tag returns the display tag of id.
func (a *Arena) Tag(id NodeID) *ast.Symbol {
	if n := a.node(id); n != nil {
		return n.tag
	}
	return nil
}

// Fn returns the function edge of id.
func (a *Arena) Fn(id NodeID) NodeID {
	if n := a.node(id); n != nil {
		return n.fn
	}
	return NoNode
}

// Inputs returns a copy of the input edges of id. Empty slots are NoNode.
func (a *Arena) Inputs(id NodeID) []NodeID {
	if n := a.node(id); n != nil {
		return append([]NodeID(nil), n.inputs...)
	}
	return nil
}

// Succ returns the target of the edge at role.
func (a *Arena) Succ(id NodeID, role Role) (NodeID, error) {
	n, err := a.mustNode(id)
	if err != nil {
		return NoNode, err
	}
	if !role.Valid() {
		return NoNode, newRoleError(id, role)
	}
	return n.slot(role), nil
}

// Successors returns the distinct nodes id depends on: fn first, then
// inputs in order.
func (a *Arena) Successors(id NodeID) []NodeID {
	n := a.node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	seen := make(map[NodeID]bool, len(n.inputs)+1)
	for _, s := range append([]NodeID{n.fn}, n.inputs...) {
		if s != NoNode && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// App returns (fn, inputs...) for a computation and nil otherwise.
func (a *Arena) App(id NodeID) []NodeID {
	n := a.node(id)
	if n == nil || n.fn == NoNode {
		return nil
	}
	return append([]NodeID{n.fn}, n.inputs...)
}

// Users returns the reverse edges of id in link order.
func (a *Arena) Users(id NodeID) []Use {
	n := a.node(id)
	if n == nil {
		return nil
	}
	vals := n.users.Values()
	out := make([]Use, len(vals))
	for i, v := range vals {
		out[i] = v.(Use)
	}
	return out
}

// Value returns the value of id and whether it has one.
func (a *Arena) Value(id NodeID) (any, bool) {
	if n := a.node(id); n != nil {
		return n.value, n.hasValue
	}
	return nil, false
}

// Kind classifies id.
func (a *Arena) Kind(id NodeID) Kind {
	n := a.node(id)
	switch {
	case n == nil:
		return KindInput
	case n.fn != NoNode:
		return KindComputation
	case n.hasValue:
		if _, ok := n.value.(*Graph); ok {
			return KindGraph
		}
		return KindConstant
	}
	return KindInput
}

// IsComputation reports whether id has a function edge.
func (a *Arena) IsComputation(id NodeID) bool { return a.Fn(id) != NoNode }

// IsConstant reports whether id carries a value, graph references included.
func (a *Arena) IsConstant(id NodeID) bool {
	_, ok := a.Value(id)
	return ok
}

// IsInput reports whether id is a free input.
func (a *Arena) IsInput(id NodeID) bool {
	n := a.node(id)
	return n != nil && n.fn == NoNode && !n.hasValue
}

// IsGraph reports whether id references a graph.
func (a *Arena) IsGraph(id NodeID) bool { return a.Kind(id) == KindGraph }

// IsBuiltin reports whether id is a constant naming a builtin symbol.
func (a *Arena) IsBuiltin(id NodeID) bool {
	v, ok := a.Value(id)
	if !ok {
		return false
	}
	_, isSym := v.(*ast.Symbol)
	return isSym
}

// Inferred returns the annotation slot of id, creating it on first use.
// Its contents are owned by the inference passes.
func (a *Arena) Inferred(id NodeID) map[string]any {
	n := a.node(id)
	if n == nil {
		return nil
	}
	if n.inferred == nil {
		n.inferred = make(map[string]any)
	}
	return n.inferred
}

// About returns the provenance trace of id.
func (a *Arena) About(id NodeID) []Provenance {
	if n := a.node(id); n != nil {
		return append([]Provenance(nil), n.about...)
	}
	return nil
}

func (a *Arena) trace(id NodeID, p Provenance) {
	if n := a.node(id); n != nil {
		n.about = append(n.about, p)
	}
}

// NodeInfo is a read-only snapshot of a node for debug and visualization
// layers.
type NodeInfo struct {
	ID       NodeID
	Kind     Kind
	Tag      *ast.Symbol
	Value    any
	Graph    *Graph
	Fn       NodeID
	Inputs   []NodeID
	Users    []Use
	Inferred map[string]any
}

// Info returns a snapshot of id. ok is false for invalid handles.
func (a *Arena) Info(id NodeID) (NodeInfo, bool) {
	n := a.node(id)
	if n == nil {
		return NodeInfo{}, false
	}
	inferred := make(map[string]any, len(n.inferred))
	for k, v := range n.inferred {
		inferred[k] = v
	}
	return NodeInfo{
		ID:       id,
		Kind:     a.Kind(id),
		Tag:      n.tag,
		Value:    n.value,
		Graph:    n.graph,
		Fn:       n.fn,
		Inputs:   a.Inputs(id),
		Users:    a.Users(id),
		Inferred: inferred,
	}, true
}

// Label renders a node for messages: its tag, or its value for untagged
// constants.
func (a *Arena) Label(id NodeID) string {
	n := a.node(id)
	switch {
	case n == nil:
		return id.String()
	case n.tag != nil:
		return n.tag.String()
	case n.hasValue:
		return fmt.Sprint(n.value)
	}
	return id.String()
}
