package ir

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/gensym"
)

// randomDAG builds a graph with two inputs and size computations, each
// applying one of three builtins to earlier nodes. The last computation is
// the output.
func randomDAG(seed int64, size int) (*Arena, *Graph, []NodeID) {
	rng := rand.New(rand.NewSource(seed))
	a := NewArena()
	g := a.NewGraph(nil, ast.Sym("g"), gensym.New("g"))
	fns := []NodeID{
		a.NewConstant(ast.Sym("add"), ast.Sym("add")),
		a.NewConstant(ast.Sym("mul"), ast.Sym("mul")),
		a.NewConstant(ast.Sym("neg"), ast.Sym("neg")),
	}
	pool := []NodeID{g.AddInput(ast.Sym("x")), g.AddInput(ast.Sym("y"))}
	var comps []NodeID
	for i := 0; i < size; i++ {
		fn := fns[rng.Intn(len(fns))]
		arity := 2
		if fn == fns[2] {
			arity = 1
		}
		inputs := make([]NodeID, arity)
		for j := range inputs {
			inputs[j] = pool[rng.Intn(len(pool))]
		}
		id := g.NewNode(g.Gen.Sym("n"))
		a.MustSetApp(id, fn, inputs...)
		pool = append(pool, id)
		comps = append(comps, id)
	}
	if len(comps) > 0 {
		g.Output = comps[len(comps)-1]
	} else {
		g.Output = pool[0]
	}
	return a, g, comps
}

// TestRedirect_ConsistencyProperty tests that any sequence of redirects
// keeps every edge mirrored and leaves the source without users.
func TestRedirect_ConsistencyProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("redirects preserve edge symmetry", prop.ForAll(
		func(seed int64, size int, steps int) bool {
			a, _, comps := randomDAG(seed, size)
			rng := rand.New(rand.NewSource(seed + 1))
			for k := 0; k < steps && len(comps) > 1; k++ {
				i := 1 + rng.Intn(len(comps)-1)
				j := rng.Intn(i)
				src, dst := comps[i], comps[j]
				if a.Redirect(src, dst) != nil {
					return false
				}
				if len(a.Users(src)) != 0 {
					return false
				}
			}
			return a.Verify() == nil
		},
		gen.Int64(),
		gen.IntRange(1, 20),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}

// TestRedirect_TargetsProperty tests that every former use of a redirected
// node now resolves to the target.
func TestRedirect_TargetsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("former users see the target", prop.ForAll(
		func(seed int64, size int) bool {
			a, g, comps := randomDAG(seed, size)
			src := g.Inputs[0]
			dst := g.Inputs[1]
			if len(comps) > 1 {
				src, dst = comps[0], comps[len(comps)-1]
			}
			former := a.Users(src)
			if a.Redirect(src, dst) != nil {
				return false
			}
			for _, u := range former {
				got, err := a.Succ(u.User, u.Role)
				if err != nil || got != dst {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

// TestToposort_OrderProperty tests that toposort of an acyclic graph lists
// every reachable computation once, after its producers.
func TestToposort_OrderProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("toposort respects dependencies", prop.ForAll(
		func(seed int64, size int) bool {
			a, g, _ := randomDAG(seed, size)
			order, err := g.Toposort()
			if err != nil {
				return false
			}
			if len(order) > 0 && order[len(order)-1] != g.Output {
				return false
			}
			return validOrder(a, g, order)
		},
		gen.Int64(),
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}

// TestToposort_CycleProperty tests that closing a back edge onto the output
// is always reported as a cycle.
func TestToposort_CycleProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("back edges are cycles", prop.ForAll(
		func(seed int64, size int) bool {
			a, g, comps := randomDAG(seed, size)
			// the first computation reachable from the output other than
			// the output itself consumes the output
			var victim NodeID
			for _, id := range g.IterNodes(false) {
				if id != g.Output && a.IsComputation(id) {
					victim = id
					break
				}
			}
			if victim == NoNode {
				victim = comps[len(comps)-1]
			}
			if err := a.SetSucc(victim, IN(0), g.Output); err != nil {
				return false
			}
			_, err := g.Toposort()
			var ge *GraphError
			if !errors.As(err, &ge) || ge.Code != ErrCodeCycle {
				return false
			}
			return len(ge.Path) >= 2 && ge.Path[0] == ge.Path[len(ge.Path)-1]
		},
		gen.Int64(),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}

// TestDup_IsomorphismProperty tests that a duplicate has the same shape
// with fresh owned nodes and shared constants.
func TestDup_IsomorphismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("dup is an isomorphic copy", prop.ForAll(
		func(seed int64, size int) bool {
			a, g, _ := randomDAG(seed, size)
			h, _, _, err := g.Dup(nil)
			if err != nil || a.Verify() != nil {
				return false
			}
			return sameShape(a, g, h)
		},
		gen.Int64(),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

// sameShape is the boolean form of isomorphic for property tests.
func sameShape(a *Arena, g, h *Graph) bool {
	if len(g.Inputs) != len(h.Inputs) {
		return false
	}
	mapping := make(map[NodeID]NodeID)
	for i := range g.Inputs {
		mapping[g.Inputs[i]] = h.Inputs[i]
	}
	var walk func(x, y NodeID) bool
	walk = func(x, y NodeID) bool {
		if m, ok := mapping[x]; ok {
			return m == y
		}
		if !g.Owns(x) {
			return x == y
		}
		if x == y || !h.Owns(y) {
			return false
		}
		mapping[x] = y
		ax, ay := a.App(x), a.App(y)
		if len(ax) != len(ay) {
			return false
		}
		for i := range ax {
			if !walk(ax[i], ay[i]) {
				return false
			}
		}
		return true
	}
	return walk(g.Output, h.Output)
}
