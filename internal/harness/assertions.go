package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/anfir/internal/anf"
	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/eval"
	"github.com/roach88/anfir/internal/gensym"
	"github.com/roach88/anfir/internal/ir"
	"github.com/roach88/anfir/internal/lower"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type       string // Assertion type for categorization
	Expected   string // Human-readable expected outcome
	Actual     string // Human-readable actual outcome
	NormalForm string // Printed normal form for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if e.NormalForm != "" {
		fmt.Fprintf(&buf, "\n  Normal form: %s", e.NormalForm)
	}

	return buf.String()
}

// evaluateAssertions runs every assertion of the scenario and returns the
// failure messages.
func (h *Harness) evaluateAssertions(ctx context.Context) []string {
	var errors []string
	for _, a := range h.scenario.Assertions {
		var err error
		switch a.Type {
		case AssertFlat:
			err = h.assertFlat()
		case AssertIdempotent:
			err = h.assertIdempotent()
		case AssertBindings:
			err = h.assertBindings(a)
		case AssertFreeSymbols:
			err = h.assertFreeSymbols()
		case AssertLowers:
			err = h.assertLowers(a)
		case AssertPreservesEval:
			err = h.assertPreservesEval(ctx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

func (h *Harness) fail(kind, expected, actual string) error {
	return &AssertionError{
		Type:       kind,
		Expected:   expected,
		Actual:     actual,
		NormalForm: h.normal.String(),
	}
}

func (h *Harness) assertFlat() error {
	if vs := anf.Check(h.normal); len(vs) > 0 {
		msgs := make([]string, len(vs))
		for i, v := range vs {
			msgs[i] = v.Error()
		}
		return h.fail(AssertFlat, "no violations", strings.Join(msgs, "; "))
	}
	return nil
}

func (h *Harness) assertIdempotent() error {
	again, err := h.normalize(h.normal)
	if err != nil {
		return h.fail(AssertIdempotent, "normal form normalizes", err.Error())
	}
	want, got := shape(h.normal), shape(again)
	if want != got {
		return h.fail(AssertIdempotent, want, got)
	}
	return nil
}

func (h *Harness) assertBindings(a Assertion) error {
	if n := countBindings(h.normal); n != a.Count {
		return h.fail(AssertBindings, fmt.Sprintf("%d bindings", a.Count), fmt.Sprintf("%d bindings", n))
	}
	return nil
}

func (h *Harness) assertFreeSymbols() error {
	want, got := symbolSet(ast.FreeSymbols(h.source)), symbolSet(ast.FreeSymbols(h.normal))
	if want != got {
		return h.fail(AssertFreeSymbols, want, got)
	}
	return nil
}

func (h *Harness) assertLowers(a Assertion) error {
	arena := ir.NewArena()
	g, _, err := h.lower(arena)
	if err != nil {
		return h.fail(AssertLowers, "normal form lowers", err.Error())
	}
	if err := arena.Verify(); err != nil {
		return h.fail(AssertLowers, "consistent edges", err.Error())
	}
	order, err := g.Toposort()
	if err != nil {
		return h.fail(AssertLowers, "acyclic graph", err.Error())
	}
	if a.Count > 0 && len(order) != a.Count {
		return h.fail(AssertLowers, fmt.Sprintf("%d nodes", a.Count), fmt.Sprintf("%d nodes", len(order)))
	}
	return nil
}

func (h *Harness) assertPreservesEval(ctx context.Context) error {
	src, srcErr := h.evalTree(ctx, h.source)
	norm, normErr := h.evalTree(ctx, h.normal)
	if !agree(src, srcErr, norm, normErr) {
		return h.fail(AssertPreservesEval, describe(src, srcErr), "normal form: "+describe(norm, normErr))
	}

	arena := ir.NewArena()
	g, args, err := h.lower(arena)
	if err != nil {
		return h.fail(AssertPreservesEval, "normal form lowers", err.Error())
	}
	graph, graphErr := h.evaluator.Graph(ctx, g, args...)
	if !agree(src, srcErr, graph, graphErr) {
		return h.fail(AssertPreservesEval, describe(src, srcErr), "graph: "+describe(graph, graphErr))
	}
	return nil
}

// lower turns the normal form into a graph. A root that is not a lambda is
// wrapped in one whose arguments are the env names, so the env values
// become graph arguments.
func (h *Harness) lower(arena *ir.Arena) (*ir.Graph, []eval.Value, error) {
	if lam, ok := h.normal.(*ast.Lambda); ok {
		g, err := lower.Lambda(arena, lam)
		return g, h.args, err
	}

	names := h.envNames()
	lam := &ast.Lambda{
		Args: make([]*ast.Symbol, len(names)),
		Body: h.normal,
		Gen:  gensym.New(h.namespace + "/main"),
	}
	args := make([]eval.Value, len(names))
	for i, name := range names {
		sym := ast.Sym(name)
		lam.Args[i] = sym
		args[i], _ = h.env.Lookup(sym)
	}
	g, err := lower.Lambda(arena, lam)
	return g, args, err
}

// agree compares two evaluation outcomes. Errors agree with errors, and
// callables agree with callables since they have no structural identity.
func agree(a eval.Value, aErr error, b eval.Value, bErr error) bool {
	if aErr != nil || bErr != nil {
		return aErr != nil && bErr != nil
	}
	if eval.IsCallable(a) || eval.IsCallable(b) {
		return eval.IsCallable(a) && eval.IsCallable(b)
	}
	return eval.Equal(a, b)
}

func symbolSet(syms []*ast.Symbol) string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range syms {
		if !seen[s.Key()] {
			seen[s.Key()] = true
			names = append(names, s.String())
		}
	}
	sort.Strings(names)
	return "{" + strings.Join(names, " ") + "}"
}
