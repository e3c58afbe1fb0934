package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/anfir/internal/anf"
	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/eval"
	"github.com/roach88/anfir/internal/gensym"
)

// Harness holds the state of one scenario run.
type Harness struct {
	scenario  *Scenario
	namespace string
	evaluator *eval.Evaluator
	logger    *slog.Logger

	source ast.Expr
	normal ast.Expr
	args   []eval.Value
	env    *eval.Env
}

// Option configures Run.
type Option func(*Harness)

// WithEvaluator sets the evaluator used for evaluation checks.
//
// Default: eval.New().
func WithEvaluator(e *eval.Evaluator) Option {
	return func(h *Harness) {
		h.evaluator = e
	}
}

// WithLogger sets the harness logger.
//
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Decode the tree and reserve its generated names
// 2. Check the source and normalize it
// 3. Compare the expect clause
// 4. Evaluate the assertions
//
// The error return is reserved for scenarios that cannot run at all, such
// as a malformed tree. Failed expectations are reported in the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		scenario:  scenario,
		namespace: scenario.Namespace,
		evaluator: eval.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.namespace == "" {
		h.namespace = DefaultNamespace
	}

	if err := h.prepare(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Source = h.source.String()
	result.NormalForm = h.normal.String()
	result.Bindings = countBindings(h.normal)
	for _, v := range anf.Check(h.source) {
		result.Violations = append(result.Violations, v.Code)
	}

	h.checkExpect(ctx, result)
	for _, errMsg := range h.evaluateAssertions(ctx) {
		result.AddError(errMsg)
	}

	h.logger.Debug("ran scenario",
		"name", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (h *Harness) prepare() error {
	dec := ast.Decoder{NewNamer: gensym.Factory(h.namespace)}
	tree, err := dec.Decode(h.scenario.Tree)
	if err != nil {
		return err
	}
	h.source = tree

	normal, err := h.normalize(tree)
	if err != nil {
		return err
	}
	h.normal = normal

	for i, a := range h.scenario.Args {
		v, err := eval.FromData(a)
		if err != nil {
			return fmt.Errorf("args[%d]: %w", i, err)
		}
		h.args = append(h.args, v)
	}

	h.env = eval.NewEnv(nil)
	for _, name := range h.envNames() {
		v, err := eval.FromData(h.scenario.Env[name])
		if err != nil {
			return fmt.Errorf("env.%s: %w", name, err)
		}
		h.env.Set(name, v)
	}
	return nil
}

// normalize runs the normalizer with a generator that has seen every name
// of e.
func (h *Harness) normalize(e ast.Expr) (ast.Expr, error) {
	root := gensym.New(h.namespace)
	gensym.ReserveTree(e, root)
	return anf.Normalize(e, anf.WithNamer(root))
}

func (h *Harness) envNames() []string {
	names := make([]string, 0, len(h.scenario.Env))
	for name := range h.scenario.Env {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Harness) checkExpect(ctx context.Context, result *Result) {
	exp := h.scenario.Expect
	if exp == nil {
		return
	}

	if exp.NormalForm != "" && exp.NormalForm != result.NormalForm {
		result.AddError((&AssertionError{
			Type:     "normal_form",
			Expected: exp.NormalForm,
			Actual:   result.NormalForm,
		}).Error())
	}

	if exp.Violations != nil && !slices.Equal(exp.Violations, result.Violations) {
		result.AddError((&AssertionError{
			Type:     "violations",
			Expected: fmt.Sprint(exp.Violations),
			Actual:   fmt.Sprint(result.Violations),
		}).Error())
	}

	if exp.Result == "" && exp.Error == "" {
		return
	}
	v, err := h.evalTree(ctx, h.source)
	switch {
	case exp.Error != "":
		if err == nil || !strings.Contains(err.Error(), exp.Error) {
			result.AddError((&AssertionError{
				Type:     "error",
				Expected: fmt.Sprintf("error containing %q", exp.Error),
				Actual:   describe(v, err),
			}).Error())
		}
	case err != nil:
		result.AddError((&AssertionError{
			Type:     "result",
			Expected: exp.Result,
			Actual:   describe(nil, err),
		}).Error())
	default:
		result.Value = eval.Format(v)
		if result.Value != exp.Result {
			result.AddError((&AssertionError{
				Type:     "result",
				Expected: exp.Result,
				Actual:   result.Value,
			}).Error())
		}
	}
}

// evalTree evaluates e and applies a root lambda to the scenario args.
func (h *Harness) evalTree(ctx context.Context, e ast.Expr) (eval.Value, error) {
	v, err := h.evaluator.Tree(ctx, e, h.env)
	if err != nil {
		return nil, err
	}
	if _, ok := e.(*ast.Lambda); ok {
		return h.evaluator.Call(ctx, v, h.args...)
	}
	return v, nil
}

func describe(v eval.Value, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "value " + eval.Format(v)
}

// countBindings returns the number of Let bindings anywhere in e.
func countBindings(e ast.Expr) int {
	n := 0
	if let, ok := e.(*ast.Let); ok {
		n += len(let.Bindings)
	}
	for _, c := range ast.Children(e) {
		n += countBindings(c)
	}
	return n
}
