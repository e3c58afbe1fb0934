package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/eval"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	TreeOptions
	Env      []string // name=value bindings for free symbols
	Graph    bool     // evaluate the lowered graph
	Raw      bool     // evaluate the source tree without normalizing
	MaxSteps int
}

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Tree  string `json:"tree"`
	Mode  string `json:"mode"`
	Value string `json:"value"`
}

// Evaluation modes.
const (
	ModeRaw    = "raw"
	ModeNormal = "normal"
	ModeGraph  = "graph"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{TreeOptions: TreeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "eval <tree-file> [args...]",
		Short: "Evaluate a tree with the reference evaluator",
		Long: `Evaluate a tree. By default the normal form is evaluated; --raw evaluates
the source tree and --graph evaluates the lowered IR graph.

A lambda root is called with the positional arguments. Arguments and --env
values are YAML scalars or flow sequences (3, 2.5, "s", true, [1, 2]).

Examples:
  anfir eval square.yaml 7
  anfir eval expr.json --env x=5 --graph`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.Context(), opts, args[0], args[1:], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringArrayVarP(&opts.Env, "env", "e", nil, "bind a free symbol (name=value)")
	cmd.Flags().BoolVar(&opts.Graph, "graph", false, "evaluate the lowered graph")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "evaluate the source tree")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", eval.DefaultMaxSteps, "maximum number of calls")

	return cmd
}

func runEval(ctx context.Context, opts *EvalOptions, path string, rawArgs []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(cmd, opts.RootOptions)

	if opts.Graph && opts.Raw {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "--graph and --raw are mutually exclusive", nil)
	}
	args, err := parseValues(rawArgs)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeParseFailed, err.Error(), nil)
	}
	names, values, err := parseEnv(opts.Env)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeParseFailed, err.Error(), nil)
	}

	lt, err := opts.load(cmd, out, path)
	if err != nil {
		return err
	}
	tree, mode := lt.Tree, ModeRaw
	if !opts.Raw {
		if tree, err = lt.Normalize(); err != nil {
			return out.Fail(ExitCommandError, ErrCodeNormalizeFailed, err.Error(), nil)
		}
		mode = ModeNormal
	}

	ev := eval.New(eval.WithMaxSteps(opts.MaxSteps))
	var v eval.Value
	if opts.Graph {
		mode = ModeGraph
		v, err = evalGraph(ctx, ev, lt, tree, args, names, values)
	} else {
		v, err = evalTree(ctx, ev, tree, args, names, values)
	}
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeEvalFailed, err.Error(), nil)
	}

	out.VerboseLog("Evaluated %s in %s mode", path, mode)
	return out.Success(EvalResult{Tree: tree.String(), Mode: mode, Value: eval.Format(v)}, eval.Format(v))
}

func evalTree(ctx context.Context, ev *eval.Evaluator, tree ast.Expr, args []eval.Value, names []string, values []eval.Value) (eval.Value, error) {
	env := eval.NewEnv(nil)
	for i, name := range names {
		env.Set(name, values[i])
	}
	v, err := ev.Tree(ctx, tree, env)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.(*ast.Lambda); ok {
		return ev.Call(ctx, v, args...)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("%d argument(s) given but the root is not a lambda", len(args))
	}
	return v, nil
}

// evalGraph lowers tree and evaluates the graph. A non-lambda root becomes
// a graph over the env names, called with the env values.
func evalGraph(ctx context.Context, ev *eval.Evaluator, lt *LoadedTree, tree ast.Expr, args []eval.Value, names []string, values []eval.Value) (eval.Value, error) {
	if _, ok := tree.(*ast.Lambda); ok {
		if len(names) > 0 {
			return nil, fmt.Errorf("--env is not supported for a lambda root in graph mode")
		}
		_, g, err := lowerTree(lt, tree)
		if err != nil {
			return nil, err
		}
		return ev.Graph(ctx, g, args...)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("%d argument(s) given but the root is not a lambda", len(args))
	}
	_, g, err := lowerTree(lt, tree, names...)
	if err != nil {
		return nil, err
	}
	return ev.Graph(ctx, g, values...)
}

func parseValues(raw []string) ([]eval.Value, error) {
	out := make([]eval.Value, len(raw))
	for i, s := range raw {
		v, err := parseValue(s)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseEnv parses name=value pairs. Names are returned sorted.
func parseEnv(pairs []string) ([]string, []eval.Value, error) {
	byName := make(map[string]eval.Value, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("invalid --env %q: want name=value", pair)
		}
		v, err := parseValue(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("--env %s: %w", name, err)
		}
		byName[name] = v
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]eval.Value, len(names))
	for i, name := range names {
		values[i] = byName[name]
	}
	return names, values, nil
}

func parseValue(raw string) (eval.Value, error) {
	var data any
	if err := yaml.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", raw, err)
	}
	return eval.FromData(data)
}
