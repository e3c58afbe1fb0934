package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/anfir/internal/ir"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	TreeOptions
	Params []string // arguments of a non-lambda root
	Dup    bool     // also duplicate the graph and list the copy
}

// GraphNode is one computation node in dependency order.
type GraphNode struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Fn     string   `json:"fn"`
	Inputs []string `json:"inputs"`
}

// GraphListing is the dependency-ordered listing of one graph.
type GraphListing struct {
	Graph  string      `json:"graph"`
	Inputs []string    `json:"inputs"`
	Output string      `json:"output"`
	Nodes  []GraphNode `json:"nodes"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{TreeOptions: TreeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "graph <tree-file>",
		Short: "Lower a tree to an IR graph and list it in dependency order",
		Long: `Normalize a tree, lower it to an IR graph, verify edge consistency and
list the computation nodes of every graph in dependency order.

A root that is not a lambda becomes a graph over --param names; its other
free symbols are builtins.

Examples:
  anfir graph square.yaml
  anfir graph expr.json --param x --dup`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringSliceVarP(&opts.Params, "param", "p", nil, "argument names of a non-lambda root")
	cmd.Flags().BoolVar(&opts.Dup, "dup", false, "duplicate the graph and list the copy too")

	return cmd
}

func runGraph(opts *GraphOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	lt, norm, err := opts.normalize(cmd, out, path)
	if err != nil {
		return err
	}
	arena, g, err := lowerTree(lt, norm, opts.Params...)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeLowerFailed, err.Error(), nil)
	}

	graphs := []*ir.Graph{g}
	if opts.Dup {
		cp, _, _, err := g.Dup(nil)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeLowerFailed, fmt.Sprintf("duplicating graph: %v", err), nil)
		}
		graphs = append(graphs, cp)
	}
	if err := arena.Verify(); err != nil {
		return out.Fail(ExitCommandError, ErrCodeLowerFailed, err.Error(), nil)
	}

	listings, err := listGraphs(arena, graphs)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeLowerFailed, err.Error(), nil)
	}
	out.VerboseLog("Listed %d graph(s), %d arena node(s)", len(listings), arena.Len())

	return out.Success(listings, formatListings(listings))
}

// listGraphs lists gs and every graph they reference through graph
// constants, each graph once.
func listGraphs(a *ir.Arena, gs []*ir.Graph) ([]GraphListing, error) {
	var out []GraphListing
	seen := make(map[*ir.Graph]bool)
	queue := append([]*ir.Graph(nil), gs...)
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if seen[g] {
			continue
		}
		seen[g] = true

		order, err := g.Toposort()
		if err != nil {
			return nil, fmt.Errorf("graph %s: %w", g, err)
		}
		listing := GraphListing{
			Graph:  g.String(),
			Inputs: labels(a, g.Inputs),
			Output: a.Label(g.Output),
			Nodes:  make([]GraphNode, 0, len(order)),
		}
		for _, id := range order {
			listing.Nodes = append(listing.Nodes, GraphNode{
				ID:     id.String(),
				Label:  a.Label(id),
				Fn:     a.Label(a.Fn(id)),
				Inputs: labels(a, a.Inputs(id)),
			})
			for _, s := range a.Successors(id) {
				if v, ok := a.Value(s); ok {
					if child, ok := v.(*ir.Graph); ok {
						queue = append(queue, child)
					}
				}
			}
		}
		out = append(out, listing)
	}
	return out, nil
}

func labels(a *ir.Arena, ids []ir.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if id == ir.NoNode {
			out[i] = "_"
			continue
		}
		out[i] = a.Label(id)
	}
	return out
}

func formatListings(listings []GraphListing) string {
	var b strings.Builder
	for i, l := range listings {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "graph %s (%s) -> %s\n", l.Graph, strings.Join(l.Inputs, " "), l.Output)
		for _, n := range l.Nodes {
			fmt.Fprintf(&b, "  %s %s = (%s", n.ID, n.Label, n.Fn)
			for _, in := range n.Inputs {
				b.WriteString(" " + in)
			}
			b.WriteString(")\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
