package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/store"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	TreeOptions
	Output string // write the normal form as a JSON tree file
	Cache  string // normal-form cache database
}

// NormalizeResult is the JSON payload of the normalize command.
type NormalizeResult struct {
	Source     string `json:"source"`
	NormalForm string `json:"normal_form"`
	Tree       any    `json:"tree"`
	TreeHash   string `json:"tree_hash"`
	Cached     bool   `json:"cached"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{TreeOptions: TreeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "normalize <tree-file>",
		Short: "Rewrite a tree into flat A-normal form",
		Long: `Rewrite a tree into flat A-normal form and print it as an s-expression.

With --cache, the normal form is looked up in (and stored into) a SQLite
normal-form cache keyed by the content hash of the source tree.

Examples:
  anfir normalize tree.yaml
  anfir normalize tree.json -o normal.json
  anfir normalize tree.cue --cache anfir.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the normal form to a JSON tree file")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "normal-form cache database")

	return cmd
}

func runNormalize(ctx context.Context, opts *NormalizeOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(cmd, opts.RootOptions)

	lt, err := opts.load(cmd, out, path)
	if err != nil {
		return err
	}

	hash, err := ast.TreeHash(lt.Tree)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	norm, cached, err := normalizeCached(ctx, opts, lt, out)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		data, err := ast.MarshalExpr(norm)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			return out.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		out.VerboseLog("Wrote normal form to %s", opts.Output)
	}

	encoded, err := ast.Encode(norm)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return out.Success(NormalizeResult{
		Source:     lt.Tree.String(),
		NormalForm: norm.String(),
		Tree:       encoded,
		TreeHash:   hash,
		Cached:     cached,
	}, norm.String())
}

// normalizeCached normalizes lt, going through the cache when one is
// configured.
func normalizeCached(ctx context.Context, opts *NormalizeOptions, lt *LoadedTree, out *OutputFormatter) (ast.Expr, bool, error) {
	if opts.Cache == "" {
		norm, err := lt.Normalize()
		if err != nil {
			return nil, false, out.Fail(ExitCommandError, ErrCodeNormalizeFailed, err.Error(), nil)
		}
		return norm, false, nil
	}

	st, err := store.Open(opts.Cache)
	if err != nil {
		return nil, false, out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
	}
	defer st.Close()

	entry, found, err := st.Lookup(ctx, lt.Tree, lt.Namespace)
	if err != nil {
		return nil, false, out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
	}
	if found {
		out.VerboseLog("Cache hit %s (%d hits)", entry.TreeHash, entry.Hits)
		norm, err := decodeCached(entry.NormalForm, lt.Namespace)
		if err != nil {
			return nil, false, out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
		}
		return norm, true, nil
	}

	norm, err := lt.Normalize()
	if err != nil {
		return nil, false, out.Fail(ExitCommandError, ErrCodeNormalizeFailed, err.Error(), nil)
	}
	entry, _, err = st.Put(ctx, lt.Tree, norm, lt.Namespace)
	if err != nil {
		return nil, false, out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
	}
	out.VerboseLog("Cached %s as entry %d", entry.TreeHash, entry.Seq)
	return norm, false, nil
}

// decodeCached decodes canonical JSON stored in the cache.
func decodeCached(data, namespace string) (ast.Expr, error) {
	decoded, err := DecodeTree([]byte(data), FormatJSON, "<cache>", namespace)
	if err != nil {
		return nil, err
	}
	return decoded.Tree, nil
}
