package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/gensym"
	"github.com/roach88/anfir/internal/ir"
	"github.com/roach88/anfir/internal/lower"
)

// TreeOptions holds the flags shared by commands that read a tree file.
type TreeOptions struct {
	*RootOptions
	Namespace string
}

func (o *TreeOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Namespace, "namespace", "n", DefaultNamespace, "namespace of generated names")
}

// load reads the tree at path. Load errors are reported through out and
// returned as command errors.
func (o *TreeOptions) load(cmd *cobra.Command, out *OutputFormatter, path string) (*LoadedTree, error) {
	lt, err := LoadTree(path, o.Namespace, cmd.InOrStdin())
	if err != nil {
		return nil, out.Fail(ExitCommandError, errorCode(err), err.Error(), nil)
	}
	out.VerboseLog("Loaded %s tree from %s", lt.Format, path)
	return lt, nil
}

// normalize loads and normalizes the tree at path.
func (o *TreeOptions) normalize(cmd *cobra.Command, out *OutputFormatter, path string) (*LoadedTree, ast.Expr, error) {
	lt, err := o.load(cmd, out, path)
	if err != nil {
		return nil, nil, err
	}
	norm, err := lt.Normalize()
	if err != nil {
		return nil, nil, out.Fail(ExitCommandError, ErrCodeNormalizeFailed, err.Error(), nil)
	}
	return lt, norm, nil
}

// lowerTree lowers a normal form. A root that is not a lambda is wrapped in
// a lambda over params; its other free symbols become builtins.
func lowerTree(lt *LoadedTree, norm ast.Expr, params ...string) (*ir.Arena, *ir.Graph, error) {
	lam, ok := norm.(*ast.Lambda)
	if !ok {
		lam = &ast.Lambda{Body: norm, Gen: gensym.New(lt.Namespace + "/main")}
		for _, p := range params {
			lam.Args = append(lam.Args, ast.Sym(p))
		}
	}
	arena := ir.NewArena()
	g, err := lower.Lambda(arena, lam)
	if err != nil {
		return nil, nil, err
	}
	return arena, g, nil
}
