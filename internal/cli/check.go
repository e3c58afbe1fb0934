package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/anfir/internal/anf"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	TreeOptions
	Normalized bool // check the normal form instead of the source
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Tree       string          `json:"tree"`
	Flat       bool            `json:"flat"`
	Violations []anf.Violation `json:"violations"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{TreeOptions: TreeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "check <tree-file>",
		Short: "Report A-normal form violations",
		Long: `Check a tree against the flat A-normal form rules.

Exits 1 when violations are found. With --normalized the tree is normalized
first, which should always yield no violations.

Examples:
  anfir check tree.json
  anfir check tree.yaml --normalized --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Normalized, "normalized", false, "check the normal form")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	lt, err := opts.load(cmd, out, path)
	if err != nil {
		return err
	}
	tree := lt.Tree
	if opts.Normalized {
		if tree, err = lt.Normalize(); err != nil {
			return out.Fail(ExitCommandError, ErrCodeNormalizeFailed, err.Error(), nil)
		}
	}

	violations := anf.Check(tree)
	if violations == nil {
		violations = []anf.Violation{}
	}
	result := CheckResult{Tree: tree.String(), Flat: len(violations) == 0, Violations: violations}

	if len(violations) == 0 {
		return out.Success(result, "OK: tree is in flat A-normal form")
	}

	message := fmt.Sprintf("%d violation(s)", len(violations))
	if out.IsJSON() {
		_ = out.Error(violations[0].Code, message, result)
	} else {
		var b strings.Builder
		b.WriteString(message + ":")
		for _, v := range violations {
			fmt.Fprintf(&b, "\n  %s", v.Error())
		}
		_ = out.Success(nil, b.String())
	}
	return NewExitError(ExitFailure, message)
}
