package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/anfir/internal/store"
)

// CacheOptions holds flags for the cache commands.
type CacheOptions struct {
	*RootOptions
	DB string // cache database path
}

// CacheEntry is the JSON view of a cached normal form.
type CacheEntry struct {
	Seq         int64  `json:"seq"`
	TreeHash    string `json:"tree_hash"`
	Namespace   string `json:"namespace"`
	NormalHash  string `json:"normal_hash"`
	Bindings    int    `json:"bindings"`
	Hits        int64  `json:"hits"`
	ToolVersion string `json:"tool_version"`
	NormalForm  string `json:"normal_form,omitempty"`
}

// ReplayMismatch is the JSON view of a replay mismatch.
type ReplayMismatch struct {
	TreeHash  string `json:"tree_hash"`
	Namespace string `json:"namespace"`
	Expected  string `json:"expected"`
	Got       string `json:"got,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReplaySummary is the JSON payload of cache replay.
type ReplaySummary struct {
	Total      int              `json:"total"`
	Matched    int              `json:"matched"`
	Mismatches []ReplayMismatch `json:"mismatches"`
}

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the normal-form cache",
		Long: `Inspect the SQLite normal-form cache written by "anfir normalize --cache".

Examples:
  anfir cache list --db anfir.db
  anfir cache show <tree-hash> --namespace anfir
  anfir cache replay
  anfir cache clear`,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "anfir.db", "cache database path")

	cmd.AddCommand(newCacheListCommand(opts))
	cmd.AddCommand(newCacheShowCommand(opts))
	cmd.AddCommand(newCacheReplayCommand(opts))
	cmd.AddCommand(newCacheClearCommand(opts))

	return cmd
}

func newCacheListCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List cached normal forms in insertion order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, out *OutputFormatter, st *store.Store) error {
				entries, err := st.List(ctx)
				if err != nil {
					return out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
				}
				views := make([]CacheEntry, len(entries))
				var b strings.Builder
				for i, e := range entries {
					views[i] = cacheEntry(e)
					fmt.Fprintf(&b, "%d %s %s bindings=%d hits=%d\n", e.Seq, shortHash(e.TreeHash), e.Namespace, e.BindingCount, e.Hits)
				}
				fmt.Fprintf(&b, "%d entries", len(entries))
				return out.Success(views, b.String())
			})
		},
	}
}

func newCacheShowCommand(opts *CacheOptions) *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:           "show <tree-hash>",
		Short:         "Show a cached normal form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, out *OutputFormatter, st *store.Store) error {
				e, err := st.Get(ctx, args[0], namespace)
				if errors.Is(err, sql.ErrNoRows) {
					return out.Fail(ExitCommandError, ErrCodeNotFound,
						fmt.Sprintf("no cache entry for %s in namespace %s", args[0], namespace), nil)
				}
				if err != nil {
					return out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
				}
				norm, err := decodeCached(e.NormalForm, e.Namespace)
				if err != nil {
					return out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
				}
				view := cacheEntry(e)
				view.NormalForm = norm.String()
				return out.Success(view, view.NormalForm)
			})
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", DefaultNamespace, "namespace the entry was cached under")
	return cmd
}

func newCacheReplayCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Re-normalize every cached source and compare",
		Long: `Re-normalize every cached source tree and compare the result with the
cached normal form. Exits 1 when any entry differs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, out *OutputFormatter, st *store.Store) error {
				result, err := st.Replay(ctx, normalizeSource)
				if err != nil {
					return out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
				}

				summary := ReplaySummary{Total: result.Total, Matched: result.Matched, Mismatches: []ReplayMismatch{}}
				var b strings.Builder
				for _, m := range result.Mismatches {
					rm := ReplayMismatch{
						TreeHash:  m.Entry.TreeHash,
						Namespace: m.Entry.Namespace,
						Expected:  m.Entry.NormalForm,
						Got:       m.Got,
					}
					if m.Err != nil {
						rm.Error = m.Err.Error()
					}
					summary.Mismatches = append(summary.Mismatches, rm)
					fmt.Fprintf(&b, "✗ %s %s\n", shortHash(rm.TreeHash), rm.Namespace)
				}
				fmt.Fprintf(&b, "Replay: %d matched, %d mismatched, %d total", result.Matched, len(result.Mismatches), result.Total)

				if result.OK() {
					return out.Success(summary, b.String())
				}
				message := fmt.Sprintf("%d cache entries differ", len(result.Mismatches))
				if out.IsJSON() {
					_ = out.Error(ErrCodeCacheFailed, message, summary)
				} else {
					_ = out.Success(nil, b.String())
				}
				return NewExitError(ExitFailure, message)
			})
		},
	}
}

func newCacheClearCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Delete every cached normal form",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, out *OutputFormatter, st *store.Store) error {
				n, err := st.Clear(ctx)
				if err != nil {
					return out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
				}
				return out.Success(map[string]int64{"deleted": n}, fmt.Sprintf("Deleted %d entries", n))
			})
		},
	}
}

// withStore opens the cache database for the duration of fn.
func withStore(cmd *cobra.Command, opts *CacheOptions, fn func(context.Context, *OutputFormatter, *store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(cmd, opts.RootOptions)

	st, err := store.Open(opts.DB)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeCacheFailed, err.Error(), nil)
	}
	defer st.Close()
	out.VerboseLog("Opened cache %s", opts.DB)

	return fn(ctx, out, st)
}

func cacheEntry(e store.Entry) CacheEntry {
	return CacheEntry{
		Seq:         e.Seq,
		TreeHash:    e.TreeHash,
		Namespace:   e.Namespace,
		NormalHash:  e.NormalHash,
		Bindings:    e.BindingCount,
		Hits:        e.Hits,
		ToolVersion: e.ToolVersion,
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
