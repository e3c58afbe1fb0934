package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/anfir/internal/ast"
)

// NormalizeFunc recomputes the normal form of a cached source. It receives
// the stored canonical JSON and the namespace the entry was cached under.
type NormalizeFunc func(source []byte, namespace string) (ast.Expr, error)

// Mismatch is an entry whose recomputed normal form differs from the cache.
type Mismatch struct {
	Entry Entry
	Got   string // canonical JSON of the recomputed normal form
	Err   error  // set when recomputing failed
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Total      int
	Matched    int
	Mismatches []Mismatch
}

// OK reports whether every entry matched.
func (r ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-normalizes every cached source in List order and compares the
// result with the stored normal form. Failures to recompute are reported as
// mismatches; only store errors and cancellation abort the replay.
func (s *Store) Replay(ctx context.Context, normalize NormalizeFunc) (ReplayResult, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	result := ReplayResult{Total: len(entries), Mismatches: []Mismatch{}}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("replay: %w", err)
		}

		norm, err := normalize([]byte(e.Source), e.Namespace)
		if err != nil {
			result.Mismatches = append(result.Mismatches, Mismatch{Entry: e, Err: err})
			continue
		}
		got, err := marshalTree(norm)
		if err != nil {
			result.Mismatches = append(result.Mismatches, Mismatch{Entry: e, Err: err})
			continue
		}
		if got != e.NormalForm {
			slog.Debug("replay mismatch", "tree_hash", e.TreeHash, "namespace", e.Namespace)
			result.Mismatches = append(result.Mismatches, Mismatch{Entry: e, Got: got})
			continue
		}
		result.Matched++
	}

	slog.Debug("replayed normal forms",
		"total", result.Total,
		"matched", result.Matched,
		"mismatched", len(result.Mismatches),
	)
	return result, nil
}
