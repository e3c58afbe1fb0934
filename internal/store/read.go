package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/anfir/internal/ast"
)

// Entry is one cached normal form.
type Entry struct {
	TreeHash     string
	Namespace    string
	Source       string // canonical JSON of the source tree
	NormalForm   string // canonical JSON of the normal form
	NormalHash   string
	BindingCount int
	Seq          int64
	Hits         int64
	ToolVersion  string
}

// SourceTree decodes the cached source tree.
func (e Entry) SourceTree(dec ast.Decoder) (ast.Expr, error) {
	return unmarshalTree(dec, e.Source)
}

// NormalTree decodes the cached normal form.
func (e Entry) NormalTree(dec ast.Decoder) (ast.Expr, error) {
	return unmarshalTree(dec, e.NormalForm)
}

const entryColumns = `tree_hash, namespace, source, normal_form, normal_hash,
	binding_count, seq, hits, tool_version`

// Get retrieves a single entry by tree hash and namespace.
// Returns sql.ErrNoRows if not found.
func (s *Store) Get(ctx context.Context, treeHash, namespace string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM normal_forms
		WHERE tree_hash = ? AND namespace = ?
	`, treeHash, namespace)

	return scanEntry(row)
}

// Lookup returns the cached normal form of src under namespace and counts
// the hit. found is false on a cache miss.
func (s *Store) Lookup(ctx context.Context, src ast.Expr, namespace string) (entry Entry, found bool, err error) {
	treeHash, err := ast.TreeHash(src)
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup normal form: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE normal_forms SET hits = hits + 1
		WHERE tree_hash = ? AND namespace = ?
	`, treeHash, namespace)
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup normal form: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Entry{}, false, fmt.Errorf("lookup normal form: %w", err)
	} else if n == 0 {
		return Entry{}, false, nil
	}

	entry, err = s.Get(ctx, treeHash, namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup normal form: %w", err)
	}
	return entry, true, nil
}

// List returns all entries with deterministic ordering:
// ORDER BY seq ASC, tree_hash COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the cache is empty.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM normal_forms
		ORDER BY seq ASC, tree_hash COLLATE BINARY ASC, namespace COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query normal forms: %w", err)
	}
	return collectEntries(rows)
}

// FindByNormalHash returns every entry whose normal form hashes to
// normalHash, ordered like List. Distinct sources that normalize to the
// same tree share a normal hash.
func (s *Store) FindByNormalHash(ctx context.Context, normalHash string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM normal_forms
		WHERE normal_hash = ?
		ORDER BY seq ASC, tree_hash COLLATE BINARY ASC, namespace COLLATE BINARY ASC
	`, normalHash)
	if err != nil {
		return nil, fmt.Errorf("query normal forms: %w", err)
	}
	return collectEntries(rows)
}

// GetLastSeq returns the highest seq number used in the store.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM normal_forms
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans a single row into an Entry struct.
func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	if err := row.Scan(
		&e.TreeHash, &e.Namespace, &e.Source, &e.NormalForm, &e.NormalHash,
		&e.BindingCount, &e.Seq, &e.Hits, &e.ToolVersion,
	); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan normal form: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate normal forms: %w", err)
	}
	return entries, nil
}
