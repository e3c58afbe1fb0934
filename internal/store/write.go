package store

import (
	"context"
	"fmt"

	"github.com/roach88/anfir/internal/ast"
)

// Put caches norm as the normal form of src under namespace.
// Uses ON CONFLICT DO NOTHING for idempotency: an existing entry for the
// same tree and namespace is kept and returned with inserted = false.
//
// The entry's seq is assigned from the store's logical clock inside the
// insert statement.
func (s *Store) Put(ctx context.Context, src, norm ast.Expr, namespace string) (entry Entry, inserted bool, err error) {
	source, err := marshalTree(src)
	if err != nil {
		return Entry{}, false, fmt.Errorf("write normal form: %w", err)
	}
	normal, err := marshalTree(norm)
	if err != nil {
		return Entry{}, false, fmt.Errorf("write normal form: %w", err)
	}
	treeHash, err := ast.TreeHash(src)
	if err != nil {
		return Entry{}, false, fmt.Errorf("write normal form: %w", err)
	}
	normalHash, err := ast.HashWithDomain(ast.DomainNormalForm, norm)
	if err != nil {
		return Entry{}, false, fmt.Errorf("write normal form: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO normal_forms
		(tree_hash, namespace, source, normal_form, normal_hash, binding_count, seq, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM normal_forms), ?)
		ON CONFLICT(tree_hash, namespace) DO NOTHING
	`,
		treeHash,
		namespace,
		source,
		normal,
		normalHash,
		countBindings(norm),
		ToolVersion,
	)
	if err != nil {
		return Entry{}, false, fmt.Errorf("write normal form: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return Entry{}, false, fmt.Errorf("check insert result: %w", err)
	}

	entry, err = s.Get(ctx, treeHash, namespace)
	if err != nil {
		return Entry{}, false, fmt.Errorf("read back normal form: %w", err)
	}
	return entry, rows > 0, nil
}

// Delete removes one entry. Deleting a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, treeHash, namespace string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM normal_forms WHERE tree_hash = ? AND namespace = ?
	`, treeHash, namespace)
	if err != nil {
		return fmt.Errorf("delete normal form: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM normal_forms`)
	if err != nil {
		return 0, fmt.Errorf("clear normal forms: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear normal forms: %w", err)
	}
	return n, nil
}
