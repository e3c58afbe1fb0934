package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content identity. The version suffix leaves room for
// changing the encoding later.
const (
	DomainTree       = "anfir/tree/v1"
	DomainNormalForm = "anfir/normal-form/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TreeHash returns the content identity of a tree.
func TreeHash(e Expr) (string, error) {
	return HashWithDomain(DomainTree, e)
}

// HashWithDomain hashes the canonical encoding of e under domain.
func HashWithDomain(domain string, e Expr) (string, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("hash tree: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}
