package testutil

import (
	"github.com/roach88/anfir/internal/gensym"
)

// DefaultNamespace is the namespace of generators created by NewNamer("").
const DefaultNamespace = "test"

// NewNamer returns a deterministic generator for tests.
//
// Unlike gensym.New, an empty namespace does not fall back to a UUID, so the
// same test produces byte-identical names on every run.
func NewNamer(namespace string) *gensym.Generator {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return gensym.New(namespace)
}
