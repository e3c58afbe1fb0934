package anf

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedNodeError reports a node the passes do not handle. The tree
// grammar is sealed, so in practice this means a nil expression somewhere in
// the tree.
type UnsupportedNodeError struct {
	Pass string
	Node string
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("%s: unsupported node %s", e.Pass, e.Node)
}

// IsUnsupportedNode reports whether err is an UnsupportedNodeError.
func IsUnsupportedNode(err error) bool {
	var ue *UnsupportedNodeError
	return errors.As(err, &ue)
}

// CheckError carries every violation Check found.
type CheckError struct {
	Violations []Violation
}

func (e *CheckError) Error() string {
	if len(e.Violations) == 1 {
		return "tree is not in A-normal form: " + e.Violations[0].Error()
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("tree is not in A-normal form (%d violations): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}
