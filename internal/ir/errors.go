package ir

import (
	"errors"
	"fmt"
	"strings"
)

// GraphError represents a structural error detected by a graph operation.
//
// All graph errors are programming errors in the calling pass. They are
// reported immediately and never repaired.
type GraphError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Node is the node the operation was applied to, if any.
	Node NodeID

	// Path lists the nodes of a detected cycle, first node repeated last.
	Path []NodeID
}

// ErrorCode categorizes graph errors.
type ErrorCode string

const (
	// ErrCodeConsistency indicates a link onto an occupied role or an unlink
	// that does not match the recorded edge.
	ErrCodeConsistency ErrorCode = "INCONSISTENT_EDGE"

	// ErrCodeCycle indicates the graph reachable from an output is cyclic.
	ErrCodeCycle ErrorCode = "CYCLE_DETECTED"

	// ErrCodeRoleRange indicates a role that is neither FN nor IN(i >= 0).
	ErrCodeRoleRange ErrorCode = "ROLE_OUT_OF_RANGE"

	// ErrCodeInvalidNode indicates a handle that does not name a node.
	ErrCodeInvalidNode ErrorCode = "INVALID_NODE"
)

// Error implements the error interface.
func (e *GraphError) Error() string {
	if len(e.Path) > 0 {
		parts := make([]string, len(e.Path))
		for i, id := range e.Path {
			parts[i] = id.String()
		}
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, strings.Join(parts, " -> "))
	}
	if e.Node != NoNode {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsCycleError returns true if the error is a cycle detection error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool { return hasCode(err, ErrCodeCycle) }

// IsConsistencyError returns true if the error is an edge consistency error.
func IsConsistencyError(err error) bool { return hasCode(err, ErrCodeConsistency) }

// IsRoleError returns true if the error is an invalid role error.
func IsRoleError(err error) bool { return hasCode(err, ErrCodeRoleRange) }

// IsInvalidNode returns true if the error is an invalid handle error.
func IsInvalidNode(err error) bool { return hasCode(err, ErrCodeInvalidNode) }

func newConsistencyError(node NodeID, format string, args ...any) *GraphError {
	return &GraphError{Code: ErrCodeConsistency, Message: fmt.Sprintf(format, args...), Node: node}
}

func newInvalidNodeError(node NodeID) *GraphError {
	return &GraphError{Code: ErrCodeInvalidNode, Message: "no such node", Node: node}
}

func newRoleError(node NodeID, role Role) *GraphError {
	return &GraphError{Code: ErrCodeRoleRange, Message: fmt.Sprintf("invalid role %s", role), Node: node}
}
