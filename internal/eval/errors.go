package eval

import (
	"errors"
	"fmt"
)

// EvalError represents an error detected while evaluating.
type EvalError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Op is the builtin or construct that failed, if known.
	Op string
}

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeUnbound indicates a symbol with no binding and no builtin.
	ErrCodeUnbound ErrorCode = "UNBOUND_SYMBOL"

	// ErrCodeType indicates an operand of the wrong type.
	ErrCodeType ErrorCode = "TYPE_MISMATCH"

	// ErrCodeArity indicates a call with the wrong number of arguments.
	ErrCodeArity ErrorCode = "ARITY_MISMATCH"

	// ErrCodeDivZero indicates an integer division or modulo by zero.
	ErrCodeDivZero ErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeNotCallable indicates a call of a non-function value.
	ErrCodeNotCallable ErrorCode = "NOT_CALLABLE"

	// ErrCodeIndex indicates a tuple index out of range.
	ErrCodeIndex ErrorCode = "INDEX_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is an *EvalError with code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

func newError(code ErrorCode, op, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...), Op: op}
}
