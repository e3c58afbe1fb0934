package eval

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps bounds the number of calls of one evaluation.
const DefaultMaxSteps = 100000

// quota counts calls against a limit. One quota serves one top-level
// evaluation.
type quota struct {
	maxSteps int
	current  int
}

func newQuota(maxSteps int) *quota {
	return &quota{maxSteps: maxSteps}
}

// check increments the step counter and fails once the limit is passed.
func (q *quota) check() error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{Steps: q.current, Limit: q.maxSteps}
	}
	return nil
}

// StepsExceededError indicates an evaluation made more calls than allowed.
type StepsExceededError struct {
	Steps int // Number of calls made
	Limit int // Maximum allowed calls
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("evaluation exceeded max steps quota: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
