package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is matched by every TimeoutError
	ErrTimeout = errors.New("timed out")

	// ErrNoElement is returned by engines when a selector resolves to nothing
	ErrNoElement = errors.New("no element matches selector")
)

// VisibilityState is the state a wait polls for
type VisibilityState string

const (
	StateVisible   VisibilityState = "visible"
	StateInvisible VisibilityState = "invisible"
)

// TimeoutError is raised when a polled condition never held within its budget.
type TimeoutError struct {
	Selector string
	State    VisibilityState
	Timeout  time.Duration
	// Last is the last query error seen while polling, if any.
	Last error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("Wait for %s %s: timed out after %s", e.Selector, e.State, e.Timeout)
	if e.Last != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.Last)
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// NoElementError - wraps ErrNoElement with the selector that missed
func NoElementError(selector string) error {
	return fmt.Errorf("%w: %s", ErrNoElement, selector)
}
