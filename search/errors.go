package search

import "errors"

// These sentinel errors cover the fatal conditions a subtree executor can
// encounter. All of them indicate client misuse or a corrupted wire
// payload, never a transient environmental failure, so callers should
// treat them as unrecoverable for the owning process.
var (
	// ErrBadNodeStatus is returned when a popped node's status is
	// Branched or any value outside the dispatchable set.
	ErrBadNodeStatus = errors.New("search: node has bad status for dispatch")
	// ErrEmptyBranch is returned when a client's Branch call returns no
	// child descriptors for a pregnant node.
	ErrEmptyBranch = errors.New("search: branch returned no children")
	// ErrChildBranched is returned when a child descriptor carries
	// Branched status, which a child can never legitimately start in.
	ErrChildBranched = errors.New("search: child descriptor has branched status")
	// ErrBadProcessStatus is returned when Process leaves a node in a
	// status outside {Candidate, Evaluated, Pregnant, Fathomed}.
	ErrBadProcessStatus = errors.New("search: process left node in invalid status")
	// ErrNotFathomed is returned by prune if asked to remove a node
	// that is not fathomed.
	ErrNotFathomed = errors.New("search: prune called on non-fathomed node")
)

// FatalError wraps an unrecoverable condition with a short machine-
// readable code, so a process entry point can map it to a consistent
// diagnostic and exit status without inspecting error chains by hand.
type FatalError struct {
	Code  string
	Cause error
}

func (e *FatalError) Error() string {
	if e.Cause == nil {
		return "search: fatal: " + e.Code
	}
	return "search: fatal: " + e.Code + ": " + e.Cause.Error()
}

func (e *FatalError) Unwrap() error { return e.Cause }

// NewFatalError builds a FatalError for the given code and underlying
// cause.
func NewFatalError(code string, cause error) *FatalError {
	return &FatalError{Code: code, Cause: cause}
}
