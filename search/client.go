package search

import (
	"context"

	"github.com/branchbound/parsearch/wire"
)

// ChildSpec is one entry of the ordered list a client's Branch call
// returns: a subproblem description, the child's initial status, and
// its quality (which also seeds its priority).
type ChildSpec struct {
	Description Description
	Status      Status
	Quality     float64
}

// Client is the capability contract a concrete branch-and-bound problem
// implements; the executor never knows the client's concrete node kind,
// only this interface.
type Client interface {
	// Process evaluates an active node. isRoot is true only for the
	// subtree's root; rampUp is true while the hub is still seeding the
	// initial frontier. On return, n.Status must be one of Candidate,
	// Evaluated, Pregnant, Fathomed.
	Process(ctx context.Context, n *Node, isRoot, rampUp bool) (ProcessStatus, error)

	// Branch expands a pregnant node into an ordered list of children.
	// Precondition: n.Status == Pregnant. Returning an empty slice is a
	// client bug (ErrEmptyBranch).
	Branch(ctx context.Context, n *Node) ([]ChildSpec, error)

	// NewNode constructs a blank node bound to desc, used by the
	// executor when wiring a child produced by Branch.
	NewNode(desc Description) *Node

	// Encode serializes n's identity fields and description into buf.
	Encode(n *Node, buf *wire.Buffer) error

	// Decode reconstructs a node (identity and description) from buf.
	Decode(buf *wire.Buffer) (*Node, error)
}
