package search

// Status is a node's position in its life cycle. The zero value is
// Candidate, matching a freshly created node's initial status.
type Status int

const (
	// Candidate is a node awaiting its first process call.
	Candidate Status = iota
	// Evaluated is a node that has been processed at least once and may
	// be processed again with updated information.
	Evaluated
	// Pregnant is a node whose process call decided it must be branched.
	Pregnant
	// Branched is a node that has produced children and is no longer
	// itself processed; it is never placed in the node pool.
	Branched
	// Fathomed is a node that cannot yield a better solution and is
	// eligible for pruning.
	Fathomed
)

func (s Status) String() string {
	switch s {
	case Candidate:
		return "candidate"
	case Evaluated:
		return "evaluated"
	case Pregnant:
		return "pregnant"
	case Branched:
		return "branched"
	case Fathomed:
		return "fathomed"
	default:
		return "unknown"
	}
}

// inPool reports whether a node with this status belongs in the node
// pool, per the data-model invariant that only candidate/evaluated/
// pregnant nodes are pool members.
func (s Status) inPool() bool {
	return s == Candidate || s == Evaluated || s == Pregnant
}

// ProcessStatus is the result code a client's Process call returns.
type ProcessStatus int

const (
	// NoChange indicates process ran without finding a better solution.
	NoChange ProcessStatus = iota
	// BetterSolutionFound indicates process added a new incumbent
	// candidate to the solution pool during this call.
	BetterSolutionFound
)
