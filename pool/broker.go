package pool

import (
	"math"
	"sync"

	"github.com/branchbound/parsearch/wire"
)

// Broker is the single handle a client's Process/Branch implementation
// uses to reach shared search state: the local node pool, the solution
// archive, the knowledge registry for decoding, and the current
// incumbent bound. It is the Go analogue of the original library's
// knowledge broker, which kept one pool per knowledge kind behind a
// single object instead of handing out each pool independently.
//
// Broker is constructed once per subtree executor and passed by
// reference, never a package-level singleton, per the "global mutable
// state becomes an explicit context" design decision.
type Broker[N Prioritized, S Qualified] struct {
	Nodes     *NodePool[N]
	Solutions *SolutionPool[S]
	Registry  *wire.Registry

	mu        sync.RWMutex
	incumbent float64
}

// NewBroker creates a Broker wired to the given node pool, solution
// pool, and registry, with the incumbent initialized to +Inf (no
// solution known yet).
func NewBroker[N Prioritized, S Qualified](nodes *NodePool[N], solutions *SolutionPool[S], registry *wire.Registry) *Broker[N, S] {
	return &Broker[N, S]{
		Nodes:     nodes,
		Solutions: solutions,
		Registry:  registry,
		incumbent: math.Inf(1),
	}
}

// Incumbent returns the current best-known solution quality, or +Inf if
// no solution has been found yet.
func (b *Broker[N, S]) Incumbent() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.incumbent
}

// AddSolution inserts solution into the archive and, if it improved on
// the prior incumbent, updates the tracked incumbent value. Returns
// whether the solution was retained and whether it is a new incumbent.
func (b *Broker[N, S]) AddSolution(solution S) (retained, improved bool) {
	retained = b.Solutions.Insert(solution)
	if !retained {
		return false, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if solution.Quality() < b.incumbent {
		b.incumbent = solution.Quality()
		return true, true
	}
	return true, false
}

// SetIncumbent installs an externally learned incumbent value (for
// example one received via an INCUMBENT_UPDATE message), without
// inserting any solution into the local archive.
func (b *Broker[N, S]) SetIncumbent(quality float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if quality < b.incumbent {
		b.incumbent = quality
	}
}
