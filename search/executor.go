package search

import (
	"context"
	"fmt"

	"github.com/branchbound/parsearch/pool"
)

// Executor drains a subtree's node pool, dispatching each popped node on
// its status and wiring or pruning as needed. It implements both of the
// original library's operating modes — Drain (exhaustive) and
// BoundedUnit (a fixed unit of work, for interleaving with message
// polling) — by sharing one private step method, mirroring
// AlpsSubTreeWorker::exploreSubTree and ::doOneUnitWork sharing a single
// per-node switch rather than duplicating it.
type Executor struct {
	arena  *Arena
	nodes  *pool.NodePool[*Node]
	client Client

	// RampUp is true while the owning process is still receiving its
	// initial frontier; it is passed through to every Process call.
	RampUp bool
}

// NewExecutor creates an Executor for root, owning a fresh Arena seeded
// with it, and inserts root into nodes — normally a broker's shared
// node pool, so that the broker a client reads incumbent/solution state
// from is the same pool the executor drains.
func NewExecutor(client Client, nodes *pool.NodePool[*Node], root *Node) *Executor {
	e := &Executor{
		arena:  NewArena(root),
		nodes:  nodes,
		client: client,
	}
	e.nodes.Insert(root)
	return e
}

// NewEmptyExecutor creates an Executor with no initial root, for a
// worker process that starts with no subtree of its own until the hub
// or a load-balancing donor sends it one via AddRoot.
func NewEmptyExecutor(client Client, nodes *pool.NodePool[*Node]) *Executor {
	return &Executor{
		arena:  NewEmptyArena(),
		nodes:  nodes,
		client: client,
	}
}

// AddRoot installs n as a new, independent root of this executor's
// arena: the subtree-transfer operation a worker performs on every node
// it receives from the hub or a donating peer. The node becomes the
// root of its own local subtree, since its true ancestry lives in
// another process's arena.
func (e *Executor) AddRoot(n *Node) {
	n.Index = e.arena.nextIdx()
	n.ParentIndex = noParent
	e.arena.insert(n)
	e.nodes.Insert(n)
}

// Arena exposes the executor's owning arena, e.g. so a driver can read
// back the root's final status once the search completes.
func (e *Executor) Arena() *Arena { return e.arena }

// Nodes exposes the executor's node pool, e.g. so a coordinator can pop
// nodes to ship elsewhere for load balancing.
func (e *Executor) Nodes() *pool.NodePool[*Node] { return e.nodes }

// Drain loops until the node pool is empty or ctx is cancelled.
func (e *Executor) Drain(ctx context.Context) error {
	for !e.nodes.Empty() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SeedUntil loops until the node pool reaches threshold entries or
// empties, whichever comes first — the hub's seed-phase operating mode:
// stop growing the frontier once there is enough work to distribute.
func (e *Executor) SeedUntil(ctx context.Context, threshold int) error {
	for !e.nodes.Empty() && e.nodes.Size() < threshold {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// BoundedUnit processes at most k nodes, stopping early if the pool
// empties or ctx is cancelled.
func (e *Executor) BoundedUnit(ctx context.Context, k int) error {
	for i := 0; i < k && !e.nodes.Empty(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// step pops the highest-priority node and dispatches on its status.
func (e *Executor) step(ctx context.Context) error {
	n, ok := e.nodes.Pop()
	if !ok {
		return nil
	}

	switch n.Status {
	case Pregnant:
		children, err := e.client.Branch(ctx, n)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			return NewFatalError("empty-branch", ErrEmptyBranch)
		}
		return e.wireChildren(n, children)

	case Candidate, Evaluated:
		n.Active = true
		_, err := e.client.Process(ctx, n, n.IsRoot(), e.RampUp)
		n.Active = false
		if err != nil {
			return err
		}
		switch n.Status {
		case Candidate, Evaluated, Pregnant:
			e.nodes.Insert(n)
			return nil
		case Fathomed:
			return e.prune(n)
		default:
			return NewFatalError("bad-process-status", fmt.Errorf("%w: %v", ErrBadProcessStatus, n.Status))
		}

	default:
		return NewFatalError("bad-node-status", fmt.Errorf("%w: %v", ErrBadNodeStatus, n.Status))
	}
}

// wireChildren allocates and links each child descriptor under parent,
// then inserts non-fathomed children into the pool and prunes any that
// arrive already fathomed, matching AlpsSubTreeWorker::createChildren's
// two-pass allocate-then-insert-or-prune shape.
func (e *Executor) wireChildren(parent *Node, children []ChildSpec) error {
	parent.Status = Branched
	wired := make([]*Node, 0, len(children))

	for _, spec := range children {
		if spec.Status == Branched {
			return NewFatalError("child-branched", ErrChildBranched)
		}
		child := e.client.NewNode(spec.Description)
		child.Index = e.arena.nextIdx()
		child.Depth = parent.Depth + 1
		child.ParentIndex = parent.Index
		child.Status = spec.Status
		child.Quality = spec.Quality
		child.SetPriority(spec.Quality)
		child.Active = false

		e.arena.insert(child)
		parent.addChild(child.Index)
		wired = append(wired, child)
	}

	for _, child := range wired {
		if child.Status == Fathomed {
			if err := e.prune(child); err != nil {
				return err
			}
			continue
		}
		e.nodes.Insert(child)
	}
	return nil
}

// prune removes a fathomed node from the arena and, if it was the last
// live child of its parent, recursively fathoms and prunes the parent
// too — a direct port of AlpsSubTree::removeDeadNodes.
func (e *Executor) prune(n *Node) error {
	if n.Status != Fathomed {
		return NewFatalError("not-fathomed", ErrNotFathomed)
	}

	parent := e.arena.Parent(n)
	if parent == nil {
		// n is the root: the subtree is done, but the root stays in the
		// arena, fathomed, per the completeness invariant.
		return nil
	}

	e.arena.delete(n.Index)
	parent.removeChild(n.Index)
	if parent.NumLiveChildren() == 0 {
		parent.Status = Fathomed
		return e.prune(parent)
	}
	return nil
}
