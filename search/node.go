package search

import "github.com/bits-and-blooms/bitset"

// Description is the opaque, client-owned subproblem payload a node
// carries: variable bounds, branching decisions, a warm-start hint, or
// whatever else the client's concrete problem needs to resume work.
type Description any

// noParent marks a node with no parent link, i.e. the subtree root.
const noParent = -1

// Node is one vertex of a dynamically generated search tree. Its parent
// link is a weak back-reference (an index into the owning Arena, never
// a pointer); its children are exclusively owned and tracked both as a
// slice of arena indices (insertion order, stable once written by
// wireChildren) and a bitset marking which of those slots are still
// live, so pruning can clear a slot without renumbering the slice.
type Node struct {
	Index       int
	Depth       int
	ParentIndex int
	Children    []int
	liveChild   *bitset.BitSet

	Status      Status
	Quality     float64
	Active      bool
	Description Description

	priority float64
}

// Priority returns the node's placement key in the node pool, by
// default equal to Quality. Implements pool.Prioritized.
func (n *Node) Priority() float64 { return n.priority }

// SetPriority updates the node's node-pool placement key.
func (n *Node) SetPriority(p float64) { n.priority = p }

// NewRoot creates a subtree root node, depth 0, no parent, with the
// given initial quality (also its starting pool priority). A client's
// Driver.NewRoot hook uses this to build the node the hub seeds from.
func NewRoot(desc Description, quality float64) *Node {
	return &Node{
		Index:       0,
		Depth:       0,
		ParentIndex: noParent,
		Status:      Candidate,
		Quality:     quality,
		priority:    quality,
		Description: desc,
	}
}

// IsRoot reports whether this node has no parent.
func (n *Node) IsRoot() bool { return n.ParentIndex == noParent }

// NumLiveChildren returns the count of children not yet pruned.
func (n *Node) NumLiveChildren() int {
	if n.liveChild == nil {
		return 0
	}
	return int(n.liveChild.Count())
}

// addChild records a newly wired child at arena index idx, marking its
// slot live.
func (n *Node) addChild(idx int) {
	slot := uint(len(n.Children))
	n.Children = append(n.Children, idx)
	if n.liveChild == nil {
		n.liveChild = bitset.New(slot + 1)
	}
	n.liveChild.Set(slot)
}

// removeChild clears the live bit for the slot holding arena index idx.
// Reports whether a matching live slot was found.
func (n *Node) removeChild(idx int) bool {
	if n.liveChild == nil {
		return false
	}
	for slot, child := range n.Children {
		if child == idx && n.liveChild.Test(uint(slot)) {
			n.liveChild.Clear(uint(slot))
			return true
		}
	}
	return false
}
