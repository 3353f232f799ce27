package search

// Arena owns every live Node of one subtree, keyed by its subtree-local
// index. This is the Go stand-in for the original library's raw owning
// pointers: a parent link is just an index looked up here, and deleting
// a node during pruning is simply removing it from this map.
type Arena struct {
	nodes     map[int]*Node
	nextIndex int
}

// NewArena creates an Arena seeded with root at index 0.
func NewArena(root *Node) *Arena {
	a := &Arena{nodes: make(map[int]*Node), nextIndex: 1}
	a.nodes[root.Index] = root
	return a
}

// NewEmptyArena creates an Arena holding no nodes yet, for a process
// that grows its forest of subtrees only as roots are added later.
func NewEmptyArena() *Arena {
	return &Arena{nodes: make(map[int]*Node)}
}

// Get returns the node at idx, or nil if it has been pruned or never
// existed.
func (a *Arena) Get(idx int) *Node {
	return a.nodes[idx]
}

// Parent returns the parent of n, or nil if n is the root.
func (a *Arena) Parent(n *Node) *Node {
	if n.IsRoot() {
		return nil
	}
	return a.Get(n.ParentIndex)
}

// nextIdx returns the next monotonically increasing index and advances
// the counter, post-increment as the original createChildren does.
func (a *Arena) nextIdx() int {
	idx := a.nextIndex
	a.nextIndex++
	return idx
}

// insert registers a newly wired node in the arena.
func (a *Arena) insert(n *Node) {
	a.nodes[n.Index] = n
}

// delete removes a node from the arena, making it unreachable.
func (a *Arena) delete(idx int) {
	delete(a.nodes, idx)
}

// Len returns the number of live nodes currently owned by the arena.
func (a *Arena) Len() int { return len(a.nodes) }
