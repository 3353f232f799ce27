package coordinator

import (
	"math"

	"github.com/branchbound/parsearch/pool"
	"github.com/branchbound/parsearch/search"
)

// Load estimates a worker's residual work as
// Σ|incumbent − node.Quality|^rho over its local node pool, penalizing
// nodes far from the current incumbent more heavily than raw node
// count would.
func Load(nodes *pool.NodePool[*search.Node], incumbent, rho float64) float64 {
	var sum float64
	for _, n := range nodes.Snapshot() {
		sum += math.Pow(math.Abs(incumbent-n.Quality), rho)
	}
	return sum
}
