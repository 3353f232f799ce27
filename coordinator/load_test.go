package coordinator_test

import (
	"math"
	"testing"

	"github.com/branchbound/parsearch/coordinator"
	"github.com/branchbound/parsearch/pool"
	"github.com/branchbound/parsearch/search"
)

func TestLoadSumsAbsDeviationFromIncumbentToRho(t *testing.T) {
	nodes := pool.NewNodePool[*search.Node]()
	for _, q := range []float64{1, 2, 5} {
		nodes.Insert(search.NewRoot(nil, q))
	}

	const incumbent, rho = 3.0, 2.0
	got := coordinator.Load(nodes, incumbent, rho)
	want := math.Pow(2, 2) + math.Pow(1, 2) + math.Pow(2, 2) // |3-1|^2 + |3-2|^2 + |3-5|^2
	if got != want {
		t.Fatalf("Load = %v, want %v", got, want)
	}
}

func TestLoadOfEmptyPoolIsZero(t *testing.T) {
	nodes := pool.NewNodePool[*search.Node]()
	if got := coordinator.Load(nodes, math.Inf(1), 2); got != 0 {
		t.Fatalf("Load of empty pool = %v, want 0", got)
	}
}
