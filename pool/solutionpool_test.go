package pool

import "testing"

type testSolution struct {
	id      int
	quality float64
}

func (s testSolution) Quality() float64 { return s.quality }

func TestSolutionPoolRetainsBestWithinCapacity(t *testing.T) {
	p := NewSolutionPool[testSolution](2)

	p.Insert(testSolution{id: 1, quality: 5})
	p.Insert(testSolution{id: 2, quality: 3})
	p.Insert(testSolution{id: 3, quality: 8})

	if p.Size() != 2 {
		t.Fatalf("size = %d, want 2", p.Size())
	}
	all := p.All()
	if all[0].id != 2 || all[1].id != 1 {
		t.Fatalf("retained wrong set: %+v", all)
	}
}

func TestSolutionPoolRejectsWorseThanAllWhenFull(t *testing.T) {
	p := NewSolutionPool[testSolution](1)
	p.Insert(testSolution{id: 1, quality: 2})

	if ok := p.Insert(testSolution{id: 2, quality: 9}); ok {
		t.Fatal("worse solution should have been rejected")
	}
	best, ok := p.Best()
	if !ok || best.id != 1 {
		t.Fatalf("Best = %+v, %v; want id 1", best, ok)
	}
}

func TestSolutionPoolReplacesWorstOnBetterInsert(t *testing.T) {
	p := NewSolutionPool[testSolution](1)
	p.Insert(testSolution{id: 1, quality: 9})

	if ok := p.Insert(testSolution{id: 2, quality: 2}); !ok {
		t.Fatal("better solution should have been retained")
	}
	best, _ := p.Best()
	if best.id != 2 {
		t.Fatalf("Best.id = %d, want 2", best.id)
	}
}

func TestSolutionPoolDefaultCapacityOne(t *testing.T) {
	p := NewSolutionPool[testSolution](0)
	if p.Capacity() != 1 {
		t.Fatalf("Capacity = %d, want 1", p.Capacity())
	}
}

func TestSolutionPoolAllAscendingByQuality(t *testing.T) {
	p := NewSolutionPool[testSolution](5)
	for _, q := range []float64{4, 1, 3, 2} {
		p.Insert(testSolution{quality: q})
	}
	all := p.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].quality > all[i].quality {
			t.Fatalf("not sorted ascending: %+v", all)
		}
	}
}
