package app

import (
	"math"
	"testing"

	"evosweep/domain/pareto"
)

func TestPartitionSortsFront(t *testing.T) {
	svc := NewParetoService(nil)
	p, err := svc.Partition([]pareto.Solution{{F1: 3, F2: 5}, {F1: 1, F2: 9}, {F1: 2, F2: 10}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.NonDominated) != 2 {
		t.Fatalf("expected a 2-point front, got %d", len(p.NonDominated))
	}
	if p.NonDominated[0].F1 > p.NonDominated[1].F1 {
		t.Fatalf("front must be sorted by ascending F1: %v", p.NonDominated)
	}
}

func TestPartitionEmpty(t *testing.T) {
	svc := NewParetoService(nil)
	if _, err := svc.Partition(nil); err == nil {
		t.Fatalf("empty solution set must be an error")
	}
}

func TestMergeAndPartitionCrossReplicateDominance(t *testing.T) {
	svc := NewParetoService(nil)
	// (5,5) survives replicate one alone but is dominated by replicate two.
	rep1 := []pareto.Solution{{F1: 5, F2: 5}}
	rep2 := []pareto.Solution{{F1: 4, F2: 6}}
	p, err := svc.MergeAndPartition(rep1, rep2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.NonDominated) != 1 || p.NonDominated[0] != (pareto.Solution{F1: 4, F2: 6}) {
		t.Fatalf("pooled extraction must keep only (4,6), got %v", p.NonDominated)
	}
	if len(p.Dominated) != 1 {
		t.Fatalf("(5,5) must be dominated after pooling, got %v", p.Dominated)
	}
}

func TestRankByHypervolume(t *testing.T) {
	svc := NewParetoService(nil)
	pooled := map[string][]pareto.Solution{
		"wide":   {{F1: 1, F2: 9}, {F1: 8, F2: 1}},
		"narrow": {{F1: 4, F2: 4}},
	}
	ref := pareto.Solution{F1: 10, F2: 0}

	rankings, fronts, err := svc.RankByHypervolume(pooled, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rankings) != 2 || len(fronts) != 2 {
		t.Fatalf("expected 2 ranked configurations, got %d/%d", len(rankings), len(fronts))
	}
	if rankings[0].Config != "wide" || rankings[0].Rank != 1 {
		t.Fatalf("wide front must rank first, got %+v", rankings[0])
	}
	// wide: (1,9) covers (10-1)*9 = 81 and (8,1) adds nothing below it.
	// narrow: (10-4)*4 = 24.
	if math.Abs(rankings[0].Hypervolume-81) > 1e-12 {
		t.Fatalf("wide hypervolume wrong: %g", rankings[0].Hypervolume)
	}
	if math.Abs(rankings[1].Hypervolume-24) > 1e-12 {
		t.Fatalf("narrow hypervolume wrong: %g", rankings[1].Hypervolume)
	}
}

func TestRankByHypervolumeTieBreaksByName(t *testing.T) {
	svc := NewParetoService(nil)
	pooled := map[string][]pareto.Solution{
		"b": {{F1: 2, F2: 2}},
		"a": {{F1: 2, F2: 2}},
	}
	rankings, _, err := svc.RankByHypervolume(pooled, pareto.Solution{F1: 10, F2: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rankings[0].Config != "a" || rankings[1].Config != "b" {
		t.Fatalf("equal hypervolumes must rank lexicographically: %+v", rankings)
	}
}

func TestRankByHypervolumeEmpty(t *testing.T) {
	svc := NewParetoService(nil)
	if _, _, err := svc.RankByHypervolume(nil, pareto.Solution{}); err == nil {
		t.Fatalf("empty configuration map must be an error")
	}
}
