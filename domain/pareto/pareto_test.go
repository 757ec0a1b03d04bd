package pareto

import (
	"math"
	"sort"
	"testing"
)

func TestDominates(t *testing.T) {
	a := Solution{F1: 1, F2: 10}
	b := Solution{F1: 2, F2: 9}
	c := Solution{F1: 3, F2: 5}

	if !Dominates(a, c) {
		t.Fatalf("expected (1,10) to dominate (3,5)")
	}
	if !Dominates(b, c) {
		t.Fatalf("expected (2,9) to dominate (3,5)")
	}
	// Lower F1 and higher F2: better in both objectives.
	if !Dominates(a, b) {
		t.Fatalf("expected (1,10) to dominate (2,9)")
	}

	p := Solution{F1: 1, F2: 9}
	q := Solution{F1: 2, F2: 10}
	if Dominates(p, q) || Dominates(q, p) {
		t.Fatalf("(1,9) and (2,10) trade off the objectives and must be mutually non-dominating")
	}
}

func TestDominatesIrreflexive(t *testing.T) {
	points := []Solution{{1, 10}, {0, 0}, {-3, 7}, {2.5, 2.5}}
	for _, p := range points {
		if Dominates(p, p) {
			t.Fatalf("solution %v must not dominate itself", p)
		}
	}
}

func TestDominatesAsymmetric(t *testing.T) {
	pairs := [][2]Solution{
		{{1, 10}, {3, 5}},
		{{0, 1}, {0, 0}},
		{{1, 5}, {2, 5}},
	}
	for _, pair := range pairs {
		if Dominates(pair[0], pair[1]) && Dominates(pair[1], pair[0]) {
			t.Fatalf("dominance must be asymmetric for %v, %v", pair[0], pair[1])
		}
	}
}

func TestDominatesEqualPoints(t *testing.T) {
	p := Solution{F1: 2, F2: 9}
	q := Solution{F1: 2, F2: 9}
	if Dominates(p, q) || Dominates(q, p) {
		t.Fatalf("identical points must never dominate each other")
	}
}

func TestExtractPartition(t *testing.T) {
	input := []Solution{{1, 9}, {2, 10}, {3, 5}, {2, 10}}
	p := Extract(input)

	if len(p.NonDominated) != 3 {
		t.Fatalf("expected 3 non-dominated solutions, got %d", len(p.NonDominated))
	}
	if len(p.Dominated) != 1 {
		t.Fatalf("expected 1 dominated solution, got %d", len(p.Dominated))
	}
	if p.Dominated[0] != (Solution{F1: 3, F2: 5}) {
		t.Fatalf("expected (3,5) to be dominated, got %v", p.Dominated[0])
	}

	// Both copies of the duplicate land in the front.
	dupes := 0
	for _, s := range p.NonDominated {
		if s == (Solution{F1: 2, F2: 10}) {
			dupes++
		}
	}
	if dupes != 2 {
		t.Fatalf("expected both duplicate copies in the front, got %d", dupes)
	}
}

func TestExtractRoundTrip(t *testing.T) {
	input := []Solution{{5, 5}, {1, 1}, {1, 1}, {2, 8}, {9, 9}, {4, 4}, {2, 8}}
	p := Extract(input)

	union := append(append([]Solution{}, p.NonDominated...), p.Dominated...)
	if len(union) != len(input) {
		t.Fatalf("partition changed the cardinality: %d vs %d", len(union), len(input))
	}
	sortAll := func(s []Solution) {
		sort.Slice(s, func(i, j int) bool {
			if s[i].F1 != s[j].F1 {
				return s[i].F1 < s[j].F1
			}
			return s[i].F2 < s[j].F2
		})
	}
	in := append([]Solution{}, input...)
	sortAll(in)
	sortAll(union)
	for i := range in {
		if in[i] != union[i] {
			t.Fatalf("partition is not a multiset split of the input at %d: %v vs %v", i, in[i], union[i])
		}
	}
}

func TestExtractDominatedHasWitness(t *testing.T) {
	input := []Solution{{1, 10}, {4, 8}, {2, 9}, {5, 1}, {3, 9.5}}
	p := Extract(input)
	for _, d := range p.Dominated {
		witnessed := false
		for _, f := range p.NonDominated {
			if Dominates(f, d) {
				witnessed = true
				break
			}
		}
		if !witnessed {
			t.Fatalf("dominated solution %v has no dominating front member", d)
		}
	}
}

func TestExtractEmpty(t *testing.T) {
	p := Extract(nil)
	if len(p.NonDominated) != 0 || len(p.Dominated) != 0 {
		t.Fatalf("empty input must give an empty partition")
	}
}

func TestExtractSingle(t *testing.T) {
	p := Extract([]Solution{{7, 3}})
	if len(p.NonDominated) != 1 || len(p.Dominated) != 0 {
		t.Fatalf("a single solution is always its own front")
	}
}

func TestSortByF1(t *testing.T) {
	s := []Solution{{3, 1}, {1, 2}, {1, 5}, {2, 4}}
	SortByF1(s)
	want := []Solution{{1, 5}, {1, 2}, {2, 4}, {3, 1}}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("at %d: got %v, want %v", i, s[i], want[i])
		}
	}
}

func TestMerge(t *testing.T) {
	a := []Solution{{1, 1}}
	b := []Solution{{2, 2}, {3, 3}}
	merged := Merge(a, b, nil)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged solutions, got %d", len(merged))
	}
}

func TestHypervolumeSinglePoint(t *testing.T) {
	ref := Solution{F1: 10, F2: 0}
	hv := Hypervolume([]Solution{{4, 3}}, ref)
	if math.Abs(hv-18) > 1e-12 {
		t.Fatalf("expected hv=18 for (4,3) vs ref (10,0), got %g", hv)
	}
}

func TestHypervolumeFront(t *testing.T) {
	ref := Solution{F1: 10, F2: 0}
	front := []Solution{{2, 8}, {5, 9}}
	// (2,8) contributes (10-2)*8, (5,9) adds the strip above 8: (10-5)*1.
	hv := Hypervolume(front, ref)
	if math.Abs(hv-69) > 1e-12 {
		t.Fatalf("expected hv=69, got %g", hv)
	}
}

func TestHypervolumeDuplicatesCountOnce(t *testing.T) {
	ref := Solution{F1: 10, F2: 0}
	single := Hypervolume([]Solution{{4, 3}}, ref)
	doubled := Hypervolume([]Solution{{4, 3}, {4, 3}}, ref)
	if single != doubled {
		t.Fatalf("duplicate point changed the hypervolume: %g vs %g", single, doubled)
	}
}

func TestHypervolumeOutsideReference(t *testing.T) {
	ref := Solution{F1: 5, F2: 2}
	hv := Hypervolume([]Solution{{6, 10}, {1, 1}}, ref)
	if hv != 0 {
		t.Fatalf("points outside the reference box must contribute nothing, got %g", hv)
	}
}

func TestHypervolumeEmptyFront(t *testing.T) {
	if hv := Hypervolume(nil, Solution{F1: 1, F2: 0}); hv != 0 {
		t.Fatalf("empty front must have zero hypervolume, got %g", hv)
	}
}
