// Package pareto partitions two-objective solution sets into the
// non-dominated front and the dominated remainder. The first objective is
// minimized, the second maximized.
package pareto

import (
	"sort"
)

// Solution is one point in objective space: F1 minimized, F2 maximized.
type Solution struct {
	F1 float64 `json:"f1"`
	F2 float64 `json:"f2"`
}

// Partition splits a solution set into the Pareto front and the rest.
// INVARIANTS:
// - NonDominated and Dominated are disjoint and their union is the input (as multisets)
// - every dominated member is dominated by at least one front member
type Partition struct {
	NonDominated []Solution `json:"non_dominated"`
	Dominated    []Solution `json:"dominated"`
}

// Dominates returns true if a dominates b: a is no worse in both objectives
// and strictly better in at least one. Irreflexive and asymmetric by
// construction; two solutions may be mutually non-dominating. Identical
// points never dominate each other, so duplicates all land in the front.
func Dominates(a, b Solution) bool {
	if a.F1 > b.F1 || a.F2 < b.F2 {
		return false
	}
	return a.F1 < b.F1 || a.F2 > b.F2
}

// Extract partitions the input with the O(n^2) dominance check — fine for the
// batch sizes seen here (tens to low thousands). For very large n, sort by F1
// and sweep with a running best-F2 bound for O(n log n).
func Extract(solutions []Solution) Partition {
	p := Partition{}
	for i, candidate := range solutions {
		dominated := false
		for j, other := range solutions {
			if i == j {
				continue
			}
			if Dominates(other, candidate) {
				dominated = true
				break
			}
		}
		if dominated {
			p.Dominated = append(p.Dominated, candidate)
		} else {
			p.NonDominated = append(p.NonDominated, candidate)
		}
	}
	return p
}

// SortByF1 orders solutions by ascending F1 (F2 descending on ties) for
// deterministic display. This is a presentation step; Extract itself makes
// no ordering guarantee.
func SortByF1(solutions []Solution) {
	sort.Slice(solutions, func(i, j int) bool {
		if solutions[i].F1 != solutions[j].F1 {
			return solutions[i].F1 < solutions[j].F1
		}
		return solutions[i].F2 > solutions[j].F2
	})
}

// Merge pools solution sets from replicate runs into one flat set.
func Merge(sets ...[]Solution) []Solution {
	var all []Solution
	for _, s := range sets {
		all = append(all, s...)
	}
	return all
}

// Hypervolume computes the 2-objective hypervolume indicator of a front
// against a reference point. The reference must be weakly dominated by every
// front member (ref.F1 >= member F1, ref.F2 <= member F2); members outside
// the reference box contribute nothing. Duplicates contribute once.
func Hypervolume(front []Solution, ref Solution) float64 {
	if len(front) == 0 {
		return 0
	}

	pts := make([]Solution, len(front))
	copy(pts, front)
	SortByF1(pts)

	hv := 0.0
	prevF2 := ref.F2
	for _, p := range pts {
		if p.F1 > ref.F1 || p.F2 < ref.F2 {
			continue
		}
		if p.F2 <= prevF2 {
			continue // covered by an earlier (smaller F1) point
		}
		hv += (ref.F1 - p.F1) * (p.F2 - prevF2)
		prevF2 = p.F2
	}
	return hv
}
