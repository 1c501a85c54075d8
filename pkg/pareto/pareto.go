// Package pareto implements the multi-objective scoring kernel: epsilon
// dominance testing, Pareto front construction over an ordered archive, and
// the 2-objective hypervolume indicator.
package pareto

import (
	"sort"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
)

// Dominance compares two objective vectors over the union of their keys,
// with missing keys defaulting to 0. It returns +1 if a dominates b, -1 if b
// dominates a, and 0 otherwise. a dominates b iff a is better than b by more
// than epsilon on some key and b is never better than a by more than epsilon.
func Dominance(a, b core.ObjectiveVector, epsilon float64) int {
	aBetter := false
	bBetter := false

	for key := range keyUnion(a, b) {
		av := a[key]
		bv := b[key]
		if av > bv+epsilon {
			aBetter = true
		}
		if bv > av+epsilon {
			bBetter = true
		}
	}

	switch {
	case aBetter && !bBetter:
		return 1
	case bBetter && !aBetter:
		return -1
	default:
		return 0
	}
}

func keyUnion(a, b core.ObjectiveVector) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// BuildFront recomputes the Pareto front from scratch over the full ordered
// score list and returns the indices of the non-dominated entries. Entries
// are processed in input order: a candidate dominated by any current front
// member is discarded, otherwise it joins the front and evicts every member
// it dominates. The returned order is the insertion order of the survivors.
func BuildFront(scores []core.ObjectiveVector, epsilon float64) []int {
	front := make([]int, 0, len(scores))

	for i, candidate := range scores {
		dominated := false
		for _, j := range front {
			if Dominance(scores[j], candidate, epsilon) == 1 {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}

		// The newcomer joins and evicts every member it dominates.
		kept := front[:0]
		for _, j := range front {
			if Dominance(candidate, scores[j], epsilon) != 1 {
				kept = append(kept, j)
			}
		}
		front = append(kept, i)
	}

	return front
}

// Hypervolume2D computes the area dominated by the given points relative to
// the default reference corner (min(x)-1, min(y)-1). It is defined only when
// every point has exactly two objective keys; ok is false otherwise. The
// empty point set has hypervolume 0.
func Hypervolume2D(points []core.ObjectiveVector) (hv float64, ok bool) {
	if len(points) == 0 {
		return 0, true
	}
	xs, ys, ok := splitObjectives(points)
	if !ok {
		return 0, false
	}

	ref := [2]float64{minOf(xs) - 1, minOf(ys) - 1}
	return sweep(xs, ys, ref), true
}

// Hypervolume2DFrom computes the dominated area relative to an explicit
// reference point, aligned with the points' lexicographically sorted
// objective names.
func Hypervolume2DFrom(points []core.ObjectiveVector, ref [2]float64) (hv float64, ok bool) {
	if len(points) == 0 {
		return 0, true
	}
	xs, ys, ok := splitObjectives(points)
	if !ok {
		return 0, false
	}
	return sweep(xs, ys, ref), true
}

// splitObjectives projects the points onto (x, y) axes named by the
// lexicographically sorted objective keys of the first point. Every point
// must carry exactly that two-key set.
func splitObjectives(points []core.ObjectiveVector) (xs, ys []float64, ok bool) {
	if len(points[0]) != 2 {
		return nil, nil, false
	}
	names := make([]string, 0, 2)
	for k := range points[0] {
		names = append(names, k)
	}
	sort.Strings(names)

	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		if len(p) != 2 {
			return nil, nil, false
		}
		x, okX := p[names[0]]
		y, okY := p[names[1]]
		if !okX || !okY {
			return nil, nil, false
		}
		xs[i] = x
		ys[i] = y
	}
	return xs, ys, true
}

// sweep accumulates the staircase area dominated by the points: sorted by x
// descending, each point contributes a rectangle from the reference corner to
// its x, stacked on the best y seen so far.
func sweep(xs, ys []float64, ref [2]float64) float64 {
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return xs[order[a]] > xs[order[b]]
	})

	var area float64
	prevY := ref[1]
	for _, i := range order {
		if xs[i] <= ref[0] {
			continue
		}
		if ys[i] > prevY {
			area += (xs[i] - ref[0]) * (ys[i] - prevY)
			prevY = ys[i]
		}
	}
	return area
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
