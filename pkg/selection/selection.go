// Package selection provides the pluggable strategies the optimization loop
// uses to pick which components to mutate and which archive record to mutate
// from. Each strategy is a pure function of the run state and the iteration.
package selection

import (
	"github.com/XiaoConstantine/gepa-go/pkg/core"
)

// ComponentSelector picks which components of a candidate to target for
// mutation on a given iteration. Iterations are zero-based.
type ComponentSelector interface {
	SelectComponents(candidate core.Candidate, iteration int) []string
}

// RoundRobin targets exactly one component per iteration, cycling through
// the candidate's components in their fixed order.
type RoundRobin struct{}

func (RoundRobin) SelectComponents(candidate core.Candidate, iteration int) []string {
	if candidate.Len() == 0 {
		return nil
	}
	return []string{candidate.Names[iteration%candidate.Len()]}
}

// AllComponents targets every component every iteration.
type AllComponents struct{}

func (AllComponents) SelectComponents(candidate core.Candidate, iteration int) []string {
	return append([]string(nil), candidate.Names...)
}

// CandidateSelector picks the archive index to use as mutation parent.
// instanceScores is the per-record validation score matrix and front the
// current Pareto front over the archive; strategies may ignore either.
type CandidateSelector interface {
	SelectCandidate(archive []core.ArchiveRecord, instanceScores [][]float64, front []int) int
}

// CurrentBest returns the record with the highest scalar score, first
// occurrence winning ties.
type CurrentBest struct{}

func (CurrentBest) SelectCandidate(archive []core.ArchiveRecord, instanceScores [][]float64, front []int) int {
	best := 0
	for i, rec := range archive {
		if rec.ScalarScore > archive[best].ScalarScore {
			best = i
		}
	}
	return best
}

// ParetoFrequency samples a parent with probability proportional to the
// number of per-instance fronts the record belongs to: for every validation
// instance, the records tied for the best score on that instance form its
// local front, and each membership counts one unit of selection weight. This
// favors records that are uniquely best on many individual instances, which
// can differ from pure scalar-average ranking.
type ParetoFrequency struct {
	rng *core.RNG
}

// NewParetoFrequency creates the strategy with the injected RNG.
func NewParetoFrequency(rng *core.RNG) *ParetoFrequency {
	return &ParetoFrequency{rng: rng}
}

func (p *ParetoFrequency) SelectCandidate(archive []core.ArchiveRecord, instanceScores [][]float64, front []int) int {
	weights := instanceFrontWeights(archive, instanceScores)

	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return CurrentBest{}.SelectCandidate(archive, instanceScores, front)
	}

	// Cumulative-weight walk in archive order.
	r := p.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

func instanceFrontWeights(archive []core.ArchiveRecord, instanceScores [][]float64) []float64 {
	weights := make([]float64, len(archive))
	if len(instanceScores) == 0 || len(instanceScores[0]) == 0 {
		return weights
	}

	numInstances := len(instanceScores[0])
	for inst := 0; inst < numInstances; inst++ {
		best := instanceScores[0][inst]
		for rec := 1; rec < len(instanceScores); rec++ {
			if instanceScores[rec][inst] > best {
				best = instanceScores[rec][inst]
			}
		}
		for rec := 0; rec < len(instanceScores); rec++ {
			if instanceScores[rec][inst] == best {
				weights[rec]++
			}
		}
	}
	return weights
}
