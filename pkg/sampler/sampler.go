// Package sampler provides the deterministic minibatch sampler used by the
// optimization loop. Batches are drawn from an epoch-shuffled sequence so
// that within one epoch every training instance appears at least once before
// any repeats, with padding slots going to the least-seen instances.
package sampler

import (
	"github.com/XiaoConstantine/gepa-go/pkg/core"
)

// EpochSampler draws fixed-size minibatches from a dataset. The shuffle is
// driven entirely by the injected RNG, so a resumed run with a restored RNG
// state reproduces the exact batch sequence. Iterations are zero-based draw
// counters.
type EpochSampler struct {
	batchSize int
	rng       *core.RNG

	epoch    int
	shuffled []int
	freqs    map[int]int
}

// NewEpochSampler creates a sampler drawing batches of the given size using
// the supplied RNG.
func NewEpochSampler(batchSize int, rng *core.RNG) *EpochSampler {
	return &EpochSampler{
		batchSize: batchSize,
		rng:       rng,
		epoch:     -1,
		freqs:     make(map[int]int),
	}
}

// SetRNG swaps the RNG driving future reshuffles. Used when a resumed run
// replays the sampler's history with a scratch generator and then hands over
// the restored live one.
func (s *EpochSampler) SetRNG(rng *core.RNG) {
	s.rng = rng
}

// paddedLen is the shuffled sequence length: the dataset size rounded up to
// a multiple of the batch size.
func (s *EpochSampler) paddedLen(n int) int {
	blocks := (n + s.batchSize - 1) / s.batchSize
	return blocks * s.batchSize
}

// BlocksPerEpoch returns how many batches one epoch of a dataset of size n
// yields before a reshuffle.
func (s *EpochSampler) BlocksPerEpoch(n int) int {
	return s.paddedLen(n) / s.batchSize
}

// NextIndices returns the dataset indices of the batch for the given
// iteration, reshuffling whenever the iteration crosses an epoch boundary.
func (s *EpochSampler) NextIndices(n, iteration int) []int {
	length := s.paddedLen(n)
	target := iteration * s.batchSize / length

	for s.epoch < target {
		s.reshuffle(n)
		s.epoch++
	}

	base := iteration * s.batchSize % length
	batch := make([]int, s.batchSize)
	copy(batch, s.shuffled[base:base+s.batchSize])
	return batch
}

// NextBatch returns the instances of the batch for the given iteration.
func (s *EpochSampler) NextBatch(data []core.Instance, iteration int) []core.Instance {
	indices := s.NextIndices(len(data), iteration)
	batch := make([]core.Instance, len(indices))
	for i, idx := range indices {
		batch[i] = data[idx]
	}
	return batch
}

// reshuffle rebuilds the shuffled sequence for a new epoch: a Fisher-Yates
// pass over all indices, then padding up to a batch multiple with the least
// frequently drawn indices, ties broken by index value.
func (s *EpochSampler) reshuffle(n int) {
	s.shuffled = make([]int, n, s.paddedLen(n))
	for i := range s.shuffled {
		s.shuffled[i] = i
	}
	s.rng.Shuffle(n, func(i, j int) {
		s.shuffled[i], s.shuffled[j] = s.shuffled[j], s.shuffled[i]
	})
	for _, idx := range s.shuffled {
		s.freqs[idx]++
	}

	for len(s.shuffled) < cap(s.shuffled) {
		selected := s.leastSeen(n)
		s.shuffled = append(s.shuffled, selected)
		s.freqs[selected]++
	}
}

func (s *EpochSampler) leastSeen(n int) int {
	best := 0
	for idx := 1; idx < n; idx++ {
		if s.freqs[idx] < s.freqs[best] {
			best = idx
		}
	}
	return best
}
