package core

// RNG is a deterministic 32-bit linear congruential generator. Its whole
// state is one integer that is a pure function of the seed and the number of
// draws made, so a resumed run can restore the stream exactly from a
// checkpoint.
type RNG struct {
	state uint32
}

// Numerical Recipes LCG constants.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// NewRNG creates a generator seeded with the given value.
func NewRNG(seed uint32) *RNG {
	return &RNG{state: seed}
}

// RestoreRNG creates a generator positioned at a previously captured state.
func RestoreRNG(state uint32) *RNG {
	return &RNG{state: state}
}

// State returns the current generator state for checkpointing.
func (r *RNG) State() uint32 {
	return r.state
}

func (r *RNG) next() uint32 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	return r.state
}

// Float64 returns a uniform value in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.next()) / (1 << 32)
}

// Intn returns a uniform value in [0, n). It panics if n <= 0.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		panic("core: Intn called with non-positive n")
	}
	return int(r.next() % uint32(n))
}

// Shuffle performs a Fisher-Yates shuffle of n elements using the swap
// function, consuming exactly n-1 draws for n > 1.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
