package core

// Well-known objective names. Every archive record carries at least these
// two; additional objectives are treated uniformly by the dominance kernel.
const (
	// ObjectiveCorrectness is the mean per-instance score over a dataset.
	ObjectiveCorrectness = "correctness"
	// ObjectiveLatency is the negated mean latency in milliseconds, so that
	// all objectives are maximized.
	ObjectiveLatency = "latency"
)

// ObjectiveVector maps objective name to value. All objectives are maximized.
type ObjectiveVector map[string]float64

// Clone returns a copy of the vector.
func (v ObjectiveVector) Clone() ObjectiveVector {
	out := make(ObjectiveVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// ArchiveRecord is one entry of the append-only candidate archive. A record's
// identity for the run is its index in the archive.
type ArchiveRecord struct {
	Candidate Candidate       `json:"candidate"`
	Scores    ObjectiveVector `json:"scores"`
	// ScalarScore is the scalar tie-breaker, defined as Scores[correctness].
	ScalarScore float64 `json:"scalar_score"`
	// ParentIndex is the archive index of the record's parent, -1 for the seed.
	ParentIndex int `json:"parent_index"`
}

// Lineage walks parent indices from the given record back to the seed,
// returning archive indices ordered root first. Out-of-range indices yield
// an empty slice.
func Lineage(archive []ArchiveRecord, index int) []int {
	if index < 0 || index >= len(archive) {
		return nil
	}
	var reversed []int
	for i := index; i >= 0 && i < len(archive); i = archive[i].ParentIndex {
		reversed = append(reversed, i)
	}
	path := make([]int, len(reversed))
	for i, idx := range reversed {
		path[len(reversed)-1-i] = idx
	}
	return path
}
