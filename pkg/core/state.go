package core

// RunState is the complete checkpointable state of an optimization run. It is
// created at run start, mutated only by the optimization loop, and written
// out whole at checkpoint points.
type RunState struct {
	Iteration        int     `json:"iteration"`
	TotalMetricCalls int     `json:"total_metric_calls"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	RNGState         uint32  `json:"rng_state"`

	// Archive is the append-only candidate store; record 0 is the seed.
	Archive []ArchiveRecord `json:"archive"`

	// InstanceScores holds one row per archive record: the per-validation-
	// instance scores of that record, in dataset order. Rows grow in
	// lockstep with the archive.
	InstanceScores [][]float64 `json:"instance_scores"`
}

// Clone returns a deep copy of the run state.
func (s *RunState) Clone() *RunState {
	out := &RunState{
		Iteration:        s.Iteration,
		TotalMetricCalls: s.TotalMetricCalls,
		TotalCostUSD:     s.TotalCostUSD,
		RNGState:         s.RNGState,
		Archive:          make([]ArchiveRecord, len(s.Archive)),
		InstanceScores:   make([][]float64, len(s.InstanceScores)),
	}
	for i, rec := range s.Archive {
		out.Archive[i] = ArchiveRecord{
			Candidate:   rec.Candidate.Clone(),
			Scores:      rec.Scores.Clone(),
			ScalarScore: rec.ScalarScore,
			ParentIndex: rec.ParentIndex,
		}
	}
	for i, row := range s.InstanceScores {
		out.InstanceScores[i] = append([]float64(nil), row...)
	}
	return out
}
