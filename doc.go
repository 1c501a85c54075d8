// Package gepa is a Go implementation of reflective evolutionary prompt
// optimization: candidates made of named text components are mutated through
// language-model reflection and kept when they improve task performance
// across multiple objectives.
//
// The engine maintains an append-only archive of candidates, scores each on a
// vector of maximized objectives (correctness and negated latency at minimum),
// and uses Pareto dominance plus the 2D hypervolume indicator to track the
// quality of the population. Parents are chosen either by best scalar score or
// by instance-level Pareto frequency sampling, mutated on deterministic
// epoch-shuffled minibatches, and accepted only when the child beats the
// parent on the same minibatch.
//
// Key packages:
//
//   - pkg/core: the data model (Candidate, ObjectiveVector, ArchiveRecord,
//     RunState), the deterministic RNG, and the contracts the engine consumes
//     (Adapter, ReflectionLM, CheckpointStore).
//
//   - pkg/pareto: dominance testing, Pareto front construction and the
//     2-objective hypervolume sweep.
//
//   - pkg/sampler: the epoch-shuffled minibatch sampler with fairness
//     padding.
//
//   - pkg/selection: component and candidate selection strategies.
//
//   - pkg/reflection: the default LM-driven mutation engine.
//
//   - pkg/optimizers: the GEPA optimization loop, budgets, stagnation
//     stopping and checkpointing.
//
//   - pkg/adapters: a default task adapter evaluating instances with a
//     bounded worker pool.
//
//   - pkg/persistence: JSON-file and SQLite checkpoint/event stores.
//
// Runs are resumable: the RNG state, counters and archive serialize into a
// single RunState that a CheckpointStore can persist and restore exactly.
package gepa
