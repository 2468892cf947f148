// Package align establishes a correspondence between a reference note
// sequence and an attempt at playing it.
//
// Two aligners implement the Aligner interface:
//
//   - DTWAligner buckets notes by pitch and runs an edit-distance program
//     over onset times inside each bucket. It is cheap and exact when the
//     attempt is close to the reference in time, but it cannot see wrong
//     pitches: a C played where a D was expected is a deletion plus an
//     insertion.
//
//   - HMMAligner runs one Viterbi-style program over the whole sequences.
//     Substitutions are priced against an affine tempo warp estimated from
//     the two sequences (see EstimateWarp), so a uniformly slower or faster
//     attempt still aligns diagonally, and a stray wrong note is absorbed as
//     a single insertion instead of shifting everything after it.
//
// Both share the same recurrence and back-pointer tie-break: the diagonal
// is tried first and only replaced on a strictly lower cost, then the up
// step (skip a reference note), then the left step (skip an attempt note).
// Path shape is observable, so the order matters.
//
// After alignment, SelectValidMatches re-screens the path against a
// millisecond tolerance and enforces 1:1 matching. MatchRate divides the
// surviving count by DedupRefCount.
//
// Everything here is pure: no package state, no I/O, safe for concurrent
// use from any number of goroutines.
package align
