package align

import (
	"math"
	"sort"

	"github.com/jsphweid/pianodiff/model"
)

// SelectValidMatches re-screens an alignment path in order. A pair survives
// when both indices are in range and unused, the pitches agree and the
// onsets are within matchTolMs of each other.
func SelectValidMatches(ref []model.NoteEvent, attempt []model.NoteEvent, path []model.Pair, matchTolMs float64) []model.Pair {
	valid := []model.Pair{}
	seenRef := make(map[int]bool)
	seenAttempt := make(map[int]bool)
	for _, p := range path {
		if seenRef[p.Ref] || seenAttempt[p.Attempt] {
			continue
		}
		if p.Ref < 0 || p.Ref >= len(ref) || p.Attempt < 0 || p.Attempt >= len(attempt) {
			continue
		}
		r, a := ref[p.Ref], attempt[p.Attempt]
		if r.Pitch != a.Pitch {
			continue
		}
		if math.Abs((a.StartSec-r.StartSec)*1000.0) > matchTolMs {
			continue
		}
		seenRef[p.Ref] = true
		seenAttempt[p.Attempt] = true
		valid = append(valid, p)
	}
	return valid
}

// DedupRefCount counts reference notes, collapsing a note into an earlier
// counted note of the same pitch that started within chordWindowMs.
func DedupRefCount(notes []model.NoteEvent, chordWindowMs float64) int {
	if len(notes) == 0 {
		return 0
	}
	sorted := make([]model.NoteEvent, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartSec != sorted[j].StartSec {
			return sorted[i].StartSec < sorted[j].StartSec
		}
		return sorted[i].Pitch < sorted[j].Pitch
	})

	windowSec := chordWindowMs / 1000.0
	lastSeen := make(map[int]float64)
	kept := 0
	for _, n := range sorted {
		last, ok := lastSeen[n.Pitch]
		if !ok || n.StartSec-last > windowSec {
			kept++
			lastSeen[n.Pitch] = n.StartSec
		}
	}
	return kept
}

// MatchRate is matched/refCount, 0 for an empty reference, never above 1.
func MatchRate(matched int, refCount int) float64 {
	if refCount <= 0 {
		return 0
	}
	rate := float64(matched) / float64(refCount)
	if rate > 1 {
		return 1
	}
	return rate
}
