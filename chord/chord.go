package chord

import (
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/util"
)

type PitchSet = map[int]bool

// Key renders a set of pitches as a stable string, e.g. "60-64-67".
func Key(pitches []int) string {
	sorted := make([]int, len(pitches))
	copy(sorted, pitches)
	sort.Ints(sorted)
	var res string
	for i, p := range sorted {
		res += fmt.Sprintf("%v", p)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// GroupByOnset sorts indices by the onset of their note and cuts them into
// groups whose onsets lie within windowSec of the group's first onset.
func GroupByOnset(indices []int, notes []model.NoteEvent, windowSec float64) [][]int {
	if len(indices) == 0 {
		return nil
	}
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return notes[sorted[i]].StartSec < notes[sorted[j]].StartSec
	})

	groups := [][]int{{sorted[0]}}
	for _, idx := range sorted[1:] {
		last := groups[len(groups)-1]
		anchor := notes[last[0]].StartSec
		if math.Abs(notes[idx].StartSec-anchor) <= windowSec {
			groups[len(groups)-1] = append(last, idx)
		} else {
			groups = append(groups, []int{idx})
		}
	}
	return groups
}

// Window returns the indices of all notes starting within windowSec of anchorSec.
func Window(notes []model.NoteEvent, anchorSec float64, windowSec float64) []int {
	var res []int
	for i, n := range notes {
		if math.Abs(n.StartSec-anchorSec) <= windowSec {
			res = append(res, i)
		}
	}
	return res
}

func Pitches(notes []model.NoteEvent, indices []int) PitchSet {
	res := make(PitchSet)
	for _, idx := range indices {
		res[notes[idx].Pitch] = true
	}
	return res
}

// ByPitch maps each pitch to the given indices carrying it, in order.
func ByPitch(notes []model.NoteEvent, indices []int) map[int][]int {
	res := make(map[int][]int)
	for _, idx := range indices {
		p := notes[idx].Pitch
		res[p] = append(res[p], idx)
	}
	return res
}

// Names lists the distinct names of notes whose pitch is in the set, sorted.
func Names(notes []model.NoteEvent, pitches PitchSet) []string {
	names := make(map[string]bool)
	for _, n := range notes {
		if pitches[n.Pitch] {
			names[n.PitchName] = true
		}
	}
	return util.SortedSet(names)
}

// Sonority is the set of pitches sounding from OffsetSec until the next change.
type Sonority struct {
	OffsetSec float64
	Pitches   []int
}

type edge struct {
	offset    float64
	isNoteOff bool
	pitch     int
}

// Sonorities sweeps note on/off edges and records what is held down after
// each instant something changes. Silent instants are dropped.
func Sonorities(notes []model.NoteEvent) []Sonority {
	edges := make([]edge, 0, len(notes)*2)
	for _, n := range notes {
		if n.EndSec <= n.StartSec {
			continue
		}
		edges = append(edges, edge{offset: n.StartSec, pitch: n.Pitch})
		edges = append(edges, edge{offset: n.EndSec, isNoteOff: true, pitch: n.Pitch})
	}

	// smaller offsets first, then note offs
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].offset != edges[j].offset {
			return edges[i].offset < edges[j].offset
		}
		return edges[i].isNoteOff && !edges[j].isNoteOff
	})

	var res []Sonority
	pressed := make(map[int]int)
	for i, e := range edges {
		if e.isNoteOff {
			pressed[e.pitch]--
			if pressed[e.pitch] <= 0 {
				delete(pressed, e.pitch)
			}
		} else {
			pressed[e.pitch]++
		}
		if i+1 < len(edges) && edges[i+1].offset == e.offset {
			continue
		}
		if len(pressed) > 0 {
			res = append(res, Sonority{OffsetSec: e.offset, Pitches: util.SortedKeys(pressed)})
		}
	}
	return res
}
