// Package events turns an alignment into diagnostic findings: timing and
// duration deviations of matched notes, missing and extra notes (grouped
// into chords where the reference plays several pitches together) and
// wrong pitches.
package events

import (
	"fmt"

	"github.com/jsphweid/pianodiff/align"
	"github.com/jsphweid/pianodiff/chord"
	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/measure"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/util"
)

// Generate builds the ordered event list for one comparison. matches are
// re-screened against the meta tolerance, so a raw alignment path is also
// accepted. Invalid tolerance or timing meta fails before anything runs.
func Generate(ref []model.NoteEvent, attempt []model.NoteEvent, matches []model.Pair, meta config.Meta, segmentID string) ([]model.AnalysisEvent, error) {
	tol := meta.Tolerance
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	if err := meta.ValidateTiming(); err != nil {
		return nil, err
	}
	startMeasure, err := meta.StartMeasure(segmentID)
	if err != nil {
		return nil, err
	}
	grid, err := measure.NewGrid(meta.BPM, meta.TimeSignature.BeatsPerMeasure, startMeasure)
	if err != nil {
		return nil, err
	}

	g := generator{
		ref:             ref,
		attempt:         attempt,
		tol:             tol,
		grid:            grid,
		matchedRef:      make(map[int]bool),
		matchedAttempt:  make(map[int]bool),
		consumedRef:     make(map[int]bool),
		consumedAttempt: make(map[int]bool),
	}
	for _, p := range align.SelectValidMatches(ref, attempt, matches, tol.MatchTolMs) {
		g.matched(p)
	}
	g.chords()
	g.leftovers()
	return MergeWrongPitch(g.events, DefaultBeatTolerance), nil
}

type generator struct {
	ref     []model.NoteEvent
	attempt []model.NoteEvent
	tol     config.Tolerance
	grid    measure.Grid

	matchedRef      map[int]bool
	matchedAttempt  map[int]bool
	consumedRef     map[int]bool
	consumedAttempt map[int]bool
	groups          int

	events []model.AnalysisEvent
}

func (g *generator) matched(p model.Pair) {
	g.matchedRef[p.Ref] = true
	g.matchedAttempt[p.Attempt] = true
	r, a := g.ref[p.Ref], g.attempt[p.Attempt]
	pos := g.grid.At(r.StartSec)

	deltaMs := (a.StartSec - r.StartSec) * 1000.0
	if sev, ok := TimingSeverity(deltaMs, g.tol.TimingGrades); ok {
		g.events = append(g.events, model.AnalysisEvent{
			Type:           timingType(deltaMs),
			Measure:        pos.Measure,
			Beat:           pos.Beat,
			Pitch:          r.Pitch,
			PitchName:      r.PitchName,
			Hand:           r.Hand,
			Severity:       sev,
			DeltaMs:        model.Float(deltaMs),
			TimeRefSec:     model.Float(r.StartSec),
			TimeAttemptSec: model.Float(a.StartSec),
		})
	}

	ratio := DurationRatio(r, a)
	if typ, sev, ok := ClassifyDuration(ratio, g.tol.DurationShortRatio, g.tol.DurationLongRatio); ok {
		g.events = append(g.events, model.AnalysisEvent{
			Type:                typ,
			Measure:             pos.Measure,
			Beat:                pos.Beat,
			Pitch:               r.Pitch,
			PitchName:           r.PitchName,
			Hand:                r.Hand,
			Severity:            sev,
			ExpectedDurationSec: model.Float(r.DurSec),
			ActualDurationSec:   model.Float(a.DurSec),
		})
	}
}

func unmatched(n int, matched map[int]bool) []int {
	var res []int
	for i := 0; i < n; i++ {
		if !matched[i] {
			res = append(res, i)
		}
	}
	return res
}

// chords explains unmatched reference notes that belong to a chord in terms
// of the pitches that were hit, missed or added around the same instant.
func (g *generator) chords() {
	windowSec := g.tol.ChordWindowMs / 1000.0
	unmatchedAttempt := unmatched(len(g.attempt), g.matchedAttempt)

	for _, group := range chord.GroupByOnset(unmatched(len(g.ref), g.matchedRef), g.ref, windowSec) {
		anchor := g.ref[group[0]].StartSec
		refContext := chord.Pitches(g.ref, chord.Window(g.ref, anchor, windowSec))
		attemptContext := chord.Pitches(g.attempt, chord.Window(g.attempt, anchor, windowSec))
		if len(refContext) <= 1 && len(attemptContext) <= 1 {
			continue
		}

		var candidates []int
		for _, idx := range unmatchedAttempt {
			if g.consumedAttempt[idx] {
				continue
			}
			if util.Abs(g.attempt[idx].StartSec-anchor) <= windowSec {
				candidates = append(candidates, idx)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		refByPitch := chord.ByPitch(g.ref, group)
		attemptByPitch := chord.ByPitch(g.attempt, candidates)
		groupPitches := chord.Pitches(g.ref, group)
		candidatePitches := chord.Pitches(g.attempt, candidates)
		hit := util.Intersect(refContext, attemptContext)
		missing := util.Difference(groupPitches, candidatePitches)
		extra := util.Difference(candidatePitches, groupPitches)

		g.groups++
		groupID := fmt.Sprintf("chord-%d", g.groups)
		evidence := fmt.Sprintf("chord partial: hit %d/%d %v missing %v extra %v",
			len(hit), len(refContext),
			chord.Names(g.ref, hit), chord.Names(g.ref, missing), chord.Names(g.attempt, extra))
		pos := g.grid.At(anchor)

		for _, p := range util.SortedSet(hit) {
			for _, idx := range refByPitch[p] {
				g.consumedRef[idx] = true
			}
			for _, idx := range attemptByPitch[p] {
				g.consumedAttempt[idx] = true
			}
		}
		for _, p := range util.SortedSet(missing) {
			for _, idx := range refByPitch[p] {
				r := g.ref[idx]
				g.consumedRef[idx] = true
				g.events = append(g.events, model.AnalysisEvent{
					Type:       model.MissingNote,
					Measure:    pos.Measure,
					Beat:       pos.Beat,
					Pitch:      r.Pitch,
					PitchName:  r.PitchName,
					Hand:       r.Hand,
					Severity:   model.SeverityHigh,
					Evidence:   evidence,
					TimeRefSec: model.Float(r.StartSec),
					GroupID:    groupID,
				})
			}
		}
		for _, p := range util.SortedSet(extra) {
			for _, idx := range attemptByPitch[p] {
				a := g.attempt[idx]
				g.consumedAttempt[idx] = true
				g.events = append(g.events, model.AnalysisEvent{
					Type:           model.ExtraNote,
					Measure:        pos.Measure,
					Beat:           pos.Beat,
					Pitch:          a.Pitch,
					PitchName:      a.PitchName,
					Hand:           a.Hand,
					Severity:       model.SeverityMed,
					Evidence:       evidence,
					TimeAttemptSec: model.Float(a.StartSec),
					GroupID:        groupID,
				})
			}
		}
	}
}

// leftovers reports every note neither matched nor explained by a chord.
func (g *generator) leftovers() {
	for i, r := range g.ref {
		if g.matchedRef[i] || g.consumedRef[i] {
			continue
		}
		pos := g.grid.At(r.StartSec)
		g.events = append(g.events, model.AnalysisEvent{
			Type:       model.MissingNote,
			Measure:    pos.Measure,
			Beat:       pos.Beat,
			Pitch:      r.Pitch,
			PitchName:  r.PitchName,
			Hand:       r.Hand,
			Severity:   model.SeverityHigh,
			TimeRefSec: model.Float(r.StartSec),
		})
	}
	for i, a := range g.attempt {
		if g.matchedAttempt[i] || g.consumedAttempt[i] {
			continue
		}
		pos := g.grid.At(a.StartSec)
		g.events = append(g.events, model.AnalysisEvent{
			Type:           model.ExtraNote,
			Measure:        pos.Measure,
			Beat:           pos.Beat,
			Pitch:          a.Pitch,
			PitchName:      a.PitchName,
			Hand:           a.Hand,
			Severity:       model.SeverityMed,
			TimeAttemptSec: model.Float(a.StartSec),
		})
	}
}
