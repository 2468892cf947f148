package events

import (
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/model"
)

const DefaultBeatTolerance = constants.WrongPitchBeatTolerance

// MergeWrongPitch folds a missing note and an extra note that sit in the same
// measure within beatTol beats of each other into one wrong_pitch event.
// Each missing note takes the nearest unused extra note; on equal distance
// the earlier one wins. Chord events are never merged. The result is sorted
// by (measure, beat, type).
func MergeWrongPitch(in []model.AnalysisEvent, beatTol float64) []model.AnalysisEvent {
	var passthrough []model.AnalysisEvent
	var measures []int
	seenMeasure := make(map[int]bool)
	missingByMeasure := make(map[int][]model.AnalysisEvent)
	extraByMeasure := make(map[int][]model.AnalysisEvent)

	for _, e := range in {
		if e.GroupID != "" || (e.Type != model.MissingNote && e.Type != model.ExtraNote) {
			passthrough = append(passthrough, e)
			continue
		}
		if !seenMeasure[e.Measure] {
			seenMeasure[e.Measure] = true
			measures = append(measures, e.Measure)
		}
		if e.Type == model.MissingNote {
			missingByMeasure[e.Measure] = append(missingByMeasure[e.Measure], e)
		} else {
			extraByMeasure[e.Measure] = append(extraByMeasure[e.Measure], e)
		}
	}

	usedMissing := make(map[int]map[int]bool)
	usedExtra := make(map[int]map[int]bool)
	var merged []model.AnalysisEvent
	for _, m := range measures {
		usedMissing[m] = make(map[int]bool)
		usedExtra[m] = make(map[int]bool)
		extras := extraByMeasure[m]
		for mi, miss := range missingByMeasure[m] {
			best := -1
			bestDelta := math.Inf(1)
			for xi, extra := range extras {
				if usedExtra[m][xi] {
					continue
				}
				d := math.Abs(miss.Beat - extra.Beat)
				if d <= beatTol && d < bestDelta {
					best, bestDelta = xi, d
				}
			}
			if best < 0 {
				continue
			}
			usedMissing[m][mi] = true
			usedExtra[m][best] = true
			merged = append(merged, wrongPitch(miss, extras[best]))
		}
	}

	res := passthrough
	for _, m := range measures {
		for mi, miss := range missingByMeasure[m] {
			if !usedMissing[m][mi] {
				res = append(res, miss)
			}
		}
	}
	for _, m := range measures {
		for xi, extra := range extraByMeasure[m] {
			if !usedExtra[m][xi] {
				res = append(res, extra)
			}
		}
	}
	res = append(res, merged...)
	SortEvents(res)
	if res == nil {
		return []model.AnalysisEvent{}
	}
	return res
}

func wrongPitch(miss model.AnalysisEvent, extra model.AnalysisEvent) model.AnalysisEvent {
	return model.AnalysisEvent{
		Type:            model.WrongPitch,
		Measure:         miss.Measure,
		Beat:            miss.Beat,
		Pitch:           miss.Pitch,
		PitchName:       miss.PitchName,
		ActualPitch:     model.Int(extra.Pitch),
		ActualPitchName: extra.PitchName,
		Hand:            miss.Hand,
		Severity:        model.SeverityHigh,
		Evidence:        fmt.Sprintf("played %s, expected %s", extra.PitchName, miss.PitchName),
		TimeRefSec:      miss.TimeRefSec,
		TimeAttemptSec:  extra.TimeAttemptSec,
	}
}

// SortEvents orders events by (measure, beat, type), keeping input order
// among equals.
func SortEvents(events []model.AnalysisEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Measure != b.Measure {
			return a.Measure < b.Measure
		}
		if a.Beat != b.Beat {
			return a.Beat < b.Beat
		}
		return a.Type < b.Type
	})
}
