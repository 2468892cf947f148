package align

import (
	"math"

	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/model"
)

// HMMOptions prices the moves of the global aligner.
//
//   - MaxOnsetGapSec    : substitutions further apart than this (after warp) are forbidden.
//   - OnsetCostWeight   : cost per second of warped onset gap.
//   - DurationCostWeight: cost per unit of |ln(attempt_dur / ref_dur)|.
//   - MatchReward       : flat discount for a substitution; cost is floored at 0.
//   - DeleteCost        : skipping a reference note.
//   - InsertCost        : skipping an attempt note.
type HMMOptions struct {
	MaxOnsetGapSec     float64
	OnsetCostWeight    float64
	DurationCostWeight float64
	MatchReward        float64
	DeleteCost         float64
	InsertCost         float64
}

func DefaultHMMOptions() HMMOptions {
	return HMMOptions{
		MaxOnsetGapSec:     constants.MaxOnsetGapSec,
		OnsetCostWeight:    constants.OnsetCostWeight,
		DurationCostWeight: constants.DurationCostWeight,
		MatchReward:        constants.MatchReward,
		DeleteCost:         constants.DeleteCost,
		InsertCost:         constants.InsertCost,
	}
}

// HMMAligner aligns the full sequences at once, pricing substitutions
// against an estimated tempo warp.
type HMMAligner struct {
	Options HMMOptions
}

func NewHMMAligner(opts HMMOptions) HMMAligner {
	return HMMAligner{Options: opts}
}

// SubstitutionCost prices pairing r with t under warp w. Different pitches
// and gaps beyond MaxOnsetGapSec are +Inf.
func (a HMMAligner) SubstitutionCost(r model.NoteEvent, t model.NoteEvent, w Warp) float64 {
	if r.Pitch != t.Pitch {
		return math.Inf(1)
	}
	gap := math.Abs(r.StartSec - w.Apply(t.StartSec))
	if gap > a.Options.MaxOnsetGapSec {
		return math.Inf(1)
	}

	cost := gap * a.Options.OnsetCostWeight
	if r.DurSec > 0 && t.DurSec > 0 {
		cost += math.Abs(math.Log(t.DurSec/r.DurSec)) * a.Options.DurationCostWeight
	}
	cost -= a.Options.MatchReward
	if cost < 0 {
		return 0
	}
	return cost
}

func (a HMMAligner) Align(ref []model.NoteEvent, attempt []model.NoteEvent) model.AlignmentResult {
	w := EstimateWarp(model.Onsets(ref), model.Onsets(attempt))

	p := program{
		m: len(ref),
		n: len(attempt),
		sub: func(i, j int) float64 {
			return a.SubstitutionCost(ref[i], attempt[j], w)
		},
		deleteCost: a.Options.DeleteCost,
		insertCost: a.Options.InsertCost,
		// the cost already forbids mismatched pitches; keep the check in
		// case the pricing changes
		emit: func(i, j int) bool {
			return ref[i].Pitch == attempt[j].Pitch
		},
	}
	pairs, cost := p.solve()
	if !isFinite(cost) {
		cost = float64(len(ref))*a.Options.DeleteCost + float64(len(attempt))*a.Options.InsertCost
	}

	path := make([]model.Pair, 0, len(pairs))
	for _, ij := range pairs {
		path = append(path, model.Pair{Ref: ij[0], Attempt: ij[1]})
	}
	return model.AlignmentResult{
		Path:          path,
		Cost:          cost,
		Method:        model.MethodHMMViterbi,
		WarpScale:     model.Float(w.Scale),
		WarpOffsetSec: model.Float(w.Offset),
	}
}
