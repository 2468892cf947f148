package analysis

import (
	"math"
	"sort"

	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/util"
)

// QualityTier buckets a match rate into full / simplified / too_low.
func QualityTier(matchRate float64) string {
	switch {
	case matchRate >= constants.FullTierMinRate:
		return model.TierFull
	case matchRate >= constants.SimplifiedTierMinRate:
		return model.TierSimplified
	}
	return model.TierTooLow
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// p90 picks the element at round-half-even(0.9*(n-1)) of the sorted values.
func p90(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.RoundToEven(0.9 * float64(len(sorted)-1)))
	return sorted[util.Min(idx, len(sorted)-1)]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return util.Sum(values) / float64(len(values))
}

func fraction(values []float64, pred func(float64) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

func meanVelocity(notes []model.NoteEvent, hand model.Hand) *float64 {
	var vels []float64
	for _, n := range notes {
		if n.Hand == hand {
			vels = append(vels, float64(n.Velocity))
		}
	}
	if len(vels) == 0 {
		return nil
	}
	return model.Float(mean(vels))
}

// BuildMetrics summarises timing and duration over validated matches and
// dynamics over the whole attempt.
func BuildMetrics(ref []model.NoteEvent, attempt []model.NoteEvent, matches []model.Pair) model.Metrics {
	var deltas, absDeltas, ratios []float64
	for _, m := range matches {
		r, a := ref[m.Ref], attempt[m.Attempt]
		d := (a.StartSec - r.StartSec) * 1000.0
		deltas = append(deltas, d)
		absDeltas = append(absDeltas, math.Abs(d))
		if r.DurSec > 0 {
			ratios = append(ratios, a.DurSec/r.DurSec)
		}
	}

	left := meanVelocity(attempt, model.HandLeft)
	right := meanVelocity(attempt, model.HandRight)
	var imbalance *float64
	if left != nil && right != nil {
		top := util.Max(*left, *right)
		if top == 0 {
			imbalance = model.Float(0)
		} else {
			imbalance = model.Float(math.Abs(*left-*right) / top)
		}
	}

	return model.Metrics{
		Timing: model.TimingMetrics{
			OnsetErrorMsMedian:  median(deltas),
			OnsetErrorMsP90Abs:  p90(absDeltas),
			OnsetErrorMsMeanAbs: mean(absDeltas),
		},
		Duration: model.DurationMetrics{
			DurationRatioMedian:   median(ratios),
			DurationTooShortRatio: fraction(ratios, func(v float64) bool { return v < constants.DurationShortRatio }),
			DurationTooLongRatio:  fraction(ratios, func(v float64) bool { return v > constants.DurationLongRatio }),
		},
		Dynamics: model.DynamicsMetrics{
			LeftMeanVelocity:  left,
			RightMeanVelocity: right,
			VelocityImbalance: imbalance,
		},
	}
}
