package report

import (
	"fmt"

	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/model"
)

// Thresholds gate a report, e.g. in CI against a recorded attempt.
type Thresholds struct {
	Quality      string  `yaml:"quality"`
	MatchRateMin float64 `yaml:"match_rate_min"`
	TimingP90Max float64 `yaml:"timing_p90_max"`
	MissingMax   int     `yaml:"missing_max"`
	ExtraMax     int     `yaml:"extra_max"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Quality:      model.TierFull,
		MatchRateMin: 0.90,
		TimingP90Max: 120,
		MissingMax:   2,
		ExtraMax:     2,
	}
}

// tier falls back to the status for reports written without quality_tier.
func tier(r model.Report) string {
	if r.QualityTier != "" {
		return r.QualityTier
	}
	switch r.Status {
	case model.StatusOK:
		return model.TierFull
	case model.StatusLowQuality:
		if r.Summary.MatchRate >= constants.SimplifiedTierMinRate {
			return model.TierSimplified
		}
		return model.TierTooLow
	}
	return ""
}

// Check returns one message per threshold the report fails. None means the
// report passes.
func Check(r model.Report, th Thresholds) []string {
	var failures []string
	got := tier(r)
	if got != th.Quality {
		if got == "" {
			got = "(missing)"
		}
		failures = append(failures, fmt.Sprintf("quality_tier expected %s, got %s", th.Quality, got))
	}
	rate := r.Summary.MatchRate
	if rate < th.MatchRateMin {
		failures = append(failures, fmt.Sprintf("match_rate expected >= %.4f, got %.4f", th.MatchRateMin, rate))
	}
	p90 := r.Metrics.Timing.OnsetErrorMsP90Abs
	if p90 > th.TimingP90Max {
		failures = append(failures, fmt.Sprintf("timing_p90 expected <= %.2f, got %.2f", th.TimingP90Max, p90))
	}
	counts := r.Summary.Counts
	if counts.Missing > th.MissingMax {
		failures = append(failures, fmt.Sprintf("missing expected <= %d, got %d", th.MissingMax, counts.Missing))
	}
	if counts.Extra > th.ExtraMax {
		failures = append(failures, fmt.Sprintf("extra expected <= %d, got %d", th.ExtraMax, counts.Extra))
	}
	return failures
}

// MetricsLine is the one-line summary printed before a threshold check.
func MetricsLine(r model.Report) string {
	got := tier(r)
	if got == "" {
		got = "(missing)"
	}
	return fmt.Sprintf("report metrics: quality_tier=%s match_rate=%.4f timing_p90=%.2f missing=%d extra=%d",
		got, r.Summary.MatchRate, r.Metrics.Timing.OnsetErrorMsP90Abs, r.Summary.Counts.Missing, r.Summary.Counts.Extra)
}
