package config

import (
	"errors"
	"fmt"

	"github.com/jsphweid/pianodiff/constants"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type TimingGrades struct {
	GreatMs         float64 `json:"great_ms" yaml:"great_ms"`
	GoodMs          float64 `json:"good_ms" yaml:"good_ms"`
	RushedDraggedMs float64 `json:"rushed_dragged_ms" yaml:"rushed_dragged_ms"`
}

type Tolerance struct {
	MatchTolMs         float64      `json:"match_tol_ms" yaml:"match_tol_ms"`
	TimingGrades       TimingGrades `json:"timing_grades" yaml:"timing_grades"`
	ChordWindowMs      float64      `json:"chord_window_ms" yaml:"chord_window_ms"`
	DurationShortRatio float64      `json:"duration_short_ratio" yaml:"duration_short_ratio"`
	DurationLongRatio  float64      `json:"duration_long_ratio" yaml:"duration_long_ratio"`
}

func DefaultTolerance() Tolerance {
	return Tolerance{
		MatchTolMs: constants.MatchTolMs,
		TimingGrades: TimingGrades{
			GreatMs:         constants.GreatMs,
			GoodMs:          constants.GoodMs,
			RushedDraggedMs: constants.RushedDraggedMs,
		},
		ChordWindowMs:      constants.ChordWindowMs,
		DurationShortRatio: constants.DurationShortRatio,
		DurationLongRatio:  constants.DurationLongRatio,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate rejects out-of-range tolerance values. Nothing is clamped.
func (t Tolerance) Validate() error {
	if t.MatchTolMs < 0 {
		return invalid("invalid match_tol_ms: must be >= 0")
	}
	if t.ChordWindowMs < 0 {
		return invalid("invalid chord_window_ms: must be >= 0")
	}
	if t.DurationShortRatio <= 0 {
		return invalid("invalid duration_short_ratio: must be > 0")
	}
	if t.DurationLongRatio <= 0 {
		return invalid("invalid duration_long_ratio: must be > 0")
	}
	if t.DurationShortRatio >= t.DurationLongRatio {
		return invalid("invalid duration ratios: duration_short_ratio must be < duration_long_ratio")
	}
	return t.TimingGrades.Validate()
}

func (g TimingGrades) Validate() error {
	if g.GreatMs <= 0 || g.GoodMs <= 0 || g.RushedDraggedMs <= 0 {
		return invalid("invalid timing_grades: values must be > 0")
	}
	if !(g.GreatMs <= g.GoodMs && g.GoodMs <= g.RushedDraggedMs) {
		return invalid("invalid timing_grades: expected great_ms <= good_ms <= rushed_dragged_ms")
	}
	return nil
}
