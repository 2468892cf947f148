package events

import (
	"math"

	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/model"
)

const (
	severeShortRatio = 0.4
	severeLongRatio  = 2.0
)

func timingType(deltaMs float64) model.EventType {
	if deltaMs < 0 {
		return model.TimingEarly
	}
	return model.TimingLate
}

// TimingSeverity grades an onset deviation. ok is false when the deviation
// is within the "great" band and deserves no event.
func TimingSeverity(deltaMs float64, grades config.TimingGrades) (sev model.Severity, ok bool) {
	abs := math.Abs(deltaMs)
	switch {
	case abs <= grades.GreatMs:
		return "", false
	case abs <= grades.GoodMs:
		return model.SeverityLow, true
	case abs <= grades.RushedDraggedMs:
		return model.SeverityMed, true
	}
	return model.SeverityHigh, true
}

// DurationRatio is attempt/ref duration, 1.0 when the reference note has none.
func DurationRatio(ref model.NoteEvent, attempt model.NoteEvent) float64 {
	if ref.DurSec > 0 {
		return attempt.DurSec / ref.DurSec
	}
	return 1.0
}

// ClassifyDuration maps a duration ratio to an event. Ratios far outside
// the configured band are always high severity.
func ClassifyDuration(ratio float64, shortRatio float64, longRatio float64) (model.EventType, model.Severity, bool) {
	switch {
	case ratio <= 0:
		return "", "", false
	case ratio < severeShortRatio:
		return model.DurationShort, model.SeverityHigh, true
	case ratio > severeLongRatio:
		return model.DurationLong, model.SeverityHigh, true
	case ratio < shortRatio:
		return model.DurationShort, model.SeverityMed, true
	case ratio > longRatio:
		return model.DurationLong, model.SeverityMed, true
	}
	return "", "", false
}
