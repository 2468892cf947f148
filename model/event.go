package model

type EventType string

const (
	MissingNote   EventType = "missing_note"
	ExtraNote     EventType = "extra_note"
	WrongPitch    EventType = "wrong_pitch"
	TimingEarly   EventType = "timing_early"
	TimingLate    EventType = "timing_late"
	DurationShort EventType = "duration_short"
	DurationLong  EventType = "duration_long"
)

type Severity string

const (
	SeverityLow  Severity = "low"
	SeverityMed  Severity = "med"
	SeverityHigh Severity = "high"
)

// AnalysisEvent is one diagnostic finding of an analysis run.
type AnalysisEvent struct {
	Type      EventType `json:"type"`
	Measure   int       `json:"measure"`
	Beat      float64   `json:"beat"`
	Pitch     int       `json:"pitch"`
	PitchName string    `json:"pitch_name"`
	Hand      Hand      `json:"hand"`
	Severity  Severity  `json:"severity"`
	Evidence  string    `json:"evidence,omitempty"`

	DeltaMs             *float64 `json:"delta_ms,omitempty"`
	TimeRefSec          *float64 `json:"time_ref_sec,omitempty"`
	TimeAttemptSec      *float64 `json:"time_attempt_sec,omitempty"`
	ExpectedDurationSec *float64 `json:"expected_duration_sec,omitempty"`
	ActualDurationSec   *float64 `json:"actual_duration_sec,omitempty"`

	ActualPitch     *int   `json:"actual_pitch,omitempty"`
	ActualPitchName string `json:"actual_pitch_name,omitempty"`

	// chord correlation id, set only by chord grouping
	GroupID string `json:"group_id,omitempty"`
}

func Float(v float64) *float64 {
	return &v
}

func Int(v int) *int {
	return &v
}
