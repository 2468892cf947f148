package model

import "time"

const ReportVersion = "0.1"

const (
	StatusOK         = "ok"
	StatusLowQuality = "low_quality"
)

const (
	TierFull       = "full"
	TierSimplified = "simplified"
	TierTooLow     = "too_low"
)

type ReportInputs struct {
	ReferenceMid string `json:"reference_mid"`
	AttemptMid   string `json:"attempt_mid"`
	Meta         any    `json:"meta"`
}

type ReportCounts struct {
	// raw count, before same-pitch repeats are folded for the match rate
	RefNotes     int `json:"ref_notes"`
	AttemptNotes int `json:"attempt_notes"`
	Matched      int `json:"matched"`
	Missing      int `json:"missing"`
	Extra        int `json:"extra"`
}

type ReportSummary struct {
	Counts      ReportCounts `json:"counts"`
	MatchRate   float64      `json:"match_rate"`
	TopProblems []string     `json:"top_problems"`
}

type ReportExamples struct {
	MissingFirst10 []AnalysisEvent `json:"missing_first_10"`
	ExtraFirst10   []AnalysisEvent `json:"extra_first_10"`
}

type Report struct {
	ID          string          `json:"id"`
	Version     string          `json:"version"`
	SongID      string          `json:"song_id"`
	SegmentID   string          `json:"segment_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Inputs      ReportInputs    `json:"inputs"`
	Status      string          `json:"status"`
	QualityTier string          `json:"quality_tier"`
	Summary     ReportSummary   `json:"summary"`
	Metrics     Metrics         `json:"metrics"`
	Alignment   AlignmentResult `json:"alignment"`
	Events      []AnalysisEvent `json:"events"`
	Examples    ReportExamples  `json:"examples"`
}

// HistoryRow is the per-attempt summary kept by report stores.
type HistoryRow struct {
	ReportID  string    `json:"report_id"`
	SongID    string    `json:"song_id"`
	SegmentID string    `json:"segment_id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	MatchRate float64   `json:"match_rate"`
	Matched   int       `json:"matched"`
	RefNotes  int       `json:"ref_notes"`
	Missing   int       `json:"missing"`
	Extra     int       `json:"extra"`
}
