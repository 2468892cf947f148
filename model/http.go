package model

import "github.com/jsphweid/pianodiff/config"

type AnalyzeRequestBody struct {
	Reference       []NoteEvent  `json:"reference"`
	Attempt         []NoteEvent  `json:"attempt"`
	Meta            *config.Meta `json:"meta,omitempty"`
	SegmentID       string       `json:"segment_id,omitempty"`
	Method          string       `json:"method,omitempty"`
	SegmentRelative bool         `json:"attempt_is_segment_relative,omitempty"`
}

type AnalyzeResponse struct {
	ID          string          `json:"id"`
	Events      []AnalysisEvent `json:"events"`
	Alignment   AlignmentResult `json:"alignment"`
	MatchRate   float64         `json:"match_rate"`
	Matched     int             `json:"matched"`
	QualityTier string          `json:"quality_tier"`
	Metrics     Metrics         `json:"metrics"`
}

type HistoryResponse struct {
	SongID string       `json:"song_id"`
	Rows   []HistoryRow `json:"rows"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
