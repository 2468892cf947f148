package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/measure"
)

var ErrSegmentNotFound = errors.New("segment not found")

type TimeSignature struct {
	BeatsPerMeasure int `json:"beats_per_measure" yaml:"beats_per_measure"`
	BeatUnit        int `json:"beat_unit" yaml:"beat_unit"`
}

type Segment struct {
	SegmentID       string `json:"segment_id" yaml:"segment_id"`
	Label           string `json:"label,omitempty" yaml:"label,omitempty"`
	StartMeasure    int    `json:"start_measure" yaml:"start_measure"`
	EndMeasure      int    `json:"end_measure" yaml:"end_measure"`
	CountInMeasures int    `json:"count_in_measures,omitempty" yaml:"count_in_measures,omitempty"`
}

type HandSplit struct {
	SplitPitch int `json:"split_pitch" yaml:"split_pitch"`
}

// Meta describes one song: its timing grid, practice segments and the
// tolerances attempts are judged with.
type Meta struct {
	SongID        string        `json:"song_id" yaml:"song_id"`
	TimeSignature TimeSignature `json:"time_signature" yaml:"time_signature"`
	BPM           float64       `json:"bpm" yaml:"bpm"`
	Segments      []Segment     `json:"segments" yaml:"segments"`
	HandSplit     HandSplit     `json:"hand_split" yaml:"hand_split"`
	Tolerance     Tolerance     `json:"tolerance" yaml:"tolerance"`
}

func DefaultMeta(songID string) Meta {
	return Meta{
		SongID: songID,
		TimeSignature: TimeSignature{
			BeatsPerMeasure: constants.DefaultBeatsPerMeasure,
			BeatUnit:        constants.DefaultBeatUnit,
		},
		BPM:       constants.DefaultBPM,
		HandSplit: HandSplit{SplitPitch: constants.DefaultSplitPitch},
		Tolerance: DefaultTolerance(),
	}
}

// UnmarshalJSON fills keys missing from the document with the default hand
// split and tolerance, so a meta.json only needs to spell out what it changes.
func (m *Meta) UnmarshalJSON(dat []byte) error {
	type plain Meta
	p := plain{
		HandSplit: HandSplit{SplitPitch: constants.DefaultSplitPitch},
		Tolerance: DefaultTolerance(),
	}
	if err := json.Unmarshal(dat, &p); err != nil {
		return err
	}
	*m = Meta(p)
	return nil
}

// ValidateTiming checks the values measure/beat positions are derived from.
func (m Meta) ValidateTiming() error {
	bpm := m.TimeSignature.BeatsPerMeasure
	if bpm <= 0 {
		return invalid("invalid time signature: beats_per_measure must be > 0")
	}
	if bpm > 12 {
		return invalid("invalid time signature: beats_per_measure must be <= 12")
	}
	if m.BPM < 20 || m.BPM > 240 {
		return invalid("invalid bpm: must be in range 20..240")
	}
	return nil
}

func (m Meta) Validate() error {
	if err := m.ValidateTiming(); err != nil {
		return err
	}
	if m.HandSplit.SplitPitch < 0 || m.HandSplit.SplitPitch > 127 {
		return invalid("invalid hand_split: split_pitch must be between 0 and 127")
	}
	for _, s := range m.Segments {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return m.Tolerance.Validate()
}

func (s Segment) Validate() error {
	if s.StartMeasure <= 0 || s.EndMeasure < s.StartMeasure {
		return invalid("invalid segment range: %d-%d", s.StartMeasure, s.EndMeasure)
	}
	return nil
}

// FindSegment returns the named segment, or the first one when id is empty.
// A nil segment with a nil error means the song has no segments.
func (m Meta) FindSegment(id string) (*Segment, error) {
	if len(m.Segments) == 0 {
		if id != "" {
			return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
		}
		return nil, nil
	}
	if id == "" {
		s := m.Segments[0]
		return &s, nil
	}
	for _, s := range m.Segments {
		if s.SegmentID == id {
			s := s
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
}

// StartMeasure is the measure number an analysis of the segment counts from.
func (m Meta) StartMeasure(segmentID string) (int, error) {
	s, err := m.FindSegment(segmentID)
	if err != nil {
		return 0, err
	}
	if s == nil {
		return 1, nil
	}
	if s.StartMeasure <= 0 {
		return 0, invalid("invalid segment start_measure: %d", s.StartMeasure)
	}
	return s.StartMeasure, nil
}

// Grid is the song's timing grid with measure numbers counted from
// startMeasure.
func (m Meta) Grid(startMeasure int) measure.Grid {
	return measure.Grid{
		BPM:             m.BPM,
		BeatsPerMeasure: m.TimeSignature.BeatsPerMeasure,
		StartMeasure:    startMeasure,
	}
}

// SegmentBounds returns the segment window in seconds, [start, end).
// ok is false when the song has no segments.
func (m Meta) SegmentBounds(segmentID string) (start float64, end float64, ok bool, err error) {
	s, err := m.FindSegment(segmentID)
	if err != nil || s == nil {
		return 0, 0, false, err
	}
	if err := s.Validate(); err != nil {
		return 0, 0, false, err
	}
	g := m.Grid(1)
	return g.TimeOf(s.StartMeasure), g.TimeOf(s.EndMeasure + 1), true, nil
}
