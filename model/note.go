package model

import (
	"errors"
	"fmt"
	"sort"
)

type Hand string

const (
	HandLeft    Hand = "L"
	HandRight   Hand = "R"
	HandUnknown Hand = "U"
)

var ErrInvalidNote = errors.New("invalid note")

// NoteEvent is a single note of a performance. Sequences of them are kept
// sorted by start time, then pitch.
type NoteEvent struct {
	Pitch     int     `json:"pitch" yaml:"pitch"`
	PitchName string  `json:"pitch_name" yaml:"pitch_name"`
	StartSec  float64 `json:"start_sec" yaml:"start_sec"`
	EndSec    float64 `json:"end_sec" yaml:"end_sec"`
	DurSec    float64 `json:"dur_sec" yaml:"dur_sec"`
	Velocity  int     `json:"velocity" yaml:"velocity"`
	Hand      Hand    `json:"hand" yaml:"hand"`
}

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName returns the scientific pitch name for a MIDI note number (60 -> C4).
func PitchName(pitch int) string {
	octave := pitch/12 - 1
	return fmt.Sprintf("%s%d", pitchClasses[pitch%12], octave)
}

func HandFor(pitch int, splitPitch int) Hand {
	if pitch < splitPitch {
		return HandLeft
	}
	return HandRight
}

// NewNote builds a NoteEvent with derived name, duration and hand.
func NewNote(pitch int, startSec float64, endSec float64, velocity int, splitPitch int) NoteEvent {
	return NoteEvent{
		Pitch:     pitch,
		PitchName: PitchName(pitch),
		StartSec:  startSec,
		EndSec:    endSec,
		DurSec:    endSec - startSec,
		Velocity:  velocity,
		Hand:      HandFor(pitch, splitPitch),
	}
}

func (n NoteEvent) Validate() error {
	if n.Pitch < 0 || n.Pitch > 127 {
		return fmt.Errorf("%w: pitch %d out of range 0..127", ErrInvalidNote, n.Pitch)
	}
	if n.Velocity < 0 || n.Velocity > 127 {
		return fmt.Errorf("%w: velocity %d out of range 0..127", ErrInvalidNote, n.Velocity)
	}
	if n.StartSec < 0 {
		return fmt.Errorf("%w: start_sec must be >= 0", ErrInvalidNote)
	}
	if n.EndSec < n.StartSec {
		return fmt.Errorf("%w: end_sec must be >= start_sec", ErrInvalidNote)
	}
	return nil
}

// Normalize fills in fields a loosely specified note (e.g. from JSON) may lack.
func (n NoteEvent) Normalize() NoteEvent {
	if n.PitchName == "" && n.Pitch >= 0 && n.Pitch <= 127 {
		n.PitchName = PitchName(n.Pitch)
	}
	n.DurSec = n.EndSec - n.StartSec
	if n.Hand == "" {
		n.Hand = HandUnknown
	}
	return n
}

// ValidateNotes checks every note and reports the first offending index.
func ValidateNotes(notes []NoteEvent) error {
	for i, n := range notes {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
	}
	return nil
}

// SortNotes orders notes by (start, pitch, end) in place.
func SortNotes(notes []NoteEvent) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.StartSec != b.StartSec {
			return a.StartSec < b.StartSec
		}
		if a.Pitch != b.Pitch {
			return a.Pitch < b.Pitch
		}
		return a.EndSec < b.EndSec
	})
}

func Onsets(notes []NoteEvent) []float64 {
	res := make([]float64, len(notes))
	for i, n := range notes {
		res[i] = n.StartSec
	}
	return res
}
