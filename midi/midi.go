package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrNoNotes = errors.New("midi file contains no notes")

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading midi file %s: %w", filepath, err)
	}
	s, err := ReadMidi(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return s, nil
}

func ReadMidi(r io.Reader) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if rec := recover(); rec != nil {
			s = nil
			e = fmt.Errorf("error parsing midi file: %v", rec)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing midi file: %w", err)
	}
	return res, nil
}

type openNote struct {
	startSec float64
	velocity int
}

// Notes flattens every track into a sorted note list. Note offs (and note
// ons with velocity 0) close the oldest open note of the same channel and
// key. Notes still held at the end of the file end at the last event.
func Notes(s *smf.SMF, splitPitch int) []model.NoteEvent {
	var notes []model.NoteEvent
	var lastSec float64
	open := make(map[[2]uint8][]openNote)

	closeNote := func(channel, key uint8, atSec float64) {
		k := [2]uint8{channel, key}
		queue := open[k]
		if len(queue) == 0 {
			return
		}
		on := queue[0]
		open[k] = queue[1:]
		notes = append(notes, model.NewNote(int(key), on.startSec, atSec, on.velocity, splitPitch))
	}

	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			absSec := float64(s.TimeAt(absTicks)) / 1e6
			if absSec > lastSec {
				lastSec = absSec
			}

			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				if velocity == 0 {
					closeNote(channel, key, absSec)
					continue
				}
				k := [2]uint8{channel, key}
				open[k] = append(open[k], openNote{startSec: absSec, velocity: int(velocity)})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				closeNote(channel, key, absSec)
			}
		}
	}

	for k, queue := range open {
		for range queue {
			closeNote(k[0], k[1], lastSec)
		}
	}

	model.SortNotes(notes)
	return notes
}

// ReadNotes parses a MIDI file into a sorted note list.
func ReadNotes(filepath string, splitPitch int) ([]model.NoteEvent, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, err
	}
	notes := Notes(s, splitPitch)
	if len(notes) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath, ErrNoNotes)
	}
	return notes, nil
}

// Timing is what a MIDI file says about its own tempo and meter.
type Timing struct {
	BPM             float64
	BeatsPerMeasure int
	BeatUnit        int
	DurationSec     float64
	Measures        int
}

// ReadTiming takes the first tempo and time signature found, falling back to
// 120 bpm in 4/4.
func ReadTiming(s *smf.SMF) Timing {
	t := Timing{
		BPM:             constants.DefaultBPM,
		BeatsPerMeasure: constants.DefaultBeatsPerMeasure,
		BeatUnit:        constants.DefaultBeatUnit,
	}
	var foundTempo, foundMeter bool
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			absSec := float64(s.TimeAt(absTicks)) / 1e6
			if absSec > t.DurationSec {
				t.DurationSec = absSec
			}

			var bpm float64
			var num, denom uint8
			switch {
			case !foundTempo && event.Message.GetMetaTempo(&bpm):
				t.BPM = math.Round(bpm*100) / 100
				foundTempo = true
			case !foundMeter && event.Message.GetMetaMeter(&num, &denom):
				t.BeatsPerMeasure = int(num)
				t.BeatUnit = int(denom)
				foundMeter = true
			}
		}
	}

	beatSec := 60.0 / t.BPM
	t.Measures = int(math.Ceil(t.DurationSec / beatSec / float64(t.BeatsPerMeasure)))
	if t.Measures < 1 {
		t.Measures = 1
	}
	return t
}
