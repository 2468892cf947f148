// Package sample cuts practice excerpts out of a reference MIDI file.
package sample

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsphweid/pianodiff/util"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrNotMetric = errors.New("midi file does not use metric ticks")

type timedMsg struct {
	absTicks uint64
	msg      smf.Message
}

func isEndOfTrack(msg smf.Message) bool {
	return len(msg) >= 2 && msg[0] == 0xFF && msg[1] == 0x2F
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// MeasureTicks is the length of one measure of the given meter in ticks.
func MeasureTicks(s *smf.SMF, beatsPerMeasure int, beatUnit int) (uint64, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return 0, ErrNotMetric
	}
	if beatsPerMeasure <= 0 || beatUnit <= 0 {
		return 0, fmt.Errorf("invalid meter %d/%d", beatsPerMeasure, beatUnit)
	}
	return uint64(beatsPerMeasure) * uint64(mt) * 4 / uint64(beatUnit), nil
}

// Excerpt copies the notes starting in [startTicks, endTicks) into a new SMF
// shifted so startTicks lands on 0. Other events before the window (tempo,
// meter, program) are kept at 0. Notes still held at endTicks are released
// there.
func Excerpt(s *smf.SMF, startTicks uint64, endTicks uint64) (*smf.SMF, error) {
	if endTicks <= startTicks {
		return nil, fmt.Errorf("empty excerpt window %d-%d", startTicks, endTicks)
	}
	res := smf.New()
	res.TimeFormat = s.TimeFormat

	for _, track := range s.Tracks {
		var out []timedMsg
		var absTicks uint64
		held := map[int]int{}

		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			if isEndOfTrack(evt.Message) {
				continue
			}

			var channel, key, velocity uint8
			isOn := evt.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0
			isOff := !isOn && (evt.Message.GetNoteOff(&channel, &key, &velocity) ||
				evt.Message.GetNoteOn(&channel, &key, &velocity))
			k := int(channel)<<8 | int(key)

			switch {
			case isOn:
				if absTicks >= startTicks && absTicks < endTicks {
					out = append(out, timedMsg{absTicks - startTicks, evt.Message})
					held[k]++
				}
			case isOff:
				if held[k] > 0 {
					out = append(out, timedMsg{min(absTicks, endTicks) - startTicks, evt.Message})
					held[k]--
				}
			case absTicks < startTicks:
				out = append(out, timedMsg{0, evt.Message})
			case absTicks < endTicks:
				out = append(out, timedMsg{absTicks - startTicks, evt.Message})
			}
		}

		end := endTicks - startTicks
		for _, k := range util.SortedKeys(held) {
			for n := held[k]; n > 0; n-- {
				off := gomidi.NoteOff(uint8(k>>8), uint8(k&0xFF))
				out = append(out, timedMsg{end, smf.Message(off)})
			}
		}

		var tr smf.Track
		var last uint64
		for _, m := range out {
			tr.Add(uint32(m.absTicks-last), m.msg)
			last = m.absTicks
		}
		tr.Close(uint32(end - last))
		if err := res.Add(tr); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ExcerptMeasures cuts measures [startMeasure, endMeasure] (1-based,
// inclusive) of a file in the given meter.
func ExcerptMeasures(s *smf.SMF, beatsPerMeasure int, beatUnit int, startMeasure int, endMeasure int) (*smf.SMF, error) {
	if startMeasure <= 0 || endMeasure < startMeasure {
		return nil, fmt.Errorf("invalid measure range %d-%d", startMeasure, endMeasure)
	}
	perMeasure, err := MeasureTicks(s, beatsPerMeasure, beatUnit)
	if err != nil {
		return nil, err
	}
	return Excerpt(s, uint64(startMeasure-1)*perMeasure, uint64(endMeasure)*perMeasure)
}

func WriteFile(s *smf.SMF, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.WriteTo(f)
	return err
}
