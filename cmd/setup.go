package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/file"
	"github.com/jsphweid/pianodiff/midi"
	"github.com/jsphweid/pianodiff/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	song          string
	reference     string
	segmentLength int
}

func init() {
	f := setupCmd.Flags()
	f.StringVar(&setupFlags.song, "song", "", "song id")
	f.StringVar(&setupFlags.reference, "reference", "", "reference MIDI file")
	f.IntVar(&setupFlags.segmentLength, "segment-length", 0, "measures per practice segment (default: one segment for the whole song)")
	_ = setupCmd.MarkFlagRequired("song")
	_ = setupCmd.MarkFlagRequired("reference")
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Registers a song",
	Long: `Copies a reference MIDI file into the song directory and writes a meta.json
derived from its tempo and time signature. Edit meta.json to name segments or
tune tolerances.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		songs := file.DefaultSongs()
		song := setupFlags.song

		s, err := midi.ReadMidiFile(setupFlags.reference)
		if err != nil {
			return err
		}
		if len(midi.Notes(s, cfg.Midi.HandSplit)) == 0 {
			return fmt.Errorf("%s: %w", setupFlags.reference, midi.ErrNoNotes)
		}
		meta := songMeta(song, midi.ReadTiming(s), setupFlags.segmentLength)

		if err := os.MkdirAll(songs.AttemptsDir(song), 0755); err != nil {
			return err
		}
		if err := copyFile(setupFlags.reference, songs.ReferencePath(song)); err != nil {
			return err
		}
		path, err := songs.SaveMeta(song, meta)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"song": song, "segments": len(meta.Segments)}).Info("song registered")
		fmt.Fprintf(cmd.OutOrStdout(), "meta written to %s\nrecord attempts into %s\n", path, songs.AttemptsDir(song))
		return nil
	},
}

// songMeta derives a meta from the reference timing. segmentLength of 0
// makes one segment spanning the whole song.
func songMeta(songID string, timing midi.Timing, segmentLength int) config.Meta {
	meta := config.DefaultMeta(songID)
	meta.BPM = util.Min(util.Max(timing.BPM, 20), 240)
	if timing.BeatsPerMeasure > 0 && timing.BeatsPerMeasure <= 12 {
		meta.TimeSignature.BeatsPerMeasure = timing.BeatsPerMeasure
		meta.TimeSignature.BeatUnit = timing.BeatUnit
	}
	meta.HandSplit.SplitPitch = cfg.Midi.HandSplit
	meta.Tolerance = cfg.Tolerance

	if segmentLength <= 0 {
		segmentLength = timing.Measures
	}
	for start := 1; start <= timing.Measures; start += segmentLength {
		end := util.Min(start+segmentLength-1, timing.Measures)
		id := "default"
		if segmentLength < timing.Measures {
			id = fmt.Sprintf("m%d-%d", start, end)
		}
		meta.Segments = append(meta.Segments, config.Segment{
			SegmentID:       id,
			StartMeasure:    start,
			EndMeasure:      end,
			CountInMeasures: 1,
		})
	}
	return meta
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
