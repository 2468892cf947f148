package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/jsphweid/pianodiff/file"
	"github.com/jsphweid/pianodiff/midi"
	"github.com/jsphweid/pianodiff/sample"
	"github.com/spf13/cobra"
)

var excerptFlags struct {
	song    string
	segment string
	out     string
}

func init() {
	f := excerptCmd.Flags()
	f.StringVar(&excerptFlags.song, "song", "", "song id")
	f.StringVar(&excerptFlags.segment, "segment", "", "segment id (default: first segment)")
	f.StringVar(&excerptFlags.out, "out", "", "output file (default: <song>/excerpts/<segment>.mid)")
	_ = excerptCmd.MarkFlagRequired("song")
	rootCmd.AddCommand(excerptCmd)
}

var excerptCmd = &cobra.Command{
	Use:   "excerpt",
	Short: "Exports a segment of the reference",
	Long:  `Writes the measures of one segment of the reference to its own MIDI file for slow practice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		songs := file.DefaultSongs()
		meta, err := songs.LoadMeta(excerptFlags.song)
		if err != nil {
			return err
		}
		seg, err := meta.FindSegment(excerptFlags.segment)
		if err != nil {
			return err
		}
		if seg == nil {
			return fmt.Errorf("song %s has no segments", excerptFlags.song)
		}

		s, err := midi.ReadMidiFile(songs.ReferencePath(excerptFlags.song))
		if err != nil {
			return err
		}
		ts := meta.TimeSignature
		ex, err := sample.ExcerptMeasures(s, ts.BeatsPerMeasure, ts.BeatUnit, seg.StartMeasure, seg.EndMeasure)
		if err != nil {
			return err
		}

		out := excerptFlags.out
		if out == "" {
			out = filepath.Join(songs.SongDir(excerptFlags.song), "excerpts", seg.SegmentID+".mid")
		}
		if err := sample.WriteFile(ex, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "measures %d-%d written to %s\n", seg.StartMeasure, seg.EndMeasure, out)
		return nil
	},
}
