package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/pianodiff/chord"
	"github.com/jsphweid/pianodiff/midi"
	"github.com/jsphweid/pianodiff/model"
	"github.com/spf13/cobra"
)

var inspectSonorities int

func init() {
	inspectCmd.Flags().IntVar(&inspectSonorities, "sonorities", 10, "number of sonorities to list")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a MIDI file",
	Long:  `Prints the timing, note count and first sonorities of a MIDI file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		stat, err := os.Stat(path)
		if err != nil {
			return err
		}
		s, err := midi.ReadMidiFile(path)
		if err != nil {
			return err
		}
		notes := midi.Notes(s, cfg.Midi.HandSplit)
		timing := midi.ReadTiming(s)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "file: %s (%s)\n", path, humanize.Bytes(uint64(stat.Size())))
		fmt.Fprintf(out, "tempo: %.2f bpm, meter %d/%d, %d measures, %.1fs\n",
			timing.BPM, timing.BeatsPerMeasure, timing.BeatUnit, timing.Measures, timing.DurationSec)
		fmt.Fprintf(out, "notes: %s\n", humanize.Comma(int64(len(notes))))

		for i, son := range chord.Sonorities(notes) {
			if i == inspectSonorities {
				break
			}
			names := make([]string, len(son.Pitches))
			for j, p := range son.Pitches {
				names[j] = model.PitchName(p)
			}
			fmt.Fprintf(out, "  %7.3fs  %-12s %s\n", son.OffsetSec, chord.Key(son.Pitches), strings.Join(names, " "))
		}
		return nil
	},
}
