package cmd

import (
	"fmt"

	"github.com/jsphweid/pianodiff/file"
	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	song            string
	segment         string
	attempt         string
	method          string
	segmentRelative bool
	measures        int
	asJSON          bool
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.song, "song", "", "song id")
	f.StringVar(&analyzeFlags.segment, "segment", "", "segment id (default: first segment)")
	f.StringVar(&analyzeFlags.attempt, "attempt", "", "attempt MIDI file (default: latest recorded attempt)")
	f.StringVar(&analyzeFlags.method, "method", "", "alignment method, hmm or dtw (default from config)")
	f.BoolVar(&analyzeFlags.segmentRelative, "segment-relative", false, "attempt starts at the segment instead of the song")
	f.IntVar(&analyzeFlags.measures, "measures", 3, "measures shown in the diff")
	f.BoolVar(&analyzeFlags.asJSON, "json", false, "print the full report as JSON")
	_ = analyzeCmd.MarkFlagRequired("song")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyzes an attempt",
	Long:  `Aligns an attempt with the song's reference, saves the report and prints a summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, path, err := analyzeAttempt(cmd.Context(), file.DefaultSongs(), attemptRun{
			SongID:          analyzeFlags.song,
			SegmentID:       analyzeFlags.segment,
			AttemptPath:     analyzeFlags.attempt,
			Method:          analyzeFlags.method,
			SegmentRelative: analyzeFlags.segmentRelative,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if analyzeFlags.asJSON {
			return printJSON(out, r)
		}
		printReport(out, r, analyzeFlags.measures)
		fmt.Fprintf(out, "report: %s\n", path)
		return nil
	},
}
