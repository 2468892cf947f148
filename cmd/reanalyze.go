package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/jsphweid/pianodiff/analysis"
	"github.com/jsphweid/pianodiff/file"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var reanalyzeFlags struct {
	song    string
	segment string
	method  string
	workers int
	save    bool
}

func init() {
	f := reanalyzeCmd.Flags()
	f.StringVar(&reanalyzeFlags.song, "song", "", "song id")
	f.StringVar(&reanalyzeFlags.segment, "segment", "", "segment id (default: first segment)")
	f.StringVar(&reanalyzeFlags.method, "method", "", "alignment method, hmm or dtw (default from config)")
	f.IntVar(&reanalyzeFlags.workers, "workers", 0, "parallel analyses (default from config)")
	f.BoolVar(&reanalyzeFlags.save, "save", false, "save a new report per attempt")
	_ = reanalyzeCmd.MarkFlagRequired("song")
	rootCmd.AddCommand(reanalyzeCmd)
}

var reanalyzeCmd = &cobra.Command{
	Use:   "reanalyze",
	Short: "Re-runs the analysis of every recorded attempt",
	Long:  `Re-runs the analysis of every recorded attempt of a song, e.g. after changing tolerances.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		songs := file.DefaultSongs()
		song := reanalyzeFlags.song
		meta, err := songs.LoadMeta(song)
		if err != nil {
			return err
		}
		attempts, err := songs.Attempts(song)
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			return fmt.Errorf("%w for song %s", file.ErrNoAttempts, song)
		}
		al, err := aligner(reanalyzeFlags.method)
		if err != nil {
			return err
		}

		opts := analysis.Options{SegmentID: reanalyzeFlags.segment}
		jobs := make([]analysis.Job, len(attempts))
		for i, path := range attempts {
			jobs[i] = analysis.Job{
				Name:        filepath.Base(path),
				RefPath:     songs.ReferencePath(song),
				AttemptPath: path,
				Meta:        meta,
				Options:     opts,
			}
		}

		workers := reanalyzeFlags.workers
		if workers <= 0 {
			workers = cfg.Analysis.Workers
		}
		out := cmd.OutOrStdout()
		for _, res := range analysis.AnalyzeBatch(cmd.Context(), jobs, al, workers) {
			if res.Err != nil {
				logrus.WithError(res.Err).WithField("attempt", res.Job.Name).Error("analysis failed")
				continue
			}
			r := res.Result
			fmt.Fprintf(out, "%-24s match=%.2f tier=%-10s missing=%d extra=%d\n",
				res.Job.Name, r.MatchRate, r.QualityTier, r.Count(model.MissingNote), r.Count(model.ExtraNote))
			if !reanalyzeFlags.save {
				continue
			}
			rep := report.Build(r, meta, res.Job.RefPath, res.Job.AttemptPath, song, reanalyzeFlags.segment)
			path, err := report.Save(rep, songs.ReportsDir(song))
			if err != nil {
				return err
			}
			recordHistory(cmd.Context(), rep, path)
		}
		return nil
	},
}
