package cmd

import (
	"errors"
	"fmt"

	"github.com/jsphweid/pianodiff/report"
	"github.com/spf13/cobra"
)

var errThresholds = errors.New("report thresholds failed")

var checkFlags struct {
	path       string
	thresholds report.Thresholds
}

func init() {
	def := report.DefaultThresholds()
	f := checkCmd.Flags()
	f.StringVar(&checkFlags.path, "report", "", "report JSON file")
	f.StringVar(&checkFlags.thresholds.Quality, "quality", def.Quality, "required quality tier")
	f.Float64Var(&checkFlags.thresholds.MatchRateMin, "match-rate-min", def.MatchRateMin, "minimum match rate")
	f.Float64Var(&checkFlags.thresholds.TimingP90Max, "timing-p90-max", def.TimingP90Max, "maximum p90 onset error in ms")
	f.IntVar(&checkFlags.thresholds.MissingMax, "missing-max", def.MissingMax, "maximum missing notes")
	f.IntVar(&checkFlags.thresholds.ExtraMax, "extra-max", def.ExtraMax, "maximum extra notes")
	_ = checkCmd.MarkFlagRequired("report")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Checks a report against thresholds",
	Long:  `Checks a saved report against quality thresholds and fails when any is missed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := report.Load(checkFlags.path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, report.MetricsLine(r))
		failures := report.Check(r, checkFlags.thresholds)
		if len(failures) == 0 {
			fmt.Fprintln(out, "threshold check passed")
			return nil
		}
		for _, f := range failures {
			fmt.Fprintf(out, "FAIL: %s\n", f)
		}
		return fmt.Errorf("%w: %d", errThresholds, len(failures))
	},
}
