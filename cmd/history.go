package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/pianodiff/db"
	"github.com/jsphweid/pianodiff/file"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/report"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	song     string
	segment  string
	attempts int
	store    bool
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.song, "song", "", "song id")
	f.StringVar(&historyFlags.segment, "segment", "", "only this segment")
	f.IntVar(&historyFlags.attempts, "attempts", 5, "number of recent attempts")
	f.BoolVar(&historyFlags.store, "store", false, "read from the history store instead of the report files")
	_ = historyCmd.MarkFlagRequired("song")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows recent attempts",
	Long:  `Shows match rate and missing/extra counts of the most recent attempts of a song.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows []model.HistoryRow
		var err error
		if historyFlags.store {
			store, openErr := db.Open(cfg.Store)
			if openErr != nil {
				return openErr
			}
			defer store.Close()
			rows, err = store.History(cmd.Context(), historyFlags.song, historyFlags.segment, historyFlags.attempts)
		} else {
			dir := file.DefaultSongs().ReportsDir(historyFlags.song)
			rows, err = report.History(dir, historyFlags.segment, historyFlags.attempts)
		}
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), rows)
		return nil
	},
}

func printHistory(w io.Writer, rows []model.HistoryRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No attempts yet.")
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%-16s %-10s match=%5.1f%% matched=%d/%d missing=%d extra=%d\n",
			humanize.Time(row.CreatedAt), row.SegmentID, row.MatchRate*100,
			row.Matched, row.RefNotes, row.Missing, row.Extra)
	}
}
