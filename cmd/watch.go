package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/pianodiff/file"
	"github.com/jsphweid/pianodiff/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchFlags struct {
	song     string
	segment  string
	method   string
	interval time.Duration
	settle   time.Duration
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchFlags.song, "song", "", "song id")
	f.StringVar(&watchFlags.segment, "segment", "", "segment id (default: first segment)")
	f.StringVar(&watchFlags.method, "method", "", "alignment method, hmm or dtw (default from config)")
	f.DurationVar(&watchFlags.interval, "interval", time.Second, "how often the attempts dir is scanned")
	f.DurationVar(&watchFlags.settle, "settle", 2*time.Second, "quiet time before a new attempt is analyzed")
	_ = watchCmd.MarkFlagRequired("song")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Analyzes attempts as they are recorded",
	Long: `Watches the song's attempts directory and analyzes each new attempt once
the recorder has stopped writing to it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		songs := file.DefaultSongs()
		dir := songs.AttemptsDir(watchFlags.song)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "watching %s\n", dir)

		ctx := cmd.Context()
		return watchAttempts(ctx, dir, watchFlags.interval, watchFlags.settle, func(path string) {
			r, _, err := analyzeAttempt(ctx, songs, attemptRun{
				SongID:      watchFlags.song,
				SegmentID:   watchFlags.segment,
				AttemptPath: path,
				Method:      watchFlags.method,
			})
			if err != nil {
				logrus.WithError(err).WithField("attempt", path).Error("analysis failed")
				return
			}
			printReport(out, r, 3)
		})
	},
}

// watchAttempts scans dir every interval and calls onNew with the newest
// unseen MIDI file once nothing new has shown up for settle. Files present
// at start are not reported.
func watchAttempts(ctx context.Context, dir string, interval time.Duration, settle time.Duration, onNew func(path string)) error {
	seen := map[string]bool{}
	scan := func() ([]string, error) {
		paths, err := util.GatherAllMidiPaths(dir, 0)
		if err != nil {
			return nil, err
		}
		var fresh []string
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				fresh = append(fresh, p)
			}
		}
		return fresh, nil
	}
	if _, err := scan(); err != nil {
		return err
	}

	var mu sync.Mutex
	var latest string
	debounced := debounce.New(settle)
	fire := func() {
		mu.Lock()
		path := latest
		mu.Unlock()
		if ctx.Err() == nil {
			onNew(path)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fresh, err := scan()
			if err != nil {
				logrus.WithError(err).WithField("dir", dir).Warn("scan failed")
				continue
			}
			if len(fresh) == 0 {
				continue
			}
			mu.Lock()
			latest = fresh[len(fresh)-1]
			mu.Unlock()
			logrus.WithField("attempt", latest).Debug("new attempt")
			debounced(fire)
		}
	}
}
