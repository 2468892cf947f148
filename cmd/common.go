package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jsphweid/pianodiff/align"
	"github.com/jsphweid/pianodiff/analysis"
	"github.com/jsphweid/pianodiff/db"
	"github.com/jsphweid/pianodiff/file"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/report"
	"github.com/sirupsen/logrus"
)

func aligner(method string) (align.Aligner, error) {
	if method == "" {
		method = cfg.Analysis.Method
	}
	return align.New(method)
}

type attemptRun struct {
	SongID          string
	SegmentID       string
	AttemptPath     string
	Method          string
	SegmentRelative bool
}

// analyzeAttempt analyzes one attempt of a song, saves the report next to
// the song and records it in the history store.
func analyzeAttempt(ctx context.Context, songs file.Songs, run attemptRun) (model.Report, string, error) {
	var r model.Report
	meta, err := songs.LoadMeta(run.SongID)
	if err != nil {
		return r, "", err
	}
	if run.AttemptPath == "" {
		run.AttemptPath, err = songs.LatestAttempt(run.SongID)
		if err != nil {
			return r, "", err
		}
	}
	al, err := aligner(run.Method)
	if err != nil {
		return r, "", err
	}

	refPath := songs.ReferencePath(run.SongID)
	res, err := analysis.AnalyzeFiles(refPath, run.AttemptPath, meta, al, analysis.Options{
		SegmentID:       run.SegmentID,
		SegmentRelative: run.SegmentRelative,
	})
	if err != nil {
		return r, "", err
	}

	r = report.Build(res, meta, refPath, run.AttemptPath, run.SongID, run.SegmentID)
	path, err := report.Save(r, songs.ReportsDir(run.SongID))
	if err != nil {
		return r, "", err
	}
	recordHistory(ctx, r, path)
	return r, path, nil
}

// recordHistory mirrors a saved report into the configured store. The
// report file is the source of truth, so failures only warn.
func recordHistory(ctx context.Context, r model.Report, path string) {
	log := logrus.WithFields(logrus.Fields{"store": cfg.Store.Kind, "report": r.ID})
	store, err := db.Open(cfg.Store)
	if err != nil {
		log.WithError(err).Warn("history store unavailable")
		return
	}
	defer store.Close()
	if err := store.SaveReport(ctx, r, path); err != nil {
		log.WithError(err).Warn("could not record report")
	}
}

func printReport(w io.Writer, r model.Report, maxMeasures int) {
	if r.QualityTier == model.TierTooLow {
		fmt.Fprint(w, report.RenderLowMatch(r.Summary.MatchRate, r.SongID, r.SegmentID))
		return
	}
	fmt.Fprintln(w, report.Render(r))
	fmt.Fprintln(w, report.RenderDiff(r, maxMeasures))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
