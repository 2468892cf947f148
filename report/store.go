package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jsphweid/pianodiff/model"
	"github.com/sirupsen/logrus"
)

var ErrInvalidAttempts = errors.New("attempts must be > 0")

const timestampLayout = "20060102_150405"

// Save writes r into dir as <timestamp>.json, adding _01, _02, ... when a
// report with the same second already exists.
func Save(r model.Report, dir string) (string, error) {
	if err := Validate(r); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	ts := r.CreatedAt.Local().Format(timestampLayout)
	path := filepath.Join(dir, ts+".json")
	for i := 1; exists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%02d.json", ts, i))
	}

	dat, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, dat, 0644); err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"song":    r.SongID,
		"segment": r.SegmentID,
		"path":    path,
	}).Debug("report saved")
	return path, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func Load(path string) (model.Report, error) {
	var r model.Report
	dat, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(dat, &r); err != nil {
		return r, fmt.Errorf("invalid report.json: %w", err)
	}
	return r, Validate(r)
}

// List returns the report files of dir sorted by name, which is creation
// order. A missing dir has no reports.
func List(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// History summarises the last attempts reports of dir, oldest first.
// Reports that cannot be read are skipped. A non-empty segmentID keeps only
// that segment.
func History(dir string, segmentID string, attempts int) ([]model.HistoryRow, error) {
	if attempts <= 0 {
		return nil, ErrInvalidAttempts
	}
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}

	rows := []model.HistoryRow{}
	for _, path := range paths {
		r, err := Load(path)
		if err != nil {
			logrus.WithError(err).WithField("path", path).Warn("skipping unreadable report")
			continue
		}
		if segmentID != "" && r.SegmentID != segmentID {
			continue
		}
		rows = append(rows, Row(r, path))
	}
	if len(rows) > attempts {
		rows = rows[len(rows)-attempts:]
	}
	return rows, nil
}

// Row is the history summary of one stored report. MatchRate is taken as
// stored; RefNotes is the raw reference count.
func Row(r model.Report, path string) model.HistoryRow {
	counts := r.Summary.Counts
	return model.HistoryRow{
		ReportID:  r.ID,
		SongID:    r.SongID,
		SegmentID: r.SegmentID,
		Path:      path,
		CreatedAt: r.CreatedAt,
		MatchRate: r.Summary.MatchRate,
		Matched:   counts.Matched,
		RefNotes:  counts.RefNotes,
		Missing:   counts.Missing,
		Extra:     counts.Extra,
	}
}
