package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/report"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const createReportsSQL = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	song_id TEXT NOT NULL,
	segment_id TEXT NOT NULL,
	path TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	match_rate REAL NOT NULL,
	matched INTEGER NOT NULL,
	ref_notes INTEGER NOT NULL,
	missing INTEGER NOT NULL,
	extra INTEGER NOT NULL,
	body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_song ON reports(song_id, created_at);
`

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if _, err := db.Exec(createReportsSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create reports table")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveReport(ctx context.Context, r model.Report, path string) error {
	body, err := json.Marshal(r)
	if err != nil {
		return errors.WithStack(err)
	}
	row := report.Row(r, path)
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports
			(id, song_id, segment_id, path, created_at, match_rate, matched, ref_notes, missing, extra, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ReportID, row.SongID, row.SegmentID, row.Path, row.CreatedAt.UnixNano(),
		row.MatchRate, row.Matched, row.RefNotes, row.Missing, row.Extra, string(body))
	return errors.Wrapf(err, "failed to save report %s", r.ID)
}

func (s *SQLiteStore) History(ctx context.Context, songID string, segmentID string, limit int) ([]model.HistoryRow, error) {
	if limit <= 0 {
		return nil, report.ErrInvalidAttempts
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, song_id, segment_id, path, created_at, match_rate, matched, ref_notes, missing, extra
		FROM reports
		WHERE song_id = ? AND (? = '' OR segment_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, songID, segmentID, segmentID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query history")
	}
	defer rows.Close()

	var res []model.HistoryRow
	for rows.Next() {
		var row model.HistoryRow
		var created int64
		if err := rows.Scan(&row.ReportID, &row.SongID, &row.SegmentID, &row.Path, &created,
			&row.MatchRate, &row.Matched, &row.RefNotes, &row.Missing, &row.Extra); err != nil {
			return nil, errors.Wrap(err, "failed to scan history row")
		}
		row.CreatedAt = time.Unix(0, created).UTC()
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return lastN(res, limit), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
