// Package report turns an analysis result into the persisted report.json
// document and keeps the per-song report history on disk.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/pianodiff/analysis"
	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/model"
)

const exampleLimit = 10

// Build assembles the report for one analysis. Empty songID and segmentID
// fall back to the meta song and its first segment.
func Build(res *analysis.Result, meta config.Meta, refPath string, attemptPath string, songID string, segmentID string) model.Report {
	if songID == "" {
		songID = meta.SongID
	}
	if songID == "" {
		songID = "unknown"
	}
	if segmentID == "" {
		segmentID = "default"
		if len(meta.Segments) > 0 && meta.Segments[0].SegmentID != "" {
			segmentID = meta.Segments[0].SegmentID
		}
	}

	status := model.StatusOK
	if res.QualityTier != model.TierFull {
		status = model.StatusLowQuality
	}

	evts := res.Events
	if evts == nil {
		evts = []model.AnalysisEvent{}
	}

	return model.Report{
		ID:        uuid.New().String(),
		Version:   model.ReportVersion,
		SongID:    songID,
		SegmentID: segmentID,
		CreatedAt: time.Now().UTC(),
		Inputs: model.ReportInputs{
			ReferenceMid: refPath,
			AttemptMid:   attemptPath,
			Meta:         meta,
		},
		Status:      status,
		QualityTier: res.QualityTier,
		Summary: model.ReportSummary{
			Counts: model.ReportCounts{
				RefNotes:     len(res.RefNotes),
				AttemptNotes: len(res.AttemptNotes),
				Matched:      res.Matched,
				Missing:      res.Count(model.MissingNote),
				Extra:        res.Count(model.ExtraNote),
			},
			MatchRate:   res.MatchRate,
			TopProblems: TopProblems(evts, problemLimit(res.QualityTier)),
		},
		Metrics:   res.Metrics,
		Alignment: res.Alignment,
		Events:    evts,
		Examples: model.ReportExamples{
			MissingFirst10: firstOfType(evts, model.MissingNote, exampleLimit),
			ExtraFirst10:   firstOfType(evts, model.ExtraNote, exampleLimit),
		},
	}
}

func problemLimit(tier string) int {
	switch tier {
	case model.TierTooLow:
		return 0
	case model.TierSimplified:
		return 3
	}
	return 5
}

type problemKey struct {
	eventType model.EventType
	measure   int
}

// TopProblems counts events per (type, measure) and formats the most common
// ones as "M<measure> <type> x<count>". Equal counts keep first-seen order.
func TopProblems(evts []model.AnalysisEvent, limit int) []string {
	res := []string{}
	if limit <= 0 {
		return res
	}

	counts := map[problemKey]int{}
	var order []problemKey
	for _, e := range evts {
		k := problemKey{e.Type, e.Measure}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	for _, k := range order {
		if len(res) == limit {
			break
		}
		res = append(res, fmt.Sprintf("M%d %s x%d", k.measure, k.eventType, counts[k]))
	}
	return res
}

func firstOfType(evts []model.AnalysisEvent, t model.EventType, limit int) []model.AnalysisEvent {
	res := []model.AnalysisEvent{}
	for _, e := range evts {
		if len(res) == limit {
			break
		}
		if e.Type == t {
			res = append(res, e)
		}
	}
	return res
}

// Validate checks the fields every stored report must carry.
func Validate(r model.Report) error {
	if r.Version == "" {
		return fmt.Errorf("invalid report.json: version is required")
	}
	if r.SongID == "" {
		return fmt.Errorf("invalid report.json: song_id is required")
	}
	if r.Status != model.StatusOK && r.Status != model.StatusLowQuality {
		return fmt.Errorf("invalid report.json: unknown status %q", r.Status)
	}
	if r.Summary.MatchRate < 0 || r.Summary.MatchRate > 1 {
		return fmt.Errorf("invalid report.json: match_rate %.4f out of range", r.Summary.MatchRate)
	}
	return nil
}
