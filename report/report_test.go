package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsphweid/pianodiff/analysis"
	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(pitch int, start float64, end float64) model.NoteEvent {
	return model.NewNote(pitch, start, end, 80, 60)
}

func scale() []model.NoteEvent {
	return []model.NoteEvent{
		note(60, 0.0, 0.4),
		note(62, 0.5, 0.9),
		note(64, 1.0, 1.4),
		note(65, 1.5, 1.9),
		note(67, 2.0, 2.4),
	}
}

func event(t model.EventType, measure int, beat float64, pitch int) model.AnalysisEvent {
	return model.AnalysisEvent{
		Type:      t,
		Measure:   measure,
		Beat:      beat,
		Pitch:     pitch,
		PitchName: model.PitchName(pitch),
		Hand:      model.HandRight,
		Severity:  model.SeverityHigh,
	}
}

func sampleReport(createdAt time.Time, segmentID string, rate float64) model.Report {
	return model.Report{
		ID:          "r-" + segmentID,
		Version:     model.ReportVersion,
		SongID:      "song",
		SegmentID:   segmentID,
		CreatedAt:   createdAt,
		Status:      model.StatusOK,
		QualityTier: model.TierFull,
		Summary: model.ReportSummary{
			Counts:    model.ReportCounts{RefNotes: 10, AttemptNotes: 9, Matched: 9, Missing: 1},
			MatchRate: rate,
		},
		Events: []model.AnalysisEvent{},
	}
}

func TestBuildFromAnalysis(t *testing.T) {
	assert := assert.New(t)
	meta := config.DefaultMeta("scale")
	ref := scale()
	attempt := []model.NoteEvent{ref[0], ref[1], ref[3], ref[4]}

	res, err := analysis.Analyze(ref, attempt, meta, nil, analysis.Options{})
	require.NoError(t, err)

	r := Build(res, meta, "ref.mid", "take.mid", "", "")
	assert.NotEmpty(r.ID)
	assert.Equal(model.ReportVersion, r.Version)
	assert.Equal("scale", r.SongID)
	assert.Equal("default", r.SegmentID)
	assert.Equal(model.StatusOK, r.Status)
	assert.Equal(model.TierFull, r.QualityTier)
	assert.Equal(model.ReportCounts{RefNotes: 5, AttemptNotes: 4, Matched: 4, Missing: 1, Extra: 0}, r.Summary.Counts)
	assert.InDelta(0.8, r.Summary.MatchRate, 1e-9)
	assert.Equal([]string{"M1 missing_note x1"}, r.Summary.TopProblems)
	assert.Len(r.Examples.MissingFirst10, 1)
	assert.Equal("E4", r.Examples.MissingFirst10[0].PitchName)
	assert.Empty(r.Examples.ExtraFirst10)
	assert.Equal("ref.mid", r.Inputs.ReferenceMid)
	assert.Equal(model.MethodHMMViterbi, r.Alignment.Method)
	assert.NoError(Validate(r))
}

func TestBuildUsesFirstSegmentAndLowQualityStatus(t *testing.T) {
	assert := assert.New(t)
	meta := config.DefaultMeta("song")
	meta.Segments = []config.Segment{{SegmentID: "verse", StartMeasure: 1, EndMeasure: 4}}

	res := &analysis.Result{
		QualityTier: model.TierSimplified,
		MatchRate:   0.3,
		Events: []model.AnalysisEvent{
			event(model.MissingNote, 1, 1, 60),
			event(model.MissingNote, 2, 1, 62),
			event(model.MissingNote, 3, 1, 64),
			event(model.ExtraNote, 4, 1, 65),
		},
	}
	r := Build(res, meta, "a", "b", "other", "")
	assert.Equal("other", r.SongID)
	assert.Equal("verse", r.SegmentID)
	assert.Equal(model.StatusLowQuality, r.Status)
	assert.Len(r.Summary.TopProblems, 3)

	res.QualityTier = model.TierTooLow
	r = Build(res, meta, "a", "b", "", "chorus")
	assert.Equal("chorus", r.SegmentID)
	assert.Equal(model.StatusLowQuality, r.Status)
	assert.Empty(r.Summary.TopProblems)
	assert.NotNil(r.Summary.TopProblems)
}

func TestTopProblemsMostCommonFirst(t *testing.T) {
	assert := assert.New(t)
	evts := []model.AnalysisEvent{
		event(model.TimingLate, 1, 1, 60),
		event(model.MissingNote, 2, 1, 62),
		event(model.MissingNote, 2, 2, 64),
		event(model.ExtraNote, 3, 1, 65),
		event(model.MissingNote, 2, 3, 67),
		event(model.ExtraNote, 3, 2, 69),
	}
	assert.Equal([]string{
		"M2 missing_note x3",
		"M3 extra_note x2",
		"M1 timing_late x1",
	}, TopProblems(evts, 5))
	assert.Equal([]string{"M2 missing_note x3"}, TopProblems(evts, 1))
	assert.Empty(TopProblems(nil, 5))
}

func TestSaveAddsSuffixOnCollision(t *testing.T) {
	assert := assert.New(t)
	dir := filepath.Join(t.TempDir(), "reports")
	at := time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local)

	first, err := Save(sampleReport(at, "a", 0.9), dir)
	require.NoError(t, err)
	second, err := Save(sampleReport(at, "a", 0.9), dir)
	require.NoError(t, err)
	third, err := Save(sampleReport(at, "a", 0.9), dir)
	require.NoError(t, err)

	assert.Equal("20240301_093015.json", filepath.Base(first))
	assert.Equal("20240301_093015_01.json", filepath.Base(second))
	assert.Equal("20240301_093015_02.json", filepath.Base(third))

	loaded, err := Load(first)
	require.NoError(t, err)
	assert.Equal("song", loaded.SongID)
	assert.Equal(0.9, loaded.Summary.MatchRate)
	assert.True(at.Equal(loaded.CreatedAt))
}

func TestSaveRejectsInvalidReport(t *testing.T) {
	assert := assert.New(t)
	r := sampleReport(time.Now(), "a", 0.9)
	r.Status = "great"
	_, err := Save(r, t.TempDir())
	assert.Error(err)
}

func TestListMissingDir(t *testing.T) {
	assert := assert.New(t)
	paths, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(paths)
}

func TestHistory(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)

	_, err := Save(sampleReport(base, "a", 0.5), dir)
	require.NoError(t, err)
	_, err = Save(sampleReport(base.Add(time.Minute), "b", 0.6), dir)
	require.NoError(t, err)
	_, err = Save(sampleReport(base.Add(2*time.Minute), "a", 0.7), dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zzz.json"), []byte("{not json"), 0644))

	rows, err := History(dir, "", 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal([]float64{0.5, 0.6, 0.7}, []float64{rows[0].MatchRate, rows[1].MatchRate, rows[2].MatchRate})

	rows, err = History(dir, "", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal("b", rows[0].SegmentID)
	assert.Equal("a", rows[1].SegmentID)

	rows, err = History(dir, "a", 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(0.7, rows[1].MatchRate)
	assert.Equal(9, rows[1].Matched)
	assert.Equal(1, rows[1].Missing)

	_, err = History(dir, "", 0)
	assert.ErrorIs(err, ErrInvalidAttempts)
}

func TestRowKeepsStoredRate(t *testing.T) {
	assert := assert.New(t)
	// 9 of 10 raw reference notes matched, yet the stored rate stands
	r := sampleReport(time.Now(), "a", 0)
	row := Row(r, "x.json")
	assert.Equal(0.0, row.MatchRate)
	assert.Equal(10, row.RefNotes)
	assert.Equal("x.json", row.Path)
}

func TestCheckThresholds(t *testing.T) {
	assert := assert.New(t)
	r := sampleReport(time.Now(), "a", 0.95)
	r.Metrics.Timing.OnsetErrorMsP90Abs = 40
	assert.Empty(Check(r, DefaultThresholds()))

	r.QualityTier = ""
	r.Status = model.StatusLowQuality
	r.Summary.MatchRate = 0.25
	r.Metrics.Timing.OnsetErrorMsP90Abs = 150
	r.Summary.Counts.Missing = 3
	r.Summary.Counts.Extra = 4
	assert.Equal([]string{
		"quality_tier expected full, got simplified",
		"match_rate expected >= 0.9000, got 0.2500",
		"timing_p90 expected <= 120.00, got 150.00",
		"missing expected <= 2, got 3",
		"extra expected <= 2, got 4",
	}, Check(r, DefaultThresholds()))
	assert.Equal("report metrics: quality_tier=simplified match_rate=0.2500 timing_p90=150.00 missing=3 extra=4", MetricsLine(r))

	r.Status = ""
	assert.Contains(Check(r, DefaultThresholds())[0], "got (missing)")
}

func TestRender(t *testing.T) {
	assert := assert.New(t)
	r := sampleReport(time.Now(), "a", 0.9)
	r.Summary.TopProblems = []string{"M2 missing_note x1"}
	assert.Equal("match_rate=0.90\nref=10 attempt=9 matched=9 missing=1 extra=0\n- M2 missing_note x1", Render(r))
}

func TestRenderDiff(t *testing.T) {
	assert := assert.New(t)
	r := sampleReport(time.Now(), "a", 0.9)
	assert.Equal("No event diff.", RenderDiff(r, 3))

	wrong := event(model.WrongPitch, 2, 3, 64)
	wrong.ActualPitch = model.Int(62)
	wrong.ActualPitchName = "D4"
	r.Events = []model.AnalysisEvent{
		event(model.MissingNote, 4, 1, 60),
		wrong,
		event(model.ExtraNote, 1, 2.5, 67),
		event(model.TimingLate, 0, 1, 67),
	}
	assert.Equal("Measure 1:\n  beat 2.50: extra_note G4\nMeasure 2:\n  beat 3.00: wrong D4 -> expected E4", RenderDiff(r, 2))
	assert.Contains(RenderDiff(r, 3), "Measure 4:\n  beat 1.00: missing_note C4")
}

func TestRenderLowMatch(t *testing.T) {
	assert := assert.New(t)
	out := RenderLowMatch(0.12, "song", "verse")
	assert.Contains(out, "Match quality too low (0.12).")
	assert.Contains(out, "--song song --segment verse")
}
