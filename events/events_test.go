package events

import (
	"testing"

	"github.com/jsphweid/pianodiff/align"
	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(pitch int, start float64, end float64) model.NoteEvent {
	return model.NewNote(pitch, start, end, 80, 60)
}

func generate(t *testing.T, ref []model.NoteEvent, attempt []model.NoteEvent, meta config.Meta) []model.AnalysisEvent {
	t.Helper()
	res := align.NewHMMAligner(align.DefaultHMMOptions()).Align(ref, attempt)
	evts, err := Generate(ref, attempt, res.Path, meta, "")
	require.NoError(t, err)
	return evts
}

func types(evts []model.AnalysisEvent) []model.EventType {
	res := make([]model.EventType, len(evts))
	for i, e := range evts {
		res[i] = e.Type
	}
	return res
}

func TestIdenticalSequencesProduceNoEvents(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(60, 0, 0.5), note(64, 0.5, 1.0), note(67, 1.0, 1.5), note(72, 1.0, 2.0)}
	evts := generate(t, ref, ref, config.DefaultMeta("song"))
	assert.NotNil(evts)
	assert.Empty(evts)
}

func TestTimingAndDurationEventsFromOnePair(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(60, 0, 0.5)}
	attempt := []model.NoteEvent{note(60, 0.06, 0.31)}

	evts := generate(t, ref, attempt, config.DefaultMeta("song"))
	require.Len(t, evts, 2)
	assert.Equal([]model.EventType{model.DurationShort, model.TimingLate}, types(evts))

	dur := evts[0]
	assert.Equal(model.SeverityMed, dur.Severity)
	assert.InDelta(0.5, *dur.ExpectedDurationSec, 1e-9)
	assert.InDelta(0.25, *dur.ActualDurationSec, 1e-9)

	timing := evts[1]
	assert.Equal(model.SeverityMed, timing.Severity)
	assert.InDelta(60.0, *timing.DeltaMs, 1e-6)
	assert.Equal(1, timing.Measure)
	assert.Equal(1.0, timing.Beat)
	assert.Equal(model.HandRight, timing.Hand)
}

func TestEarlyNoteIsTimingEarly(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(48, 1.0, 1.5)}
	attempt := []model.NoteEvent{note(48, 0.97, 1.47)}
	evts := generate(t, ref, attempt, config.DefaultMeta("song"))
	require.Len(t, evts, 1)
	assert.Equal(model.TimingEarly, evts[0].Type)
	assert.Equal(model.SeverityLow, evts[0].Severity)
	assert.Equal(model.HandLeft, evts[0].Hand)
}

func TestZeroDurationReferenceSkipsDurationCheck(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(60, 0, 0)}
	attempt := []model.NoteEvent{note(60, 0, 5)}
	evts := generate(t, ref, attempt, config.DefaultMeta("song"))
	assert.Empty(evts)
}

func TestTimingSeverity(t *testing.T) {
	assert := assert.New(t)
	grades := config.DefaultTolerance().TimingGrades
	cases := []struct {
		delta float64
		sev   model.Severity
		ok    bool
	}{
		{0, "", false},
		{25, "", false},
		{-25, "", false},
		{26, model.SeverityLow, true},
		{-50, model.SeverityLow, true},
		{51, model.SeverityMed, true},
		{100, model.SeverityMed, true},
		{-101, model.SeverityHigh, true},
	}
	for _, c := range cases {
		sev, ok := TimingSeverity(c.delta, grades)
		assert.Equal(c.ok, ok, "delta %v", c.delta)
		assert.Equal(c.sev, sev, "delta %v", c.delta)
	}
	assert.Equal(model.TimingEarly, timingType(-1))
	assert.Equal(model.TimingLate, timingType(1))
}

func TestClassifyDuration(t *testing.T) {
	assert := assert.New(t)
	cases := []struct {
		ratio float64
		typ   model.EventType
		sev   model.Severity
		ok    bool
	}{
		{-1, "", "", false},
		{0, "", "", false},
		{0.39, model.DurationShort, model.SeverityHigh, true},
		{0.4, model.DurationShort, model.SeverityMed, true},
		{0.59, model.DurationShort, model.SeverityMed, true},
		{0.6, "", "", false},
		{1.0, "", "", false},
		{1.5, "", "", false},
		{1.6, model.DurationLong, model.SeverityMed, true},
		{2.0, model.DurationLong, model.SeverityMed, true},
		{2.01, model.DurationLong, model.SeverityHigh, true},
	}
	for _, c := range cases {
		typ, sev, ok := ClassifyDuration(c.ratio, 0.6, 1.5)
		assert.Equal(c.ok, ok, "ratio %v", c.ratio)
		assert.Equal(c.typ, typ, "ratio %v", c.ratio)
		assert.Equal(c.sev, sev, "ratio %v", c.ratio)
	}
	assert.Equal(1.0, DurationRatio(note(60, 0, 0), note(60, 0, 3)))
	assert.InDelta(2.0, DurationRatio(note(60, 0, 1), note(60, 0, 2)), 1e-12)
}

func TestChordPartialMatch(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(60, 0, 1), note(64, 0, 1), note(67, 0, 1)}
	attempt := []model.NoteEvent{note(60, 0, 1), note(64, 0, 1), note(71, 0, 1)}

	evts := generate(t, ref, attempt, config.DefaultMeta("song"))
	require.Len(t, evts, 2)

	extra, missing := evts[0], evts[1]
	assert.Equal(model.ExtraNote, extra.Type)
	assert.Equal("B4", extra.PitchName)
	assert.Equal(model.SeverityMed, extra.Severity)
	assert.Equal(model.MissingNote, missing.Type)
	assert.Equal("G4", missing.PitchName)
	assert.Equal(model.SeverityHigh, missing.Severity)

	assert.Equal("chord-1", missing.GroupID)
	assert.Equal(missing.GroupID, extra.GroupID)
	assert.Contains(missing.Evidence, "chord partial")
	assert.Equal("chord partial: hit 2/3 [C4 E4] missing [G4] extra [B4]", missing.Evidence)
	assert.Equal(missing.Evidence, extra.Evidence)
}

func TestChordWithNothingPlayedFallsBackToSingleNotes(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(60, 0, 1), note(64, 0, 1), note(67, 0, 1)}
	attempt := []model.NoteEvent{note(72, 3, 4)}

	evts := generate(t, ref, attempt, config.DefaultMeta("song"))
	require.Len(t, evts, 4)
	for _, e := range evts {
		assert.Empty(e.GroupID)
	}
	assert.Equal([]model.EventType{model.MissingNote, model.MissingNote, model.MissingNote, model.ExtraNote}, types(evts))
	assert.Equal(2, evts[3].Measure)
	assert.Equal(3.0, evts[3].Beat)
}

func TestSingleMissingAndExtraNotes(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(60, 0, 0.5), note(62, 1.0, 1.5)}
	attempt := []model.NoteEvent{note(60, 0, 0.5), note(70, 1.8, 2.0)}

	evts := generate(t, ref, attempt, config.DefaultMeta("song"))
	require.Len(t, evts, 2)
	assert.Equal(model.MissingNote, evts[0].Type)
	assert.Equal("D4", evts[0].PitchName)
	assert.Equal(3.0, evts[0].Beat)
	assert.Equal(model.ExtraNote, evts[1].Type)
	assert.Equal(1, evts[1].Measure)
	assert.InDelta(4.6, evts[1].Beat, 1e-9)
}

func TestWrongPitchMergeFromGenerate(t *testing.T) {
	assert := assert.New(t)
	// 120 bpm in 4/4: 3.0s is measure 2 beat 3.0, 3.025s is beat 3.05
	ref := []model.NoteEvent{note(62, 3.0, 3.4)}
	attempt := []model.NoteEvent{note(64, 3.025, 3.4)}

	evts := generate(t, ref, attempt, config.DefaultMeta("song"))
	require.Len(t, evts, 1)
	e := evts[0]
	assert.Equal(model.WrongPitch, e.Type)
	assert.Equal(2, e.Measure)
	assert.Equal(3.0, e.Beat)
	assert.Equal(62, e.Pitch)
	require.NotNil(t, e.ActualPitch)
	assert.Equal(64, *e.ActualPitch)
	assert.Equal("E4", e.ActualPitchName)
	assert.Equal("played E4, expected D4", e.Evidence)
	assert.Equal(model.SeverityHigh, e.Severity)
	assert.InDelta(3.0, *e.TimeRefSec, 1e-12)
	assert.InDelta(3.025, *e.TimeAttemptSec, 1e-12)
}

func missingAt(measure int, beat float64, pitch int) model.AnalysisEvent {
	return model.AnalysisEvent{Type: model.MissingNote, Measure: measure, Beat: beat, Pitch: pitch, PitchName: model.PitchName(pitch), Severity: model.SeverityHigh}
}

func extraAt(measure int, beat float64, pitch int) model.AnalysisEvent {
	return model.AnalysisEvent{Type: model.ExtraNote, Measure: measure, Beat: beat, Pitch: pitch, PitchName: model.PitchName(pitch), Severity: model.SeverityMed}
}

func TestMergeWrongPitchNearestWins(t *testing.T) {
	assert := assert.New(t)
	in := []model.AnalysisEvent{
		missingAt(2, 3.0, 62),
		extraAt(2, 3.15, 65),
		extraAt(2, 3.05, 64),
	}
	out := MergeWrongPitch(in, DefaultBeatTolerance)
	require.Len(t, out, 2)
	assert.Equal(model.WrongPitch, out[0].Type)
	assert.Equal(64, *out[0].ActualPitch)
	assert.Equal(model.ExtraNote, out[1].Type)
	assert.Equal(65, out[1].Pitch)
}

func TestMergeWrongPitchFirstSeenWinsTies(t *testing.T) {
	assert := assert.New(t)
	in := []model.AnalysisEvent{
		missingAt(1, 2.0, 60),
		extraAt(1, 2.125, 61),
		extraAt(1, 1.875, 59),
	}
	out := MergeWrongPitch(in, DefaultBeatTolerance)
	require.Len(t, out, 2)
	assert.Equal(model.ExtraNote, out[0].Type)
	assert.Equal(59, out[0].Pitch)
	assert.Equal(model.WrongPitch, out[1].Type)
	assert.Equal(61, *out[1].ActualPitch)
}

func TestMergeWrongPitchRespectsMeasureAndTolerance(t *testing.T) {
	assert := assert.New(t)
	in := []model.AnalysisEvent{
		missingAt(1, 4.9, 60),
		extraAt(2, 1.0, 61),
		missingAt(3, 1.0, 62),
		extraAt(3, 1.5, 63),
	}
	out := MergeWrongPitch(in, DefaultBeatTolerance)
	assert.Equal([]model.EventType{model.MissingNote, model.ExtraNote, model.MissingNote, model.ExtraNote}, types(out))
}

func TestMergeWrongPitchPassesGroupedEventsThrough(t *testing.T) {
	assert := assert.New(t)
	miss := missingAt(1, 1.0, 67)
	miss.GroupID = "chord-1"
	extra := extraAt(1, 1.0, 71)
	extra.GroupID = "chord-1"
	timing := model.AnalysisEvent{Type: model.TimingLate, Measure: 1, Beat: 1.0, Pitch: 60, Severity: model.SeverityLow}

	out := MergeWrongPitch([]model.AnalysisEvent{miss, timing, extra}, DefaultBeatTolerance)
	assert.Equal([]model.EventType{model.ExtraNote, model.MissingNote, model.TimingLate}, types(out))
	assert.Empty(MergeWrongPitch(nil, DefaultBeatTolerance))
}

func TestGenerateUsesSegmentStartMeasure(t *testing.T) {
	assert := assert.New(t)
	meta := config.DefaultMeta("song")
	meta.Segments = []config.Segment{{SegmentID: "verse", StartMeasure: 5, EndMeasure: 8}}
	ref := []model.NoteEvent{note(60, 0, 0.5)}

	evts, err := Generate(ref, nil, nil, meta, "verse")
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(5, evts[0].Measure)

	_, err = Generate(ref, nil, nil, meta, "chorus")
	assert.ErrorIs(err, config.ErrSegmentNotFound)
}

func TestGenerateFailsFastOnInvalidConfig(t *testing.T) {
	assert := assert.New(t)
	meta := config.DefaultMeta("song")
	meta.Tolerance.MatchTolMs = -1
	_, err := Generate(nil, nil, nil, meta, "")
	assert.ErrorIs(err, config.ErrInvalidConfig)
	assert.Contains(err.Error(), "match_tol_ms")

	meta = config.DefaultMeta("song")
	meta.BPM = 300
	_, err = Generate(nil, nil, nil, meta, "")
	assert.ErrorIs(err, config.ErrInvalidConfig)
	assert.Contains(err.Error(), "bpm")
}

func TestGenerateIgnoresInvalidPathPairs(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{note(60, 0, 0.5)}
	attempt := []model.NoteEvent{note(60, 0.5, 1.0)}
	path := []model.Pair{{Ref: 0, Attempt: 0}, {Ref: 3, Attempt: 0}}

	evts, err := Generate(ref, attempt, path, config.DefaultMeta("song"), "")
	require.NoError(t, err)
	// 500ms apart is outside match_tol_ms, so the pair is not a match
	assert.Equal([]model.EventType{model.MissingNote, model.ExtraNote}, types(evts))
}

func TestGenerateIsDeterministic(t *testing.T) {
	assert := assert.New(t)
	ref := []model.NoteEvent{
		note(60, 0, 1), note(64, 0, 1), note(67, 0, 1),
		note(62, 1, 1.5), note(65, 1.5, 2), note(69, 2, 3), note(72, 2, 3),
	}
	attempt := []model.NoteEvent{
		note(60, 0.01, 1), note(63, 0.02, 1), note(66, 0.02, 1), note(67, 0.03, 1),
		note(62, 1.04, 1.3), note(64, 1.52, 2), note(69, 2.0, 3.2),
	}
	first := generate(t, ref, attempt, config.DefaultMeta("song"))
	for i := 0; i < 5; i++ {
		assert.Equal(first, generate(t, ref, attempt, config.DefaultMeta("song")))
	}
}
