// Package analysis runs one full comparison: segment selection, alignment,
// match validation, event generation, metrics and the quality verdict.
package analysis

import (
	"github.com/jsphweid/pianodiff/align"
	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/events"
	"github.com/jsphweid/pianodiff/midi"
	"github.com/jsphweid/pianodiff/model"
)

type Options struct {
	// SegmentID picks the practice segment; empty means the first one.
	SegmentID string
	// SegmentRelative says the attempt was recorded from the start of the
	// segment rather than from the start of the song.
	SegmentRelative bool
}

type Result struct {
	RefNotes     []model.NoteEvent
	AttemptNotes []model.NoteEvent
	Events       []model.AnalysisEvent
	Metrics      model.Metrics
	MatchRate    float64
	QualityTier  string
	Alignment    model.AlignmentResult
	Matched      int
	RefCount     int
}

// Count returns how many events of the given type the result holds.
func (r *Result) Count(t model.EventType) int {
	n := 0
	for _, e := range r.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Analyze compares attempt against ref. A nil aligner means the global HMM
// aligner. Configuration errors are returned before anything is aligned.
func Analyze(ref []model.NoteEvent, attempt []model.NoteEvent, meta config.Meta, aligner align.Aligner, opts Options) (*Result, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if aligner == nil {
		aligner = align.NewHMMAligner(align.DefaultHMMOptions())
	}

	split := meta.HandSplit.SplitPitch
	rawRef, err := prepare(ref, split)
	if err != nil {
		return nil, err
	}
	rawAttempt, err := prepare(attempt, split)
	if err != nil {
		return nil, err
	}

	start, end, hasSegment, err := meta.SegmentBounds(opts.SegmentID)
	if err != nil {
		return nil, err
	}
	refNotes, attemptNotes := rawRef, rawAttempt
	if hasSegment {
		refNotes = shift(slice(rawRef, start, end), start)
		if opts.SegmentRelative {
			attemptNotes = slice(rawAttempt, 0, end-start)
		} else {
			attemptNotes = shift(slice(rawAttempt, start, end), start)
		}
	}

	alignment := aligner.Align(refNotes, attemptNotes)
	tol := meta.Tolerance
	matches := align.SelectValidMatches(refNotes, attemptNotes, alignment.Path, tol.MatchTolMs)
	refCount := align.DedupRefCount(refNotes, tol.ChordWindowMs)
	rate := align.MatchRate(len(matches), refCount)

	evts, err := events.Generate(refNotes, attemptNotes, matches, meta, opts.SegmentID)
	if err != nil {
		return nil, err
	}

	return &Result{
		RefNotes:     refNotes,
		AttemptNotes: attemptNotes,
		Events:       evts,
		Metrics:      BuildMetrics(refNotes, attemptNotes, matches),
		MatchRate:    rate,
		QualityTier:  QualityTier(rate),
		Alignment:    alignment,
		Matched:      len(matches),
		RefCount:     refCount,
	}, nil
}

// AnalyzeFiles reads both performances from MIDI files and analyzes them.
func AnalyzeFiles(refPath string, attemptPath string, meta config.Meta, aligner align.Aligner, opts Options) (*Result, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	ref, err := midi.ReadNotes(refPath, meta.HandSplit.SplitPitch)
	if err != nil {
		return nil, err
	}
	attempt, err := midi.ReadNotes(attemptPath, meta.HandSplit.SplitPitch)
	if err != nil {
		return nil, err
	}
	return Analyze(ref, attempt, meta, aligner, opts)
}

// prepare copies, completes, validates and sorts a note list. Notes coming
// from JSON may lack a name, duration or hand.
func prepare(notes []model.NoteEvent, splitPitch int) ([]model.NoteEvent, error) {
	res := make([]model.NoteEvent, len(notes))
	for i, n := range notes {
		if n.Hand == "" {
			n.Hand = model.HandFor(n.Pitch, splitPitch)
		}
		res[i] = n.Normalize()
	}
	if err := model.ValidateNotes(res); err != nil {
		return nil, err
	}
	model.SortNotes(res)
	return res, nil
}

// slice keeps notes starting in [start, end).
func slice(notes []model.NoteEvent, start float64, end float64) []model.NoteEvent {
	res := []model.NoteEvent{}
	for _, n := range notes {
		if start <= n.StartSec && n.StartSec < end {
			res = append(res, n)
		}
	}
	return res
}

func shift(notes []model.NoteEvent, offsetSec float64) []model.NoteEvent {
	if offsetSec == 0 {
		return notes
	}
	res := make([]model.NoteEvent, len(notes))
	for i, n := range notes {
		n.StartSec -= offsetSec
		n.EndSec -= offsetSec
		res[i] = n
	}
	return res
}
