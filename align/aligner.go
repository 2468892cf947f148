package align

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jsphweid/pianodiff/model"
)

var ErrUnknownMethod = errors.New("align: unknown alignment method")

// Aligner aligns a whole reference sequence against a whole attempt.
type Aligner interface {
	Align(ref []model.NoteEvent, attempt []model.NoteEvent) model.AlignmentResult
}

// New returns the aligner for a method name. Accepted names are "dtw" /
// "per_pitch_dtw" and "hmm" / "hmm_viterbi", both with default options.
func New(method string) (Aligner, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "dtw", model.MethodPerPitchDTW:
		return NewDTWAligner(DefaultGapPenaltySec), nil
	case "hmm", model.MethodHMMViterbi:
		return NewHMMAligner(DefaultHMMOptions()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}
