package model

const (
	MethodPerPitchDTW = "per_pitch_dtw"
	MethodHMMViterbi  = "hmm_viterbi"
)

// Pair links a reference note index to an attempt note index.
type Pair struct {
	Ref     int `json:"ref"`
	Attempt int `json:"attempt"`
}

type AlignmentResult struct {
	Path   []Pair  `json:"path"`
	Cost   float64 `json:"cost"`
	Method string  `json:"method"`

	// only set by the global aligner
	WarpScale     *float64 `json:"warp_scale,omitempty"`
	WarpOffsetSec *float64 `json:"warp_offset_sec,omitempty"`
}
