package align

import (
	"math"
	"sort"

	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/util"
)

const DefaultGapPenaltySec = constants.GapPenaltySec

// DTWAligner aligns notes of equal pitch by onset time, one pitch at a time.
type DTWAligner struct {
	GapPenaltySec float64
}

func NewDTWAligner(gapPenaltySec float64) DTWAligner {
	return DTWAligner{GapPenaltySec: gapPenaltySec}
}

// bucketByPitch maps each pitch to the indices of its notes, in input order.
func bucketByPitch(notes []model.NoteEvent) map[int][]int {
	res := make(map[int][]int)
	for i, n := range notes {
		res[n.Pitch] = append(res[n.Pitch], i)
	}
	return res
}

func (a DTWAligner) Align(ref []model.NoteEvent, attempt []model.NoteEvent) model.AlignmentResult {
	refByPitch := bucketByPitch(ref)
	attemptByPitch := bucketByPitch(attempt)

	pitches := make(map[int]bool)
	for p := range refByPitch {
		pitches[p] = true
	}
	for p := range attemptByPitch {
		pitches[p] = true
	}

	path := []model.Pair{}
	var total float64
	for _, pitch := range util.SortedSet(pitches) {
		refBucket := refByPitch[pitch]
		attemptBucket := attemptByPitch[pitch]
		if len(refBucket) == 0 || len(attemptBucket) == 0 {
			total += float64(len(refBucket)+len(attemptBucket)) * a.GapPenaltySec
			continue
		}

		p := program{
			m: len(refBucket),
			n: len(attemptBucket),
			sub: func(i, j int) float64 {
				return math.Abs(ref[refBucket[i]].StartSec - attempt[attemptBucket[j]].StartSec)
			},
			deleteCost: a.GapPenaltySec,
			insertCost: a.GapPenaltySec,
		}
		local, cost := p.solve()
		total += cost
		for _, ij := range local {
			path = append(path, model.Pair{Ref: refBucket[ij[0]], Attempt: attemptBucket[ij[1]]})
		}
	}

	sort.Slice(path, func(i, j int) bool {
		if path[i].Ref != path[j].Ref {
			return path[i].Ref < path[j].Ref
		}
		return path[i].Attempt < path[j].Attempt
	})
	return model.AlignmentResult{Path: path, Cost: total, Method: model.MethodPerPitchDTW}
}
