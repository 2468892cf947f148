package align

const (
	minWarpScale = 0.25
	maxWarpScale = 4.0
	minSpanSec   = 1e-6
)

// Warp maps attempt time onto reference time: ref ≈ attempt*Scale + Offset.
type Warp struct {
	Scale  float64
	Offset float64
}

func IdentityWarp() Warp {
	return Warp{Scale: 1.0, Offset: 0.0}
}

func (w Warp) Apply(attemptSec float64) float64 {
	return attemptSec*w.Scale + w.Offset
}

func span(onsets []float64) (lo float64, width float64) {
	lo, hi := onsets[0], onsets[0]
	for _, v := range onsets[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi - lo
}

// EstimateWarp fits one global affine warp from the first and last onsets
// of each sequence. Empty or single-instant sequences give the identity.
func EstimateWarp(refOnsets []float64, attemptOnsets []float64) Warp {
	if len(refOnsets) == 0 || len(attemptOnsets) == 0 {
		return IdentityWarp()
	}
	refStart, refSpan := span(refOnsets)
	attemptStart, attemptSpan := span(attemptOnsets)
	if refSpan <= minSpanSec || attemptSpan <= minSpanSec {
		return IdentityWarp()
	}

	scale := refSpan / attemptSpan
	if scale < minWarpScale {
		scale = minWarpScale
	}
	if scale > maxWarpScale {
		scale = maxWarpScale
	}
	return Warp{Scale: scale, Offset: refStart - attemptStart*scale}
}
