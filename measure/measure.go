package measure

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGrid = errors.New("invalid timing grid")

// Position is a 1-based measure number and a 1-based fractional beat.
type Position struct {
	Measure int     `json:"measure"`
	Beat    float64 `json:"beat"`
}

// Grid maps seconds onto measures and beats at a fixed tempo.
type Grid struct {
	BPM             float64
	BeatsPerMeasure int
	StartMeasure    int
}

func NewGrid(bpm float64, beatsPerMeasure int, startMeasure int) (Grid, error) {
	g := Grid{BPM: bpm, BeatsPerMeasure: beatsPerMeasure, StartMeasure: startMeasure}
	return g, g.Validate()
}

func (g Grid) Validate() error {
	switch {
	case g.BPM <= 0:
		return fmt.Errorf("%w: bpm must be > 0", ErrInvalidGrid)
	case g.BeatsPerMeasure <= 0:
		return fmt.Errorf("%w: beats_per_measure must be > 0", ErrInvalidGrid)
	case g.BeatsPerMeasure > 12:
		return fmt.Errorf("%w: beats_per_measure must be <= 12", ErrInvalidGrid)
	case g.StartMeasure <= 0:
		return fmt.Errorf("%w: start_measure must be > 0", ErrInvalidGrid)
	}
	return nil
}

// At converts a time in seconds. Negative times clamp to zero.
func (g Grid) At(timeSec float64) Position {
	if timeSec < 0 {
		timeSec = 0
	}
	totalBeats := timeSec * g.BPM / 60.0
	per := float64(g.BeatsPerMeasure)
	whole := math.Floor(totalBeats / per)
	return Position{
		Measure: g.StartMeasure + int(whole),
		Beat:    1.0 + math.Mod(totalBeats, per),
	}
}

// TimeOf is the inverse of At for a measure start.
func (g Grid) TimeOf(measure int) float64 {
	beats := float64((measure - g.StartMeasure) * g.BeatsPerMeasure)
	return beats * 60.0 / g.BPM
}
