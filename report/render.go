package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/pianodiff/model"
)

const eventsPerMeasure = 8

func Render(r model.Report) string {
	c := r.Summary.Counts
	lines := []string{
		fmt.Sprintf("match_rate=%.2f", r.Summary.MatchRate),
		fmt.Sprintf("ref=%d attempt=%d matched=%d missing=%d extra=%d",
			c.RefNotes, c.AttemptNotes, c.Matched, c.Missing, c.Extra),
	}
	for i, p := range r.Summary.TopProblems {
		if i == 5 {
			break
		}
		lines = append(lines, "- "+p)
	}
	return strings.Join(lines, "\n")
}

// RenderLowMatch suggests slower practice when the attempt barely matched.
func RenderLowMatch(matchRate float64, songID string, segmentID string) string {
	return fmt.Sprintf("Match quality too low (%.2f).\nTry:\n"+
		"  pianodiff excerpt --song %s --segment %s\n"+
		"  pianodiff history --song %s --segment %s\n",
		matchRate, songID, segmentID, songID, segmentID)
}

// RenderDiff lists the events of the first maxMeasures measures that have
// any, at most eight per measure.
func RenderDiff(r model.Report, maxMeasures int) string {
	grouped := map[int][]model.AnalysisEvent{}
	for _, e := range r.Events {
		if e.Measure > 0 {
			grouped[e.Measure] = append(grouped[e.Measure], e)
		}
	}
	if len(grouped) == 0 {
		return "No event diff."
	}

	measures := make([]int, 0, len(grouped))
	for m := range grouped {
		measures = append(measures, m)
	}
	sort.Ints(measures)
	if maxMeasures >= 0 && len(measures) > maxMeasures {
		measures = measures[:maxMeasures]
	}

	var out []string
	for _, m := range measures {
		out = append(out, fmt.Sprintf("Measure %d:", m))
		for i, e := range grouped[m] {
			if i == eventsPerMeasure {
				break
			}
			if e.Type == model.WrongPitch {
				out = append(out, fmt.Sprintf("  beat %.2f: wrong %s -> expected %s", e.Beat, e.ActualPitchName, e.PitchName))
				continue
			}
			out = append(out, strings.TrimRight(fmt.Sprintf("  beat %.2f: %s %s", e.Beat, e.Type, e.PitchName), " "))
		}
	}
	return strings.Join(out, "\n")
}
