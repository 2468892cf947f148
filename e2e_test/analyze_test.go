//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jsphweid/pianodiff/cmd"
	"github.com/jsphweid/pianodiff/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func n(pitch int, start float64, end float64) model.NoteEvent {
	return model.NewNote(pitch, start, end, 80, 60)
}

// two measures of 4/4 at 120 bpm, bass held under a right hand line
func reference() []model.NoteEvent {
	return []model.NoteEvent{
		n(48, 0.0, 1.9), n(60, 0.0, 0.4), n(64, 0.5, 0.9), n(67, 1.0, 1.4), n(72, 1.5, 1.9),
		n(43, 2.0, 3.9), n(71, 2.0, 2.4), n(74, 2.5, 2.9), n(67, 3.0, 3.4), n(71, 3.5, 3.9),
	}
}

func createAnalyzeReqBody(ref []model.NoteEvent, attempt []model.NoteEvent, method string) io.Reader {
	body := model.AnalyzeRequestBody{Reference: ref, Attempt: attempt, Method: method}
	data, err := json.Marshal(body)
	if err != nil {
		panic(err.Error())
	}
	return bytes.NewReader(data)
}

func analyze(t *testing.T, body io.Reader) model.AnalyzeResponse {
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	w := httptest.NewRecorder()
	cmd.HandleAnalyze(w, req)

	resp := w.Result()
	respBody, _ := io.ReadAll(resp.Body)
	require.Equal(t, 200, resp.StatusCode, string(respBody))

	var res model.AnalyzeResponse
	require.NoError(t, json.Unmarshal(respBody, &res))
	return res
}

func TestCleanTakeE2E(t *testing.T) {
	res := analyze(t, createAnalyzeReqBody(reference(), reference(), ""))

	assert := assert.New(t)
	assert.Equal(10, res.Matched)
	assert.Equal(1.0, res.MatchRate)
	assert.Equal(model.TierFull, res.QualityTier)
	assert.Empty(res.Events)
	assert.Equal(model.MethodHMMViterbi, res.Alignment.Method)
}

func TestLateNoteAndWrongPitchE2E(t *testing.T) {
	attempt := reference()
	attempt[7] = n(74, 2.56, 2.96)
	attempt[8] = n(65, 3.0, 3.4)

	for _, method := range []string{"hmm", "dtw"} {
		t.Run(method, func(t *testing.T) {
			res := analyze(t, createAnalyzeReqBody(reference(), attempt, method))

			assert := assert.New(t)
			assert.Equal(9, res.Matched)
			assert.InDelta(0.9, res.MatchRate, 1e-9)
			require.Len(t, res.Events, 2)

			late := res.Events[0]
			assert.Equal(model.TimingLate, late.Type)
			assert.Equal(2, late.Measure)
			assert.InDelta(2.0, late.Beat, 1e-9)
			assert.Equal("D5", late.PitchName)
			assert.InDelta(60, *late.DeltaMs, 1e-6)

			wrong := res.Events[1]
			assert.Equal(model.WrongPitch, wrong.Type)
			assert.Equal(2, wrong.Measure)
			assert.InDelta(3.0, wrong.Beat, 1e-9)
			assert.Equal("G4", wrong.PitchName)
			assert.Equal("F4", wrong.ActualPitchName)
			assert.Equal("played F4, expected G4", wrong.Evidence)
		})
	}
}
