package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/pianodiff/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestLayout(t *testing.T) {
	assert := assert.New(t)
	s := Songs{Root: "/data/songs"}
	assert.Equal("/data/songs/etude/reference.mid", s.ReferencePath("etude"))
	assert.Equal("/data/songs/etude/meta.json", s.MetaPath("etude"))
	assert.Equal("/data/songs/etude/attempts", s.AttemptsDir("etude"))
	assert.Equal("/data/songs/etude/reports", s.ReportsDir("etude"))
}

func TestDefaultSongsFollowsHome(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("PIANODIFF_HOME", "/tmp/pd")
	assert.Equal("/tmp/pd/songs", DefaultSongs().Root)
}

func TestMetaRoundTrip(t *testing.T) {
	assert := assert.New(t)
	s := Songs{Root: t.TempDir()}

	meta := config.DefaultMeta("ignored")
	meta.Segments = []config.Segment{{SegmentID: "verse", StartMeasure: 1, EndMeasure: 8, CountInMeasures: 1}}
	path, err := s.SaveMeta("etude", meta)
	require.NoError(t, err)
	assert.Equal(s.MetaPath("etude"), path)

	loaded, err := s.LoadMeta("etude")
	require.NoError(t, err)
	assert.Equal("etude", loaded.SongID)
	assert.Equal(meta.Segments, loaded.Segments)
	assert.Equal(meta.Tolerance, loaded.Tolerance)
}

func TestLoadMetaFillsOptionalKeys(t *testing.T) {
	assert := assert.New(t)
	s := Songs{Root: t.TempDir()}
	require.NoError(t, os.MkdirAll(s.SongDir("etude"), 0755))
	minimal := `{
	"song_id": "etude",
	"time_signature": {"beats_per_measure": 3, "beat_unit": 4},
	"bpm": 90,
	"segments": [{"segment_id": "a", "start_measure": 1, "end_measure": 4}],
	"tolerance": {"match_tol_ms": 100, "timing_grades": {"great_ms": 20, "good_ms": 40, "rushed_dragged_ms": 90}}
}`
	require.NoError(t, os.WriteFile(s.MetaPath("etude"), []byte(minimal), 0644))

	meta, err := s.LoadMeta("etude")
	require.NoError(t, err)
	assert.Equal(60, meta.HandSplit.SplitPitch)
	assert.Equal(50.0, meta.Tolerance.ChordWindowMs)
	assert.Equal(0.6, meta.Tolerance.DurationShortRatio)
	assert.Equal(1.5, meta.Tolerance.DurationLongRatio)
	assert.Equal(100.0, meta.Tolerance.MatchTolMs)
	assert.Equal(config.TimingGrades{GreatMs: 20, GoodMs: 40, RushedDraggedMs: 90}, meta.Tolerance.TimingGrades)
	assert.Equal(3, meta.TimeSignature.BeatsPerMeasure)
}

func TestSaveMetaRejectsInvalid(t *testing.T) {
	assert := assert.New(t)
	s := Songs{Root: t.TempDir()}
	meta := config.DefaultMeta("etude")
	meta.BPM = 5
	_, err := s.SaveMeta("etude", meta)
	assert.ErrorIs(err, config.ErrInvalidConfig)
	_, err = os.Stat(s.MetaPath("etude"))
	assert.True(os.IsNotExist(err))
}

func TestLoadMetaErrors(t *testing.T) {
	assert := assert.New(t)
	s := Songs{Root: t.TempDir()}
	_, err := s.LoadMeta("nope")
	assert.ErrorIs(err, os.ErrNotExist)

	require.NoError(t, os.MkdirAll(s.SongDir("bad"), 0755))
	require.NoError(t, os.WriteFile(s.MetaPath("bad"), []byte(`{"bpm": 1000}`), 0644))
	_, err = s.LoadMeta("bad")
	assert.ErrorContains(err, "invalid meta.json")
}

func TestAttempts(t *testing.T) {
	assert := assert.New(t)
	s := Songs{Root: t.TempDir()}

	_, err := s.LatestAttempt("etude")
	assert.ErrorIs(err, ErrNoAttempts)

	touch(t, filepath.Join(s.AttemptsDir("etude"), "20240102_080000.mid"))
	touch(t, filepath.Join(s.AttemptsDir("etude"), "20240101_080000.mid"))
	touch(t, filepath.Join(s.AttemptsDir("etude"), "notes.txt"))

	paths, err := s.Attempts("etude")
	require.NoError(t, err)
	assert.Len(paths, 2)

	latest, err := s.LatestAttempt("etude")
	require.NoError(t, err)
	assert.Equal("20240102_080000.mid", filepath.Base(latest))
}

func TestList(t *testing.T) {
	assert := assert.New(t)
	s := Songs{Root: t.TempDir()}

	songs, err := s.List()
	require.NoError(t, err)
	assert.Empty(songs)

	_, err = s.SaveMeta("b-song", config.DefaultMeta("b-song"))
	require.NoError(t, err)
	touch(t, s.ReferencePath("b-song"))
	touch(t, filepath.Join(s.AttemptsDir("b-song"), "1.mid"))
	touch(t, s.MetaPath("a-song"))
	touch(t, filepath.Join(s.Root, "stray.txt"))

	songs, err = s.List()
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal("a-song", songs[0].SongID)
	assert.False(songs[0].HasReference)
	assert.Equal("b-song", songs[1].SongID)
	assert.True(songs[1].HasReference)
	assert.Equal(1, songs[1].Attempts)
	assert.Equal(0, songs[1].Segments)
}
