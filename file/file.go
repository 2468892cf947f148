package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/util"
)

var ErrNoAttempts = errors.New("no attempts recorded")

// Songs lays out per-song files under one root:
//
//	<root>/<song>/reference.mid
//	<root>/<song>/meta.json
//	<root>/<song>/attempts/*.mid
//	<root>/<song>/reports/*.json
type Songs struct {
	Root string
}

func DefaultSongs() Songs {
	return Songs{Root: constants.GetSongsDir()}
}

func (s Songs) SongDir(songID string) string {
	return filepath.Join(s.Root, songID)
}

func (s Songs) ReferencePath(songID string) string {
	return filepath.Join(s.SongDir(songID), "reference.mid")
}

func (s Songs) MetaPath(songID string) string {
	return filepath.Join(s.SongDir(songID), "meta.json")
}

func (s Songs) AttemptsDir(songID string) string {
	return filepath.Join(s.SongDir(songID), "attempts")
}

func (s Songs) ReportsDir(songID string) string {
	return filepath.Join(s.SongDir(songID), "reports")
}

func (s Songs) LoadMeta(songID string) (config.Meta, error) {
	var meta config.Meta
	dat, err := os.ReadFile(s.MetaPath(songID))
	if err != nil {
		return meta, fmt.Errorf("meta.json missing for song %s: %w", songID, err)
	}
	if err := json.Unmarshal(dat, &meta); err != nil {
		return meta, fmt.Errorf("invalid meta.json: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return meta, fmt.Errorf("invalid meta.json: %w", err)
	}
	return meta, nil
}

// SaveMeta validates and writes meta.json, forcing its song id to songID.
func (s Songs) SaveMeta(songID string, meta config.Meta) (string, error) {
	meta.SongID = songID
	if err := meta.Validate(); err != nil {
		return "", fmt.Errorf("invalid meta.json: %w", err)
	}
	if err := os.MkdirAll(s.SongDir(songID), 0755); err != nil {
		return "", err
	}
	dat, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	path := s.MetaPath(songID)
	return path, os.WriteFile(path, dat, 0644)
}

// Attempts lists recorded attempts, oldest first (names are timestamps).
func (s Songs) Attempts(songID string) ([]string, error) {
	dir := s.AttemptsDir(songID)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return util.GatherAllMidiPaths(dir, 0)
}

func (s Songs) LatestAttempt(songID string) (string, error) {
	paths, err := s.Attempts(songID)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("%w for song %s", ErrNoAttempts, songID)
	}
	return paths[len(paths)-1], nil
}

// SongInfo summarises one song directory.
type SongInfo struct {
	SongID       string
	HasReference bool
	Segments     int
	Attempts     int
	UpdatedAt    time.Time
}

func (s Songs) List() ([]SongInfo, error) {
	entries, err := os.ReadDir(s.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var res []SongInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info := SongInfo{SongID: e.Name()}
		if stat, err := e.Info(); err == nil {
			info.UpdatedAt = stat.ModTime()
		}
		if _, err := os.Stat(s.ReferencePath(e.Name())); err == nil {
			info.HasReference = true
		}
		// a broken meta.json still lists the song
		if meta, err := s.LoadMeta(e.Name()); err == nil {
			info.Segments = len(meta.Segments)
		}
		if attempts, err := s.Attempts(e.Name()); err == nil {
			info.Attempts = len(attempts)
		}
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].SongID < res[j].SongID })
	return res, nil
}
