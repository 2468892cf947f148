package constants

import (
	"os"
	"path/filepath"
)

func GetHomeDir() string {
	path := os.Getenv("PIANODIFF_HOME")
	if path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.pianodiff"
	}
	return filepath.Join(home, ".pianodiff")
}

func GetConfigPath() string {
	return filepath.Join(GetHomeDir(), "config.yaml")
}

func GetSongsDir() string {
	return filepath.Join(GetHomeDir(), "songs")
}

func GetDatabasePath() string {
	path := os.Getenv("PIANODIFF_DB")
	if path != "" {
		return path
	}
	return filepath.Join(GetHomeDir(), "history.db")
}

func GetLogLevel() string {
	level := os.Getenv("PIANODIFF_LOG_LEVEL")
	if level != "" {
		return level
	}
	return "info"
}

// Tolerance defaults
const (
	MatchTolMs         = 80
	ChordWindowMs      = 50
	GreatMs            = 25
	GoodMs             = 50
	RushedDraggedMs    = 100
	DurationShortRatio = 0.6
	DurationLongRatio  = 1.5
)

// Aligner defaults
const (
	GapPenaltySec      = 0.20
	MaxOnsetGapSec     = 2.5
	OnsetCostWeight    = 8.0
	DurationCostWeight = 0.20
	MatchReward        = 0.20
	DeleteCost         = 1.20
	InsertCost         = 1.20
)

const (
	WrongPitchBeatTolerance = 0.20
	DefaultSplitPitch       = 60
	DefaultBPM              = 120.0
	DefaultBeatsPerMeasure  = 4
	DefaultBeatUnit         = 4
)

const (
	FullTierMinRate       = 0.50
	SimplifiedTierMinRate = 0.20
)

const DefaultPort = "8080"
